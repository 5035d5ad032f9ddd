package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
)

func main() {
	if err := run(); err != nil {
		log.Printf("relay_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://127.0.0.1:3001/ws", "relay WebSocket address")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	receiver, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial receiver: %w", err)
	}
	defer receiver.Close(websocket.StatusNormalClosure, "bye")

	sender, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial sender: %w", err)
	}
	defer sender.Close(websocket.StatusNormalClosure, "bye")

	// Give the relay a moment to register the sender before it speaks.
	time.Sleep(100 * time.Millisecond)

	if err := sender.Write(ctx, websocket.MessageBinary, []byte(*text)); err != nil {
		return fmt.Errorf("send: %w", err)
	}

	for {
		_, data, err := receiver.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		fmt.Printf("Received: %q\n", data)
		if bytes.Contains(data, []byte(*text)) {
			return nil
		}
	}
}
