package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-relay/internal/chat"
	"github.com/vovakirdan/wirechat-relay/internal/config"
)

func newChatCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Connect to a relay and chat from the terminal",
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			terminal, err := chat.OpenTerminal(os.Stdin, os.Stdout)
			if err != nil {
				return err
			}
			defer terminal.Close()

			client := chat.New(os.Stdout, clockwork.NewRealClock(), terminal.Size)
			return client.Dial(ctx, addr, os.Stdin)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.Default().Addr, "relay address (host:port)")
	return cmd
}
