package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gitlab.com/otp-2025.net/internal/cli"
	"gitlab.com/otp-2025.net/internal/domain"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cli.Execute(ctx, cli.NewClientCommand(domain.DirectionEncrypt))
	stop()
	os.Exit(code)
}
