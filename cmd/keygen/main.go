package main

import (
	"context"
	"os"

	"gitlab.com/otp-2025.net/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background(), cli.NewKeygenCommand()))
}
