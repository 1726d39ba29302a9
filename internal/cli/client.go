package cli

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"gitlab.com/otp-2025.net/internal/adapter/logging"
	"gitlab.com/otp-2025.net/internal/config"
	"gitlab.com/otp-2025.net/internal/domain"
	"gitlab.com/otp-2025.net/internal/static/errs"
	"gitlab.com/otp-2025.net/internal/tcp/client"
)

// NewClientCommand builds otp_enc or otp_dec
func NewClientCommand(direction domain.Direction) *cobra.Command {
	var host string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:           direction.ProgramName() + " textfile keyfile port",
		Short:         fmt.Sprintf("Send a text to %s and print the %s result", direction.DaemonName(), direction),
		Args:          cobra.ExactArgs(3),
		SilenceUsage:  false,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, err := parsePort(args[2])
			if err != nil {
				return err
			}
			cmd.SilenceUsage = true

			text, err := ReadFirstLine(args[0])
			if err != nil {
				return err
			}
			key, err := ReadFirstLine(args[1])
			if err != nil {
				return err
			}
			if err := ValidateInput(text, key, direction); err != nil {
				return err
			}

			logger, err := logging.NewZapLogger(config.NewLogConfig())
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck

			address := net.JoinHostPort(host, strconv.Itoa(port))
			driver := client.NewDriver(direction, address, logger, client.WithTimeout(timeout))
			result, err := driver.Run(cmd.Context(), text, key)
			if errors.Is(err, errs.ErrHandshakeRejected) {
				return withCode(ExitRejected, fmt.Errorf("could not contact %s on port %d: %w", direction.DaemonName(), port, err))
			}
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), result)
			return err
		},
	}

	cmd.Flags().StringVar(&host, "host", "localhost", "Daemon host")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the exchange after this long (0 waits forever)")
	return cmd
}

func parsePort(raw string) (int, error) {
	port, err := strconv.Atoi(raw)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("invalid port %q", raw)
	}
	return port, nil
}
