// Command netdrv is a small example CLI built on top of the netdrv
// library: it opens a connection to a device and either prints its
// prompt or sends one or more commands.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/netdrv/netdrv/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type rootFlags struct {
	host         string
	port         int
	user         string
	password     string
	platformType string
	variant      string
	logLevel     string
	insecure     bool
	telnet       bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "netdrv",
		Short:         "netdrv is a screen-scraping client for network device CLIs",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Init(flags.logLevel, "")
		},
	}

	cmd.PersistentFlags().StringVar(&flags.host, "host", "", "device hostname or address (required)")
	cmd.PersistentFlags().IntVar(&flags.port, "port", 22, "device port")
	cmd.PersistentFlags().StringVar(&flags.user, "user", "", "username")
	cmd.PersistentFlags().StringVar(&flags.password, "password", "", "password (prompted if omitted)")
	cmd.PersistentFlags().StringVar(&flags.platformType, "platform", "cisco_iosxe", "platform type")
	cmd.PersistentFlags().StringVar(&flags.variant, "variant", "", "platform variant")
	cmd.PersistentFlags().StringVar(&flags.logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.PersistentFlags().BoolVar(&flags.insecure, "insecure", true, "skip ssh host key verification")
	cmd.PersistentFlags().BoolVar(&flags.telnet, "telnet", false, "use telnet instead of ssh")

	_ = cmd.MarkPersistentFlagRequired("host")

	cmd.AddCommand(newPromptCmd(flags))
	cmd.AddCommand(newSendCmd(flags))

	return cmd
}

// ctx is the base context used by every subcommand; a real CLI might
// wire this to os/signal.NotifyContext for interrupt handling.
func ctx() context.Context {
	return context.Background()
}
