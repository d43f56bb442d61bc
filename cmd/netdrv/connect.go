package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/netdrv/netdrv/driver/generic"
	"github.com/netdrv/netdrv/driver/network"
	"github.com/netdrv/netdrv/platform"
)

// connect builds and opens a network driver for flags, prompting for a
// password on the controlling terminal if one wasn't supplied.
func connect(flags *rootFlags) (*network.Driver, error) {
	password := flags.password
	if password == "" {
		pw, err := readPassword()
		if err != nil {
			return nil, err
		}
		password = pw
	}

	builder, err := platform.NetworkBuilder(flags.host, flags.platformType, flags.variant)
	if err != nil {
		return nil, err
	}

	g := builder.Generic()
	g.User(flags.user).Password(password).Port(flags.port).SSHStrictKey(!flags.insecure)

	if flags.telnet {
		g.TransportKind(generic.TransportKindTelnetSystem)
	}

	d := builder.Build()

	auth := builder.InChannelAuthData(d)

	if err := d.Open(ctx(), auth); err != nil {
		return nil, err
	}

	return d, nil
}

func readPassword() (string, error) {
	fmt.Fprint(os.Stderr, "Password: ")

	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func newPromptCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "print the device's current prompt",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := connect(flags)
			if err != nil {
				return err
			}
			defer d.Close()

			prompt, err := d.Generic.GetPrompt(ctx())
			if err != nil {
				return err
			}

			fmt.Println(prompt)

			return nil
		},
	}
}

func newSendCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "send [commands...]",
		Short: "send one or more commands to the device",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := connect(flags)
			if err != nil {
				return err
			}
			defer d.Close()

			multi, err := d.Generic.SendCommands(ctx(), args)
			if err != nil {
				return err
			}

			fmt.Println(multi.JoinResults())

			if multi.Failed() {
				os.Exit(1)
			}

			return nil
		},
	}
}
