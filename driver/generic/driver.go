// Package generic implements the "generic" flavor of netdrv driver: a
// fancier expect-like interface over a channel.Channel, with no notion of
// network-specific concepts like privilege levels.
package generic

import (
	"context"

	"github.com/netdrv/netdrv/channel"
	"github.com/netdrv/netdrv/errs"
	"github.com/netdrv/netdrv/logging"
	"github.com/netdrv/netdrv/response"
	"github.com/netdrv/netdrv/transport"
)

// OnXCallable is the shape of the on-open/on-close hooks a Driver can
// run: immediately after authenticating (on open) or right before closing
// the channel and transport (on close).
type OnXCallable func(d *Driver) error

// OperationOptions customizes a single SendCommand(s) call.
type OperationOptions struct {
	// FailedWhenContains, if non-empty, overrides Args.FailedWhenContains
	// for this call only.
	FailedWhenContains []string
	// StopOnFailed stops SendCommands as soon as one command's response
	// is marked failed.
	StopOnFailed bool
	// ChannelOperationOptions is passed straight through to the channel.
	ChannelOperationOptions channel.OperationOptions
}

// Args are the standard Driver settings.
type Args struct {
	Host string
	Port int

	FailedWhenContains []string

	OnOpen  OnXCallable
	OnClose OnXCallable
}

// NewArgs returns Args for host with netdrv's default port.
func NewArgs(host string) *Args {
	return &Args{Host: host, Port: transport.DefaultPort}
}

// Driver is the generic driver: an expect-like interface around a
// channel.Channel, with no network-specific behavior layered on top.
type Driver struct {
	Args    *Args
	Channel *channel.Channel
}

// New wraps ch as a generic Driver configured by args.
func New(args *Args, ch *channel.Channel) *Driver {
	return &Driver{Args: args, Channel: ch}
}

// Open opens the underlying channel and transport, authenticates, and
// runs the OnOpen hook if set.
func (d *Driver) Open(ctx context.Context, auth transport.InChannelAuthData) error {
	logging.Log().Debug("opening connection", "host", d.Args.Host, "port", d.Args.Port)

	if err := d.Channel.Open(); err != nil {
		return errs.Wrap("generic driver: open", err)
	}

	if err := d.Channel.Authenticate(ctx, auth); err != nil {
		return errs.Wrap("generic driver: authenticate", err)
	}

	if d.Args.OnOpen != nil {
		logging.Log().Debug("generic driver on_open set, executing")

		if err := d.Args.OnOpen(d); err != nil {
			return errs.Wrap("generic driver: on_open", err)
		}
	}

	logging.Log().Info("connection opened successfully", "host", d.Args.Host, "port", d.Args.Port)

	return nil
}

// Close runs the OnClose hook, if set, then closes the underlying
// channel and transport.
func (d *Driver) Close() error {
	logging.Log().Debug("closing connection", "host", d.Args.Host, "port", d.Args.Port)

	if d.Args.OnClose != nil {
		logging.Log().Debug("generic driver on_close set, executing")

		if err := d.Args.OnClose(d); err != nil {
			return errs.Wrap("generic driver: on_close", err)
		}
	}

	if err := d.Channel.Close(); err != nil {
		return errs.Wrap("generic driver: close", err)
	}

	logging.Log().Info("connection closed successfully", "host", d.Args.Host, "port", d.Args.Port)

	return nil
}

// GetPrompt returns the device's current prompt.
func (d *Driver) GetPrompt(ctx context.Context) (string, error) {
	b, err := d.Channel.GetPrompt(ctx)
	if err != nil {
		return "", errs.Wrap("generic driver: get prompt", err)
	}
	return string(b), nil
}

// SendCommand sends a single command and returns its Response.
func (d *Driver) SendCommand(ctx context.Context, command string) (*response.Response, error) {
	return d.SendCommandWithOptions(ctx, command, OperationOptions{})
}

// SendCommandWithOptions sends a single command with per-call options.
func (d *Driver) SendCommandWithOptions(ctx context.Context, command string, opts OperationOptions) (*response.Response, error) {
	logging.Log().Info("send_command requested", "command", command)

	failedWhenContains := opts.FailedWhenContains
	if len(failedWhenContains) == 0 {
		failedWhenContains = d.Args.FailedWhenContains
	}

	resp := response.New(d.Args.Host, d.Args.Port, command)

	raw, err := d.Channel.SendInput(ctx, command, opts.ChannelOperationOptions)
	if err != nil {
		resp.RecordErr(err)
		return resp, errs.Wrap("generic driver: send command", err)
	}

	resp.Record(raw, raw)
	resp.CheckFailed(failedWhenContains)

	return resp, nil
}

// SendCommands sends each command in commands in order, stopping early
// if StopOnFailed is configured and a command fails.
func (d *Driver) SendCommands(ctx context.Context, commands []string) (*response.MultiResponse, error) {
	return d.SendCommandsWithOptions(ctx, commands, OperationOptions{})
}

// SendCommandsWithOptions is SendCommands with per-call options applied
// to every command in the batch.
func (d *Driver) SendCommandsWithOptions(ctx context.Context, commands []string, opts OperationOptions) (*response.MultiResponse, error) {
	if len(commands) == 0 {
		return nil, errs.New("generic driver: send commands called with no commands")
	}

	logging.Log().Info("send_commands requested", "commands", commands)

	multi := response.NewMulti(d.Args.Host, d.Args.Port)

	for _, command := range commands {
		resp, err := d.SendCommandWithOptions(ctx, command, opts)
		if err != nil {
			return multi, err
		}

		multi.RecordResponse(resp)

		if opts.StopOnFailed && resp.Failed {
			logging.Log().Info("stop on failed is true and a command failed, discontinuing send commands operation")
			multi.Done()
			return multi, nil
		}
	}

	multi.Done()

	return multi, nil
}
