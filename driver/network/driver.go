package network

import (
	"context"
	"regexp"
	"strings"

	"github.com/netdrv/netdrv/channel"
	"github.com/netdrv/netdrv/driver/generic"
	"github.com/netdrv/netdrv/errs"
	"github.com/netdrv/netdrv/logging"
	"github.com/netdrv/netdrv/response"
	"github.com/netdrv/netdrv/transport"
)

// defaultConfigurationPrivilegeLevel is the privilege level SendConfigs
// targets when the caller doesn't name one explicitly.
const defaultConfigurationPrivilegeLevel = "configuration"

// OnXCallable is the network driver's on-open/on-close hook shape. It
// runs after (on open) or before (on close) the generic driver's own
// hooks of the same name.
type OnXCallable func(d *Driver) error

// OperationOptions customizes a single SendCommand/SendConfigs call.
type OperationOptions struct {
	GenericDriverOperationOptions generic.OperationOptions

	// PrivilegeLevel is the target privilege level for SendConfigs. It
	// has no effect on SendCommand, which always runs at
	// Args.DefaultDesiredPrivilegeLevel.
	PrivilegeLevel string
}

// Args are the network Driver's settings, typically supplied by a
// platform definition.
type Args struct {
	// SecondaryPassword answers an escalation prompt (e.g. "enable"
	// password) when a PrivilegeLevel.EscalateAuth is set.
	SecondaryPassword string

	PrivilegeLevels []PrivilegeLevel

	// DefaultDesiredPrivilegeLevel is the level SendCommand operates at;
	// SendCommand acquires it first when the driver is not already there.
	// Open does not acquire it.
	DefaultDesiredPrivilegeLevel string

	OnOpen  OnXCallable
	OnClose OnXCallable
}

type privilegeAction int

const (
	privilegeActionNoOp privilegeAction = iota
	privilegeActionEscalate
	privilegeActionDeescalate
)

// Driver is the network driver: a generic.Driver plus privilege-level
// awareness.
type Driver struct {
	Generic *generic.Driver
	Args    *Args

	currentPrivilegeLevel string
	graph                 graph
}

// New wraps gd as a network Driver configured by args.
func New(args *Args, gd *generic.Driver) *Driver {
	return &Driver{Generic: gd, Args: args}
}

func (d *Driver) levelByName(name string) (*PrivilegeLevel, bool) {
	for i := range d.Args.PrivilegeLevels {
		if d.Args.PrivilegeLevels[i].Name == name {
			return &d.Args.PrivilegeLevels[i], true
		}
	}
	return nil, false
}

// UpdatePrivileges rebuilds the internal privilege level graph and the
// channel's combined prompt pattern (every level's pattern, joined with
// "|") so the channel can recognize a prompt at any known privilege
// level.
func (d *Driver) UpdatePrivileges() error {
	d.graph = buildGraph(d.Args.PrivilegeLevels)

	patterns := make([]string, len(d.Args.PrivilegeLevels))
	for i, lvl := range d.Args.PrivilegeLevels {
		patterns[i] = lvl.Pattern.String()
	}

	combined, err := regexp.Compile(strings.Join(patterns, "|"))
	if err != nil {
		return errs.Wrap("network driver: compiling combined privilege prompt pattern", err)
	}

	d.Generic.Channel.SetPromptPattern(combined)

	return nil
}

// Open opens the underlying generic driver and channel, then runs the
// network driver's OnOpen hook (after the generic driver's own OnOpen).
func (d *Driver) Open(ctx context.Context, auth transport.InChannelAuthData) error {
	if err := d.UpdatePrivileges(); err != nil {
		return err
	}

	if d.Args.DefaultDesiredPrivilegeLevel == "" || len(d.Args.PrivilegeLevels) == 0 {
		return errs.New("network driver: default desired privilege level and/or privilege levels are unset, these are required with the network driver")
	}

	if err := d.Generic.Open(ctx, auth); err != nil {
		return err
	}

	if d.Args.OnOpen != nil {
		logging.Log().Debug("network driver on_open set, executing")

		if err := d.Args.OnOpen(d); err != nil {
			return errs.Wrap("network driver: on_open", err)
		}
	}

	return nil
}

// Close runs the network driver's OnClose hook, then closes the
// underlying generic driver (which runs its own OnClose before closing
// the channel and transport).
func (d *Driver) Close() error {
	if d.Args.OnClose != nil {
		logging.Log().Debug("network driver on_close set, executing")

		if err := d.Args.OnClose(d); err != nil {
			return errs.Wrap("network driver: on_close", err)
		}
	}

	return d.Generic.Close()
}

// determineCurrentPrivilegeLevel matches currentPrompt against every
// known PrivilegeLevel's pattern (honoring NotContains) and returns the
// single level it identifies. More than one or zero matches is an error:
// platform prompt patterns are expected to be mutually exclusive.
func (d *Driver) determineCurrentPrivilegeLevel(currentPrompt string) (string, error) {
	var candidates []string

	for _, lvl := range d.Args.PrivilegeLevels {
		if containsAny(currentPrompt, lvl.NotContains) {
			continue
		}
		if lvl.Pattern.MatchString(currentPrompt) {
			candidates = append(candidates, lvl.Name)
		}
	}

	switch len(candidates) {
	case 1:
		return candidates[0], nil
	case 0:
		return "", errs.Newf("could not determine privilege level from prompt %q, found no matching privilege levels", currentPrompt)
	default:
		return "", errs.Newf("could not determine privilege level from prompt %q, found more than one matching privilege level", currentPrompt)
	}
}

func containsAny(s string, substrs []string) bool {
	for _, sub := range substrs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// processAcquirePrivilegeLevel determines what single step (if any) is
// needed next to move from the device's current prompt toward
// targetPrivilegeLevel.
func (d *Driver) processAcquirePrivilegeLevel(targetPrivilegeLevel, currentPrompt string) (privilegeAction, string, error) {
	current, err := d.determineCurrentPrivilegeLevel(currentPrompt)
	if err != nil {
		return privilegeActionNoOp, "", err
	}

	if current == targetPrivilegeLevel {
		d.currentPrivilegeLevel = current
		return privilegeActionNoOp, current, nil
	}

	path, err := shortestPath(d.graph, current, targetPrivilegeLevel)
	if err != nil {
		return privilegeActionNoOp, "", errs.Wrap("network driver: could not build privilege level path", err)
	}

	d.currentPrivilegeLevel = "unknown"

	// path[0] is current, path[1] is the next hop.
	next := path[1]

	nextLevel, ok := d.levelByName(next)
	if !ok {
		return privilegeActionNoOp, "", errs.Newf("network driver: unknown privilege level %q in computed path, this is a bug", next)
	}

	if nextLevel.PreviousPrivilegeLevel != current {
		return privilegeActionDeescalate, current, nil
	}

	return privilegeActionEscalate, nextLevel.Name, nil
}

// AcquirePrivilegeLevel escalates or de-escalates, one step at a time,
// until the device reaches targetPrivilegeLevel. It is bounded at
// 2*len(PrivilegeLevels) actions to guard against an unexpected device
// response looping the state machine forever.
func (d *Driver) AcquirePrivilegeLevel(ctx context.Context, targetPrivilegeLevel string) error {
	logging.Log().Info("acquire privilege level requested", "target", targetPrivilegeLevel)

	if _, ok := d.graph[targetPrivilegeLevel]; !ok {
		return errs.Newf("network driver: requested privilege level %q is not a valid privilege level", targetPrivilegeLevel)
	}

	actionCount := 0
	maxActions := len(d.Args.PrivilegeLevels) * 2

	for {
		currentPrompt, err := d.Generic.GetPrompt(ctx)
		if err != nil {
			return errs.Wrap("network driver: acquire privilege level", err)
		}

		action, next, err := d.processAcquirePrivilegeLevel(targetPrivilegeLevel, currentPrompt)
		if err != nil {
			return err
		}

		if action != privilegeActionNoOp && actionCount >= maxActions {
			return errs.Newf("network driver: failed to acquire target privilege level %q", targetPrivilegeLevel)
		}

		switch action {
		case privilegeActionNoOp:
			logging.Log().Debug("acquire privilege determined no action necessary")
			return nil

		case privilegeActionEscalate:
			logging.Log().Debug("acquire privilege determined privilege escalation is necessary")
			if _, err := d.escalatePrivilegeLevel(ctx, next); err != nil {
				return err
			}

		case privilegeActionDeescalate:
			logging.Log().Debug("acquire privilege determined privilege deescalation is necessary")
			if _, err := d.deescalatePrivilegeLevel(ctx, next); err != nil {
				return err
			}
		}

		actionCount++
	}
}

func (d *Driver) deescalatePrivilegeLevel(ctx context.Context, targetPrivilegeLevel string) ([]byte, error) {
	lvl, ok := d.levelByName(targetPrivilegeLevel)
	if !ok {
		return nil, errs.New("network driver: unknown privilege level, this is a bug")
	}

	return d.Generic.Channel.SendInput(ctx, lvl.Deescalate, channel.OperationOptions{})
}

func (d *Driver) escalatePrivilegeLevel(ctx context.Context, targetPrivilegeLevel string) ([]byte, error) {
	lvl, ok := d.levelByName(targetPrivilegeLevel)
	if !ok {
		return nil, errs.New("network driver: unknown privilege level, this is a bug")
	}

	if !lvl.EscalateAuth || d.Args.SecondaryPassword == "" {
		if d.Args.SecondaryPassword == "" {
			logging.Log().Info("no secondary password set, but escalate target may require auth, trying with no password")
		}

		return d.Generic.Channel.SendInput(ctx, lvl.Escalate, channel.OperationOptions{})
	}

	events := channel.Events{
		{ChannelInput: lvl.Escalate, Expect: lvl.EscalatePrompt},
		{ChannelInput: d.Args.SecondaryPassword, Expect: lvl.Pattern.String(), HideInput: true},
	}

	return d.Generic.Channel.SendInteractive(ctx, events, channel.OperationOptions{})
}

// SendCommand sends command at Args.DefaultDesiredPrivilegeLevel,
// acquiring that privilege level first if necessary.
func (d *Driver) SendCommand(ctx context.Context, command string) (*response.Response, error) {
	return d.SendCommandWithOptions(ctx, command, OperationOptions{})
}

// SendCommandWithOptions is SendCommand with per-call options.
func (d *Driver) SendCommandWithOptions(ctx context.Context, command string, opts OperationOptions) (*response.Response, error) {
	if d.currentPrivilegeLevel != d.Args.DefaultDesiredPrivilegeLevel {
		logging.Log().Debug("send_command requested but not at desired privilege level, attempting to acquire default desired privilege level")

		if err := d.AcquirePrivilegeLevel(ctx, d.Args.DefaultDesiredPrivilegeLevel); err != nil {
			return nil, err
		}
	}

	return d.Generic.SendCommandWithOptions(ctx, command, opts.GenericDriverOperationOptions)
}

// SendConfigs sends each line in configs at opts.PrivilegeLevel (or
// "configuration" if unset), acquiring that privilege level first.
func (d *Driver) SendConfigs(ctx context.Context, configs []string, opts OperationOptions) (*response.MultiResponse, error) {
	target := opts.PrivilegeLevel
	if target == "" {
		target = defaultConfigurationPrivilegeLevel
	}

	if err := d.AcquirePrivilegeLevel(ctx, target); err != nil {
		return nil, err
	}

	return d.Generic.SendCommandsWithOptions(ctx, configs, opts.GenericDriverOperationOptions)
}
