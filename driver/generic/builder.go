package generic

import (
	"regexp"
	"time"

	"github.com/netdrv/netdrv/channel"
	"github.com/netdrv/netdrv/transport"
)

// TransportKind selects which Transport implementation Builder.Build
// constructs.
type TransportKind int

const (
	// TransportKindSystem shells out to the system ssh/telnet binary
	// under a PTY.
	TransportKindSystem TransportKind = iota
	// TransportKindSSH uses golang.org/x/crypto/ssh directly.
	TransportKindSSH
	// TransportKindTelnetSystem shells out to the system telnet binary.
	TransportKindTelnetSystem
)

// Builder assembles a Driver from chained configuration calls, mirroring
// the rest of netdrv's fluent option style.
type Builder struct {
	args          *Args
	channelArgs   *channel.Args
	transportKind TransportKind
	transportArgs transport.Args
	sshArgs       transport.SSHArgs
}

// NewBuilder returns a Builder for host with netdrv's defaults.
func NewBuilder(host string) *Builder {
	return &Builder{
		args:          NewArgs(host),
		channelArgs:   channel.NewArgs(),
		transportKind: TransportKindSystem,
		transportArgs: transport.NewArgs(host),
		sshArgs:       transport.NewSSHArgs(),
	}
}

func (b *Builder) AuthBypass(v bool) *Builder {
	b.channelArgs.AuthBypass = v
	return b
}

func (b *Builder) PromptSearchDepth(n int) *Builder {
	b.channelArgs.PromptSearchDepth = n
	return b
}

func (b *Builder) PromptPattern(r *regexp.Regexp) *Builder {
	b.channelArgs.PromptPattern = r
	return b
}

func (b *Builder) UsernamePattern(r *regexp.Regexp) *Builder {
	b.channelArgs.UsernamePattern = r
	return b
}

func (b *Builder) PasswordPattern(r *regexp.Regexp) *Builder {
	b.channelArgs.PasswordPattern = r
	return b
}

func (b *Builder) PassphrasePattern(r *regexp.Regexp) *Builder {
	b.channelArgs.PassphrasePattern = r
	return b
}

func (b *Builder) ReturnChar(s string) *Builder {
	b.channelArgs.ReturnChar = s
	return b
}

func (b *Builder) ReadDelay(d time.Duration) *Builder {
	b.channelArgs.ReadDelay = d
	return b
}

func (b *Builder) TimeoutOps(d time.Duration) *Builder {
	b.channelArgs.TimeoutOps = d
	return b
}

func (b *Builder) TransportKind(k TransportKind) *Builder {
	b.transportKind = k
	return b
}

func (b *Builder) Port(p int) *Builder {
	b.args.Port = p
	b.transportArgs.Port = p
	return b
}

func (b *Builder) User(s string) *Builder {
	b.transportArgs.User = s
	b.channelArgs.Username = s
	return b
}

func (b *Builder) Password(s string) *Builder {
	b.transportArgs.Password = s
	b.channelArgs.Password = s
	return b
}

func (b *Builder) TimeoutSocket(d time.Duration) *Builder {
	b.transportArgs.TimeoutSocket = d
	return b
}

func (b *Builder) ReadSize(n int) *Builder {
	b.transportArgs.ReadSize = n
	return b
}

func (b *Builder) TermHeight(n int) *Builder {
	b.transportArgs.TermHeight = n
	return b
}

func (b *Builder) TermWidth(n int) *Builder {
	b.transportArgs.TermWidth = n
	return b
}

func (b *Builder) SSHStrictKey(v bool) *Builder {
	b.sshArgs.StrictKey = v
	return b
}

func (b *Builder) SSHPrivateKeyPath(s string) *Builder {
	b.sshArgs.PrivateKeyPath = s
	return b
}

func (b *Builder) SSHPrivateKeyPassphrase(s string) *Builder {
	b.sshArgs.PrivateKeyPassphrase = s
	b.channelArgs.PrivateKeyPassphrase = s
	return b
}

func (b *Builder) SSHConfigFilePath(s string) *Builder {
	b.sshArgs.ConfigFilePath = s
	return b
}

func (b *Builder) SSHKnownHostsFilePath(s string) *Builder {
	b.sshArgs.KnownHostsFilePath = s
	return b
}

func (b *Builder) FailedWhenContains(v []string) *Builder {
	b.args.FailedWhenContains = v
	return b
}

func (b *Builder) OnOpen(f OnXCallable) *Builder {
	b.args.OnOpen = f
	return b
}

func (b *Builder) OnClose(f OnXCallable) *Builder {
	b.args.OnClose = f
	return b
}

// buildTransport constructs the Transport selected by transportKind.
// NativeSSH authenticates out of band, so it also forces AuthBypass.
func (b *Builder) buildTransport() transport.Transport {
	switch b.transportKind {
	case TransportKindSSH:
		b.channelArgs.AuthBypass = true
		return transport.NewNativeSSH(b.transportArgs, b.sshArgs)
	case TransportKindTelnetSystem:
		return transport.NewSystemTelnet(b.transportArgs)
	default:
		return transport.NewSystemSSH(b.transportArgs, b.sshArgs)
	}
}

// Build constructs the Driver, its Channel, and its Transport.
func (b *Builder) Build() *Driver {
	t := b.buildTransport()
	ch := channel.New(t, b.channelArgs)
	return New(b.args, ch)
}

// InChannelAuthData builds the credentials the built Driver's channel
// should answer in-band prompts with, derived from the underlying
// Transport's reported auth type. Call this after Build to obtain the
// argument Driver.Open expects.
func (b *Builder) InChannelAuthData(d *Driver) transport.InChannelAuthData {
	return transport.InChannelAuthData{
		AuthType:             authTypeFor(b.transportKind),
		User:                 b.transportArgs.User,
		Password:             b.transportArgs.Password,
		PrivateKeyPassphrase: b.sshArgs.PrivateKeyPassphrase,
	}
}

func authTypeFor(k TransportKind) transport.AuthType {
	if k == TransportKindTelnetSystem {
		return transport.AuthTypeTelnet
	}
	return transport.AuthTypeSSH
}
