// Package transport defines the Transport contract that channel.Channel
// wraps, plus two concrete implementations: System (spawns ssh/telnet
// under a PTY) and NativeSSH (pure-Go golang.org/x/crypto/ssh client).
package transport

import "time"

// Default tunables shared by transport implementations.
const (
	DefaultPort           = 22
	DefaultTimeoutSocket  = 30 * time.Second
	DefaultReadSize       = 8192
	DefaultTermHeight     = 255
	DefaultTermWidth      = 80
	DefaultSSHStrictKey   = true
)

// AuthType identifies which in-channel authentication script a Channel
// should run against a Transport's byte stream.
type AuthType int

const (
	// AuthTypeTelnet indicates the transport expects in-band username and
	// password prompts.
	AuthTypeTelnet AuthType = iota
	// AuthTypeSSH indicates the transport expects in-band password and/or
	// private-key-passphrase prompts (the SSH username is handled by the
	// transport itself, outside the channel byte stream).
	AuthTypeSSH
)

// InChannelAuthData tells the Channel how to run in-band authentication:
// which script to use, and the credentials to answer prompts with.
type InChannelAuthData struct {
	AuthType              AuthType
	User                  string
	Password              string
	PrivateKeyPassphrase  string
}

// Transport is the contract all netdrv transports must implement. Reads
// must be non-blocking: they return promptly with zero bytes when nothing
// is available, and only error on genuine transport failure.
type Transport interface {
	Open() error
	Close() error
	Alive() bool

	// Read is ReadN(ReadSize).
	Read() ([]byte, error)
	// ReadN returns the bytes currently available without blocking,
	// stopping once at least n have been gathered. The System and
	// NativeSSH implementations do not split a buffered chunk, so their
	// result can exceed n.
	ReadN(n int) ([]byte, error)
	// Write sends b to the device.
	Write(b []byte) error

	Host() string
	Port() int

	// InChannelAuthData reports how the Channel should perform in-band
	// authentication, if any (see Channel Args.AuthBypass to skip this
	// entirely when the transport already authenticated out of band).
	InChannelAuthData() InChannelAuthData
}

// Args holds settings shared by every Transport implementation.
type Args struct {
	Host string
	Port int

	User     string
	Password string

	TimeoutSocket time.Duration
	ReadSize      int
	TermHeight    int
	TermWidth     int
}

// NewArgs returns Args with netdrv's defaults and the given host set.
func NewArgs(host string) Args {
	return Args{
		Host:          host,
		Port:          DefaultPort,
		TimeoutSocket: DefaultTimeoutSocket,
		ReadSize:      DefaultReadSize,
		TermHeight:    DefaultTermHeight,
		TermWidth:     DefaultTermWidth,
	}
}

// SSHArgs holds SSH-specific transport settings, applicable to both System
// and NativeSSH.
type SSHArgs struct {
	StrictKey             bool
	PrivateKeyPath        string
	PrivateKeyPassphrase  string
	ConfigFilePath        string
	KnownHostsFilePath    string
}

// NewSSHArgs returns SSHArgs with netdrv's defaults.
func NewSSHArgs() SSHArgs {
	return SSHArgs{StrictKey: DefaultSSHStrictKey}
}
