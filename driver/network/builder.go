package network

import (
	"github.com/netdrv/netdrv/driver/generic"
	"github.com/netdrv/netdrv/transport"
)

// Builder assembles a network Driver on top of a generic.Builder,
// adding privilege-level configuration.
type Builder struct {
	generic *generic.Builder
	args    *Args
}

// NewBuilder returns a Builder for host with netdrv's defaults and no
// privilege levels configured; platform.NetworkBuilder populates
// PrivilegeLevels from a platform definition.
func NewBuilder(host string) *Builder {
	return &Builder{
		generic: generic.NewBuilder(host),
		args:    &Args{},
	}
}

// Generic exposes the embedded generic.Builder so callers can chain its
// channel/transport configuration methods alongside network-specific
// ones.
func (b *Builder) Generic() *generic.Builder {
	return b.generic
}

func (b *Builder) SecondaryPassword(s string) *Builder {
	b.args.SecondaryPassword = s
	return b
}

func (b *Builder) PrivilegeLevels(levels []PrivilegeLevel) *Builder {
	b.args.PrivilegeLevels = levels
	return b
}

func (b *Builder) DefaultDesiredPrivilegeLevel(s string) *Builder {
	b.args.DefaultDesiredPrivilegeLevel = s
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

// Build constructs the network Driver and its underlying generic.Driver,
// Channel, and Transport.
func (b *Builder) Build() *Driver {
	gd := b.generic.Build()
	return New(b.args, gd)
}

// InChannelAuthData is a convenience forwarding to the embedded
// generic.Builder, used the same way after Build.
func (b *Builder) InChannelAuthData(d *Driver) transport.InChannelAuthData {
	return b.generic.InChannelAuthData(d.Generic)
}
