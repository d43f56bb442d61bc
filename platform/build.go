package platform

import (
	"github.com/netdrv/netdrv/driver/generic"
	"github.com/netdrv/netdrv/driver/network"
	"github.com/netdrv/netdrv/errs"
)

// NetworkBuilder returns a network.Builder preconfigured from the named
// platform's (optionally variant) definition: privilege levels, default
// desired privilege level, and failed-when-contains substrings. Callers
// still chain host/credential/transport settings via Builder.Generic().
func NetworkBuilder(host, platformType, variant string) (*network.Builder, error) {
	def, err := Get(platformType)
	if err != nil {
		return nil, err
	}

	p := def.Resolve(variant)

	if p.DriverType != DriverTypeNetwork {
		return nil, errs.Newf("platform: %q is not a network driver type platform", platformType)
	}

	levels, err := p.NetworkPrivilegeLevels()
	if err != nil {
		return nil, err
	}

	b := network.NewBuilder(host)
	b.PrivilegeLevels(levels)
	b.DefaultDesiredPrivilegeLevel(p.DefaultDesiredPrivilegeLevel)
	b.Generic().FailedWhenContains(p.FailedWhenContains)

	return b, nil
}

// GenericBuilder returns a generic.Builder preconfigured from the named
// platform's definition's failed-when-contains substrings.
func GenericBuilder(host, platformType, variant string) (*generic.Builder, error) {
	def, err := Get(platformType)
	if err != nil {
		return nil, err
	}

	p := def.Resolve(variant)

	b := generic.NewBuilder(host)
	b.FailedWhenContains(p.FailedWhenContains)

	return b, nil
}
