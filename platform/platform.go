// Package platform loads netdrv's per-device-type definitions: the
// privilege levels, prompt patterns, and failure substrings that turn a
// bare generic or network driver into one that understands a specific
// device family (Cisco IOS-XE, Arista EOS, and so on).
//
// Definitions ship embedded as YAML, one file per platform, with an
// optional on-disk override directory that is hot-reloaded via fsnotify
// so operators can tweak a platform definition without a rebuild.
package platform

// DriverType selects which flavor of driver a Platform builds.
type DriverType string

const (
	// DriverTypeGeneric builds a generic.Driver with no privilege-level
	// awareness.
	DriverTypeGeneric DriverType = "generic"
	// DriverTypeNetwork builds a network.Driver with privilege-level
	// awareness.
	DriverTypeNetwork DriverType = "network"
)

// PrivilegeLevelDef is the YAML-facing shape of a network driver
// PrivilegeLevel; Platform.NetworkPrivilegeLevels compiles its Pattern
// string into a *regexp.Regexp and copies EscalatePrompt through as a
// string.
type PrivilegeLevelDef struct {
	Name                   string   `yaml:"name"`
	Pattern                string   `yaml:"pattern"`
	NotContains            []string `yaml:"not-contains"`
	PreviousPrivilegeLevel string   `yaml:"previous-privilege-level"`
	Escalate               string   `yaml:"escalate"`
	EscalateAuth           bool     `yaml:"escalate-auth"`
	EscalatePrompt         string   `yaml:"escalate-prompt"`
	Deescalate             string   `yaml:"deescalate"`
}

// Platform is one variant (default or named) of a device type's
// definition: what kind of driver to build, and the settings to build it
// with.
type Platform struct {
	DriverType                   DriverType          `yaml:"driver-type"`
	DefaultDesiredPrivilegeLevel string              `yaml:"default-desired-privilege-level"`
	FailedWhenContains           []string            `yaml:"failed-when-contains"`
	PrivilegeLevels              []PrivilegeLevelDef `yaml:"privilege-levels"`
}

// Definition is a full platform file: a platform type name, its default
// Platform, and any named variants that can be merged over the default.
type Definition struct {
	PlatformType string              `yaml:"platform-type"`
	Default      Platform            `yaml:"default"`
	Variants     map[string]Platform `yaml:"variants"`
}

// Resolve returns the effective Platform for variantName, merging it
// over Default. An empty variantName returns Default unchanged.
func (d *Definition) Resolve(variantName string) Platform {
	if variantName == "" {
		return d.Default
	}

	variant, ok := d.Variants[variantName]
	if !ok {
		return d.Default
	}

	return mergePlatform(d.Default, variant)
}

// mergePlatform overlays non-zero fields of v onto base, returning a new
// Platform. PrivilegeLevels and FailedWhenContains are replaced wholesale
// when the variant sets them, not merged element-by-element.
func mergePlatform(base, v Platform) Platform {
	out := base

	if v.DriverType != "" {
		out.DriverType = v.DriverType
	}
	if v.DefaultDesiredPrivilegeLevel != "" {
		out.DefaultDesiredPrivilegeLevel = v.DefaultDesiredPrivilegeLevel
	}
	if len(v.FailedWhenContains) > 0 {
		out.FailedWhenContains = v.FailedWhenContains
	}
	if len(v.PrivilegeLevels) > 0 {
		out.PrivilegeLevels = v.PrivilegeLevels
	}

	return out
}
