package platform

import (
	"embed"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/netdrv/netdrv/driver/network"
	"github.com/netdrv/netdrv/errs"
)

//go:embed assets/*.yaml
var embeddedAssets embed.FS

var (
	registryMu sync.RWMutex
	registry   map[string]*Definition
)

func loadEmbedded() (map[string]*Definition, error) {
	entries, err := embeddedAssets.ReadDir("assets")
	if err != nil {
		return nil, errs.Wrap("platform: reading embedded assets", err)
	}

	defs := make(map[string]*Definition, len(entries))

	for _, entry := range entries {
		data, err := embeddedAssets.ReadFile("assets/" + entry.Name())
		if err != nil {
			return nil, errs.Wrapf("platform: reading embedded asset %s", err, entry.Name())
		}

		var def Definition
		if err := yaml.Unmarshal(data, &def); err != nil {
			return nil, errs.Wrapf("platform: parsing embedded asset %s", err, entry.Name())
		}

		defs[def.PlatformType] = &def
	}

	return defs, nil
}

func ensureLoaded() error {
	registryMu.RLock()
	loaded := registry != nil
	registryMu.RUnlock()

	if loaded {
		return nil
	}

	defs, err := loadEmbedded()
	if err != nil {
		return err
	}

	registryMu.Lock()
	registry = defs
	registryMu.Unlock()

	return nil
}

// Get returns the Definition for platformType, loading netdrv's embedded
// platform assets on first use.
func Get(platformType string) (*Definition, error) {
	if err := ensureLoaded(); err != nil {
		return nil, err
	}

	registryMu.RLock()
	defer registryMu.RUnlock()

	def, ok := registry[platformType]
	if !ok {
		return nil, errs.Newf("platform: unknown platform type %q", platformType)
	}

	return def, nil
}

// set installs def into the registry, overwriting any existing
// definition of the same platform type. Used by the override loader and
// by Register for user-supplied platform definitions.
func set(def *Definition) error {
	if err := ensureLoaded(); err != nil {
		return err
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	registry[def.PlatformType] = def

	return nil
}

// Register parses data as a Definition and installs it into the
// registry, overwriting any built-in or previously registered definition
// of the same platform type.
func Register(data []byte) error {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return errs.Wrap("platform: parsing platform definition", err)
	}

	return set(&def)
}

// NetworkPrivilegeLevels compiles p's PrivilegeLevelDefs into the
// network driver's PrivilegeLevel type.
func (p Platform) NetworkPrivilegeLevels() ([]network.PrivilegeLevel, error) {
	levels := make([]network.PrivilegeLevel, len(p.PrivilegeLevels))

	for i, def := range p.PrivilegeLevels {
		pattern, err := regexp.Compile(def.Pattern)
		if err != nil {
			return nil, errs.Wrapf("platform: compiling privilege level %q pattern", err, def.Name)
		}

		levels[i] = network.PrivilegeLevel{
			Name:                   def.Name,
			Pattern:                pattern,
			NotContains:            def.NotContains,
			PreviousPrivilegeLevel: def.PreviousPrivilegeLevel,
			Escalate:               def.Escalate,
			EscalateAuth:           def.EscalateAuth,
			EscalatePrompt:         def.EscalatePrompt,
			Deescalate:             def.Deescalate,
		}
	}

	return levels, nil
}
