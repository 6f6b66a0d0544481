package config

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"setup-devenv/internal/platform"
)

//go:embed profiles.yaml
var defaultCatalog []byte

// Repo kinds accepted in shell.repos.
const (
	KindPlugin = "plugin"
	KindTheme  = "theme"
)

// LoadCatalog decodes the embedded profiles.yaml.
func LoadCatalog() (Catalog, error) {
	return ParseCatalog(defaultCatalog)
}

// ParseCatalog decodes and validates a catalog document.
func ParseCatalog(raw []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return Catalog{}, fmt.Errorf("failed to unmarshal profiles: %w", err)
	}
	if err := c.validate(); err != nil {
		return Catalog{}, err
	}
	return c, nil
}

func (c Catalog) validate() error {
	for _, tag := range platform.Tags {
		if tag == platform.GenericLinux {
			continue
		}
		p, ok := c.Profiles[string(tag)]
		if !ok {
			return fmt.Errorf("profiles: missing profile for %s", tag)
		}
		if len(p.Base) == 0 {
			return fmt.Errorf("profiles: %s has no base packages", tag)
		}
	}
	for _, m := range []platform.Manager{platform.Apt, platform.Dnf, platform.Yum, platform.Pacman} {
		if _, ok := c.Generic[string(m)]; !ok {
			return fmt.Errorf("profiles: missing generic profile for %s", m)
		}
	}
	for _, r := range c.Shell.Repos {
		if r.Kind != KindPlugin && r.Kind != KindTheme {
			return fmt.Errorf("shell repo %s: unknown kind %q", r.Name, r.Kind)
		}
		if r.Name == "" || r.URL == "" {
			return fmt.Errorf("shell repo %q: name and url are required", r.Name)
		}
	}
	if c.Shell.InstallerURL == "" || c.Shell.FrameworkDir == "" {
		return fmt.Errorf("shell: installer_url and framework_dir are required")
	}
	return nil
}

// ProfileFor returns the package profile matching a detected host.
func (c Catalog) ProfileFor(h platform.Host) (Profile, error) {
	if h.Tag == platform.GenericLinux {
		p, ok := c.Generic[string(h.Manager)]
		if !ok {
			return Profile{}, fmt.Errorf("%w: no generic profile for manager %s", platform.ErrUnsupportedPlatform, h.Manager)
		}
		return p, nil
	}
	p, ok := c.Profiles[string(h.Tag)]
	if !ok {
		return Profile{}, fmt.Errorf("%w: no profile for %s", platform.ErrUnsupportedPlatform, h.Tag)
	}
	return p, nil
}
