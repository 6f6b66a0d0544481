package installer

import (
	"context"
	"fmt"
	"os"

	"setup-devenv/internal/config"
	"setup-devenv/internal/logger"
	"setup-devenv/internal/platform"
	"setup-devenv/internal/system"
)

// brewLocations are checked after a fresh Homebrew install, which does not
// put brew on the current process PATH.
var brewLocations = []string{"/opt/homebrew/bin/brew", "/usr/local/bin/brew", "/home/linuxbrew/.linuxbrew/bin/brew"}

// PackageInstaller installs a profile's packages with the host's manager.
type PackageInstaller struct {
	Runner               system.Runner
	Host                 platform.Host
	Profile              config.Profile
	User                 string // joins the container group
	HomebrewInstallerURL string

	statFn func(string) (os.FileInfo, error)
}

// PackageResult lists what the best-effort part of the install could not do.
type PackageResult struct {
	Installed []string // base + optional packages that went in
	Missing   []string // optional packages or repos that failed
	Container bool     // container runtime installed
}

// NewPackageInstaller builds an installer for the detected host.
func NewPackageInstaller(r system.Runner, h platform.Host, p config.Profile, user, brewURL string) *PackageInstaller {
	return &PackageInstaller{Runner: r, Host: h, Profile: p, User: user, HomebrewInstallerURL: brewURL, statFn: os.Stat}
}

// Install runs the profile: swaps, refresh, base packages, best-effort
// repos and optional tools, then the container runtime. Any failure outside
// the best-effort parts is returned immediately.
func (p *PackageInstaller) Install(ctx context.Context) (PackageResult, error) {
	var res PackageResult
	m := newPkgManager(p.Host.Manager)

	if m.kind == platform.Brew {
		brew, err := p.ensureHomebrew(ctx)
		if err != nil {
			return res, err
		}
		m.brew = brew
	}

	// Swaps come before any other install: later steps rely on the replacement.
	for _, s := range p.Profile.Swaps {
		cmd, err := m.swap(s.From, s.To)
		if err != nil {
			return res, err
		}
		logger.Info("[INFO] Replacing %s with %s\n", s.From, s.To)
		if err := p.Runner.Run(ctx, cmd); err != nil {
			return res, fmt.Errorf("swap %s for %s: %w", s.From, s.To, err)
		}
	}

	if cmd, ok := m.refresh(); ok {
		logger.Info("[INFO] Refreshing package index\n")
		if err := p.Runner.Run(ctx, cmd); err != nil {
			return res, fmt.Errorf("refresh package index: %w", err)
		}
	}

	logger.Info("[INFO] Installing base packages with %s: %v\n", m.kind, p.Profile.Base)
	if err := p.Runner.Run(ctx, m.install(p.Profile.Base...)); err != nil {
		return res, fmt.Errorf("install base packages: %w", err)
	}
	res.Installed = append(res.Installed, p.Profile.Base...)

	for _, repo := range p.Profile.Repos {
		if err := p.Runner.Run(ctx, m.install(repo)); err != nil {
			logger.Warn("[WARN] Could not enable repository package %s: %v\n", repo, err)
			res.Missing = append(res.Missing, repo)
		}
	}

	for _, pkg := range p.Profile.Optional {
		if err := p.Runner.Run(ctx, m.install(pkg)); err != nil {
			logger.Warn("[WARN] Optional package %s is not available, skipping\n", pkg)
			logger.Debug("[DEBUG] %s install error: %v\n", pkg, err)
			res.Missing = append(res.Missing, pkg)
			continue
		}
		res.Installed = append(res.Installed, pkg)
	}

	if p.Profile.Container != nil {
		if err := p.installContainer(ctx, m, *p.Profile.Container); err != nil {
			return res, err
		}
		res.Container = true
	}
	return res, nil
}

// InstallOne installs a single package with the host manager.
func (p *PackageInstaller) InstallOne(ctx context.Context, pkg string) error {
	m := newPkgManager(p.Host.Manager)
	if m.kind == platform.Brew {
		if path, err := p.Runner.LookPath("brew"); err == nil {
			m.brew = path
		}
	}
	return p.Runner.Run(ctx, m.install(pkg))
}

func (p *PackageInstaller) installContainer(ctx context.Context, m pkgManager, c config.Container) error {
	logger.Info("[INFO] Installing container runtime: %v\n", c.Packages)

	if c.Repo != "" {
		cmd, err := m.addRepo(c.Repo)
		if err != nil {
			return err
		}
		if err := p.Runner.Run(ctx, cmd); err != nil {
			return fmt.Errorf("add container repository: %w", err)
		}
	}

	install := m.install(c.Packages...)
	if c.Cask {
		cmd, err := m.installCask(c.Packages...)
		if err != nil {
			return err
		}
		install = cmd
	}
	if err := p.Runner.Run(ctx, install); err != nil {
		return fmt.Errorf("install container runtime: %w", err)
	}

	if c.Service != "" {
		if err := p.Runner.Run(ctx, system.Sudo("systemctl", "enable", "--now", c.Service)); err != nil {
			return fmt.Errorf("enable %s service: %w", c.Service, err)
		}
	}
	if c.Group != "" && p.User != "" {
		if err := p.Runner.Run(ctx, system.Sudo("usermod", "-aG", c.Group, p.User)); err != nil {
			return fmt.Errorf("add %s to group %s: %w", p.User, c.Group, err)
		}
		logger.Info("[INFO] Added %s to the %s group (log out and back in to apply)\n", p.User, c.Group)
	}
	return nil
}

// ensureHomebrew returns the brew binary to use, installing Homebrew first
// when it is absent.
func (p *PackageInstaller) ensureHomebrew(ctx context.Context) (string, error) {
	if path, err := p.Runner.LookPath("brew"); err == nil {
		return path, nil
	}

	logger.Info("[INFO] Homebrew not found, installing it\n")
	cmd := system.Cmd("/bin/bash", "-c", fmt.Sprintf("curl -fsSL %s | /bin/bash", p.HomebrewInstallerURL)).
		WithEnv("NONINTERACTIVE=1")
	if err := p.Runner.Run(ctx, cmd); err != nil {
		return "", fmt.Errorf("install homebrew: %w", err)
	}

	for _, loc := range brewLocations {
		if _, err := p.statFn(loc); err == nil {
			return loc, nil
		}
	}
	return "brew", nil
}
