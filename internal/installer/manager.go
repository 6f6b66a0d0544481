package installer

import (
	"fmt"

	"setup-devenv/internal/platform"
	"setup-devenv/internal/system"
)

// pkgManager turns package operations into commands for one manager. No
// method ever emits a command belonging to another manager.
type pkgManager struct {
	kind platform.Manager
	brew string // brew binary, "brew" unless freshly installed off PATH
}

func newPkgManager(kind platform.Manager) pkgManager {
	return pkgManager{kind: kind, brew: "brew"}
}

// refresh returns the metadata refresh command, if the manager needs one.
func (m pkgManager) refresh() (system.Command, bool) {
	switch m.kind {
	case platform.Apt:
		return system.Sudo("apt-get", "update"), true
	case platform.Pacman:
		return system.Sudo("pacman", "-Sy", "--noconfirm"), true
	case platform.Brew:
		return system.Cmd(m.brew, "update"), true
	}
	return system.Command{}, false
}

func (m pkgManager) install(pkgs ...string) system.Command {
	switch m.kind {
	case platform.Apt:
		return system.Sudo("apt-get", append([]string{"install", "-y"}, pkgs...)...)
	case platform.Dnf:
		return system.Sudo("dnf", append([]string{"install", "-y"}, pkgs...)...)
	case platform.Yum:
		return system.Sudo("yum", append([]string{"install", "-y"}, pkgs...)...)
	case platform.Pacman:
		return system.Sudo("pacman", append([]string{"-S", "--noconfirm", "--needed"}, pkgs...)...)
	default:
		return system.Cmd(m.brew, append([]string{"install"}, pkgs...)...)
	}
}

func (m pkgManager) installCask(pkgs ...string) (system.Command, error) {
	if m.kind != platform.Brew {
		return system.Command{}, fmt.Errorf("cask installs need brew, host uses %s", m.kind)
	}
	return system.Cmd(m.brew, append([]string{"install", "--cask"}, pkgs...)...), nil
}

func (m pkgManager) swap(from, to string) (system.Command, error) {
	if m.kind != platform.Dnf {
		return system.Command{}, fmt.Errorf("package swap is only supported with dnf, host uses %s", m.kind)
	}
	return system.Sudo("dnf", "swap", "-y", from, to), nil
}

func (m pkgManager) addRepo(url string) (system.Command, error) {
	switch m.kind {
	case platform.Dnf:
		return system.Sudo("dnf", "config-manager", "--add-repo", url), nil
	case platform.Yum:
		return system.Sudo("yum-config-manager", "--add-repo", url), nil
	}
	return system.Command{}, fmt.Errorf("adding repository files is not supported with %s", m.kind)
}
