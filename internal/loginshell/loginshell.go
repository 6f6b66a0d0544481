// Package loginshell switches the user's login shell to zsh.
package loginshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"setup-devenv/internal/logger"
	"setup-devenv/internal/platform"
	"setup-devenv/internal/system"
)

const (
	defaultPasswd = "/etc/passwd"
	defaultShells = "/etc/shells"
	passwdFields  = 7
)

var errNoEntry = errors.New("no passwd entry")

// Changer runs the ordered fallback chain. It never fails the run: every
// dead end ends in a warning with the command to run by hand.
type Changer struct {
	Runner       system.Runner
	User         string
	CurrentShell string           // $SHELL
	Manager      platform.Manager // brew selects the macOS directory-services fallback
	ChshPackage  string           // package providing chsh, empty if not known

	// InstallPackage installs one package with the host manager.
	InstallPackage func(ctx context.Context, pkg string) error

	PasswdPath string
	ShellsPath string
	readFile   func(string) ([]byte, error)
}

// Result describes how the shell change went.
type Result struct {
	Target      string
	Strategy    string // name of the strategy that worked
	Skipped     bool   // already zsh
	Changed     bool
	Remediation string // command for the user when nothing worked
}

// New returns a Changer reading the real account files.
func New(r system.Runner, user, currentShell string, mgr platform.Manager, chshPackage string,
	install func(ctx context.Context, pkg string) error) *Changer {
	return &Changer{
		Runner:         r,
		User:           user,
		CurrentShell:   currentShell,
		Manager:        mgr,
		ChshPackage:    chshPackage,
		InstallPackage: install,
		PasswdPath:     defaultPasswd,
		ShellsPath:     defaultShells,
		readFile:       os.ReadFile,
	}
}

// IsZsh reports whether a shell path points at zsh.
func IsZsh(shell string) bool {
	return filepath.Base(shell) == "zsh"
}

type strategy struct {
	name string
	run  func(ctx context.Context, target string) error
}

func (c *Changer) strategies() []strategy {
	edit := strategy{"edit passwd entry", c.editPasswd}
	if c.Manager == platform.Brew {
		edit = strategy{"dscl", c.editDirectoryService}
	}
	return []strategy{
		{"sudo chsh", func(ctx context.Context, target string) error {
			return c.Runner.Run(ctx, system.Sudo("chsh", "-s", target, c.User))
		}},
		{"chsh", func(ctx context.Context, target string) error {
			return c.Runner.Run(ctx, system.Cmd("chsh", "-s", target))
		}},
		edit,
	}
}

// Change switches the login shell to zsh, trying each strategy in order.
func (c *Changer) Change(ctx context.Context) Result {
	target, err := c.Runner.LookPath("zsh")
	if err != nil {
		res := Result{Remediation: "install zsh, then run: chsh -s $(command -v zsh)"}
		logger.Warn("[WARN] zsh is not on PATH, cannot change the login shell. %s\n", res.Remediation)
		return res
	}
	res := Result{Target: target, Remediation: "chsh -s " + target}

	if IsZsh(c.CurrentShell) {
		logger.Info("[INFO] Login shell is already %s. Skipping.\n", c.CurrentShell)
		res.Skipped = true
		res.Remediation = ""
		return res
	}

	c.ensureChsh(ctx)
	c.ensureListed(ctx, target)

	for _, s := range c.strategies() {
		logger.Debug("[DEBUG] Trying login shell strategy %q\n", s.name)
		if err := s.run(ctx, target); err != nil {
			logger.Debug("[DEBUG] Strategy %q failed: %v\n", s.name, err)
			continue
		}
		res.Strategy, res.Changed, res.Remediation = s.name, true, ""
		logger.Info("[INFO] Login shell set to %s (%s)\n", target, s.name)
		c.confirm(ctx)
		return res
	}

	logger.Warn("[WARN] Could not change the login shell. Run manually: %s\n", res.Remediation)
	return res
}

// ensureChsh installs the package providing chsh when it is missing and the
// profile knows which package that is. Failure is left to the strategies.
func (c *Changer) ensureChsh(ctx context.Context) {
	if _, err := c.Runner.LookPath("chsh"); err == nil {
		return
	}
	if c.ChshPackage == "" || c.InstallPackage == nil {
		logger.Debug("[DEBUG] chsh missing and no package known to provide it\n")
		return
	}
	logger.Info("[INFO] chsh not found, installing %s\n", c.ChshPackage)
	if err := c.InstallPackage(ctx, c.ChshPackage); err != nil {
		logger.Warn("[WARN] Failed to install %s: %v\n", c.ChshPackage, err)
	}
}

// ensureListed appends target to /etc/shells when absent; chsh refuses
// unlisted shells. Best-effort.
func (c *Changer) ensureListed(ctx context.Context, target string) {
	data, err := c.readFile(c.ShellsPath)
	if err != nil {
		return
	}
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) == target {
			return
		}
	}
	cmd := system.Sudo("tee", "-a", c.ShellsPath).WithStdin(strings.NewReader(target + "\n")).Silenced()
	if err := c.Runner.Run(ctx, cmd); err != nil {
		logger.Warn("[WARN] Could not add %s to %s: %v\n", target, c.ShellsPath, err)
	}
}

// editPasswd rewrites the user's shell field and writes the file back
// through sudo tee.
func (c *Changer) editPasswd(ctx context.Context, target string) error {
	data, err := c.readFile(c.PasswdPath)
	if err != nil {
		return err
	}
	updated, err := RewritePasswd(data, c.User, target)
	if err != nil {
		return err
	}
	cmd := system.Sudo("tee", c.PasswdPath).WithStdin(bytes.NewReader(updated)).Silenced()
	return c.Runner.Run(ctx, cmd)
}

func (c *Changer) editDirectoryService(ctx context.Context, target string) error {
	return c.Runner.Run(ctx, system.Sudo("dscl", ".", "-create", "/Users/"+c.User, "UserShell", target))
}

// confirm prints the shell now on record. Purely informational.
func (c *Changer) confirm(ctx context.Context) {
	query := system.Cmd("getent", "passwd", c.User)
	if c.Manager == platform.Brew {
		query = system.Cmd("dscl", ".", "-read", "/Users/"+c.User, "UserShell")
	}
	out, err := c.Runner.Output(ctx, query)
	if err != nil {
		logger.Warn("[WARN] Could not read back the login shell: %v\n", err)
		return
	}
	line := strings.TrimSpace(string(out))
	if i := strings.LastIndexAny(line, ": "); i >= 0 {
		line = line[i+1:]
	}
	logger.Info("[INFO] Account database now lists login shell %s\n", line)
}

// RewritePasswd replaces the login shell of user in passwd-format content.
// The entry must exist and carry exactly seven fields, otherwise nothing is
// rewritten.
func RewritePasswd(content []byte, user, shell string) ([]byte, error) {
	lines := strings.Split(string(content), "\n")
	found := false
	for i, line := range lines {
		if !strings.HasPrefix(line, user+":") {
			continue
		}
		fields := strings.Split(line, ":")
		if len(fields) != passwdFields {
			return nil, fmt.Errorf("malformed passwd entry for %s: %d fields", user, len(fields))
		}
		fields[passwdFields-1] = shell
		lines[i] = strings.Join(fields, ":")
		found = true
		break
	}
	if !found {
		return nil, fmt.Errorf("%w for %s", errNoEntry, user)
	}
	return []byte(strings.Join(lines, "\n")), nil
}
