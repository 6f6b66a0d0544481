package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"setup-devenv/internal/config"
	"setup-devenv/internal/logger"
	"setup-devenv/internal/system"
)

// ShellEnv installs oh-my-zsh and clones the plugin/theme repositories into
// its custom directory. Anything whose destination already exists is left
// alone, so reruns perform no network clones.
type ShellEnv struct {
	Runner       system.Runner
	Shell        config.Shell
	FrameworkDir string // absolute oh-my-zsh directory
	CustomDir    string // absolute $ZSH_CUSTOM

	statFn func(string) (os.FileInfo, error)
}

// ShellResult reports what the shell environment step did.
type ShellResult struct {
	FrameworkInstalled bool
	Cloned             []string
	Present            []string
	Failed             []string
}

// NewShellEnv resolves the framework and custom directories. zshDir and
// zshCustom are the $ZSH and $ZSH_CUSTOM overrides, empty when unset.
func NewShellEnv(r system.Runner, shell config.Shell, home, zshDir, zshCustom string) *ShellEnv {
	framework := zshDir
	if framework == "" {
		framework = filepath.Join(home, shell.FrameworkDir)
	}
	custom := zshCustom
	if custom == "" {
		custom = filepath.Join(framework, "custom")
	}
	return &ShellEnv{Runner: r, Shell: shell, FrameworkDir: framework, CustomDir: custom, statFn: os.Stat}
}

// RepoPath returns where a plugin or theme repository lives.
func (s *ShellEnv) RepoPath(r config.Repo) string {
	sub := "plugins"
	if r.Kind == config.KindTheme {
		sub = "themes"
	}
	return filepath.Join(s.CustomDir, sub, r.Name)
}

func (s *ShellEnv) exists(path string) bool {
	_, err := s.statFn(path)
	return err == nil
}

// Install runs the framework installer if needed, then clones every missing
// repository. A failing framework install is fatal, a failing clone only warns.
func (s *ShellEnv) Install(ctx context.Context) (ShellResult, error) {
	var res ShellResult

	if s.exists(s.FrameworkDir) {
		logger.Info("[INFO] oh-my-zsh already present at %s. Skipping.\n", s.FrameworkDir)
	} else {
		logger.Info("[INFO] Installing oh-my-zsh into %s\n", s.FrameworkDir)
		cmd := system.Cmd("sh", "-c", fmt.Sprintf("curl -fsSL %s | sh -s -- --unattended", s.Shell.InstallerURL)).
			WithEnv("RUNZSH=no", "CHSH=no", "KEEP_ZSHRC=yes", "ZSH="+s.FrameworkDir)
		if err := s.Runner.Run(ctx, cmd); err != nil {
			return res, fmt.Errorf("install oh-my-zsh: %w", err)
		}
		res.FrameworkInstalled = true
	}

	for _, repo := range s.Shell.Repos {
		dest := s.RepoPath(repo)
		if s.exists(dest) {
			logger.Debug("[DEBUG] %s %s already cloned at %s\n", repo.Kind, repo.Name, dest)
			res.Present = append(res.Present, repo.Name)
			continue
		}

		logger.Info("[INFO] Cloning %s %s\n", repo.Kind, repo.Name)
		if err := s.Runner.Run(ctx, system.Cmd("git", "clone", "--depth=1", repo.URL, dest)); err != nil {
			logger.Warn("[WARN] Failed to clone %s: %v\n", repo.Name, err)
			res.Failed = append(res.Failed, repo.Name)
			continue
		}
		res.Cloned = append(res.Cloned, repo.Name)
	}
	return res, nil
}
