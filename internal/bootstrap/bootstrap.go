// Package bootstrap runs the provisioning pipeline: detect, guard, create
// directories, install packages, set up zsh, write dotfiles, configure git,
// change the login shell, summarize. The first fatal step error stops the
// run; best-effort steps downgrade to warnings.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"setup-devenv/internal/config"
	"setup-devenv/internal/dotfiles"
	"setup-devenv/internal/gitconfig"
	"setup-devenv/internal/installer"
	"setup-devenv/internal/logger"
	"setup-devenv/internal/loginshell"
	"setup-devenv/internal/platform"
	"setup-devenv/internal/state"
	"setup-devenv/internal/system"
)

// ErrRunningAsRoot is returned before any change when euid is 0.
var ErrRunningAsRoot = errors.New("refusing to run as root, run as your regular user (sudo is used where needed)")

// Step names, in run order.
const (
	StepDetect     = "detect"
	StepGuard      = "privilege-check"
	StepDirs       = "directories"
	StepPackages   = "packages"
	StepShellEnv   = "oh-my-zsh"
	StepDotfiles   = "dotfiles"
	StepGit        = "git"
	StepLoginShell = "login-shell"
)

// Options tune a run.
type Options struct {
	DryRun    bool
	StatePath string // empty disables the run record
}

// Bootstrapper holds the immutable inputs of one run.
type Bootstrapper struct {
	Env     Environment
	Runner  system.Runner
	Catalog config.Catalog
	Probe   platform.Probe
	Prompt  gitconfig.Prompter
	Options Options

	now func() time.Time
}

// New wires a Bootstrapper. The probe's GOOS is taken from env.
func New(env Environment, r system.Runner, c config.Catalog, probe platform.Probe, prompt gitconfig.Prompter, opts Options) *Bootstrapper {
	probe.GOOS = env.GOOS
	if opts.DryRun {
		r = &system.DryRunner{Next: r}
		prompt = nil
	}
	return &Bootstrapper{Env: env, Runner: r, Catalog: c, Probe: probe, Prompt: prompt, Options: opts, now: time.Now}
}

// run carries values produced by earlier steps to later ones.
type run struct {
	host    platform.Host
	profile config.Profile
	pkgs    *installer.PackageInstaller
	shell   *installer.ShellEnv

	notes []string // next steps for the summary
}

type step struct {
	name string
	fn   func(ctx context.Context, r *run) (state.Outcome, string, error)
}

func (b *Bootstrapper) steps() []step {
	return []step{
		{StepDetect, b.detect},
		{StepGuard, b.guard},
		{StepDirs, b.directories},
		{StepPackages, b.packages},
		{StepShellEnv, b.shellEnv},
		{StepDotfiles, b.dotfiles},
		{StepGit, b.git},
		{StepLoginShell, b.loginShell},
	}
}

// Run executes every step in order and returns the run record. The record
// is saved to Options.StatePath whether or not the run succeeded, unless
// the run was refused for running as root.
func (b *Bootstrapper) Run(ctx context.Context) (*state.State, error) {
	st := &state.State{StartedAt: b.now(), DryRun: b.Options.DryRun}
	r := &run{}

	PrintBanner(logger.Output())

	var runErr error
	for _, s := range b.steps() {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		logger.Debug("[DEBUG] Step %s\n", s.name)
		outcome, detail, err := s.fn(ctx, r)
		if err != nil {
			st.Record(s.name, state.Failed, err.Error())
			runErr = fmt.Errorf("%s: %w", s.name, err)
			break
		}
		st.Record(s.name, outcome, detail)
		if s.name == StepDetect {
			st.Profile, st.Host = string(r.host.Tag), r.host.Hostname
		}
	}

	st.FinishedAt = b.now()
	if runErr != nil {
		st.Error = runErr.Error()
	}
	if b.Options.StatePath != "" && !errors.Is(runErr, ErrRunningAsRoot) {
		if err := state.SaveState(b.Options.StatePath, st); err != nil {
			logger.Warn("[WARN] %v\n", err)
		}
	}

	PrintSummary(logger.Output(), st, r.notes)
	return st, runErr
}

func (b *Bootstrapper) detect(_ context.Context, r *run) (state.Outcome, string, error) {
	h, err := platform.Detect(b.Probe)
	if err != nil {
		return state.Failed, "", err
	}
	p, err := b.Catalog.ProfileFor(h)
	if err != nil {
		return state.Failed, "", err
	}
	r.host, r.profile = h, p
	r.pkgs = installer.NewPackageInstaller(b.Runner, h, p, b.Env.User, b.Catalog.HomebrewInstallerURL)
	r.shell = installer.NewShellEnv(b.Runner, b.Catalog.Shell, b.Env.Home, b.Env.ZshDir, b.Env.ZshCustom)

	name := h.PrettyName
	if name == "" {
		name = h.ID
	}
	logger.Info("[INFO] Detected %s (profile %s, package manager %s)\n", name, h.Tag, h.Manager)
	return state.Done, fmt.Sprintf("%s via %s", h.Tag, h.Manager), nil
}

func (b *Bootstrapper) guard(context.Context, *run) (state.Outcome, string, error) {
	if b.Env.EUID == 0 {
		return state.Failed, "", ErrRunningAsRoot
	}
	return state.Done, "running as " + b.Env.User, nil
}

func (b *Bootstrapper) directories(context.Context, *run) (state.Outcome, string, error) {
	created, err := installer.CreateDirectories(b.Env.Home, b.Catalog.Directories, b.Options.DryRun)
	if err != nil {
		return state.Failed, "", err
	}
	if len(created) == 0 {
		return state.Skipped, "all present", nil
	}
	return state.Done, fmt.Sprintf("created %d", len(created)), nil
}

func (b *Bootstrapper) packages(ctx context.Context, r *run) (state.Outcome, string, error) {
	res, err := r.pkgs.Install(ctx)
	if err != nil {
		return state.Failed, "", err
	}
	if res.Container && r.profile.Container != nil && r.profile.Container.Group != "" {
		r.notes = append(r.notes, fmt.Sprintf("Log out and back in so the %s group applies", r.profile.Container.Group))
	}
	if len(res.Missing) > 0 {
		return state.Warning, "unavailable: " + strings.Join(res.Missing, ", "), nil
	}
	return state.Done, fmt.Sprintf("%d packages", len(res.Installed)), nil
}

func (b *Bootstrapper) shellEnv(ctx context.Context, r *run) (state.Outcome, string, error) {
	res, err := r.shell.Install(ctx)
	if err != nil {
		return state.Failed, "", err
	}
	switch {
	case len(res.Failed) > 0:
		return state.Warning, "clone failed: " + strings.Join(res.Failed, ", "), nil
	case !res.FrameworkInstalled && len(res.Cloned) == 0:
		return state.Skipped, "already installed", nil
	}
	r.notes = append(r.notes, "Run `p10k configure` to set up the prompt")
	return state.Done, fmt.Sprintf("cloned %d", len(res.Cloned)), nil
}

func (b *Bootstrapper) dotfiles(context.Context, *run) (state.Outcome, string, error) {
	files, err := dotfiles.Render(b.Catalog.Shell)
	if err != nil {
		return state.Failed, "", err
	}
	if _, err := dotfiles.Write(b.Env.Home, files, b.Options.DryRun); err != nil {
		return state.Failed, "", err
	}
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	return state.Done, strings.Join(names, " "), nil
}

func (b *Bootstrapper) git(ctx context.Context, _ *run) (state.Outcome, string, error) {
	c := &gitconfig.Configurator{Runner: b.Runner, Git: b.Catalog.Git, Prompt: b.Prompt}
	res, err := c.Apply(ctx)
	if err != nil {
		return state.Failed, "", err
	}
	if len(res.Missing) > 0 {
		return state.Warning, "unset: " + strings.Join(res.Missing, ", "), nil
	}
	return state.Done, res.Identity[gitconfig.KeyName] + " <" + res.Identity[gitconfig.KeyEmail] + ">", nil
}

func (b *Bootstrapper) loginShell(ctx context.Context, r *run) (state.Outcome, string, error) {
	c := loginshell.New(b.Runner, b.Env.User, b.Env.Shell, r.host.Manager, r.profile.ChshPackage, r.pkgs.InstallOne)
	res := c.Change(ctx)
	switch {
	case res.Skipped:
		return state.Skipped, "already zsh", nil
	case res.Changed:
		r.notes = append(r.notes, "Restart your terminal to start using zsh")
		return state.Done, res.Target + " via " + res.Strategy, nil
	}
	r.notes = append(r.notes, "Change your shell manually: "+res.Remediation)
	return state.Warning, "run manually: " + res.Remediation, nil
}
