// Package gitconfig sets the global git identity and re-applies the fixed
// preferences and aliases on every run.
package gitconfig

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"setup-devenv/internal/config"
	"setup-devenv/internal/logger"
	"setup-devenv/internal/system"
)

// Identity keys asked for when missing.
const (
	KeyName  = "user.name"
	KeyEmail = "user.email"
)

var identityQuestions = []struct {
	key      string
	question string
}{
	{KeyName, "Enter your git user name"},
	{KeyEmail, "Enter your git email"},
}

// Prompter asks the user a single question.
type Prompter interface {
	Ask(question string) (string, error)
}

// LinePrompter reads one line per question.
type LinePrompter struct {
	In  *bufio.Reader
	Out io.Writer
}

// NewLinePrompter wraps a reader/writer pair.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{In: bufio.NewReader(in), Out: out}
}

func (p *LinePrompter) Ask(question string) (string, error) {
	fmt.Fprintf(p.Out, "%s: ", question)
	line, err := p.In.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// TerminalPrompter returns a prompter bound to the controlling terminal, or
// nil when there is none. When stdin is a pipe (the binary was fed through
// curl | sh) /dev/tty is tried instead. The returned func releases the
// terminal and is always safe to call.
func TerminalPrompter() (Prompter, func()) {
	return terminalPrompter(os.Stdin, func() (*os.File, error) { return os.Open("/dev/tty") })
}

func terminalPrompter(stdin *os.File, openTTY func() (*os.File, error)) (Prompter, func()) {
	if isatty.IsTerminal(stdin.Fd()) {
		return NewLinePrompter(stdin, os.Stdout), func() {}
	}
	tty, err := openTTY()
	if err != nil {
		return nil, func() {}
	}
	if !isatty.IsTerminal(tty.Fd()) {
		_ = tty.Close()
		return nil, func() {}
	}
	return NewLinePrompter(tty, os.Stdout), func() { _ = tty.Close() }
}

// Configurator applies the git configuration.
type Configurator struct {
	Runner system.Runner
	Git    config.Git
	Prompt Prompter // nil means non-interactive
}

// Result describes what Apply changed.
type Result struct {
	Identity map[string]string // final user.name / user.email, empty when unset
	Prompted []string          // keys set from a prompt answer
	Missing  []string          // keys still unset after the run
}

// Apply fills in a missing identity, then asserts every preference and alias.
func (c *Configurator) Apply(ctx context.Context) (Result, error) {
	res := Result{Identity: map[string]string{}}

	for _, q := range identityQuestions {
		current := c.get(ctx, q.key)
		if current != "" {
			logger.Info("[INFO] git %s is %s\n", q.key, current)
			res.Identity[q.key] = current
			continue
		}

		answer := ""
		if c.Prompt == nil {
			logger.Warn("[WARN] git %s is not set and no terminal is available to ask. Set it with: git config --global %s <value>\n", q.key, q.key)
		} else {
			a, err := c.Prompt.Ask(q.question)
			if err != nil {
				return res, fmt.Errorf("read %s: %w", q.key, err)
			}
			answer = a
			if answer == "" {
				logger.Warn("[WARN] Empty answer, leaving git %s unset\n", q.key)
			}
		}
		if answer == "" {
			res.Missing = append(res.Missing, q.key)
			continue
		}

		if err := c.set(ctx, q.key, answer); err != nil {
			return res, err
		}
		res.Identity[q.key] = answer
		res.Prompted = append(res.Prompted, q.key)
	}

	for _, s := range c.Git.Settings {
		if err := c.set(ctx, s.Key, s.Value); err != nil {
			return res, err
		}
	}
	for _, a := range c.Git.Aliases {
		if err := c.set(ctx, "alias."+a.Name, a.Value); err != nil {
			return res, err
		}
	}
	logger.Info("[INFO] Applied %d git settings and %d aliases\n", len(c.Git.Settings), len(c.Git.Aliases))
	return res, nil
}

// get treats any failure (git exits 1 for an unset key) as unset.
func (c *Configurator) get(ctx context.Context, key string) string {
	out, err := c.Runner.Output(ctx, system.Cmd("git", "config", "--global", "--get", key))
	if err != nil {
		logger.Debug("[DEBUG] git config %s: %v\n", key, err)
		return ""
	}
	return strings.TrimSpace(string(out))
}

func (c *Configurator) set(ctx context.Context, key, value string) error {
	if err := c.Runner.Run(ctx, system.Cmd("git", "config", "--global", key, value)); err != nil {
		return fmt.Errorf("set git %s: %w", key, err)
	}
	return nil
}
