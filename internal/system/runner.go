// Package system wraps external command execution so every step of the
// bootstrap can be replayed against a recording runner in tests.
package system

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"setup-devenv/internal/logger"
)

// Command is a single external program invocation.
type Command struct {
	Name  string
	Args  []string
	Env   []string  // extra KEY=value pairs appended to the parent environment
	Stdin io.Reader // optional
	Quiet bool      // discard stdout (e.g. tee echoing a whole file back)
}

// Cmd builds a Command from a program name and its arguments.
func Cmd(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// Sudo builds a Command that runs name through sudo.
func Sudo(name string, args ...string) Command {
	return Command{Name: "sudo", Args: append([]string{name}, args...)}
}

// WithEnv returns a copy of c with extra environment entries.
func (c Command) WithEnv(env ...string) Command {
	c.Env = append(append([]string{}, c.Env...), env...)
	return c
}

// WithStdin returns a copy of c reading its standard input from r.
func (c Command) WithStdin(r io.Reader) Command {
	c.Stdin = r
	return c
}

// Silenced returns a copy of c whose stdout is discarded.
func (c Command) Silenced() Command {
	c.Quiet = true
	return c
}

// String renders the command line the way it would be typed.
func (c Command) String() string {
	parts := make([]string, 0, len(c.Args)+len(c.Env)+1)
	parts = append(parts, c.Env...)
	parts = append(parts, c.Name)
	for _, a := range c.Args {
		if a == "" || strings.ContainsAny(a, " \t\"'$") {
			a = fmt.Sprintf("%q", a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}

// Runner executes external commands.
//
// Run streams the child's output to the console and is used for mutating
// steps. Output captures stdout and is used for read-only queries. LookPath
// reports whether a program is installed.
type Runner interface {
	Run(ctx context.Context, c Command) error
	Output(ctx context.Context, c Command) ([]byte, error)
	LookPath(name string) (string, error)
}

// CommandError records a failed command together with whatever it printed.
type CommandError struct {
	Command string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return fmt.Sprintf("command %q failed: %v\nOutput: %s", e.Command, e.Err, e.Output)
	}
	return fmt.Sprintf("command %q failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

// ExecRunner runs commands on the local machine via os/exec.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewExecRunner returns a runner wired to the process stdout/stderr.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Stdout: os.Stdout, Stderr: os.Stderr}
}

func (r *ExecRunner) build(ctx context.Context, c Command) *exec.Cmd {
	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	if c.Stdin != nil {
		cmd.Stdin = c.Stdin
	} else {
		cmd.Stdin = os.Stdin
	}
	return cmd
}

// Run executes c, streaming output, and keeps the tail of stderr for error reports.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	cmd := r.build(ctx, c)
	logger.Debug("[DEBUG] Running command: %s\n", c.String())

	var tail bytes.Buffer
	cmd.Stdout = r.Stdout
	if c.Quiet {
		cmd.Stdout = io.Discard
	}
	cmd.Stderr = io.MultiWriter(r.Stderr, &tail)
	if err := cmd.Run(); err != nil {
		return &CommandError{Command: c.String(), Output: lastLines(tail.String(), 10), Err: err}
	}
	return nil
}

// Output executes c and returns its stdout.
func (r *ExecRunner) Output(ctx context.Context, c Command) ([]byte, error) {
	cmd := r.build(ctx, c)
	logger.Debug("[DEBUG] Running query: %s\n", c.String())

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	output, err := cmd.Output()
	if err != nil {
		return output, &CommandError{Command: c.String(), Output: strings.TrimSpace(stderr.String()), Err: err}
	}
	return output, nil
}

// LookPath resolves name on PATH.
func (r *ExecRunner) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// DryRunner prints mutating commands instead of running them. Queries and
// PATH lookups still go to the wrapped runner so decisions match a real run.
type DryRunner struct {
	Next Runner
}

func (d *DryRunner) Run(_ context.Context, c Command) error {
	logger.Info("[DRY-RUN] %s\n", c.String())
	return nil
}

func (d *DryRunner) Output(ctx context.Context, c Command) ([]byte, error) {
	return d.Next.Output(ctx, c)
}

func (d *DryRunner) LookPath(name string) (string, error) {
	return d.Next.LookPath(name)
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
