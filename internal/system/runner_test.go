package system

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommandString(t *testing.T) {
	tests := []struct {
		name string
		cmd  Command
		want string
	}{
		{"plain", Cmd("git", "status"), "git status"},
		{"sudo", Sudo("apt-get", "install", "-y", "zsh"), "sudo apt-get install -y zsh"},
		{"quoted", Cmd("git", "config", "--global", "alias.lg", "log --oneline"), `git config --global alias.lg "log --oneline"`},
		{"empty arg", Cmd("sh", "-c", "true", ""), `sh -c true ""`},
		{"env", Cmd("sh", "-c", "true").WithEnv("RUNZSH=no"), "RUNZSH=no sh -c true"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cmd.String())
		})
	}
}

func TestWithEnvDoesNotAlias(t *testing.T) {
	base := Cmd("sh").WithEnv("A=1")
	a := base.WithEnv("B=2")
	b := base.WithEnv("C=3")
	assert.Equal(t, []string{"A=1", "B=2"}, a.Env)
	assert.Equal(t, []string{"A=1", "C=3"}, b.Env)
}

// countingRunner fails every Run and answers every query with out.
type countingRunner struct {
	runs, queries int
	out           string
}

func (c *countingRunner) Run(context.Context, Command) error {
	c.runs++
	return errors.New("must not run")
}

func (c *countingRunner) Output(context.Context, Command) ([]byte, error) {
	c.queries++
	return []byte(c.out), nil
}

func (c *countingRunner) LookPath(name string) (string, error) { return "/usr/bin/" + name, nil }

func TestDryRunnerOnlyRunsQueries(t *testing.T) {
	next := &countingRunner{out: "Jane\n"}
	dry := &DryRunner{Next: next}

	require.NoError(t, dry.Run(context.Background(), Sudo("apt-get", "update")))
	out, err := dry.Output(context.Background(), Cmd("git", "config", "--get", "user.name"))
	require.NoError(t, err)
	path, err := dry.LookPath("zsh")
	require.NoError(t, err)

	assert.Zero(t, next.runs)
	assert.Equal(t, 1, next.queries)
	assert.Equal(t, "Jane\n", string(out))
	assert.Equal(t, "/usr/bin/zsh", path)
}

func TestCommandErrorMessage(t *testing.T) {
	err := &CommandError{Command: "brew install fd", Output: "No formula", Err: errors.New("exit status 1")}
	assert.Contains(t, err.Error(), `"brew install fd"`)
	assert.Contains(t, err.Error(), "No formula")
	assert.Equal(t, "line3\nline4", lastLines("line1\nline2\nline3\nline4\n", 2))
}
