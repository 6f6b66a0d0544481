package installer

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setup-devenv/internal/system/systemtest"
)

func countClones(rec *systemtest.Recorder) int {
	n := 0
	for _, line := range rec.Lines() {
		if strings.HasPrefix(line, "git clone") {
			n++
		}
	}
	return n
}

func TestShellEnvFreshInstall(t *testing.T) {
	home := t.TempDir()
	rec := systemtest.NewRecorder()
	env := NewShellEnv(rec, loadCatalog(t).Shell, home, "", "")

	res, err := env.Install(context.Background())
	require.NoError(t, err)

	assert.True(t, res.FrameworkInstalled)
	assert.Equal(t, []string{"zsh-autosuggestions", "zsh-syntax-highlighting", "zsh-completions", "powerlevel10k"}, res.Cloned)
	assert.Equal(t, 4, countClones(rec))

	installer := rec.Calls[0]
	assert.Equal(t, "sh", installer.Name)
	assert.Contains(t, installer.Env, "CHSH=no")
	assert.Contains(t, installer.Env, "ZSH="+filepath.Join(home, ".oh-my-zsh"))

	assert.Contains(t, rec.Lines(), "git clone --depth=1 https://github.com/romkatv/powerlevel10k.git "+
		filepath.Join(home, ".oh-my-zsh", "custom", "themes", "powerlevel10k"))
}

func TestShellEnvRerunPerformsNoClones(t *testing.T) {
	home := t.TempDir()
	shell := loadCatalog(t).Shell
	env := NewShellEnv(systemtest.NewRecorder(), shell, home, "", "")

	require.NoError(t, os.MkdirAll(env.FrameworkDir, 0755))
	for _, r := range shell.Repos {
		require.NoError(t, os.MkdirAll(env.RepoPath(r), 0755))
	}

	rec := systemtest.NewRecorder()
	env.Runner = rec
	res, err := env.Install(context.Background())
	require.NoError(t, err)

	assert.Empty(t, rec.Calls)
	assert.False(t, res.FrameworkInstalled)
	assert.Len(t, res.Present, len(shell.Repos))
}

func TestShellEnvRespectsOverrides(t *testing.T) {
	home := t.TempDir()
	custom := filepath.Join(t.TempDir(), "zsh-custom")
	env := NewShellEnv(systemtest.NewRecorder(), loadCatalog(t).Shell, home, "/opt/omz", custom)

	assert.Equal(t, "/opt/omz", env.FrameworkDir)
	assert.Equal(t, custom, env.CustomDir)
}

func TestShellEnvCloneFailureOnlyWarns(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".oh-my-zsh"), 0755))
	rec := systemtest.NewRecorder().Fail("git clone --depth=1 https://github.com/romkatv")
	env := NewShellEnv(rec, loadCatalog(t).Shell, home, "", "")

	res, err := env.Install(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"powerlevel10k"}, res.Failed)
	assert.Len(t, res.Cloned, 3)
}

func TestShellEnvFrameworkFailureIsFatal(t *testing.T) {
	rec := systemtest.NewRecorder().Fail("RUNZSH=no")
	env := NewShellEnv(rec, loadCatalog(t).Shell, t.TempDir(), "", "")

	_, err := env.Install(context.Background())
	assert.ErrorContains(t, err, "install oh-my-zsh")
	assert.Equal(t, 0, countClones(rec))
}

func TestCreateDirectories(t *testing.T) {
	home := t.TempDir()
	dirs := []string{"code", ".local/bin", ".vim/undodir"}

	created, err := CreateDirectories(home, dirs, true)
	require.NoError(t, err)
	assert.Len(t, created, 3)
	_, err = os.Stat(filepath.Join(home, "code"))
	assert.True(t, os.IsNotExist(err), "dry run must not create anything")

	created, err = CreateDirectories(home, dirs, false)
	require.NoError(t, err)
	assert.Len(t, created, 3)
	assert.DirExists(t, filepath.Join(home, ".vim", "undodir"))

	created, err = CreateDirectories(home, dirs, false)
	require.NoError(t, err)
	assert.Empty(t, created)
}
