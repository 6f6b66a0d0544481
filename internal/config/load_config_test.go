package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"setup-devenv/internal/platform"
)

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	assert.Contains(t, c.Directories, "code")
	assert.NotEmpty(t, c.HomebrewInstallerURL)
	assert.Len(t, c.Shell.Repos, 4)
	assert.Equal(t, "powerlevel10k/powerlevel10k", c.Shell.Theme)
	assert.NotEmpty(t, c.Git.Settings)
	assert.NotEmpty(t, c.Git.Aliases)
}

func TestProfileFor(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	tests := []struct {
		host      platform.Host
		wantSwap  bool
		wantChsh  string
		container bool
	}{
		{platform.Host{Tag: platform.AL2023, Manager: platform.Dnf}, true, "util-linux-user", true},
		{platform.Host{Tag: platform.Ubuntu, Manager: platform.Apt}, false, "passwd", true},
		{platform.Host{Tag: platform.MacOS, Manager: platform.Brew}, false, "", true},
		{platform.Host{Tag: platform.Arch, Manager: platform.Pacman}, false, "", true},
		{platform.Host{Tag: platform.GenericLinux, Manager: platform.Pacman}, false, "", false},
		{platform.Host{Tag: platform.GenericLinux, Manager: platform.Yum}, false, "util-linux-user", false},
	}
	for _, tt := range tests {
		t.Run(string(tt.host.Tag)+"/"+string(tt.host.Manager), func(t *testing.T) {
			p, err := c.ProfileFor(tt.host)
			require.NoError(t, err)
			assert.NotEmpty(t, p.Base)
			assert.Equal(t, tt.wantSwap, len(p.Swaps) > 0)
			assert.Equal(t, tt.wantChsh, p.ChshPackage)
			assert.Equal(t, tt.container, p.Container != nil)
		})
	}
}

func TestProfileForUnknown(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)

	_, err = c.ProfileFor(platform.Host{Tag: platform.GenericLinux, Manager: platform.Brew})
	assert.ErrorIs(t, err, platform.ErrUnsupportedPlatform)

	_, err = c.ProfileFor(platform.Host{Tag: "solaris"})
	assert.ErrorIs(t, err, platform.ErrUnsupportedPlatform)
}

func TestParseCatalogValidation(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{"bad yaml", "profiles: [", "failed to unmarshal"},
		{"missing profile", "profiles: {}\n", "missing profile for ubuntu"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseCatalogRejectsUnknownRepoKind(t *testing.T) {
	c, err := LoadCatalog()
	require.NoError(t, err)
	c.Shell.Repos = append(c.Shell.Repos, Repo{Name: "x", Kind: "widget", URL: "https://example.com/x"})

	assert.ErrorContains(t, c.validate(), `unknown kind "widget"`)
}
