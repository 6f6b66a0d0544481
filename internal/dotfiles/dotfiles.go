// Package dotfiles renders and writes the shell and editor configuration.
//
// Every file is rendered from an embedded template whose only inputs are
// the fixed catalog values, so two renders are always byte-identical. Files
// are written with a truncating overwrite; prior contents are not kept.
package dotfiles

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"setup-devenv/internal/config"
	"setup-devenv/internal/logger"
)

//go:embed templates/*.tmpl
var templates embed.FS

// File names written under $HOME.
const (
	ZshrcFile   = ".zshrc"
	AliasesFile = ".zsh_aliases"
	VimrcFile   = ".vimrc"
)

// File is one rendered configuration file.
type File struct {
	Name    string // path relative to $HOME
	Content []byte
}

type zshrcData struct {
	FrameworkDir string
	Theme        string
	Plugins      []string
	AliasesFile  string
}

type aliasesData struct {
	Aliases []config.Alias
}

type vimrcData struct {
	UndoDir string
}

// Render produces the three configuration files in write order.
func Render(shell config.Shell) ([]File, error) {
	specs := []struct {
		name string
		tmpl string
		data any
	}{
		{ZshrcFile, "zshrc.tmpl", zshrcData{
			FrameworkDir: shell.FrameworkDir,
			Theme:        shell.Theme,
			Plugins:      shell.Plugins,
			AliasesFile:  AliasesFile,
		}},
		{AliasesFile, "zsh_aliases.tmpl", aliasesData{Aliases: shell.Aliases}},
		{VimrcFile, "vimrc.tmpl", vimrcData{UndoDir: "~/.vim/undodir"}},
	}

	files := make([]File, 0, len(specs))
	for _, s := range specs {
		content, err := renderTemplate(s.tmpl, s.data)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", s.name, err)
		}
		files = append(files, File{Name: s.name, Content: content})
	}
	return files, nil
}

func renderTemplate(name string, data any) ([]byte, error) {
	raw, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return nil, err
	}
	tmpl, err := template.New(name).
		Funcs(sprig.TxtFuncMap()).
		Option("missingkey=error").
		Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.Bytes(), nil
}

// Write replaces each file under home and returns the absolute paths written.
func Write(home string, files []File, dryRun bool) ([]string, error) {
	var written []string
	for _, f := range files {
		path := filepath.Join(home, f.Name)
		if dryRun {
			logger.Info("[DRY-RUN] write %s (%d bytes)\n", path, len(f.Content))
			written = append(written, path)
			continue
		}
		if err := os.WriteFile(path, f.Content, 0644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		logger.Info("[INFO] Wrote %s\n", path)
		written = append(written, path)
	}
	return written, nil
}
