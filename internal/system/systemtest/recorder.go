// Package systemtest provides an in-memory system.Runner for tests.
package systemtest

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strings"

	"setup-devenv/internal/system"
)

// ErrFakeFailure is returned by Recorder for commands configured to fail.
var ErrFakeFailure = errors.New("exit status 1")

// Recorder is an in-memory Runner that records every command instead of
// executing it. Failures, Outputs and Paths are keyed by command-line
// prefix (Failures, Outputs) or program name (Paths); the longest matching
// prefix wins.
type Recorder struct {
	Calls   []system.Command  // commands passed to Run
	Queries []system.Command  // commands passed to Output
	Inputs  map[string]string // stdin consumed per command line

	Failures map[string]error
	Outputs  map[string]string
	Paths    map[string]string

	// Hook, when set, runs for every Run call before failure matching.
	Hook func(c system.Command) error
}

var _ system.Runner = (*Recorder)(nil)

// NewRecorder returns an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Inputs:   map[string]string{},
		Failures: map[string]error{},
		Outputs:  map[string]string{},
		Paths:    map[string]string{},
	}
}

// Fail makes every command starting with prefix fail.
func (r *Recorder) Fail(prefix string) *Recorder {
	r.Failures[prefix] = ErrFakeFailure
	return r
}

// Has makes LookPath find name at path.
func (r *Recorder) Has(name, path string) *Recorder {
	r.Paths[name] = path
	return r
}

func (r *Recorder) Run(_ context.Context, c system.Command) error {
	r.Calls = append(r.Calls, c)
	if c.Stdin != nil {
		data, _ := io.ReadAll(c.Stdin)
		r.Inputs[c.String()] = string(data)
	}
	if r.Hook != nil {
		if err := r.Hook(c); err != nil {
			return &system.CommandError{Command: c.String(), Err: err}
		}
	}
	if err, ok := longestPrefix(r.Failures, c.String()); ok {
		return &system.CommandError{Command: c.String(), Err: err}
	}
	return nil
}

func (r *Recorder) Output(_ context.Context, c system.Command) ([]byte, error) {
	r.Queries = append(r.Queries, c)
	if err, ok := longestPrefix(r.Failures, c.String()); ok {
		return nil, &system.CommandError{Command: c.String(), Err: err}
	}
	if out, ok := longestPrefix(r.Outputs, c.String()); ok {
		return []byte(out), nil
	}
	return nil, nil
}

func (r *Recorder) LookPath(name string) (string, error) {
	if p, ok := r.Paths[name]; ok {
		return p, nil
	}
	return "", &exec.Error{Name: name, Err: exec.ErrNotFound}
}

// Lines returns the recorded Run calls as command-line strings.
func (r *Recorder) Lines() []string {
	lines := make([]string, len(r.Calls))
	for i, c := range r.Calls {
		lines[i] = c.String()
	}
	return lines
}

// Programs returns the distinct program names the recorded Run calls
// actually execute, looking through a leading sudo.
func (r *Recorder) Programs() []string {
	seen := map[string]bool{}
	var out []string
	for _, c := range r.Calls {
		name := c.Name
		if name == "sudo" && len(c.Args) > 0 {
			name = c.Args[0]
		}
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	return out
}

func longestPrefix[V any](m map[string]V, s string) (V, bool) {
	var (
		best  V
		found bool
		size  = -1
	)
	for k, v := range m {
		if strings.HasPrefix(s, k) && len(k) > size {
			best, found, size = v, true, len(k)
		}
	}
	return best, found
}
