package bootstrap

import (
	"fmt"
	"os"
	"os/user"
	"runtime"
)

// Environment is everything the run reads from the process environment,
// captured once up front and never mutated.
type Environment struct {
	GOOS      string
	Home      string
	User      string
	EUID      int
	Shell     string // $SHELL, the current login shell
	ZshDir    string // $ZSH override
	ZshCustom string // $ZSH_CUSTOM override
}

// EnvironmentFromProcess reads the live environment.
func EnvironmentFromProcess() (Environment, error) {
	env := Environment{
		GOOS:      runtime.GOOS,
		Home:      os.Getenv("HOME"),
		User:      os.Getenv("USER"),
		EUID:      os.Geteuid(),
		Shell:     os.Getenv("SHELL"),
		ZshDir:    os.Getenv("ZSH"),
		ZshCustom: os.Getenv("ZSH_CUSTOM"),
	}
	if env.Home == "" || env.User == "" {
		u, err := user.Current()
		if err != nil {
			return env, fmt.Errorf("determine current user: %w", err)
		}
		if env.Home == "" {
			env.Home = u.HomeDir
		}
		if env.User == "" {
			env.User = u.Username
		}
	}
	return env, nil
}
