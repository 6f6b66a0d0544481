package main

import (
	"setup-devenv/cmd" // Import the cmd package which contains the CLI commands and execution logic
)

// main is the program entry point.
// It delegates to cmd.Execute() which handles command line argument parsing and execution.
//
// setup-devenv provisions a fresh developer workstation in one run:
//   - Detects the OS (macOS, Ubuntu, Amazon Linux 2 / 2023, RHEL, Fedora, CentOS, Arch,
//     or any Linux with a known package manager) and picks a package profile
//   - Refuses to run as root, then creates the standard home directories
//   - Installs the base toolset with the native package manager, plus optional modern CLI tools
//     and a container runtime
//   - Installs oh-my-zsh with powerlevel10k and three plugins, and writes ~/.zshrc,
//     ~/.zsh_aliases and ~/.vimrc
//   - Fills in the git identity and applies a fixed set of git preferences and aliases
//   - Makes zsh the login shell, falling back through several strategies
//
// Error handling strategy:
//   - Steps either succeed, warn and continue (optional packages, plugin clones, the login shell),
//     or fail the run; the first fatal failure stops it and the process exits with status 1
//   - Every run is recorded under the XDG state directory and can be shown with `setup-devenv status`
func main() {
	cmd.Execute()
}
