package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"setup-devenv/internal/bootstrap"
	"setup-devenv/internal/config"
	"setup-devenv/internal/gitconfig"
	"setup-devenv/internal/logger"
	"setup-devenv/internal/platform"
	"setup-devenv/internal/state"
	"setup-devenv/internal/system"
)

// debug flag indicates whether debug logging should be enabled.
// It can be toggled via the `--debug` command-line flag.
var debug bool

// dryRun prints mutating commands instead of running them.
var dryRun bool

// closeLog flushes the file log opened by openFileLog.
var closeLog = func() {}

// rootCmd is the base command for the CLI tool `setup-devenv`.
// Run without a subcommand it provisions the current machine.
var rootCmd = &cobra.Command{
	Use:   "setup-devenv",
	Short: "Provision a developer workstation",
	Long: `setup-devenv detects the OS, installs the base toolset with the native
package manager, sets up zsh with oh-my-zsh and powerlevel10k, writes
~/.zshrc, ~/.zsh_aliases and ~/.vimrc, configures git and makes zsh the
login shell. It is safe to run again.`,
	SilenceUsage:  true,
	SilenceErrors: true,

	// PersistentPreRun is a hook that runs before any subcommand.
	// Here, we initialize the logger based on the debug flag.
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(debug)
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := bootstrap.EnvironmentFromProcess()
		if err != nil {
			return err
		}
		// Root must not leave a log or state directory behind in $HOME.
		if env.EUID == 0 {
			return bootstrap.ErrRunningAsRoot
		}
		openFileLog()

		catalog, err := config.LoadCatalog()
		if err != nil {
			return err
		}

		opts := bootstrap.Options{DryRun: dryRun, StatePath: state.DefaultPath()}
		if dryRun {
			opts.StatePath = ""
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		prompt, release := gitconfig.TerminalPrompter()
		defer release()

		b := bootstrap.New(env, system.NewExecRunner(), catalog, platform.DefaultProbe(), prompt, opts)
		_, err = b.Run(ctx)
		return err
	},
}

// openFileLog mirrors console output into the XDG state log file.
func openFileLog() {
	closeFn, err := logger.InitFile(state.LogPath())
	if err != nil {
		logger.Warn("[WARN] File logging disabled: %v\n", err)
		return
	}
	closeLog = closeFn
}

// Execute initializes flags, registers subcommands, and starts the command execution.
// Any error is printed in red and the process exits with status 1.
func Execute() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&dryRun, "dry-run", false, "Print mutating commands instead of running them")

	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(statusCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("[ERROR] %v\n", err)
		closeLog()
		os.Exit(1)
	}
	closeLog()
}
