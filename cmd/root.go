package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/PolarWolf314/dotenvpull/internal/client"
	"github.com/PolarWolf314/dotenvpull/internal/configs"
	logger "github.com/PolarWolf314/dotenvpull/internal/logging"
	"github.com/PolarWolf314/dotenvpull/internal/ui"
	"github.com/PolarWolf314/dotenvpull/internal/workflows"
	"github.com/spf13/cobra"
)

var (
	verbose    bool
	debug      bool
	configPath string
	timeout    time.Duration
	Logger     logger.Logger

	RootCmd = &cobra.Command{
		Use:   "dotenvpull",
		Short: "dotenvpull - store .env files encrypted on a server and share them once",
		Long: `dotenvpull keeps environment files on a remote server without the server
ever seeing their contents. Files are encrypted on your machine with a key
that only lives in your local config; the server hands out an access key
that is needed to read the ciphertext back.

Projects can be handed to a teammate through a one-time share that is
destroyed on first use.

Run 'dotenvpull serve' to start a server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t, config=%q, timeout=%s", cmd.Name(), verbose, debug, configPath, timeout)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug output")
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "local config file (default $"+configs.LocalConfigEnv+" or "+configs.DefaultLocalConfigPath+")")
	RootCmd.PersistentFlags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "give up on a server request after this long")

	RootCmd.AddCommand(pushCmd)
	RootCmd.AddCommand(pullCmd)
	RootCmd.AddCommand(updateCmd)
	RootCmd.AddCommand(deleteCmd)
	RootCmd.AddCommand(shareCmd)
	RootCmd.AddCommand(getSharedCmd)
	RootCmd.AddCommand(listCmd)
	RootCmd.AddCommand(logCmd)
	RootCmd.AddCommand(pingCmd)
	RootCmd.AddCommand(ConfigCmd)
	RootCmd.AddCommand(serveCmd)
}

// reportedError marks an error whose message was already shown to the user.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

// reported wraps err so that Execute does not print it a second time.
func reported(err error) error {
	if err == nil {
		return nil
	}
	return reportedError{err: err}
}

// Execute runs the command tree. Errors not already shown by a command,
// such as usage errors, are printed here.
func Execute() error {
	err := RootCmd.Execute()
	if err == nil {
		return nil
	}

	var r reportedError
	if !errors.As(err, &r) {
		fmt.Fprintln(os.Stderr, ui.Failed(err.Error(), nil))
	}
	return err
}

// common returns the workflow settings selected by the global flags.
func common() workflows.Common {
	return workflows.Common{
		ConfigPath: configs.ResolveLocalConfigPath(configPath),
		Timeout:    timeout,
	}
}

// resetGlobalState resets the root flags for testing.
func resetGlobalState() {
	verbose = false
	debug = false
	configPath = ""
	timeout = client.DefaultTimeout
	Logger = logger.Logger{}
}
