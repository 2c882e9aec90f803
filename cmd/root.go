package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/egoavara/ovos-settings/internal/config"
	"github.com/egoavara/ovos-settings/internal/logging"
	"github.com/egoavara/ovos-settings/internal/tui"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	serverURL string
	logLevel  string

	rootCmd = &cobra.Command{
		Use:           "ovos-settings",
		Short:         "Edit OVOS skill settings",
		SilenceErrors: true,
		SilenceUsage:  true,
		Long: `ovos-settings edits the settings.json of OVOS/Mycroft skills.

It can run the settings backend next to the assistant ('serve') and talk
to a backend from the command line or an interactive tree editor.

Commands:
  serve    Run the settings REST backend
  login    Store credentials for a backend
  edit     Interactive settings editor
  list     List skills
  get      Print settings or one value
  set      Change one value
  add      Add a new entry under an object or array
  delete   Delete one value
  merge    Merge a JSON object into a skill
  export   Save every skill's settings to a file
  config   Manage local preferences`,
		PersistentPreRunE: setupLogging,
	}
)

func setupLogging(cmd *cobra.Command, args []string) error {
	name := logLevel
	if name == "" {
		name = config.Get().LogLevel
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		return err
	}
	if verbose {
		level = slog.LevelDebug
	}
	logging.Setup(level)
	return nil
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Sprint(tui.ErrorText(err)))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "settings backend url (default from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (default from config)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(mergeCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(configCmd)
}
