package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/egoavara/ovos-settings/internal/config"
	"github.com/egoavara/ovos-settings/internal/logging"
	"github.com/egoavara/ovos-settings/internal/tui"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

var editCmd = &cobra.Command{
	Use:   "edit [skill]",
	Short: "Open the interactive settings editor",
	Long: `Open the terminal editor. It asks for credentials when none are stored,
lists the skills and edits one skill's settings as a tree. Changes are
saved right away.

Logs go to a file under the XDG state directory while the editor runs.

Example:
  ovos-settings edit
  ovos-settings edit ovos-skill-weather.openvoiceos`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	if fd := os.Stdout.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return fmt.Errorf("edit needs a terminal; use get/set for scripts")
	}

	level, err := logging.ParseLevel(config.Get().LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	if closer, err := logging.SetupFile(level); err == nil {
		defer closer.Close()
	} else {
		slog.Warn("cannot open log file, logging is disabled", "err", err)
		logging.Setup(slog.LevelError + 1)
	}

	client, err := newClient()
	if err != nil {
		return err
	}

	cfg := config.Get()
	opts := tui.Options{
		Server:    serverBase(),
		Theme:     string(cfg.Theme),
		HideEmpty: cfg.HideEmpty,
		OnLogin:   config.SetAuthHeader,
		OnLogout: func() error {
			return config.SetAuthHeader("")
		},
		OnTheme: func(theme string) error {
			if err := cfg.Set("theme", theme); err != nil {
				return err
			}
			return config.Save(cfg)
		},
		OnHideEmpty: func(hide bool) error {
			cfg.HideEmpty = hide
			return config.Save(cfg)
		},
	}
	if len(args) > 0 {
		opts.Skill = args[0]
	}
	return tui.Run(cmd.Context(), client, opts)
}
