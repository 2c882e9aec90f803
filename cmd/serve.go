package cmd

import (
	"log/slog"
	"os"

	"github.com/egoavara/ovos-settings/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr     string
	serveRoot     string
	serveUser     string
	servePassword string
	serveWatch    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the skill settings backend",
	Long: `Run the REST backend that reads and writes settings.json files under
the skills directory.

Credentials come from --user/--password or the OVOS_SETTINGS_USER and
OVOS_SETTINGS_PASSWORD environment variables. Without a username every
request is allowed.

Example:
  ovos-settings serve
  ovos-settings serve --addr 127.0.0.1:9000 --root ~/.local/share/mycroft/skills`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "listen address")
	serveCmd.Flags().StringVar(&serveRoot, "root", "", "skills directory (default $XDG_CONFIG_HOME/mycroft/skills)")
	serveCmd.Flags().StringVar(&serveUser, "user", "", "login username")
	serveCmd.Flags().StringVar(&servePassword, "password", "", "login password")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", true, "watch the skills directory for new skills")
}

func runServe(cmd *cobra.Command, args []string) error {
	user := serveUser
	if user == "" {
		user = os.Getenv("OVOS_SETTINGS_USER")
	}
	password := servePassword
	if password == "" {
		password = os.Getenv("OVOS_SETTINGS_PASSWORD")
	}
	if user != "" && password == "" {
		slog.Warn("username set without a password")
	}

	srv, err := server.New(server.Options{
		Addr:     serveAddr,
		Root:     serveRoot,
		Username: user,
		Password: password,
		Watch:    serveWatch,
	})
	if err != nil {
		return err
	}
	return srv.ListenAndServe(cmd.Context())
}
