package cmd

import (
	"fmt"

	"github.com/egoavara/ovos-settings/internal/config"
	"github.com/egoavara/ovos-settings/internal/i18n"
	"github.com/egoavara/ovos-settings/internal/prompt"
	"github.com/spf13/cobra"
)

var (
	loginUser     string
	loginPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to a settings backend",
	Long: `Check credentials against the backend and store them in the config
file for later commands.

Example:
  ovos-settings login --user admin
  ovos-settings --server http://mycroft.local:8000 login`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.SetAuthHeader(""); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), i18n.T("logout.done", nil))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&loginUser, "user", "u", "", "username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password")
}

func runLogin(cmd *cobra.Command, args []string) error {
	p := prompt.New(cmd.InOrStdin(), cmd.OutOrStdout())

	user := loginUser
	if user == "" {
		var err error
		if user, err = p.Line(i18n.T("login.username", nil)); err != nil {
			return err
		}
	}
	password := loginPassword
	if password == "" {
		var err error
		if password, err = p.Line(i18n.T("login.password", nil)); err != nil {
			return err
		}
	}

	client, err := newClient()
	if err != nil {
		return err
	}
	name, err := client.Login(cmd.Context(), user, password)
	if err != nil {
		return err
	}

	cfg := config.Get()
	if serverURL != "" {
		if err := cfg.Set("server", serverURL); err != nil {
			return err
		}
	}
	cfg.AuthHeader = client.AuthHeader()
	if err := config.Save(cfg); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), successStyle.Sprint(i18n.T("login.welcome", map[string]any{"User": name})))
	return nil
}
