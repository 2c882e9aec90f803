package main

import (
	"embed"
	"log/slog"

	"github.com/egoavara/ovos-settings/cmd"
	"github.com/egoavara/ovos-settings/internal/config"
	"github.com/egoavara/ovos-settings/internal/i18n"
	"github.com/jeandeaual/go-locale"
)

//go:embed locales/*.json
var localeFS embed.FS

func main() {
	if err := i18n.Init(localeFS, getLocale()); err != nil {
		slog.Warn("translations unavailable", "err", err)
	}
	cmd.Execute()
}

// getLocale returns the locale based on config
func getLocale() string {
	configLocale := config.GetLocale()

	if configLocale == "" || configLocale == "auto" {
		userLocale, err := locale.GetLocale()
		if err != nil || userLocale == "" {
			return "en-US"
		}
		return userLocale
	}
	return configLocale
}
