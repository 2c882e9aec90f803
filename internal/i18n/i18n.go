package i18n

import (
	"encoding/json"
	"io/fs"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

var localeFiles = []string{"locales/en-us.json", "locales/ko-kr.json"}

var (
	bundle    *i18n.Bundle
	localizer *i18n.Localizer
)

// Init initializes the i18n bundle with the given locale files. English is
// required; other languages are optional.
func Init(localeFS fs.FS, lang string) error {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	for i, name := range localeFiles {
		if _, err := bundle.LoadMessageFileFS(localeFS, name); err != nil && i == 0 {
			localizer = i18n.NewLocalizer(bundle, lang)
			return err
		}
	}

	localizer = i18n.NewLocalizer(bundle, Normalize(lang))
	return nil
}

// Normalize turns system locale strings such as "ko_KR.UTF-8" into a BCP 47
// tag. Unparseable input falls back to English.
func Normalize(lang string) string {
	for i, r := range lang {
		if r == '.' || r == '@' {
			lang = lang[:i]
			break
		}
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English.String()
	}
	return tag.String()
}

// T translates a message by its ID with optional template data and plural count
func T(messageID string, templateData map[string]any, pluralCount ...int) string {
	if localizer == nil {
		return messageID
	}
	config := &i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: templateData,
	}
	if len(pluralCount) > 0 {
		config.PluralCount = pluralCount[0]
	}

	msg, err := localizer.Localize(config)
	if err != nil {
		// Return message ID if translation fails
		return messageID
	}
	return msg
}

// SetLocale changes the current locale
func SetLocale(lang string) {
	if bundle == nil {
		return
	}
	localizer = i18n.NewLocalizer(bundle, Normalize(lang))
}
