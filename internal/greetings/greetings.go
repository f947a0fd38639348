// Package greetings localises the static text of country payloads and the calendar feed.
package greetings

import (
	"embed"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-json"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-countdown/internal/config"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// Translator holds the loaded bundle and matches requests against its languages.
type Translator struct {
	bundle    *i18n.Bundle
	languages []language.Tag
	matcher   language.Matcher
}

// New loads every embedded active.<lang>.json file.
func New() *Translator {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	// English first: it is the matcher's fallback.
	tags := []language.Tag{language.English}

	entries, err := localeFS.ReadDir(config.LocalesDir)
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
	}

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		tag, err := language.Parse(langCode)
		if langCode == "" || err != nil {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, config.LocalesDir+"/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)

		if tag != language.English {
			tags = append(tags, tag)
		}
	}

	return &Translator{
		bundle:    bundle,
		languages: tags,
		matcher:   language.NewMatcher(tags),
	}
}

// Languages returns the supported language codes, English first.
func (t *Translator) Languages() []string {
	out := make([]string, len(t.languages))
	for i, tag := range t.languages {
		out[i] = tag.String()
	}
	return out
}

// For picks the best supported language. An explicit lang wins over the
// Accept-Language header; English is the fallback.
func (t *Translator) For(lang, acceptLanguage string) *Localizer {
	_, index := language.MatchStrings(t.matcher, lang, acceptLanguage)
	tag := t.languages[index]
	return &Localizer{
		loc:  i18n.NewLocalizer(t.bundle, tag.String()),
		lang: tag.String(),
	}
}

// Default returns the English localizer.
func (t *Translator) Default() *Localizer {
	return t.For(config.DefaultLanguage, "")
}

// Localizer renders messages in one language.
type Localizer struct {
	loc  *i18n.Localizer
	lang string
}

// Lang returns the selected language code.
func (l *Localizer) Lang() string {
	if l == nil {
		return config.DefaultLanguage
	}
	return l.lang
}

// Name renders a message taking the region name, or the fallback format when the
// key is missing.
func (l *Localizer) Name(key, fallback, name string) string {
	if l == nil || l.loc == nil {
		return fmt.Sprintf(fallback, name)
	}
	msg, err := l.loc.Localize(&i18n.LocalizeConfig{
		MessageID:    key,
		TemplateData: map[string]string{"Name": name},
	})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return fmt.Sprintf(fallback, name)
	}
	return msg
}

// Text renders a message without arguments, or fallback when it is missing.
func (l *Localizer) Text(key, fallback string) string {
	if l == nil || l.loc == nil {
		return fallback
	}
	msg, err := l.loc.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		return fallback
	}
	return msg
}

// Wishes returns the three New Year wishes for a region.
func (l *Localizer) Wishes(name string) []string {
	return []string{
		l.Name(config.TKeyWishPeople, config.FallbackWishPeople, name),
		l.Name(config.TKeyWishProsperity, config.FallbackWishProsper, name),
		l.Name(config.TKeyWishLeaders, config.FallbackWishLeaders, name),
	}
}
