package model

// Locale is an IETF language tag from the platform's fixed supported set.
type Locale string

const (
	LocaleEnUS Locale = "en-US"
	LocaleZhCN Locale = "zh-CN"
	LocaleZhTW Locale = "zh-TW"
)

// SupportedLocales lists every locale the platform accepts, in declaration order.
var SupportedLocales = []Locale{LocaleEnUS, LocaleZhCN, LocaleZhTW}

// ParseLocale validates a raw locale tag against the supported set.
func ParseLocale(s string) (Locale, bool) {
	for _, l := range SupportedLocales {
		if string(l) == s {
			return l, true
		}
	}
	return "", false
}
