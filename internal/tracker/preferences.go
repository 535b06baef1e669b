package tracker

import (
	"strings"

	v1 "github.com/aevon-lab/folio-analytics/internal/api/v1"
)

var defaultPreferences = map[string]string{
	v1.PrefAnimationSpeed: "normal",
	v1.PrefTheme:          "auto",
	v1.PrefLanguage:       "en",
}

// initialPreferences merges the preferences reported on load over the defaults.
func initialPreferences(reported map[string]string) map[string]string {
	prefs := make(map[string]string, len(defaultPreferences)+len(reported))
	for k, v := range defaultPreferences {
		prefs[k] = v
	}
	for k, v := range reported {
		if v = normalizePreference(k, v); v != "" {
			prefs[k] = v
		}
	}
	return prefs
}

// normalizePreference keeps only the primary subtag of a language tag,
// so "en-GB" and "en" count as the same language.
func normalizePreference(name, value string) string {
	value = strings.TrimSpace(value)
	if name == v1.PrefLanguage {
		if i := strings.IndexAny(value, "-_"); i >= 0 {
			value = value[:i]
		}
		value = strings.ToLower(value)
	}
	return value
}

// applyPreferenceLocked stores the new setting and stamps the event metadata
// with the value it replaced.
func (t *Tracker) applyPreferenceLocked(meta map[string]any) {
	name, _ := meta[v1.MetaPreference].(string)
	if name == "" {
		return
	}
	s := t.session
	if s.Preferences == nil {
		s.Preferences = make(map[string]string)
	}
	if prev, ok := s.Preferences[name]; ok {
		meta[v1.MetaPreviousValue] = prev
	}
	setting, _ := meta[v1.MetaSetting].(string)
	s.Preferences[name] = setting
}
