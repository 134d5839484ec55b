package payment

import "strings"

// ResolveLanguage maps an application locale to the gateway's language code.
// The gateway expects "GE" for Georgian, not the ISO-639 "KA"; everything
// else passes through uppercased.
func ResolveLanguage(locale string) string {
	lang := strings.ToUpper(locale)
	if lang == "KA" {
		return "GE"
	}
	return lang
}
