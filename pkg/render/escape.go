// Package render turns chat message text into the HTML shown in a bubble.
package render

import "strings"

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// EscapeHTML replaces the five HTML-special characters with their entities.
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}
