package render

import (
	"regexp"
	"strings"
)

const fence = "```"

var (
	// fencedBlock matches ```lang\n...``` lazily. The language tag is ignored.
	fencedBlock = regexp.MustCompile("```(\\w+)?\\n([\\s\\S]*?)```")

	fenceStart = regexp.MustCompile("^```\\w*\\n?")
	fenceEnd   = regexp.MustCompile("```$")
)

// Markdown renders fenced code blocks in src as <pre><code> elements with
// escaped contents. Everything outside a fence is passed through as-is, so
// callers must only hand it text that is already safe.
func Markdown(src string) string {
	return fencedBlock.ReplaceAllStringFunc(src, func(block string) string {
		m := fencedBlock.FindStringSubmatch(block)
		return "<pre><code>" + EscapeHTML(m[2]) + "</code></pre>"
	})
}

// Fence wraps body in a fenced block tagged with lang.
func Fence(lang, body string) string {
	return fence + lang + "\n" + body + "\n" + fence
}

// StripFence removes a single surrounding code fence from text, if present.
func StripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, fence) {
		return text
	}

	text = fenceStart.ReplaceAllString(text, "")
	text = fenceEnd.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
