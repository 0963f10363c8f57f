// Package llm - sanitize.go repairs near-JSON provider output before
// structural parsing. Models wrap JSON in markdown fences, substitute smart
// quotes, and occasionally emit stray control characters or doubled commas.
package llm

import (
	"regexp"
	"strings"
)

var (
	doubledCommaRe  = regexp.MustCompile(`,\s*,+`)
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)
)

// smartQuoteReplacer maps typographic quotes onto their ASCII equivalents.
var smartQuoteReplacer = strings.NewReplacer(
	"“", `"`, // left double quotation mark
	"”", `"`, // right double quotation mark
	"‘", "'", // left single quotation mark
	"’", "'", // right single quotation mark
)

// CleanJSONBlock removes markdown code block wrappers from JSON responses.
// LLMs often wrap JSON in ```json ... ``` blocks even when instructed not to.
func CleanJSONBlock(text string) string {
	text = strings.TrimSpace(text)

	// Handle ```json ... ``` blocks
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	// Handle generic ``` ... ``` blocks
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		// Skip a potential language identifier on the first line
		if idx := strings.Index(text, "\n"); idx >= 0 {
			firstLine := text[:idx]
			if len(firstLine) < 20 && !strings.Contains(firstLine, " ") && !strings.Contains(firstLine, "{") {
				text = text[idx+1:]
			}
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		return strings.TrimSpace(text)
	}

	return text
}

// SanitizeJSON applies every known repair: fence stripping, smart quote
// substitution, control character removal, and comma artifacts. The result
// is not guaranteed to be valid JSON, only closer to it.
func SanitizeJSON(text string) string {
	text = CleanJSONBlock(text)
	text = smartQuoteReplacer.Replace(text)
	text = stripControlChars(text)
	text = doubledCommaRe.ReplaceAllString(text, ",")
	text = trailingCommaRe.ReplaceAllString(text, "$1")
	return strings.TrimSpace(text)
}

// stripControlChars removes control characters except newline and tab,
// which are legal between JSON tokens.
func stripControlChars(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, text)
}
