// Package validation repairs and checks generated posts against the content
// policy. Everything here is deterministic: the same input always produces
// the same output, so a failed repair is never worth retrying.
package validation

import (
	"regexp"
	"strings"
	"unicode"
)

// Content policy. Fixed at compile time and shared read-only by all requests.
const (
	MinLength     = 200
	SoftMaxLength = 280
	HardMaxLength = 300
	MinHashtags   = 2
	MaxHashtags   = 3

	truncateAt = 275
	ellipsis   = "..."
)

// candidateEmojis is ordered; repair always injects the first one so the
// output stays deterministic.
var candidateEmojis = []string{"🚀", "💡", "🌟", "🔥", "✨"}

// fallbackHashtags are appended when a draft carries fewer than MinHashtags.
// Fixed literals rather than topic-derived tags keep the repair predictable.
var fallbackHashtags = []string{"#Innovation", "#Growth"}

// emojiRanges lists the code point blocks the policy accepts as emoji:
// miscellaneous symbols and dingbats on the BMP, plus the main pictograph,
// emoticon, transport and supplemental blocks.
var emojiRanges = &unicode.RangeTable{
	R16: []unicode.Range16{
		{Lo: 0x2600, Hi: 0x27BF, Stride: 1},
	},
	R32: []unicode.Range32{
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1},
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1},
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1},
		{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1},
	},
}

var (
	boldPattern     = regexp.MustCompile(`\*\*(.*?)\*\*`)
	emphasisPattern = regexp.MustCompile(`__(.*?)__`)
	bracketPattern  = regexp.MustCompile(`\[[^\]]*\]`)
	hashtagPattern  = regexp.MustCompile(`#\w+`)
)

// Result contains the outcome of a repair pass. Text always carries the
// best-effort post, even when the policy could not be satisfied.
type Result struct {
	Text    string   `json:"text"`
	IsValid bool     `json:"is_valid"`
	Issues  []string `json:"issues,omitempty"`
}

// Repair normalizes a raw model draft against the content policy:
//
//  1. strip markdown emphasis and bracketed meta-notes,
//  2. inject an emoji when none is present,
//  3. top up hashtags below the minimum,
//  4. truncate anything longer than the soft maximum.
//
// The final check looks at length and emoji only. Hashtags are not counted
// again after truncation, so a draft trimmed at the boundary can end up below
// the hashtag minimum and still report valid.
func Repair(raw string) Result {
	text := strings.TrimSpace(raw)
	text = boldPattern.ReplaceAllString(text, "$1")
	text = emphasisPattern.ReplaceAllString(text, "$1")
	text = bracketPattern.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	if !HasEmoji(text) {
		text = candidateEmojis[0] + " " + text
	}

	if CountHashtags(text) < MinHashtags {
		text = strings.TrimSpace(text) + " " + strings.Join(fallbackHashtags, " ")
	}

	if runes := []rune(text); len(runes) > SoftMaxLength {
		text = string(runes[:truncateAt]) + ellipsis
	}

	result := Result{Text: text}

	length := len([]rune(text))
	switch {
	case length < MinLength:
		result.Issues = append(result.Issues, "text below minimum length")
	case length > HardMaxLength:
		result.Issues = append(result.Issues, "text above maximum length")
	}
	if !HasEmoji(text) {
		result.Issues = append(result.Issues, "no emoji present")
	}
	result.IsValid = len(result.Issues) == 0

	return result
}

// HasEmoji reports whether s contains at least one rune from the accepted
// emoji blocks.
func HasEmoji(s string) bool {
	for _, r := range s {
		if unicode.Is(emojiRanges, r) {
			return true
		}
	}
	return false
}

// CountHashtags counts #-prefixed word tokens in s.
func CountHashtags(s string) int {
	return len(hashtagPattern.FindAllString(s, -1))
}
