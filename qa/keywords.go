package qa

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/words"
)

// Keyword count bounds for a search query.
const (
	MinKeywords = 2
	MaxKeywords = 5
)

// maxKeywordRunes drops "keywords" that are really sentences.
const maxKeywordRunes = 40

var (
	keywordSeparators = regexp.MustCompile(`[,，、;；|\n]+`)
	keywordLabel      = regexp.MustCompile(`(?i)^\s*(keywords?|關鍵字|关键词|關鍵詞)\s*[:：]\s*`)
	listMarker        = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)、])\s*`)
)

// stopwords are dropped by FallbackKeywords.
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "is": true, "are": true, "was": true, "were": true,
	"be": true, "been": true, "of": true, "in": true, "on": true, "at": true, "to": true,
	"for": true, "from": true, "by": true, "with": true, "and": true, "or": true, "but": true,
	"what": true, "who": true, "whom": true, "which": true, "when": true, "where": true,
	"why": true, "how": true, "do": true, "does": true, "did": true, "it": true, "its": true,
	"this": true, "that": true, "these": true, "those": true, "please": true, "tell": true,
	"me": true, "i": true, "you": true, "can": true, "could": true, "would": true, "about": true,
	"的": true, "是": true, "了": true, "嗎": true, "吗": true, "呢": true, "什": true, "麼": true,
	"么": true, "誰": true, "谁": true, "哪": true, "請": true, "请": true, "在": true, "和": true,
}

// ParseKeywords reads the model's keyword reply. Items may be separated by
// commas (ASCII or CJK), semicolons, pipes or newlines, and may carry list
// markers or quotes. A single item containing spaces is split on whitespace.
// The result is deduplicated case-insensitively and capped at MaxKeywords.
func ParseKeywords(reply string) []string {
	reply = keywordLabel.ReplaceAllString(strings.TrimSpace(reply), "")

	parts := keywordSeparators.Split(reply, -1)
	if len(parts) == 1 && strings.ContainsAny(parts[0], " \t") {
		parts = strings.Fields(parts[0])
	}

	var out []string
	seen := make(map[string]bool)
	for _, part := range parts {
		kw := cleanKeyword(part)
		if kw == "" || utf8.RuneCountInString(kw) > maxKeywordRunes {
			continue
		}
		key := strings.ToLower(kw)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

// FallbackKeywords tokenizes text into its significant words: Unicode
// word segmentation with punctuation and stopwords removed.
func FallbackKeywords(text string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, seg := range words.SegmentAll([]byte(text)) {
		token := string(seg)
		if !isWord(token) {
			continue
		}
		key := strings.ToLower(token)
		if stopwords[key] || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, token)
		if len(out) == MaxKeywords {
			break
		}
	}
	return out
}

// ExtractKeywords returns the parsed model keywords, or the significant
// words of question when the model gave fewer than MinKeywords.
func ExtractKeywords(reply, question string) (keywords []string, degraded bool) {
	keywords = ParseKeywords(reply)
	if len(keywords) >= MinKeywords {
		return keywords, false
	}
	return FallbackKeywords(question), true
}

func cleanKeyword(s string) string {
	s = listMarker.ReplaceAllString(s, "")
	s = strings.Trim(s, " \t\r\"'`“”「」『』.。")
	return strings.TrimSpace(s)
}

// isWord reports whether a segment contains a letter or digit.
func isWord(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
