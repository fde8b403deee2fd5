package searchqa

import "strings"

// Evidence is readable text taken from one search result page.
type Evidence struct {
	SourceURL string `json:"sourceUrl"`
	Title     string `json:"title,omitempty"`
	Text      string `json:"text"`
}

// FormatEvidence formats evidence for LLM context.
// Uses title if available, falls back to source URL.
// Entries are separated by blank lines.
func FormatEvidence(evidence []*Evidence) string {
	if len(evidence) == 0 {
		return ""
	}

	parts := make([]string, 0, len(evidence))
	for _, e := range evidence {
		header := e.Title
		if header == "" {
			header = e.SourceURL
		}
		parts = append(parts, "## Source: "+header+"\n"+e.Text)
	}

	return strings.Join(parts, "\n\n")
}

// TruncateEvidence trims evidence so that the combined text length stays
// within limit runes. Entries past the limit are dropped; the entry that
// crosses it is cut. A limit <= 0 disables truncation.
func TruncateEvidence(evidence []*Evidence, limit int) []*Evidence {
	if limit <= 0 {
		return evidence
	}

	out := make([]*Evidence, 0, len(evidence))
	remaining := limit
	for _, e := range evidence {
		if remaining <= 0 {
			break
		}
		text := []rune(e.Text)
		if len(text) > remaining {
			text = text[:remaining]
		}
		remaining -= len(text)
		out = append(out, &Evidence{SourceURL: e.SourceURL, Title: e.Title, Text: string(text)})
	}
	return out
}
