package qa

import (
	"strings"

	"github.com/clipperhouse/uax29/words"
)

// Decision is the parsed answer to the search necessity prompt.
type Decision int

// Decision values.
const (
	DecisionUnknown Decision = iota
	DecisionYes
	DecisionNo
)

func (d Decision) String() string {
	switch d {
	case DecisionYes:
		return "yes"
	case DecisionNo:
		return "no"
	default:
		return "unknown"
	}
}

// Closed sets of accepted tokens. Anything else is DecisionUnknown.
var (
	affirmativeTokens = map[string]bool{
		"yes": true, "y": true, "true": true, "required": true, "needed": true,
		"是": true, "需": true, "要": true, "對": true, "对": true,
	}
	negativeTokens = map[string]bool{
		"no": true, "n": true, "false": true, "unnecessary": true,
		"否": true, "不": true, "無": true, "无": true,
	}
	// Only negative as the first word: "Not needed" but not "I'm not sure".
	leadingNegativeTokens = map[string]bool{"not": true, "none": true}
)

// hedges mark a reply as undecided whatever else it says.
var hedges = []string{
	"not sure", "unsure", "uncertain", "maybe", "perhaps", "possibly",
	"不確定", "不确定", "不一定", "也許", "也许",
}

// ParseDecision reads a free-form yes/no reply. Hedged replies are
// DecisionUnknown; otherwise the first word found in either token set
// decides, and replies with no such word are DecisionUnknown.
func ParseDecision(reply string) Decision {
	reply = strings.Join(strings.Fields(strings.ToLower(reply)), " ")
	for _, h := range hedges {
		if strings.Contains(reply, h) {
			return DecisionUnknown
		}
	}

	first := true
	for _, seg := range words.SegmentAll([]byte(reply)) {
		token := string(seg)
		if !isWord(token) {
			continue
		}
		switch {
		case affirmativeTokens[token]:
			return DecisionYes
		case negativeTokens[token], first && leadingNegativeTokens[token]:
			return DecisionNo
		}
		first = false
	}
	return DecisionUnknown
}

// Resolve maps the decision to a boolean, using fallback when unknown.
func (d Decision) Resolve(fallback bool) bool {
	switch d {
	case DecisionYes:
		return true
	case DecisionNo:
		return false
	default:
		return fallback
	}
}
