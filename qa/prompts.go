package qa

import (
	"fmt"
	"strings"

	"github.com/fwojciec/searchqa"
)

// DefaultLanguage is the language answers and keywords are requested in.
const DefaultLanguage = "English"

// Role descriptions sent as system prompts, one per pipeline step.
const (
	refineRole   = "You are a language processing expert specializing in extracting core questions from narratives."
	decideRole   = "You are a research assistant who decides whether a question can be answered from general knowledge or needs a web search."
	keywordsRole = "You are a keyword extraction expert good at extracting keywords that help understand intent."
	answerRole   = "You are a knowledge-based QA system skilled in logical reasoning using background information."
)

// noEvidence replaces the evidence block when nothing was gathered.
const noEvidence = "No search results are available for this question."

// Prompt is a system role plus a user message for one model call.
type Prompt struct {
	System string
	User   string
}

// BuildRefinePrompt asks the model to restate the core question.
func BuildRefinePrompt(question, language string) Prompt {
	task := fmt.Sprintf("Find out the real question intended, preserve the full meaning, remove unrelated content, and only tell me the core question in %s.", language)
	return Prompt{System: refineRole, User: taskMessage(task, question)}
}

// BuildDecisionPrompt asks the model whether the question needs a search.
func BuildDecisionPrompt(question string) Prompt {
	task := "Does answering this question require external or current information, such as recent events, specific figures, names or dates that general knowledge may not cover? Reply with only yes or no."
	return Prompt{System: decideRole, User: taskMessage(task, question)}
}

// BuildKeywordsPrompt asks the model for 2-5 search keywords.
func BuildKeywordsPrompt(question, language string) Prompt {
	task := fmt.Sprintf("Extract 2-5 keywords for a web search, and only tell me the keywords in %s, separated by commas.", language)
	return Prompt{System: keywordsRole, User: taskMessage(task, question)}
}

// BuildAnswerPrompt asks the model for the final answer. The evidence block
// is always present so the model sees the same layout whether or not a
// search happened; when it is empty the prompt says so explicitly.
func BuildAnswerPrompt(question string, evidence []*searchqa.Evidence, language string) Prompt {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Task Description: Based on the provided background information, answer the question specifically and logically in %s. ", language)
	sb.WriteString("If the background information is missing or insufficient, answer from your own background knowledge and common sense.\n\n")

	sb.WriteString("<background>\n")
	if len(evidence) == 0 {
		sb.WriteString(noEvidence)
	} else {
		sb.WriteString(searchqa.FormatEvidence(evidence))
	}
	sb.WriteString("\n</background>\n\n")

	fmt.Fprintf(&sb, "Question: %s", question)
	return Prompt{System: answerRole, User: sb.String()}
}

func taskMessage(task, question string) string {
	return "Task Description: " + task + "\nQuestion: " + question
}
