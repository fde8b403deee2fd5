package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/searchqa"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Answerer searchqa.Answerer
	Store    searchqa.AnswerStore

	// ListAnswers returns a student's stored answers in question order.
	ListAnswers func(ctx context.Context, studentID string) ([]*searchqa.Answer, error)

	// NewSink opens the batch output for a student.
	NewSink func(studentID string) searchqa.AnswerSink

	Concurrency int
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Config `embed:""`

	Run   RunCmd   `cmd:"" help:"Answer every question in a file"`
	Ask   AskCmd   `cmd:"" help:"Answer a single question"`
	Merge MergeCmd `cmd:"" help:"Merge stored answers into one output file"`
}

// Config holds the flags shared by all commands. Every flag can also be
// set through the environment or a .env file.
type Config struct {
	ModelProvider string `name:"model-provider" enum:"openai,gemini" default:"openai" env:"SEARCHQA_MODEL_PROVIDER" help:"Language model backend (${enum})"`
	ModelURL      string `name:"model-url" default:"http://localhost:8080/v1" env:"SEARCHQA_MODEL_URL" help:"OpenAI-compatible endpoint of the local model server"`
	Model         string `name:"model" env:"SEARCHQA_MODEL" help:"Model name or path as known to the server"`
	APIKey        string `name:"api-key" env:"SEARCHQA_API_KEY,GEMINI_API_KEY" help:"Model API key"`
	MaxTokens     int    `name:"max-tokens" default:"0" env:"SEARCHQA_MAX_TOKENS" help:"Reply length cap (0 = server default)"`
	Seed          int    `name:"seed" default:"0" env:"SEARCHQA_SEED" help:"Sampling seed for OpenAI-compatible servers (0 = unset)"`

	SearchProvider string  `name:"search-provider" enum:"duckduckgo,searxng,brave,bing" default:"duckduckgo" env:"SEARCHQA_SEARCH_PROVIDER" help:"Search backend (${enum})"`
	SearchURL      string  `name:"search-url" env:"SEARCHQA_SEARCH_URL" help:"Search endpoint (required for searxng)"`
	SearchAPIKey   string  `name:"search-api-key" env:"SEARCHQA_SEARCH_API_KEY" help:"Search API key (brave)"`
	SearchQPS      float64 `name:"search-qps" default:"1" env:"SEARCHQA_SEARCH_QPS" help:"Search requests per second"`
	SearchMode     string  `name:"search-mode" enum:"auto,always,never" default:"auto" env:"SEARCHQA_SEARCH_MODE" help:"Whether to search (${enum})"`
	Ambiguous      bool    `name:"search-when-unsure" env:"SEARCHQA_SEARCH_WHEN_UNSURE" help:"Search when the model's decision is neither yes nor no"`

	MaxAttempts int           `name:"max-attempts" default:"3" env:"SEARCHQA_MAX_ATTEMPTS" help:"Search attempts per question"`
	Backoff     time.Duration `name:"backoff" default:"1s" env:"SEARCHQA_BACKOFF" help:"Delay before the second attempt, doubled after each failure"`
	Jitter      time.Duration `name:"jitter" default:"0s" env:"SEARCHQA_JITTER" help:"Random extra delay added to each backoff"`

	FetchTimeout      time.Duration `name:"fetch-timeout" default:"10s" env:"SEARCHQA_FETCH_TIMEOUT" help:"Timeout for one page fetch"`
	DomainRPS         float64       `name:"domain-rps" default:"1" env:"SEARCHQA_DOMAIN_RPS" help:"Page requests per second per domain"`
	Browser           bool          `name:"browser" env:"SEARCHQA_BROWSER" help:"Render thin or failing pages in headless Chrome"`
	MaxResults        int           `name:"max-results" default:"3" env:"SEARCHQA_MAX_RESULTS" help:"Result pages read per search"`
	MaxEvidenceChars  int           `name:"max-evidence-chars" default:"5000" env:"SEARCHQA_MAX_EVIDENCE_CHARS" help:"Cap on combined evidence text"`
	MaxEvidenceTokens int           `name:"max-evidence-tokens" default:"0" env:"SEARCHQA_MAX_EVIDENCE_TOKENS" help:"Token budget for evidence (0 = off)"`
	TokenizerModel    string        `name:"tokenizer-model" default:"gemini-2.5-flash" env:"SEARCHQA_TOKENIZER_MODEL" help:"Model whose tokenizer counts evidence tokens"`

	Language        string        `name:"language" default:"English" env:"SEARCHQA_LANGUAGE" help:"Language answers are written in"`
	QuestionTimeout time.Duration `name:"question-timeout" default:"0s" env:"SEARCHQA_QUESTION_TIMEOUT" help:"Time allowed for searching per question (0 = none)"`
	Concurrency     int           `name:"concurrency" short:"c" default:"1" env:"SEARCHQA_CONCURRENCY" help:"Questions answered at once"`

	DB     string `name:"db" env:"SEARCHQA_DB" help:"SQLite database for stored answers (default: one file per answer under --out)"`
	Out    string `name:"out" short:"o" default:"answers" env:"SEARCHQA_OUT" help:"Output directory"`
	Resume bool   `name:"resume" default:"true" negatable:"" env:"SEARCHQA_RESUME" help:"Skip questions that already have a stored answer"`

	Verbose bool `short:"v" env:"SEARCHQA_VERBOSE" help:"Log every model, search and fetch call"`
}

// RunCmd is the "run" subcommand.
type RunCmd struct {
	Input      string `arg:"" type:"existingfile" help:"Question file, one question per line"`
	StudentID  string `name:"student" required:"" env:"SEARCHQA_STUDENT_ID" help:"Student ID naming the output"`
	StartID    int    `name:"start-id" default:"1" help:"ID of the first question"`
	FirstField bool   `name:"first-field" help:"Use only the first comma-separated field of each line (question,reference files)"`
}

// AskCmd is the "ask" subcommand.
type AskCmd struct {
	Question string `arg:"" help:"Question to answer"`
	JSON     bool   `help:"Print the answer with search details as JSON"`
}

// MergeCmd is the "merge" subcommand.
type MergeCmd struct {
	StudentID string `name:"student" required:"" env:"SEARCHQA_STUDENT_ID" help:"Student ID whose answers are merged"`
}
