package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/searchqa"
	"github.com/fwojciec/searchqa/fs"
	"github.com/fwojciec/searchqa/sqlite"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// EnvFile is loaded before flags are parsed. Variables already set in
	// the environment win. Empty disables loading.
	EnvFile string

	// SQLite database, when --db is set.
	DB *sqlite.DB

	// Answerer overrides the pipeline built from flags. Set by tests.
	Answerer searchqa.Answerer

	closers []func() error
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{EnvFile: ".env"}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i]())
	}
	m.closers = nil
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
		m.DB = nil
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if err := m.loadEnv(); err != nil {
		return err
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("searchqa"),
		kong.Description("Answer questions with a language model grounded in web search."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'searchqa --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	defer m.Close()

	cfg := &cli.Config
	deps.Logger = newLogger(stderr, cfg.Verbose)
	deps.Concurrency = cfg.Concurrency
	deps.NewSink = func(studentID string) searchqa.AnswerSink {
		return fs.NewAnswerFile(filepath.Join(cfg.Out, studentID+".txt"))
	}

	if err := m.openStore(ctx, cfg, deps); err != nil {
		fmt.Fprintln(stderr, "Hint: Set SEARCHQA_DB to use a different database path")
		return err
	}

	if kongCtx.Command() != "merge" {
		deps.Answerer = m.Answerer
		if deps.Answerer == nil {
			pipeline, closer, err := newPipeline(ctx, cfg, deps.Logger, stderr)
			if err != nil {
				return err
			}
			m.closers = append(m.closers, closer)
			deps.Answerer = pipeline
		}
	}

	return kongCtx.Run(deps)
}

func (m *Main) loadEnv() error {
	if m.EnvFile == "" {
		return nil
	}
	if err := godotenv.Load(m.EnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", m.EnvFile, err)
	}
	return nil
}

// openStore selects where answers are stored for resume and merge.
func (m *Main) openStore(ctx context.Context, cfg *Config, deps *Dependencies) error {
	if cfg.DB == "" {
		dir := fs.NewAnswerDir(cfg.Out)
		deps.Store = resumable(dir, cfg.Resume)
		deps.ListAnswers = dir.Answers
		return nil
	}

	if dir := filepath.Dir(cfg.DB); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}
	m.DB = sqlite.NewDB(cfg.DB)
	if err := m.DB.Open(ctx); err != nil {
		m.DB = nil
		return fmt.Errorf("failed to open database at %q: %w", cfg.DB, err)
	}

	answers := sqlite.NewAnswerService(m.DB)
	deps.Store = resumable(answers, cfg.Resume)
	deps.ListAnswers = func(ctx context.Context, studentID string) ([]*searchqa.Answer, error) {
		return answers.FindAnswers(ctx, sqlite.AnswerFilter{StudentID: studentID})
	}
	return nil
}

// resumable returns store, or a store that saves answers but never finds
// them when resume is off.
func resumable(store searchqa.AnswerStore, resume bool) searchqa.AnswerStore {
	if resume {
		return store
	}
	return saveOnlyStore{store}
}

type saveOnlyStore struct {
	searchqa.AnswerStore
}

func (saveOnlyStore) FindAnswer(_ context.Context, _ string, q *searchqa.Question) (*searchqa.Answer, error) {
	return nil, searchqa.Errorf(searchqa.ENOTFOUND, "resume disabled for question %d", q.ID)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
