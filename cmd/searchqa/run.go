package main

import (
	"fmt"
	"time"

	"github.com/fwojciec/searchqa"
	"github.com/fwojciec/searchqa/batch"
	"github.com/fwojciec/searchqa/fs"
)

// Run executes the run command.
func (c *RunCmd) Run(deps *Dependencies) error {
	questions, err := fs.ReadQuestionsFile(c.Input, fs.ReadOptions{
		StartID:    c.StartID,
		FirstField: c.FirstField,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", searchqa.ErrorMessage(err))
		return err
	}

	runner := &batch.Runner{
		Answerer:    deps.Answerer,
		Store:       deps.Store,
		Concurrency: deps.Concurrency,
		Logger:      deps.Logger,
	}

	summary, err := runner.Run(deps.Ctx, c.StudentID, questions, deps.NewSink(c.StudentID))
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", searchqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Answered %d questions for %s (%d resumed, %d failed) in %s\n",
		summary.Total, c.StudentID, summary.Resumed, summary.Failed, summary.Duration.Round(time.Millisecond))
	return nil
}
