package main

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/searchqa"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	q := &searchqa.Question{ID: 1, Text: c.Question}

	answer, err := deps.Answerer.Answer(deps.Ctx, q)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", searchqa.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(answer)
	}

	fmt.Fprintln(deps.Stdout, answer.Text)
	return nil
}
