package main

import (
	"fmt"

	"github.com/fwojciec/searchqa"
	"github.com/fwojciec/searchqa/fs"
)

// Run executes the merge command.
func (c *MergeCmd) Run(deps *Dependencies) error {
	answers, err := deps.ListAnswers(deps.Ctx, c.StudentID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", searchqa.ErrorMessage(err))
		return err
	}
	if len(answers) == 0 {
		fmt.Fprintf(deps.Stderr, "error: no stored answers for %q. Use 'searchqa run' first.\n", c.StudentID)
		return searchqa.Errorf(searchqa.ENOTFOUND, "no stored answers for %q", c.StudentID)
	}

	n, err := fs.WriteAnswers(deps.Ctx, deps.NewSink(c.StudentID), answers)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", searchqa.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Merged %d answers for %s\n", n, c.StudentID)
	return nil
}
