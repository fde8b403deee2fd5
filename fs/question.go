// Package fs reads question files and writes answers to the local filesystem.
package fs

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/fwojciec/searchqa"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// ReadOptions controls how question files are parsed.
type ReadOptions struct {
	// StartID is the id of the first line. Zero means 1.
	StartID int

	// FirstField keeps only the first comma-separated field of each line,
	// for inputs of the form "question,reference".
	FirstField bool
}

// ReadQuestions parses one question per line. A question's id is its line
// number offset from StartID; blank lines are skipped but still counted, so
// ids always match the input file.
func ReadQuestions(r io.Reader, opts ReadOptions) ([]*searchqa.Question, error) {
	start := opts.StartID
	if start <= 0 {
		start = 1
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var questions []*searchqa.Question
	for n := 0; scanner.Scan(); n++ {
		line := scanner.Text()
		if n == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if opts.FirstField {
			line = firstField(line)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		questions = append(questions, &searchqa.Question{ID: start + n, Text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, searchqa.Errorf(searchqa.EINVALID, "read questions: %v", err)
	}

	return questions, nil
}

// ReadQuestionsFile reads questions from the file at path.
func ReadQuestionsFile(path string, opts ReadOptions) ([]*searchqa.Question, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, searchqa.Errorf(searchqa.ENOTFOUND, "question file %q not found", path)
		}
		return nil, err
	}
	defer f.Close()

	return ReadQuestions(f, opts)
}

// firstField returns the first CSV field of line, honoring quotes.
// Lines that are not valid CSV are returned unchanged.
func firstField(line string) string {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	record, err := r.Read()
	if err != nil || len(record) == 0 {
		return line
	}
	return record[0]
}
