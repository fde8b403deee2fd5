package fs

import (
	"bufio"
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/searchqa"
)

// Ensure AnswerFile implements searchqa.AnswerSink at compile time.
var _ searchqa.AnswerSink = (*AnswerFile)(nil)

// AnswerFile implements searchqa.AnswerSink with atomic update semantics.
// Answers are written one per line to path.tmp, which is renamed to path
// on Commit. It is not safe for concurrent use.
type AnswerFile struct {
	path string
	f    *os.File
	w    *bufio.Writer
}

// NewAnswerFile creates an AnswerFile that will publish to path.
func NewAnswerFile(path string) *AnswerFile {
	return &AnswerFile{path: path}
}

func (s *AnswerFile) tempPath() string {
	return s.path + ".tmp"
}

func (s *AnswerFile) open() error {
	if s.f != nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return err
	}
	f, err := os.Create(s.tempPath())
	if err != nil {
		return err
	}
	s.f = f
	s.w = bufio.NewWriter(f)
	return nil
}

// Write appends the answer text as a single line.
func (s *AnswerFile) Write(ctx context.Context, a *searchqa.Answer) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.open(); err != nil {
		return err
	}
	if _, err := s.w.WriteString(searchqa.SingleLine(a.Text)); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

// Commit flushes the answers and replaces path with them.
func (s *AnswerFile) Commit() error {
	if err := s.open(); err != nil {
		return err
	}
	if err := s.w.Flush(); err != nil {
		return err
	}
	if err := s.f.Sync(); err != nil {
		return err
	}
	if err := s.f.Close(); err != nil {
		return err
	}
	s.f, s.w = nil, nil

	return os.Rename(s.tempPath(), s.path)
}

// Abort discards everything written since the file was created.
func (s *AnswerFile) Abort() error {
	if s.f != nil {
		_ = s.f.Close()
		s.f, s.w = nil, nil
	}
	if err := os.Remove(s.tempPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
