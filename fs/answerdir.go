package fs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/fwojciec/searchqa"
)

// Ensure AnswerDir implements searchqa.AnswerStore at compile time.
var _ searchqa.AnswerStore = (*AnswerDir)(nil)

// AnswerDir stores one file per answered question under
// root/<student>/<id>.txt. A question whose file exists is considered
// answered, so re-running a batch resumes where it stopped.
type AnswerDir struct {
	root string
}

// NewAnswerDir creates an AnswerDir rooted at root.
func NewAnswerDir(root string) *AnswerDir {
	return &AnswerDir{root: root}
}

func (d *AnswerDir) studentDir(studentID string) (string, error) {
	if studentID == "" || studentID != filepath.Base(studentID) || studentID == "." || studentID == ".." {
		return "", searchqa.Errorf(searchqa.EINVALID, "invalid student ID %q", studentID)
	}
	return filepath.Join(d.root, studentID), nil
}

func (d *AnswerDir) answerPath(studentID string, id int) (string, error) {
	dir, err := d.studentDir(studentID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, strconv.Itoa(id)+".txt"), nil
}

// FindAnswer reads the stored answer for the question.
func (d *AnswerDir) FindAnswer(ctx context.Context, studentID string, q *searchqa.Question) (*searchqa.Answer, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	path, err := d.answerPath(studentID, q.ID)
	if err != nil {
		return nil, err
	}

	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, searchqa.Errorf(searchqa.ENOTFOUND, "no answer for question %d", q.ID)
	}
	if err != nil {
		return nil, err
	}

	return &searchqa.Answer{QuestionID: q.ID, Text: strings.TrimSpace(string(b))}, nil
}

// SaveAnswer writes the answer file, replacing any previous one.
func (d *AnswerDir) SaveAnswer(ctx context.Context, studentID string, q *searchqa.Question, a *searchqa.Answer) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if a == nil {
		return searchqa.Errorf(searchqa.EINVALID, "answer required")
	}
	path, err := d.answerPath(studentID, q.ID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(searchqa.SingleLine(a.Text)+"\n"), 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Answers returns the student's stored answers ordered by question id.
func (d *AnswerDir) Answers(ctx context.Context, studentID string) ([]*searchqa.Answer, error) {
	dir, err := d.studentDir(studentID)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, searchqa.Errorf(searchqa.ENOTFOUND, "no answers for student %q", studentID)
	}
	if err != nil {
		return nil, err
	}

	var answers []*searchqa.Answer
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".txt" {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSuffix(name, ".txt"))
		if err != nil || id <= 0 {
			continue
		}
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		answers = append(answers, &searchqa.Answer{QuestionID: id, Text: strings.TrimSpace(string(b))})
	}

	sort.Slice(answers, func(i, j int) bool {
		return answers[i].QuestionID < answers[j].QuestionID
	})
	return answers, nil
}

// Merge writes the student's answers in id order to root/<student>.txt,
// one per line, and returns how many were written.
func (d *AnswerDir) Merge(ctx context.Context, studentID string) (int, error) {
	answers, err := d.Answers(ctx, studentID)
	if err != nil {
		return 0, err
	}

	return WriteAnswers(ctx, NewAnswerFile(d.MergedPath(studentID)), answers)
}

// MergedPath returns the path Merge writes to.
func (d *AnswerDir) MergedPath(studentID string) string {
	return filepath.Join(d.root, studentID+".txt")
}

// WriteAnswers writes answers to sink and commits it, aborting on failure.
func WriteAnswers(ctx context.Context, sink searchqa.AnswerSink, answers []*searchqa.Answer) (int, error) {
	for _, a := range answers {
		if err := sink.Write(ctx, a); err != nil {
			_ = sink.Abort()
			return 0, err
		}
	}
	if err := sink.Commit(); err != nil {
		_ = sink.Abort()
		return 0, err
	}
	return len(answers), nil
}
