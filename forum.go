package main

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrNotSignedIn = errors.New("enter the forum with a name first")
	ErrNotAsker    = errors.New("question was asked by someone else")
)

/*** Submission ***/

type Forum struct {
	store *Store
}

func NewForum(store *Store) *Forum {
	return &Forum{store: store}
}

// Post records a question for the participant. The text is taken as is.
func (f *Forum) Post(ctx context.Context, p *Participant, text string) (*Question, error) {
	name := p.DisplayName()
	if name == "" {
		return nil, ErrNotSignedIn
	}
	q := &Question{Name: name, Question: text}
	if err := f.store.InsertQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Withdraw deletes the question only if p asked it; otherwise nothing changes.
func (f *Forum) Withdraw(ctx context.Context, p *Participant, id string) error {
	q, err := f.store.GetQuestion(ctx, id)
	if err != nil {
		return err
	}
	if q.Name != p.DisplayName() {
		return ErrNotAsker
	}
	_, err = f.store.DeleteQuestions(ctx, id)
	return err
}

/*** Moderation ***/

type Moderator struct {
	store  *Store
	atomic bool
	log    *logrus.Entry
}

func NewModerator(store *Store, atomic bool) *Moderator {
	return &Moderator{store: store, atomic: atomic, log: logFor("moderation")}
}

func (m *Moderator) credit(ctx context.Context, name string, delta int, scores []Student) error {
	if m.atomic {
		return m.store.AddStudentCount(ctx, name, delta)
	}
	return m.store.Apply(ctx, creditStudent(name, delta, scores))
}

// Dismiss closes a question without touching any score.
func (m *Moderator) Dismiss(ctx context.Context, id string) (int64, error) {
	return m.store.DeleteQuestions(ctx, id)
}

// CreditAndDismiss gives the asker one point and then closes the question.
// If the delete fails the point stays credited.
func (m *Moderator) CreditAndDismiss(ctx context.Context, q Question, scores []Student) error {
	if err := m.credit(ctx, q.Name, 1, scores); err != nil {
		return err
	}
	creditsIssued.WithLabelValues("single").Inc()

	if _, err := m.store.DeleteQuestions(ctx, q.ID); err != nil {
		m.log.WithError(err).WithFields(logrus.Fields{"question": q.ID, "name": q.Name}).
			Error("credited but question is still open")
		return err
	}
	return nil
}

type CreditAllResult struct {
	Credited []askerTally `json:"credited"`
	Removed  int64        `json:"removed"`
}

// CreditAll credits every asker once per open question in the snapshot and
// then deletes exactly the snapshotted questions. Questions posted after the
// snapshot was taken stay open.
func (m *Moderator) CreditAll(ctx context.Context, open []Question, scores []Student) (CreditAllResult, error) {
	var res CreditAllResult
	var failed []string
	for _, t := range tallyAskers(open) {
		if err := m.credit(ctx, t.Name, t.Count, scores); err != nil {
			m.log.WithError(err).WithField("name", t.Name).Error("bulk credit")
			failed = append(failed, t.Name)
			continue
		}
		creditsIssued.WithLabelValues("bulk").Add(float64(t.Count))
		res.Credited = append(res.Credited, t)
	}

	removed, err := m.store.DeleteQuestions(ctx, questionIDs(open)...)
	res.Removed = removed
	if err != nil {
		return res, err
	}
	if len(failed) > 0 {
		return res, errors.Errorf("credit failed for %s", strings.Join(failed, ", "))
	}
	return res, nil
}

type ResetResult struct {
	Questions int64 `json:"questions"`
	Students  int64 `json:"students"`
}

// ResetSession reads the current ids and deletes exactly those rows, so a
// row written between the two steps survives the reset.
func (m *Moderator) ResetSession(ctx context.Context, includeStudents bool) (ResetResult, error) {
	var res ResetResult

	ids, err := m.store.QuestionIDs(ctx)
	if err != nil {
		return res, err
	}
	if res.Questions, err = m.store.DeleteQuestions(ctx, ids...); err != nil {
		return res, err
	}
	if !includeStudents {
		return res, nil
	}

	ids, err = m.store.StudentIDs(ctx)
	if err != nil {
		return res, err
	}
	res.Students, err = m.store.DeleteStudents(ctx, ids...)
	return res, err
}
