// Package prompt asks the user structured questions on the terminal.
//
// Choice lists are plain data: callers resolve anything that depends on the
// database before building a Question.
package prompt

import (
	"context"
	"errors"
	"fmt"
)

type Kind int

const (
	KindInput Kind = iota
	KindList
)

var (
	// ErrAborted is returned when the user cancels a prompt.
	ErrAborted = errors.New("prompt aborted")
	// ErrNoChoices is returned for a visible list question without choices.
	ErrNoChoices = errors.New("list question has no choices")
)

type Choice struct {
	Label string
	Value string
}

type Answers map[string]string

type Question struct {
	Kind    Kind
	Key     string
	Label   string
	Default string
	Choices []Choice
	// Visible reports whether the question is asked given earlier answers.
	// A nil Visible always asks.
	Visible func(Answers) bool
	// Validate rejects an input answer; the user is asked again.
	Validate func(string) error
}

func (q Question) visible(answers Answers) bool {
	return q.Visible == nil || q.Visible(answers)
}

type Prompter interface {
	Ask(ctx context.Context, questions ...Question) (Answers, error)
}

// AskFunc answers a single question.
type AskFunc func(ctx context.Context, q Question) (string, error)

// Collect asks each visible question in order and gathers the answers.
// Hidden questions have no entry in the result.
func Collect(ctx context.Context, ask AskFunc, questions ...Question) (Answers, error) {
	answers := make(Answers, len(questions))
	for _, q := range questions {
		if !q.visible(answers) {
			continue
		}
		if q.Kind == KindList && len(q.Choices) == 0 {
			return answers, fmt.Errorf("%s: %w", q.Key, ErrNoChoices)
		}
		if err := ctx.Err(); err != nil {
			return answers, err
		}

		answer, err := ask(ctx, q)
		if err != nil {
			return answers, err
		}
		answers[q.Key] = answer
	}
	return answers, nil
}

// Required rejects blank input.
func Required(field string) func(string) error {
	return func(value string) error {
		if len(trimmed(value)) == 0 {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
}
