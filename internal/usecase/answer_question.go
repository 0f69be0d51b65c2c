package usecase

import (
	"context"

	"github.com/ProjectAI00/relay/internal/adapter"
)

// AnswerQuestionInput contains the parameters for answering a pending
// backend question.
type AnswerQuestionInput struct {
	ToolCallID string
	Answers    []string
	Reason     string
}

// AnswerQuestion is the use case for resolving a question a backend asked
// mid-turn.
type AnswerQuestion struct {
	resolver *adapter.AskUserResolver
}

// NewAnswerQuestion creates a new AnswerQuestion use case.
func NewAnswerQuestion(resolver *adapter.AskUserResolver) *AnswerQuestion {
	return &AnswerQuestion{resolver: resolver}
}

// Execute delivers the answer to the waiting stream. Returns
// domain.ErrQuestionNotFound when no question is pending for the tool call
// and domain.ErrQuestionResolved when it was already answered.
func (uc *AnswerQuestion) Execute(_ context.Context, in AnswerQuestionInput) error {
	return uc.resolver.Resolve(in.ToolCallID, adapter.Answer{
		Answers: in.Answers,
		Reason:  in.Reason,
	})
}
