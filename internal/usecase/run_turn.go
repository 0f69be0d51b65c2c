// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ProjectAI00/relay/internal/adapter"
	"github.com/ProjectAI00/relay/internal/completion"
	"github.com/ProjectAI00/relay/internal/domain"
	"github.com/ProjectAI00/relay/internal/plan"
	"github.com/ProjectAI00/relay/internal/prompt"
)

// RunTurn is the use case for running one prompt/response exchange with a
// backend. It resolves the adapter, injects conversation and goal/task
// context into the prompt, forwards the chunk stream to the caller, and
// persists the transcript and any completion or plan output.
// Fields are ordered to minimize memory padding.
type RunTurn struct {
	registry      *adapter.Registry
	chats         domain.ChatRepository
	goals         domain.GoalRepository
	tasks         domain.TaskRepository
	memories      domain.MemoryRepository
	recorder      *completion.Recorder
	clock         domain.Clock
	logger        domain.Logger
	maxConcurrent int
}

// NewRunTurn creates a new RunTurn use case.
func NewRunTurn(
	registry *adapter.Registry,
	chats domain.ChatRepository,
	goals domain.GoalRepository,
	tasks domain.TaskRepository,
	memories domain.MemoryRepository,
	recorder *completion.Recorder,
	clock domain.Clock,
	logger domain.Logger,
	maxConcurrent int,
) *RunTurn {
	return &RunTurn{
		registry:      registry,
		chats:         chats,
		goals:         goals,
		tasks:         tasks,
		memories:      memories,
		recorder:      recorder,
		clock:         clock,
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// Execute starts a turn and returns the chunk stream. Setup failures
// (unknown backend, missing task, validation) are returned synchronously;
// everything after the stream starts is reported through chunks. The
// returned channel is closed after the finish chunk.
func (uc *RunTurn) Execute(ctx context.Context, in domain.TurnInput) (<-chan domain.Chunk, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Prompt) == "" {
		return nil, domain.ErrEmptyPrompt
	}
	if in.Mode == "" {
		in.Mode = domain.ModeAsk
	}

	ad, err := uc.registry.Resolve(in.Backend)
	if err != nil {
		return nil, err
	}
	if !ad.IsAvailable() {
		return nil, fmt.Errorf("backend %q: %w", in.Backend, domain.ErrBackendNotInstalled)
	}

	sub, err := uc.ensureSubChat(ctx, &in)
	if err != nil {
		return nil, err
	}
	if in.SessionID == "" {
		in.SessionID = sub.SessionID
	}

	// Build the effective prompt before persisting the user message so the
	// history section does not include the prompt being sent.
	effective, err := uc.effectivePrompt(ctx, in)
	if err != nil {
		return nil, err
	}

	userMsg := &domain.Message{
		ID:        uuid.NewString(),
		SubChatID: in.SubConversationID,
		Role:      domain.RoleUser,
		Created:   uc.clock.Now(),
		Parts:     []domain.MessagePart{{Type: domain.PartText, Text: in.Prompt}},
	}
	if err := uc.chats.AppendMessage(ctx, userMsg); err != nil {
		return nil, fmt.Errorf("append user message: %w", err)
	}

	turn := in
	turn.Prompt = effective
	chunks, err := ad.Chat(ctx, turn)
	if err != nil {
		return nil, err
	}

	uc.logger.Info(in.ConversationID, "turn", fmt.Sprintf("turn started: backend=%s mode=%s sub=%s", in.Backend, in.Mode, in.SubConversationID))

	out := make(chan domain.Chunk, 32)
	go uc.pump(ctx, in, sub, chunks, out)
	return out, nil
}

// ensureSubChat loads the sub-chat, creating the chat and sub-chat rows on
// first use. The conversation id in the input is filled in when it was
// empty and a chat had to be created.
func (uc *RunTurn) ensureSubChat(ctx context.Context, in *domain.TurnInput) (*domain.SubChat, error) {
	sub, err := uc.chats.GetSubChat(ctx, in.SubConversationID)
	if err != nil {
		return nil, fmt.Errorf("load sub-chat: %w", err)
	}
	if sub != nil {
		if in.ConversationID == "" {
			in.ConversationID = sub.ChatID
		}
		return sub, nil
	}

	now := uc.clock.Now()
	chatID := in.ConversationID
	if chatID == "" {
		chatID = uuid.NewString()
		in.ConversationID = chatID
	}
	chat, err := uc.chats.GetChat(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("load chat: %w", err)
	}
	if chat == nil {
		if err := uc.chats.SaveChat(ctx, &domain.Chat{ID: chatID, Created: now}); err != nil {
			return nil, fmt.Errorf("create chat: %w", err)
		}
	}

	sub = &domain.SubChat{
		ID:      in.SubConversationID,
		ChatID:  chatID,
		Backend: in.Backend,
		Created: now,
	}
	if err := uc.chats.SaveSubChat(ctx, sub); err != nil {
		return nil, fmt.Errorf("create sub-chat: %w", err)
	}
	return sub, nil
}

// effectivePrompt assembles history, goal/task context, and the user text.
func (uc *RunTurn) effectivePrompt(ctx context.Context, in domain.TurnInput) (string, error) {
	var sections []string

	msgs, err := uc.chats.ListMessages(ctx, in.SubConversationID)
	if err != nil {
		return "", fmt.Errorf("load history: %w", err)
	}
	if history := prompt.BuildContext(derefMessages(msgs), prompt.DefaultOptions()); history != "" {
		sections = append(sections, "## Conversation so far\n"+history)
	}

	switch {
	case in.TaskID != "":
		brief, err := uc.taskBrief(ctx, in.TaskID)
		if err != nil {
			return "", err
		}
		sections = append(sections, brief)
	case in.GoalID != "":
		brief, err := uc.goalBrief(ctx, in.GoalID)
		if err != nil {
			return "", err
		}
		sections = append(sections, brief)
	}

	sections = append(sections, in.Prompt)
	return strings.Join(sections, "\n\n"), nil
}

func (uc *RunTurn) taskBrief(ctx context.Context, taskID string) (string, error) {
	task, err := uc.tasks.GetTask(ctx, taskID)
	if err != nil {
		return "", fmt.Errorf("load task: %w", err)
	}
	if task == nil {
		return "", fmt.Errorf("task %s: %w", taskID, domain.ErrTaskNotFound)
	}

	var goal *domain.Goal
	var siblings []domain.Task
	var insights []domain.Memory
	if task.GoalID != "" {
		goal, err = uc.goals.GetGoal(ctx, task.GoalID)
		if err != nil {
			return "", fmt.Errorf("load goal: %w", err)
		}
		sibs, err := uc.tasks.ListTasks(ctx, domain.TaskFilter{GoalID: task.GoalID})
		if err != nil {
			return "", fmt.Errorf("list goal tasks: %w", err)
		}
		siblings = derefTasks(sibs)
		mems, err := uc.memories.ListMemories(ctx, task.GoalID)
		if err != nil {
			return "", fmt.Errorf("list insights: %w", err)
		}
		insights = derefMemories(mems)
	}
	return prompt.TaskBrief(goal, task, siblings, insights), nil
}

func (uc *RunTurn) goalBrief(ctx context.Context, goalID string) (string, error) {
	goal, err := uc.goals.GetGoal(ctx, goalID)
	if err != nil {
		return "", fmt.Errorf("load goal: %w", err)
	}
	if goal == nil {
		return "", fmt.Errorf("goal %s: %w", goalID, domain.ErrGoalNotFound)
	}
	tasks, err := uc.tasks.ListTasks(ctx, domain.TaskFilter{GoalID: goalID})
	if err != nil {
		return "", fmt.Errorf("list goal tasks: %w", err)
	}
	mems, err := uc.memories.ListMemories(ctx, goalID)
	if err != nil {
		return "", fmt.Errorf("list insights: %w", err)
	}
	return prompt.GoalBrief(goal, derefTasks(tasks), derefMemories(mems), uc.maxConcurrent), nil
}

// pump forwards chunks from the adapter to the caller while accumulating
// the assistant message. On finish it persists the transcript, runs
// completion recording and plan extraction, and emits any tasks-created or
// goal-created chunks before the finish chunk.
func (uc *RunTurn) pump(ctx context.Context, in domain.TurnInput, sub *domain.SubChat, chunks <-chan domain.Chunk, out chan<- domain.Chunk) {
	defer close(out)

	var acc turnAccumulator
	finished := false
	for c := range chunks {
		switch c.Type {
		case domain.ChunkSessionID:
			if c.SessionID != "" && c.SessionID != sub.SessionID {
				sub.SessionID = c.SessionID
				sub.Backend = in.Backend
				if err := uc.chats.SaveSubChat(ctx, sub); err != nil {
					uc.logger.Warn(in.ConversationID, "turn", fmt.Sprintf("persist session id: %v", err))
				}
			}
		case domain.ChunkTextDelta:
			acc.textDelta(c.SpanID, c.Text)
		case domain.ChunkToolInputAvailable:
			acc.toolUse(c.ToolCallID, c.ToolName, c.ToolInput)
		case domain.ChunkToolOutputAvailable:
			acc.toolResult(c.ToolCallID, c.ToolOutput, false)
		case domain.ChunkToolOutputError:
			acc.toolResult(c.ToolCallID, c.ToolOutput, true)
		case domain.ChunkError:
			uc.logger.Error(in.ConversationID, "turn", fmt.Sprintf("backend error (%s): %s", c.ErrorKind, c.ErrorMessage))
		case domain.ChunkAuthError:
			uc.logger.Error(in.ConversationID, "turn", fmt.Sprintf("auth required for %s: %s", c.Backend, c.ErrorMessage))
		case domain.ChunkFinish:
			finished = true
			for _, extra := range uc.finishTurn(ctx, in, &acc) {
				out <- extra
			}
		}
		out <- c
	}

	// Source closed without a finish chunk. Persist what arrived so a
	// protocol violation upstream cannot lose transcript data.
	if !finished {
		uc.persistAssistant(ctx, in, &acc)
		uc.logger.Warn(in.ConversationID, "turn", "stream closed without finish chunk")
	}
}

// finishTurn persists the assistant message and applies mode-specific
// post-processing. Returned chunks are emitted before the finish chunk.
func (uc *RunTurn) finishTurn(ctx context.Context, in domain.TurnInput, acc *turnAccumulator) []domain.Chunk {
	uc.persistAssistant(ctx, in, acc)

	reply := acc.text()
	var extras []domain.Chunk

	if in.Mode == domain.ModeAgent && in.TaskID != "" && strings.TrimSpace(reply) != "" {
		res, err := uc.recorder.Record(ctx, in.TaskID, in.GoalID, reply)
		if err != nil {
			uc.logger.Error(in.ConversationID, "turn", fmt.Sprintf("record completion: %v", err))
		} else if res.GoalCompleted {
			uc.logger.Info(in.ConversationID, "turn", fmt.Sprintf("goal %s completed", res.GoalID))
		}
	}

	if in.Mode == domain.ModePlan {
		extras = uc.applyPlan(ctx, in, reply)
	}

	uc.logger.Info(in.ConversationID, "turn", fmt.Sprintf("turn finished: sub=%s", in.SubConversationID))
	return extras
}

// applyPlan extracts plan blocks from the reply and creates the drafted
// goal and tasks. Extraction errors are logged, never fatal.
func (uc *RunTurn) applyPlan(ctx context.Context, in domain.TurnInput, reply string) []domain.Chunk {
	ex := plan.Extract(reply)
	for _, err := range ex.Errors {
		uc.logger.Warn(in.ConversationID, "plan", fmt.Sprintf("plan block: %v", err))
	}

	now := uc.clock.Now()
	var extras []domain.Chunk

	if ex.HasGoalPlan() {
		goal := goalFromDraft(ex.Goal, now)
		if err := uc.goals.SaveGoal(ctx, goal); err != nil {
			uc.logger.Error(in.ConversationID, "plan", fmt.Sprintf("create goal: %v", err))
		} else {
			ids := uc.createTasks(ctx, in, ex.GoalTasks, goal.ID, now)
			extras = append(extras, domain.Chunk{Type: domain.ChunkGoalCreated, GoalID: goal.ID})
			if len(ids) > 0 {
				extras = append(extras, domain.Chunk{Type: domain.ChunkTasksCreated, TaskIDs: ids})
			}
		}
	}

	if len(ex.Tasks) > 0 {
		ids := uc.createTasks(ctx, in, ex.Tasks, in.GoalID, now)
		if len(ids) > 0 {
			extras = append(extras, domain.Chunk{Type: domain.ChunkTasksCreated, TaskIDs: ids})
		}
	}

	return extras
}

func (uc *RunTurn) createTasks(ctx context.Context, in domain.TurnInput, drafts []domain.TaskDraft, goalID string, now time.Time) []string {
	var ids []string
	for i := range drafts {
		task := taskFromDraft(&drafts[i], goalID, now)
		if err := uc.tasks.SaveTask(ctx, task); err != nil {
			uc.logger.Error(in.ConversationID, "plan", fmt.Sprintf("create task %q: %v", task.Title, err))
			continue
		}
		ids = append(ids, task.ID)
	}
	return ids
}

func (uc *RunTurn) persistAssistant(ctx context.Context, in domain.TurnInput, acc *turnAccumulator) {
	if len(acc.parts) == 0 {
		return
	}
	msg := &domain.Message{
		ID:        uuid.NewString(),
		SubChatID: in.SubConversationID,
		Role:      domain.RoleAssistant,
		Created:   uc.clock.Now(),
		Parts:     acc.parts,
	}
	if err := uc.chats.AppendMessage(ctx, msg); err != nil {
		uc.logger.Error(in.ConversationID, "turn", fmt.Sprintf("append assistant message: %v", err))
	}
}

func derefMessages(msgs []*domain.Message) []domain.Message {
	out := make([]domain.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, *m)
	}
	return out
}

func derefTasks(tasks []*domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *t)
	}
	return out
}

func derefMemories(mems []*domain.Memory) []domain.Memory {
	out := make([]domain.Memory, 0, len(mems))
	for _, m := range mems {
		out = append(out, *m)
	}
	return out
}
