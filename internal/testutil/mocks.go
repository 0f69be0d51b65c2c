// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"sort"
	"time"

	"github.com/ProjectAI00/relay/internal/domain"
)

// MockClock is a test double for domain.Clock.
type MockClock struct {
	NowTime time.Time
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	return m.NowTime
}

// MockGoalRepository is a test double for domain.GoalRepository.
type MockGoalRepository struct {
	Goals   map[string]*domain.Goal
	SaveErr error
	GetErr  error
}

// NewMockGoalRepository creates a new MockGoalRepository with initialized maps.
func NewMockGoalRepository() *MockGoalRepository {
	return &MockGoalRepository{Goals: make(map[string]*domain.Goal)}
}

// GetGoal retrieves a goal by ID.
func (m *MockGoalRepository) GetGoal(_ context.Context, id string) (*domain.Goal, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Goals[id], nil
}

// ListGoals returns all goals ordered by creation time.
func (m *MockGoalRepository) ListGoals(context.Context) ([]*domain.Goal, error) {
	goals := make([]*domain.Goal, 0, len(m.Goals))
	for _, g := range m.Goals {
		goals = append(goals, g)
	}
	sort.Slice(goals, func(i, j int) bool { return goals[i].Created.Before(goals[j].Created) })
	return goals, nil
}

// SaveGoal saves a goal.
func (m *MockGoalRepository) SaveGoal(_ context.Context, goal *domain.Goal) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Goals[goal.ID] = goal
	return nil
}

// DeleteGoal removes a goal by ID.
func (m *MockGoalRepository) DeleteGoal(_ context.Context, id string) error {
	delete(m.Goals, id)
	return nil
}

// MockTaskRepository is a test double for domain.TaskRepository.
type MockTaskRepository struct {
	Tasks       map[string]*domain.Task
	Goals       *MockGoalRepository
	SaveErr     error
	GetErr      error
	CompleteErr error
}

// NewMockTaskRepository creates a new MockTaskRepository with initialized maps.
func NewMockTaskRepository() *MockTaskRepository {
	return &MockTaskRepository{Tasks: make(map[string]*domain.Task)}
}

// GetTask retrieves a task by ID.
func (m *MockTaskRepository) GetTask(_ context.Context, id string) (*domain.Task, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	return m.Tasks[id], nil
}

// ListTasks returns tasks matching the filter, ordered by creation time.
func (m *MockTaskRepository) ListTasks(_ context.Context, filter domain.TaskFilter) ([]*domain.Task, error) {
	var tasks []*domain.Task
	for _, t := range m.Tasks {
		if filter.GoalID != "" && t.GoalID != filter.GoalID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Pending && !t.Status.IsPending() {
			continue
		}
		tasks = append(tasks, t)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Created.Before(tasks[j].Created) })
	return tasks, nil
}

// SaveTask saves a task.
func (m *MockTaskRepository) SaveTask(_ context.Context, task *domain.Task) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Tasks[task.ID] = task
	return nil
}

// DeleteTask removes a task by ID.
func (m *MockTaskRepository) DeleteTask(_ context.Context, id string) error {
	delete(m.Tasks, id)
	return nil
}

// CompleteTask marks a task done and completes the goal when no pending
// siblings remain, mirroring the store's transactional behavior.
func (m *MockTaskRepository) CompleteTask(_ context.Context, taskID, summary string, now time.Time) (bool, error) {
	if m.CompleteErr != nil {
		return false, m.CompleteErr
	}
	task, ok := m.Tasks[taskID]
	if !ok {
		return false, domain.ErrTaskNotFound
	}
	task.Status = domain.StatusDone
	task.Summary = summary
	task.CompletedAt = &now

	if task.GoalID == "" {
		return false, nil
	}
	for _, t := range m.Tasks {
		if t.GoalID == task.GoalID && t.Status.IsPending() {
			return false, nil
		}
	}
	if m.Goals != nil {
		if g := m.Goals.Goals[task.GoalID]; g != nil && g.Status != domain.StatusDone {
			g.Status = domain.StatusDone
			g.CompletedAt = &now
			return true, nil
		}
		return false, nil
	}
	return true, nil
}

// MockMemoryRepository is a test double for domain.MemoryRepository.
type MockMemoryRepository struct {
	Memories map[string][]*domain.Memory // keyed by goal ID
	SaveErr  error
}

// NewMockMemoryRepository creates a new MockMemoryRepository with initialized maps.
func NewMockMemoryRepository() *MockMemoryRepository {
	return &MockMemoryRepository{Memories: make(map[string][]*domain.Memory)}
}

// UpsertMemory records a (goal, key) fact, overwriting an existing value.
func (m *MockMemoryRepository) UpsertMemory(_ context.Context, goalID, key, value string, source domain.MemorySource, now time.Time) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	for _, mem := range m.Memories[goalID] {
		if mem.Key == key {
			mem.Value = value
			mem.Source = source
			mem.Updated = now
			return nil
		}
	}
	m.Memories[goalID] = append(m.Memories[goalID], &domain.Memory{
		Created: now,
		Updated: now,
		GoalID:  goalID,
		Key:     key,
		Value:   value,
		Source:  source,
	})
	return nil
}

// ListMemories retrieves all insights recorded for a goal.
func (m *MockMemoryRepository) ListMemories(_ context.Context, goalID string) ([]*domain.Memory, error) {
	return m.Memories[goalID], nil
}

// MockChatRepository is a test double for domain.ChatRepository.
type MockChatRepository struct {
	Chats     map[string]*domain.Chat
	SubChats  map[string]*domain.SubChat
	Messages  map[string][]*domain.Message // keyed by sub-chat ID
	SaveErr   error
	AppendErr error
}

// NewMockChatRepository creates a new MockChatRepository with initialized maps.
func NewMockChatRepository() *MockChatRepository {
	return &MockChatRepository{
		Chats:    make(map[string]*domain.Chat),
		SubChats: make(map[string]*domain.SubChat),
		Messages: make(map[string][]*domain.Message),
	}
}

// GetChat retrieves a chat by ID.
func (m *MockChatRepository) GetChat(_ context.Context, id string) (*domain.Chat, error) {
	return m.Chats[id], nil
}

// SaveChat saves a chat.
func (m *MockChatRepository) SaveChat(_ context.Context, chat *domain.Chat) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Chats[chat.ID] = chat
	return nil
}

// GetSubChat retrieves a sub-chat by ID.
func (m *MockChatRepository) GetSubChat(_ context.Context, id string) (*domain.SubChat, error) {
	return m.SubChats[id], nil
}

// SaveSubChat saves a sub-chat.
func (m *MockChatRepository) SaveSubChat(_ context.Context, subChat *domain.SubChat) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.SubChats[subChat.ID] = subChat
	return nil
}

// AppendMessage appends a message to a sub-chat's history.
func (m *MockChatRepository) AppendMessage(_ context.Context, msg *domain.Message) error {
	if m.AppendErr != nil {
		return m.AppendErr
	}
	m.Messages[msg.SubChatID] = append(m.Messages[msg.SubChatID], msg)
	return nil
}

// ListMessages retrieves a sub-chat's history in chronological order.
func (m *MockChatRepository) ListMessages(_ context.Context, subChatID string) ([]*domain.Message, error) {
	return m.Messages[subChatID], nil
}

// MockAdapter is a test double for domain.BackendAdapter. Chunks are
// replayed to the caller on Chat.
type MockAdapter struct {
	ChatErr   error
	BackendID string
	Chunks    []domain.Chunk
	Cancelled []string
	LastInput domain.TurnInput
	Available bool
}

// ID returns the configured backend id.
func (m *MockAdapter) ID() string {
	return m.BackendID
}

// IsAvailable reports the configured availability.
func (m *MockAdapter) IsAvailable() bool {
	return m.Available
}

// Chat replays the configured chunks on a fresh channel.
func (m *MockAdapter) Chat(_ context.Context, in domain.TurnInput) (<-chan domain.Chunk, error) {
	m.LastInput = in
	if m.ChatErr != nil {
		return nil, m.ChatErr
	}
	ch := make(chan domain.Chunk, len(m.Chunks)+1)
	for _, c := range m.Chunks {
		ch <- c
	}
	close(ch)
	return ch, nil
}

// Cancel records the cancelled sub-conversation id.
func (m *MockAdapter) Cancel(subConversationID string) {
	m.Cancelled = append(m.Cancelled, subConversationID)
}

// MockLogger is a no-op domain.Logger that records messages.
type MockLogger struct {
	Lines []string
}

// Debug records the message.
func (m *MockLogger) Debug(_, _, msg string) { m.Lines = append(m.Lines, msg) }

// Info records the message.
func (m *MockLogger) Info(_, _, msg string) { m.Lines = append(m.Lines, msg) }

// Warn records the message.
func (m *MockLogger) Warn(_, _, msg string) { m.Lines = append(m.Lines, msg) }

// Error records the message.
func (m *MockLogger) Error(_, _, msg string) { m.Lines = append(m.Lines, msg) }
