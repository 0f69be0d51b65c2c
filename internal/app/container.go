// Package app provides the dependency injection container for the application.
package app

import (
	"fmt"

	"github.com/ProjectAI00/relay/internal/adapter"
	"github.com/ProjectAI00/relay/internal/adapter/acp"
	"github.com/ProjectAI00/relay/internal/adapter/jsonline"
	"github.com/ProjectAI00/relay/internal/adapter/textstream"
	"github.com/ProjectAI00/relay/internal/completion"
	"github.com/ProjectAI00/relay/internal/domain"
	"github.com/ProjectAI00/relay/internal/infra/config"
	"github.com/ProjectAI00/relay/internal/infra/logging"
	"github.com/ProjectAI00/relay/internal/infra/store"
	"github.com/ProjectAI00/relay/internal/usecase"
)

// Container provides dependency injection for the application.
// It holds all port implementations and provides factory methods for use cases.
// Fields are ordered to minimize memory padding.
type Container struct {
	Goals    domain.GoalRepository
	Tasks    domain.TaskRepository
	Memories domain.MemoryRepository
	Chats    domain.ChatRepository
	Clock    domain.Clock

	Registry *adapter.Registry
	Handles  *adapter.Handles
	Resolver *adapter.AskUserResolver
	Logger   *logging.Logger
	Store    *store.Store
	Config   *config.Config

	DataDir string
}

// New creates a Container from the merged configuration: opens the sqlite
// store under the data dir, builds the file logger, and registers one
// adapter per enabled backend.
func New(projectDir string) (*Container, error) {
	cfg, err := config.NewLoader(projectDir).Load()
	if err != nil {
		return nil, err
	}
	return NewWithConfig(cfg)
}

// NewWithConfig creates a Container from an already-loaded configuration.
func NewWithConfig(cfg *config.Config) (*Container, error) {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = config.DefaultDataDir()
	}

	st, err := store.Open(domain.DatabasePath(dataDir))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	if err := st.Initialize(); err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("initialize store: %w", err)
	}

	logger := logging.New(dataDir, logging.ParseLevel(cfg.LogLevel))
	handles := adapter.NewHandles()
	resolver := adapter.NewAskUserResolver()

	registry := adapter.NewRegistry()
	for name, b := range cfg.EnabledBackends() {
		a, err := buildAdapter(name, b, handles, resolver, logger)
		if err != nil {
			_ = st.Close()
			return nil, err
		}
		registry.Register(a)
	}

	return &Container{
		Goals:    st,
		Tasks:    st,
		Memories: st,
		Chats:    st,
		Clock:    domain.RealClock{},
		Registry: registry,
		Handles:  handles,
		Resolver: resolver,
		Logger:   logger,
		Store:    st,
		Config:   cfg,
		DataDir:  dataDir,
	}, nil
}

// buildAdapter constructs the adapter matching the backend's kind.
func buildAdapter(name string, b config.Backend, handles *adapter.Handles, resolver *adapter.AskUserResolver, logger domain.Logger) (domain.BackendAdapter, error) {
	switch b.Kind {
	case config.KindTextStream:
		return textstream.New(textstream.Config{
			ID:           name,
			Command:      b.Command,
			Args:         b.Args,
			ModelFlag:    b.ModelFlag,
			DefaultModel: b.DefaultModel,
			ResumeFlag:   b.ResumeFlag,
			Env:          b.Env,
			AuthTokens:   b.AuthTokens,
			RateTokens:   b.RateTokens,
			PromptInline: b.PromptInline,
		}, handles, logger), nil

	case config.KindJSONLine:
		dec, err := decoderFor(b.Decoder)
		if err != nil {
			return nil, fmt.Errorf("backend %q: %w", name, err)
		}
		return jsonline.New(jsonline.Config{
			Decoder:      dec,
			ID:           name,
			Command:      b.Command,
			Args:         b.Args,
			ModelFlag:    b.ModelFlag,
			DefaultModel: b.DefaultModel,
			ResumeFlag:   b.ResumeFlag,
			Env:          b.Env,
			AuthTokens:   b.AuthTokens,
		}, handles, logger), nil

	case config.KindACP:
		return acp.New(acp.Config{
			InactivityTimeout: b.InactivityTimeout(),
			ID:                name,
			Command:           b.Command,
			Args:              b.Args,
			ModelFlag:         b.ModelFlag,
			DefaultModel:      b.DefaultModel,
			ResumeFlag:        b.ResumeFlag,
			Env:               b.Env,
		}, handles, resolver, logger), nil

	default:
		return nil, fmt.Errorf("backend %q: unknown kind %q", name, b.Kind)
	}
}

func decoderFor(name string) (jsonline.Decoder, error) {
	switch name {
	case "claude", "":
		return jsonline.ClaudeDecoder{}, nil
	case "codex":
		return jsonline.CodexDecoder{}, nil
	default:
		return nil, fmt.Errorf("unknown decoder %q", name)
	}
}

// Close releases the container's resources.
func (c *Container) Close() error {
	var lastErr error
	if c.Logger != nil {
		if err := c.Logger.Close(); err != nil {
			lastErr = err
		}
	}
	if c.Store != nil {
		if err := c.Store.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}

// UseCase factory methods

// RunTurnUseCase returns a new RunTurn use case.
func (c *Container) RunTurnUseCase() *usecase.RunTurn {
	recorder := completion.NewRecorder(c.Tasks, c.Memories, c.Clock)
	return usecase.NewRunTurn(c.Registry, c.Chats, c.Goals, c.Tasks, c.Memories, recorder, c.Clock, c.Logger, c.Config.MaxConcurrent)
}

// AnswerQuestionUseCase returns a new AnswerQuestion use case.
func (c *Container) AnswerQuestionUseCase() *usecase.AnswerQuestion {
	return usecase.NewAnswerQuestion(c.Resolver)
}

// CancelTurnUseCase returns a new CancelTurn use case.
func (c *Container) CancelTurnUseCase() *usecase.CancelTurn {
	return usecase.NewCancelTurn(c.Handles)
}

// CreateTaskUseCase returns a new CreateTask use case.
func (c *Container) CreateTaskUseCase() *usecase.CreateTask {
	return usecase.NewCreateTask(c.Tasks, c.Goals, c.Clock, c.Logger)
}

// EditTaskUseCase returns a new EditTask use case.
func (c *Container) EditTaskUseCase() *usecase.EditTask {
	return usecase.NewEditTask(c.Tasks, c.Logger)
}

// ListTasksUseCase returns a new ListTasks use case.
func (c *Container) ListTasksUseCase() *usecase.ListTasks {
	return usecase.NewListTasks(c.Tasks)
}

// DeleteTaskUseCase returns a new DeleteTask use case.
func (c *Container) DeleteTaskUseCase() *usecase.DeleteTask {
	return usecase.NewDeleteTask(c.Tasks, c.Logger)
}

// CreateGoalUseCase returns a new CreateGoal use case.
func (c *Container) CreateGoalUseCase() *usecase.CreateGoal {
	return usecase.NewCreateGoal(c.Goals, c.Clock, c.Logger)
}

// ListGoalsUseCase returns a new ListGoals use case.
func (c *Container) ListGoalsUseCase() *usecase.ListGoals {
	return usecase.NewListGoals(c.Goals)
}

// ShowGoalUseCase returns a new ShowGoal use case.
func (c *Container) ShowGoalUseCase() *usecase.ShowGoal {
	return usecase.NewShowGoal(c.Goals, c.Tasks, c.Memories)
}

// DeleteGoalUseCase returns a new DeleteGoal use case.
func (c *Container) DeleteGoalUseCase() *usecase.DeleteGoal {
	return usecase.NewDeleteGoal(c.Goals, c.Logger)
}

// ImportPlanUseCase returns a new ImportPlan use case.
func (c *Container) ImportPlanUseCase() *usecase.ImportPlan {
	return usecase.NewImportPlan(c.Goals, c.Tasks, c.Clock, c.Logger)
}

// ListBackendsUseCase returns a new ListBackends use case.
func (c *Container) ListBackendsUseCase() *usecase.ListBackends {
	return usecase.NewListBackends(c.Registry, c.Config.Backends)
}
