package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/ProjectAI00/relay/internal/app"
	"github.com/ProjectAI00/relay/internal/domain"
	"github.com/ProjectAI00/relay/internal/sanitize"
	"github.com/ProjectAI00/relay/internal/usecase"
)

// newChatCommand creates the chat command for running one turn.
func newChatCommand(c *app.Container) *cobra.Command {
	var opts struct {
		Backend string
		ChatID  string
		SubID   string
		Model   string
		Mode    string
		GoalID  string
		TaskID  string
		Cwd     string
	}

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Run one turn against a backend and stream the reply",
		Long: `Run a single prompt/response exchange with a configured backend.

The reply streams to stdout as it arrives. Re-using --sub continues
the same sub-conversation: history is injected and the backend session
is resumed when the backend supports it.

Examples:
  # One-shot question
  relay chat --backend claude "explain this panic"

  # Continue a conversation
  relay chat --backend claude --sub fix-build "now fix it"

  # Work a task in agent mode
  relay chat --backend claude --mode agent --task <task-id> "do the task"

  # Plan a goal; emitted plan blocks become goals/tasks
  relay chat --backend claude --mode plan "plan the v2 migration"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Cwd == "" {
				cwd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("get current directory: %w", err)
				}
				opts.Cwd = cwd
			}
			if opts.SubID == "" {
				opts.SubID = uuid.NewString()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			in := domain.TurnInput{
				ConversationID:    opts.ChatID,
				SubConversationID: opts.SubID,
				Prompt:            args[0],
				Cwd:               opts.Cwd,
				Backend:           opts.Backend,
				Model:             opts.Model,
				GoalID:            opts.GoalID,
				TaskID:            opts.TaskID,
				Mode:              domain.Mode(opts.Mode),
			}
			chunks, err := c.RunTurnUseCase().Execute(ctx, in)
			if err != nil {
				return err
			}
			return streamChunks(cmd, c, chunks)
		},
	}

	cmd.Flags().StringVarP(&opts.Backend, "backend", "b", "", "Backend to use (required)")
	cmd.Flags().StringVar(&opts.ChatID, "chat", "", "Chat id (default: derived from --sub)")
	cmd.Flags().StringVar(&opts.SubID, "sub", "", "Sub-conversation id to continue (default: new)")
	cmd.Flags().StringVarP(&opts.Model, "model", "m", "", "Model override")
	cmd.Flags().StringVar(&opts.Mode, "mode", "ask", "Turn mode: ask, agent, or plan")
	cmd.Flags().StringVar(&opts.GoalID, "goal", "", "Inject this goal's context")
	cmd.Flags().StringVar(&opts.TaskID, "task", "", "Inject this task's context")
	cmd.Flags().StringVar(&opts.Cwd, "cwd", "", "Working directory for the backend (default: current)")
	_ = cmd.MarkFlagRequired("backend")

	return cmd
}

// streamChunks renders the chunk stream: text to stdout, tool activity and
// errors to stderr, questions answered interactively from stdin.
func streamChunks(cmd *cobra.Command, c *app.Container, chunks <-chan domain.Chunk) error {
	stdout := cmd.OutOrStdout()
	stderr := cmd.ErrOrStderr()
	stdin := bufio.NewScanner(cmd.InOrStdin())

	var turnErr error
	for chunk := range chunks {
		switch chunk.Type {
		case domain.ChunkTextDelta:
			fmt.Fprint(stdout, sanitize.Clean(chunk.Text))

		case domain.ChunkTextEnd:
			fmt.Fprintln(stdout)

		case domain.ChunkToolInputAvailable:
			fmt.Fprintln(stderr, styleMuted.Render(fmt.Sprintf("[tool] %s", chunk.ToolName)))

		case domain.ChunkToolOutputError:
			fmt.Fprintln(stderr, styleError.Render(fmt.Sprintf("[tool error] %s", firstLine(chunk.ToolOutput))))

		case domain.ChunkAskUserQuestion:
			answerQuestion(c, stdin, stderr, chunk)

		case domain.ChunkAskUserQuestionTimeout:
			fmt.Fprintln(stderr, styleMuted.Render("[question timed out]"))

		case domain.ChunkTasksCreated:
			fmt.Fprintln(stderr, styleDone.Render(fmt.Sprintf("[created %d task(s)] %s", len(chunk.TaskIDs), strings.Join(chunk.TaskIDs, ", "))))

		case domain.ChunkGoalCreated:
			fmt.Fprintln(stderr, styleDone.Render(fmt.Sprintf("[created goal] %s", chunk.GoalID)))

		case domain.ChunkAuthError:
			turnErr = fmt.Errorf("%s: authentication required: %s", chunk.Backend, chunk.ErrorMessage)

		case domain.ChunkError:
			if chunk.ErrorKind != domain.ErrorKindCancelled {
				turnErr = fmt.Errorf("%s: %s", chunk.ErrorKind, chunk.ErrorMessage)
			}
		}
	}
	return turnErr
}

// answerQuestion prompts the operator on stderr and delivers the chosen
// answer to the waiting stream.
func answerQuestion(c *app.Container, stdin *bufio.Scanner, stderr io.Writer, chunk domain.Chunk) {
	q := chunk.Question
	if q == nil {
		return
	}

	fmt.Fprintln(stderr, styleHeading.Render(q.Prompt))
	for i, opt := range q.Options {
		fmt.Fprintf(stderr, "  %d) %s\n", i+1, opt)
	}
	fmt.Fprint(stderr, "> ")

	if !stdin.Scan() {
		return // Stdin closed; the resolver times the question out.
	}
	answer := strings.TrimSpace(stdin.Text())
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(q.Options) {
		answer = q.Options[n-1]
	}

	err := c.AnswerQuestionUseCase().Execute(context.Background(), usecase.AnswerQuestionInput{
		ToolCallID: q.ToolCallID,
		Answers:    []string{answer},
	})
	if err != nil {
		fmt.Fprintln(stderr, styleError.Render(fmt.Sprintf("answer not delivered: %v", err)))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
