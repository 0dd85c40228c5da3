// Package command executes classified intents against the stores and
// turns both results and failures into a single Telegram reply. Every
// inbound message yields exactly one reply body.
package command

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/remindly/bot/domain"
	"github.com/remindly/bot/pkg/chrono"
	"github.com/remindly/bot/repository"
	"github.com/remindly/bot/usecase/digest"
	"github.com/remindly/bot/usecase/intent"
)

// ReminderControl moves a scheduled reminder job to a new fire time.
type ReminderControl interface {
	SetJobTime(name string, hour, minute int) error
}

// Enricher accepts freshly saved links for background title and
// summary enrichment.
type Enricher interface {
	Enqueue(link *domain.Link, wantTitle bool)
}

// Summarizer generates a link summary on demand, for /summarize.
type Summarizer interface {
	Summarize(ctx context.Context, url, title string) (string, error)
}

type Service struct {
	classifier *intent.Classifier
	parser     *chrono.Parser
	todos      repository.TodoRepository
	links      repository.LinkRepository
	state      repository.BotStateRepository
	reminders  ReminderControl
	enricher   Enricher
	summarizer Summarizer
	logger     *zap.Logger
}

func NewService(
	classifier *intent.Classifier,
	parser *chrono.Parser,
	todos repository.TodoRepository,
	links repository.LinkRepository,
	state repository.BotStateRepository,
	reminders ReminderControl,
	enricher Enricher,
	summarizer Summarizer,
	logger *zap.Logger,
) *Service {
	return &Service{
		classifier: classifier,
		parser:     parser,
		todos:      todos,
		links:      links,
		state:      state,
		reminders:  reminders,
		enricher:   enricher,
		summarizer: summarizer,
		logger:     logger,
	}
}

// HandleText classifies and executes one inbound message, returning
// the reply body. Errors never escape: they become the reply.
func (s *Service) HandleText(ctx context.Context, chatID int64, text string) string {
	it, err := s.classifier.Classify(text)
	if err != nil {
		return errorReply(err)
	}

	reply, err := s.execute(ctx, chatID, it)
	if err != nil {
		if domain.CodeOf(err) == domain.ErrCodeInternal {
			s.logger.Error("executing command failed",
				zap.String("intent", string(it.Kind)),
				zap.Error(err))
		}
		return errorReply(err)
	}
	return reply
}

func (s *Service) execute(ctx context.Context, chatID int64, it domain.Intent) (string, error) {
	switch it.Kind {
	case domain.IntentCreate:
		return s.createTodo(ctx, it)
	case domain.IntentComplete:
		return s.completeTodo(ctx, it.TodoID)
	case domain.IntentDelete:
		return s.deleteTodo(ctx, it.TodoID)
	case domain.IntentReschedule:
		return s.rescheduleTodo(ctx, it.TodoID, it.Deadline)
	case domain.IntentChangeTime:
		return s.changeReminderTime(ctx, it.ClockTime)
	case domain.IntentSaveLink:
		return s.saveLink(ctx, chatID, it.URL, it.Title)
	case domain.IntentListTodos:
		return s.listTodos(ctx, it.ListMode)
	case domain.IntentUnreadCount:
		return s.unreadCount(ctx, chatID)
	case domain.IntentMarkLinkRead:
		return s.markLinkRead(ctx, it.LinkID)
	case domain.IntentSummarize:
		return s.summarizeRandom(ctx, chatID)
	}
	return "", domain.NewError(domain.ErrCodeInternal, "unhandled intent "+string(it.Kind))
}

func (s *Service) createTodo(ctx context.Context, it domain.Intent) (string, error) {
	todo, err := s.todos.Create(ctx, it.Name, it.Deadline)
	if err != nil {
		return "", err
	}
	reply := fmt.Sprintf("✅ Todo <code>%d</code> saved: %s", todo.ID, todo.Name)
	if todo.Deadline != nil {
		reply += fmt.Sprintf("\n⏰ due %s", s.format(*todo.Deadline))
	}
	return reply, nil
}

func (s *Service) completeTodo(ctx context.Context, id int64) (string, error) {
	todo, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if todo.IsCompleted() {
		return "", domain.ErrAlreadyCompleted
	}
	if err := s.todos.SetStatus(ctx, id, domain.TodoStatusCompleted); err != nil {
		return "", err
	}
	return fmt.Sprintf("🎉 Todo <code>%d</code> completed: %s", todo.ID, todo.Name), nil
}

func (s *Service) deleteTodo(ctx context.Context, id int64) (string, error) {
	if err := s.todos.Delete(ctx, id); err != nil {
		return "", err
	}
	return fmt.Sprintf("🗑 Todo <code>%d</code> deleted", id), nil
}

func (s *Service) rescheduleTodo(ctx context.Context, id int64, deadline *time.Time) (string, error) {
	todo, err := s.todos.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if todo.IsCompleted() {
		return "", domain.ErrCompletedDeadline
	}
	if err := s.todos.SetDeadline(ctx, id, *deadline); err != nil {
		return "", err
	}
	return fmt.Sprintf("⏰ Todo <code>%d</code> deadline changed to %s", id, s.format(*deadline)), nil
}

func (s *Service) changeReminderTime(ctx context.Context, clock string) (string, error) {
	hour, minute, err := chrono.ParseClock(clock)
	if err != nil {
		return "", err
	}
	if err := s.reminders.SetJobTime(domain.ReminderJobMorning, hour, minute); err != nil {
		return "", err
	}
	if err := s.state.SetReminderTime(ctx, clock); err != nil {
		// The running scheduler already moved; only persistence failed.
		s.logger.Error("persisting reminder time failed", zap.Error(err))
	}
	return fmt.Sprintf("⏰ Daily reminder moved to %s", clock), nil
}

func (s *Service) saveLink(ctx context.Context, chatID int64, url, title string) (string, error) {
	link, err := s.links.Create(ctx, chatID, url, title)
	if err != nil {
		return "", err
	}
	s.enricher.Enqueue(link, title == "")

	reply := fmt.Sprintf("🔖 Link <code>%d</code> saved", link.ID)
	if link.Title != "" {
		reply += ": " + link.Title
	}
	return reply, nil
}

func (s *Service) listTodos(ctx context.Context, mode domain.TodoListMode) (string, error) {
	todos, err := s.todos.List(ctx, repository.TodoFilter{
		Mode:  mode,
		Order: repository.TodoOrderDeadlineAsc,
	})
	if err != nil {
		return "", err
	}
	return digest.TodoList(todos, mode, s.parser.Now()), nil
}

func (s *Service) unreadCount(ctx context.Context, chatID int64) (string, error) {
	count, err := s.links.UnreadCount(ctx, chatID)
	if err != nil {
		return "", err
	}
	if count == 0 {
		return digest.NoUnreadLinks, nil
	}
	return fmt.Sprintf("📚 %d unread links", count), nil
}

func (s *Service) markLinkRead(ctx context.Context, id int64) (string, error) {
	link, err := s.links.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	if link.Read {
		return "", domain.ErrAlreadyRead
	}
	if err := s.links.MarkRead(ctx, id); err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Link <code>%d</code> marked read", id), nil
}

// summarizeRandom picks one unread link, generates a summary when the
// enrichment pass has not produced one yet, and replies with full info.
func (s *Service) summarizeRandom(ctx context.Context, chatID int64) (string, error) {
	link, err := s.links.RandomUnread(ctx, chatID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return digest.NoUnreadLinks, nil
		}
		return "", err
	}

	if link.Summary == "" {
		summary, err := s.summarizer.Summarize(ctx, link.URL, link.Title)
		if err != nil {
			return "", domain.WrapError(domain.ErrCodeInternal, "generating summary", err)
		}
		if err := s.links.UpdateSummary(ctx, link.ID, summary); err != nil {
			return "", err
		}
		link.Summary = summary
	}

	return digest.LinkInfo(*link), nil
}

func (s *Service) format(t time.Time) string {
	return t.In(s.parser.Location()).Format(chrono.DeadlineLayout)
}

// errorReply maps a typed error to its user-facing reply. Unclassified
// failures get a generic apology so internals never leak into chat.
func errorReply(err error) string {
	code := domain.CodeOf(err)
	if code == domain.ErrCodeInternal {
		return "⚠️ Something went wrong, please try again"
	}

	var dErr *domain.Error
	if errors.As(err, &dErr) {
		return "⚠️ " + dErr.Message
	}
	return "⚠️ Something went wrong, please try again"
}
