package command

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/remindly/bot/domain"
	"github.com/remindly/bot/pkg/chrono"
	"github.com/remindly/bot/repository"
	"github.com/remindly/bot/usecase/intent"
)

var testZone = time.FixedZone("CST", 8*3600)

func testNow() time.Time {
	return time.Date(2025, 6, 2, 12, 0, 0, 0, testZone)
}

type fakeTodoRepo struct {
	nextID int64
	todos  map[int64]*domain.Todo
}

func newFakeTodoRepo() *fakeTodoRepo {
	return &fakeTodoRepo{todos: make(map[int64]*domain.Todo)}
}

func (f *fakeTodoRepo) Create(_ context.Context, name string, deadline *time.Time) (*domain.Todo, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrEmptyContent
	}
	f.nextID++
	todo := &domain.Todo{
		ID:        f.nextID,
		Name:      name,
		Status:    domain.TodoStatusPending,
		Deadline:  deadline,
		CreatedAt: testNow(),
	}
	f.todos[todo.ID] = todo
	return todo, nil
}

func (f *fakeTodoRepo) GetByID(_ context.Context, id int64) (*domain.Todo, error) {
	todo, ok := f.todos[id]
	if !ok {
		return nil, domain.ErrTodoNotFound
	}
	copied := *todo
	return &copied, nil
}

func (f *fakeTodoRepo) SetStatus(_ context.Context, id int64, status string) error {
	todo, ok := f.todos[id]
	if !ok {
		return domain.ErrTodoNotFound
	}
	todo.Status = status
	return nil
}

func (f *fakeTodoRepo) SetDeadline(_ context.Context, id int64, deadline time.Time) error {
	todo, ok := f.todos[id]
	if !ok {
		return domain.ErrTodoNotFound
	}
	todo.Deadline = &deadline
	return nil
}

func (f *fakeTodoRepo) Delete(_ context.Context, id int64) error {
	if _, ok := f.todos[id]; !ok {
		return domain.ErrTodoNotFound
	}
	delete(f.todos, id)
	return nil
}

func (f *fakeTodoRepo) List(_ context.Context, filter repository.TodoFilter) ([]domain.Todo, error) {
	var out []domain.Todo
	for _, todo := range f.todos {
		if filter.Mode == domain.TodoListPending && todo.IsCompleted() {
			continue
		}
		out = append(out, *todo)
	}
	return out, nil
}

func (f *fakeTodoRepo) ListDueOn(_ context.Context, day time.Time) ([]domain.Todo, error) {
	next := day.AddDate(0, 0, 1)
	var out []domain.Todo
	for _, todo := range f.todos {
		if todo.Deadline == nil {
			continue
		}
		if !todo.Deadline.Before(day) && todo.Deadline.Before(next) {
			out = append(out, *todo)
		}
	}
	return out, nil
}

type fakeLinkRepo struct {
	nextID int64
	links  map[int64]*domain.Link
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[int64]*domain.Link)}
}

func (f *fakeLinkRepo) Create(_ context.Context, ownerID int64, url, title string) (*domain.Link, error) {
	f.nextID++
	link := &domain.Link{ID: f.nextID, OwnerID: ownerID, URL: url, Title: title, CreatedAt: testNow()}
	f.links[link.ID] = link
	return link, nil
}

func (f *fakeLinkRepo) GetByID(_ context.Context, id int64) (*domain.Link, error) {
	link, ok := f.links[id]
	if !ok {
		return nil, domain.ErrLinkNotFound
	}
	copied := *link
	return &copied, nil
}

func (f *fakeLinkRepo) ListUnread(_ context.Context, ownerID int64, limit int) ([]domain.Link, error) {
	var out []domain.Link
	for _, link := range f.links {
		if link.OwnerID == ownerID && !link.Read {
			out = append(out, *link)
		}
	}
	return out, nil
}

func (f *fakeLinkRepo) RandomUnread(_ context.Context, ownerID int64) (*domain.Link, error) {
	for _, link := range f.links {
		if link.OwnerID == ownerID && !link.Read {
			copied := *link
			return &copied, nil
		}
	}
	return nil, domain.ErrLinkNotFound
}

func (f *fakeLinkRepo) UnreadCount(_ context.Context, ownerID int64) (int, error) {
	count := 0
	for _, link := range f.links {
		if link.OwnerID == ownerID && !link.Read {
			count++
		}
	}
	return count, nil
}

func (f *fakeLinkRepo) MarkRead(_ context.Context, id int64) error {
	link, ok := f.links[id]
	if !ok {
		return domain.ErrLinkNotFound
	}
	link.Read = true
	at := testNow()
	link.ReadAt = &at
	return nil
}

func (f *fakeLinkRepo) UpdateTitle(_ context.Context, id int64, title string) error {
	link, ok := f.links[id]
	if !ok {
		return domain.ErrLinkNotFound
	}
	link.Title = title
	return nil
}

func (f *fakeLinkRepo) UpdateSummary(_ context.Context, id int64, summary string) error {
	link, ok := f.links[id]
	if !ok {
		return domain.ErrLinkNotFound
	}
	link.Summary = summary
	return nil
}

type fakeState struct {
	offset       int64
	reminderTime string
}

func (f *fakeState) UpdateOffset(context.Context) (int64, error)          { return f.offset, nil }
func (f *fakeState) SetUpdateOffset(_ context.Context, o int64) error     { f.offset = o; return nil }
func (f *fakeState) ReminderTime(context.Context) (string, error)         { return f.reminderTime, nil }
func (f *fakeState) SetReminderTime(_ context.Context, c string) error    { f.reminderTime = c; return nil }

type fakeReminders struct {
	job    string
	hour   int
	minute int
}

func (f *fakeReminders) SetJobTime(name string, hour, minute int) error {
	f.job, f.hour, f.minute = name, hour, minute
	return nil
}

type fakeEnricher struct {
	queued    []int64
	wantTitle []bool
}

func (f *fakeEnricher) Enqueue(link *domain.Link, wantTitle bool) {
	f.queued = append(f.queued, link.ID)
	f.wantTitle = append(f.wantTitle, wantTitle)
}

type fakeSummarizer struct {
	summary string
	err     error
	calls   int
}

func (f *fakeSummarizer) Summarize(_ context.Context, url, title string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}

type harness struct {
	svc        *Service
	todos      *fakeTodoRepo
	links      *fakeLinkRepo
	state      *fakeState
	reminders  *fakeReminders
	enricher   *fakeEnricher
	summarizer *fakeSummarizer
}

func newHarness() *harness {
	parser := chrono.NewParser(testZone, chrono.FixedClock{At: testNow()})
	h := &harness{
		todos:      newFakeTodoRepo(),
		links:      newFakeLinkRepo(),
		state:      &fakeState{},
		reminders:  &fakeReminders{},
		enricher:   &fakeEnricher{},
		summarizer: &fakeSummarizer{summary: "a short summary"},
	}
	h.svc = NewService(
		intent.NewClassifier(parser),
		parser,
		h.todos,
		h.links,
		h.state,
		h.reminders,
		h.enricher,
		h.summarizer,
		zap.NewNop(),
	)
	return h
}

func TestCreateTodoWithDeadline(t *testing.T) {
	h := newHarness()

	reply := h.svc.HandleText(context.Background(), 42, "2025-06-10, buy milk")

	assert.Contains(t, reply, "Todo <code>1</code> saved")
	assert.Contains(t, reply, "due 2025-06-10 18:00")
	require.Len(t, h.todos.todos, 1)
	require.NotNil(t, h.todos.todos[1].Deadline)
	assert.Equal(t, "buy milk", h.todos.todos[1].Name)
}

func TestCreateTodoWithoutDeadline(t *testing.T) {
	h := newHarness()

	reply := h.svc.HandleText(context.Background(), 42, "/todo call dentist")

	assert.Contains(t, reply, "saved: call dentist")
	assert.Nil(t, h.todos.todos[1].Deadline)
}

func TestCreateTodoStartingWithChange(t *testing.T) {
	h := newHarness()

	reply := h.svc.HandleText(context.Background(), 42, "change the oil filter")

	assert.Contains(t, reply, "saved: change the oil filter")
	require.Len(t, h.todos.todos, 1)
}

func TestCompleteTodo(t *testing.T) {
	h := newHarness()
	h.svc.HandleText(context.Background(), 42, "/todo call dentist")

	reply := h.svc.HandleText(context.Background(), 42, "done 1")
	assert.Contains(t, reply, "completed")
	assert.Equal(t, domain.TodoStatusCompleted, h.todos.todos[1].Status)

	reply = h.svc.HandleText(context.Background(), 42, "done 1")
	assert.Contains(t, reply, "already completed")
}

func TestDeleteTodo(t *testing.T) {
	h := newHarness()
	h.svc.HandleText(context.Background(), 42, "/todo call dentist")

	reply := h.svc.HandleText(context.Background(), 42, "delete 1")
	assert.Contains(t, reply, "deleted")
	assert.Empty(t, h.todos.todos)

	reply = h.svc.HandleText(context.Background(), 42, "delete 1")
	assert.Contains(t, reply, "not found")
}

func TestRescheduleTodo(t *testing.T) {
	h := newHarness()
	h.svc.HandleText(context.Background(), 42, "/todo call dentist")

	reply := h.svc.HandleText(context.Background(), 42, "change endtime 1 2030-01-01")
	assert.Contains(t, reply, "deadline changed to 2030-01-01 18:00")

	require.NotNil(t, h.todos.todos[1].Deadline)
	assert.Equal(t, 18, h.todos.todos[1].Deadline.Hour())
}

func TestRescheduleCompletedTodoRefused(t *testing.T) {
	h := newHarness()
	h.svc.HandleText(context.Background(), 42, "/todo call dentist")
	h.svc.HandleText(context.Background(), 42, "done 1")

	reply := h.svc.HandleText(context.Background(), 42, "change endtime 1 2030-01-01")

	assert.Contains(t, reply, "completed todo")
	assert.Nil(t, h.todos.todos[1].Deadline)
}

func TestChangeReminderTime(t *testing.T) {
	h := newHarness()

	reply := h.svc.HandleText(context.Background(), 42, "change time 21:30")

	assert.Contains(t, reply, "21:30")
	assert.Equal(t, domain.ReminderJobMorning, h.reminders.job)
	assert.Equal(t, 21, h.reminders.hour)
	assert.Equal(t, 30, h.reminders.minute)
	assert.Equal(t, "21:30", h.state.reminderTime, "new time must be persisted")
}

func TestSaveLinkQueuesEnrichment(t *testing.T) {
	h := newHarness()

	reply := h.svc.HandleText(context.Background(), 42, "https://example.com/article")

	assert.Contains(t, reply, "Link <code>1</code> saved")
	require.Len(t, h.enricher.queued, 1)
	assert.True(t, h.enricher.wantTitle[0], "bare URL must request title scraping")
}

func TestSaveLinkWithCaption(t *testing.T) {
	h := newHarness()

	reply := h.svc.HandleText(context.Background(), 42, "great read https://example.com/article")

	assert.Contains(t, reply, "great read")
	assert.Equal(t, "great read", h.links.links[1].Title)
	require.Len(t, h.enricher.wantTitle, 1)
	assert.False(t, h.enricher.wantTitle[0])
}

func TestURLBeatsCommandPrefix(t *testing.T) {
	h := newHarness()

	h.svc.HandleText(context.Background(), 42, "done https://example.com")

	assert.Empty(t, h.todos.todos, "message with a URL must never touch todos")
	assert.Len(t, h.links.links, 1)
}

func TestUnreadCount(t *testing.T) {
	h := newHarness()

	reply := h.svc.HandleText(context.Background(), 42, "/unread")
	assert.Contains(t, reply, "No unread links")

	h.svc.HandleText(context.Background(), 42, "https://example.com/a")
	h.svc.HandleText(context.Background(), 42, "https://example.com/b")

	reply = h.svc.HandleText(context.Background(), 42, "/unread")
	assert.Contains(t, reply, "2 unread links")
}

func TestMarkLinkRead(t *testing.T) {
	h := newHarness()
	h.svc.HandleText(context.Background(), 42, "https://example.com/a")

	reply := h.svc.HandleText(context.Background(), 42, "/read 1")
	assert.Contains(t, reply, "marked read")
	assert.True(t, h.links.links[1].Read)

	reply = h.svc.HandleText(context.Background(), 42, "/read 1")
	assert.Contains(t, reply, "already marked read")
}

func TestSummarizeGeneratesAndStores(t *testing.T) {
	h := newHarness()
	h.svc.HandleText(context.Background(), 42, "some article https://example.com/a")

	reply := h.svc.HandleText(context.Background(), 42, "/summarize")

	assert.Contains(t, reply, "a short summary")
	assert.Equal(t, "a short summary", h.links.links[1].Summary)
	assert.Equal(t, 1, h.summarizer.calls)

	// A stored summary is reused, not regenerated.
	h.svc.HandleText(context.Background(), 42, "/summarize")
	assert.Equal(t, 1, h.summarizer.calls)
}

func TestSummarizeWithNoUnreadLinks(t *testing.T) {
	h := newHarness()

	reply := h.svc.HandleText(context.Background(), 42, "/summarize")

	assert.Contains(t, reply, "No unread links")
}

func TestErrorReplies(t *testing.T) {
	h := newHarness()

	cases := []struct {
		name string
		text string
		want string
	}{
		{"malformed timestamp", "2025-13-45, buy milk", "YYYY-MM-DD"},
		{"past deadline", "2020-01-01, buy milk", "future"},
		{"empty content", "2030-01-01,   ", "must not be empty"},
		{"bad id", "done abc", "id must be an integer"},
		{"unknown command", "/frobnicate", "unknown command"},
		{"bad clock", "change time 25:00", "HH:MM"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reply := h.svc.HandleText(context.Background(), 42, tc.text)
			assert.Contains(t, reply, tc.want)
			assert.True(t, strings.HasPrefix(reply, "⚠️"), fmt.Sprintf("error reply %q must carry the warning prefix", reply))
		})
	}
}
