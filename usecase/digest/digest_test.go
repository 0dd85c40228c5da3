package digest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/remindly/bot/domain"
)

var testLoc = time.FixedZone("CST", 8*3600)

func deadline(t time.Time) *time.Time { return &t }

func TestTodoListSentinels(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, testLoc)

	all := TodoList(nil, domain.TodoListAll, now)
	pending := TodoList(nil, domain.TodoListPending, now)

	assert.Equal(t, NoTodosAll, all)
	assert.Equal(t, NoTodosPending, pending)
	assert.NotEqual(t, all, pending, "modes must use distinct wording")
}

func TestTodoListRendering(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, testLoc)
	todos := []domain.Todo{
		{
			ID:        1,
			Name:      "buy milk",
			Status:    domain.TodoStatusPending,
			CreatedAt: time.Date(2025, 5, 30, 8, 0, 0, 0, testLoc),
			Deadline:  deadline(time.Date(2025, 6, 3, 18, 0, 0, 0, testLoc)),
		},
		{
			ID:        2,
			Name:      "file taxes",
			Status:    domain.TodoStatusCompleted,
			CreatedAt: time.Date(2025, 5, 1, 8, 0, 0, 0, testLoc),
		},
	}

	t.Run("all mode shows glyphs", func(t *testing.T) {
		out := TodoList(todos, domain.TodoListAll, now)
		assert.Contains(t, out, "<code>1</code>. buy milk")
		assert.Contains(t, out, "✅")
		assert.Contains(t, out, "2 days left")
		assert.Contains(t, out, "created 2025-05-30 08:00")
	})

	t.Run("pending mode has no completed glyph", func(t *testing.T) {
		out := TodoList(todos[:1], domain.TodoListPending, now)
		assert.NotContains(t, out, "✅")
		assert.Contains(t, out, "buy milk")
	})

	t.Run("expired deadline", func(t *testing.T) {
		overdue := []domain.Todo{{
			ID:        3,
			Name:      "return book",
			Status:    domain.TodoStatusPending,
			CreatedAt: now.AddDate(0, 0, -10),
			Deadline:  deadline(now.AddDate(0, 0, -1)),
		}}
		out := TodoList(overdue, domain.TodoListAll, now)
		assert.Contains(t, out, "expired")
	})

	t.Run("hours remaining below one day", func(t *testing.T) {
		soon := []domain.Todo{{
			ID:        4,
			Name:      "submit report",
			Status:    domain.TodoStatusPending,
			CreatedAt: now,
			Deadline:  deadline(now.Add(5 * time.Hour)),
		}}
		out := TodoList(soon, domain.TodoListAll, now)
		assert.Contains(t, out, "5 hours left")
	})
}

func TestMorningDigest(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, testLoc)

	t.Run("empty sections keep sentinels", func(t *testing.T) {
		out := MorningDigest(nil, nil, now)
		assert.Contains(t, out, NoTodosPending)
		assert.Contains(t, out, NoTodosToday)
		assert.NotEmpty(t, out)
	})

	t.Run("sections render independently", func(t *testing.T) {
		pending := []domain.Todo{{
			ID:       5,
			Name:     "water plants",
			Status:   domain.TodoStatusPending,
			Deadline: deadline(time.Date(2025, 6, 1, 18, 0, 0, 0, testLoc)),
		}}
		out := MorningDigest(pending, pending, now)
		assert.Contains(t, out, "<code>5</code>. water plants")
		assert.Contains(t, out, "Due today")
		assert.NotContains(t, out, NoTodosPending)
		assert.NotContains(t, out, NoTodosToday)
	})
}

func TestLinkDigest(t *testing.T) {
	assert.Equal(t, NoUnreadLinks, LinkDigest(nil))

	links := []domain.Link{
		{ID: 1, URL: "https://example.com/a", Title: "A Post"},
		{ID: 2, URL: "https://example.com/b"},
	}
	out := LinkDigest(links)
	assert.Contains(t, out, "2 unread")
	assert.Contains(t, out, "A Post")
	assert.Contains(t, out, "https://example.com/b")
}

func TestLinkInfo(t *testing.T) {
	link := domain.Link{
		ID:        9,
		URL:       "https://example.com/q",
		Title:     "Quarterly Notes",
		Summary:   "A short summary.",
		CreatedAt: time.Date(2025, 6, 1, 10, 30, 0, 0, testLoc),
	}
	out := LinkInfo(link)
	assert.Contains(t, out, "<code>9</code>")
	assert.Contains(t, out, "Quarterly Notes")
	assert.Contains(t, out, "A short summary.")
	assert.Contains(t, out, "saved 2025-06-01 10:30")
}
