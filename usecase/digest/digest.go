// Package digest builds the human-readable notification bodies sent by
// the bot. Everything here is a pure function of its inputs; callers
// supply both the items (already ordered) and the reference time.
package digest

import (
	"fmt"
	"strings"
	"time"

	"github.com/remindly/bot/domain"
)

// Empty-list sentinels. Scheduled digests always send a body, so an
// empty store never results in a silently skipped firing.
const (
	NoTodosAll     = "📋 <b>Todo list</b>\n\n✨ No todos yet"
	NoTodosPending = "📋 <b>Pending todos</b>\n\n✨ All caught up"
	NoTodosToday   = "📅 <b>Due today</b>\n\n✨ Nothing due today"
	NoUnreadLinks  = "📚 <b>Reading list</b>\n\n📭 No unread links"
)

const itemTimeLayout = "2006-01-02 15:04"

// TodoList renders todos one block per item. In "all" mode each block
// carries a status glyph; in "pending" mode the glyph is omitted since
// every item shares the same status. Ordering is caller-supplied.
func TodoList(todos []domain.Todo, mode domain.TodoListMode, now time.Time) string {
	if len(todos) == 0 {
		if mode == domain.TodoListPending {
			return NoTodosPending
		}
		return NoTodosAll
	}

	var sb strings.Builder
	if mode == domain.TodoListPending {
		sb.WriteString("📋 <b>Pending todos</b>\n")
	} else {
		sb.WriteString("📋 <b>Todo list</b>\n")
	}

	for _, todo := range todos {
		sb.WriteString("\n")
		if mode == domain.TodoListAll {
			sb.WriteString(statusGlyph(todo.Status))
			sb.WriteString(" ")
		} else {
			sb.WriteString("🔸 ")
		}
		fmt.Fprintf(&sb, "<code>%d</code>. %s\n", todo.ID, todo.Name)
		fmt.Fprintf(&sb, "   ⏱ created %s\n", todo.CreatedAt.In(now.Location()).Format(itemTimeLayout))
		if todo.Deadline != nil {
			fmt.Fprintf(&sb, "   ⏰ due %s (%s)\n",
				todo.Deadline.In(now.Location()).Format(itemTimeLayout),
				remainingLabel(*todo.Deadline, now))
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// MorningDigest is the daily reminder body: the pending list with
// remaining time per item, followed by the items due today. Each
// section keeps its own empty sentinel.
func MorningDigest(pending, dueToday []domain.Todo, now time.Time) string {
	var sb strings.Builder

	if len(pending) == 0 {
		sb.WriteString(NoTodosPending)
	} else {
		sb.WriteString("📋 <b>Pending todos</b>\n")
		for _, todo := range pending {
			sb.WriteString("\n🔸 ")
			fmt.Fprintf(&sb, "<code>%d</code>. %s", todo.ID, todo.Name)
			if todo.Deadline != nil {
				fmt.Fprintf(&sb, " — %s", remainingLabel(*todo.Deadline, now))
			}
		}
	}

	sb.WriteString("\n\n")

	if len(dueToday) == 0 {
		sb.WriteString(NoTodosToday)
	} else {
		sb.WriteString("⚠️ <b>Due today</b>\n")
		for _, todo := range dueToday {
			fmt.Fprintf(&sb, "\n❗️ <code>%d</code>. %s", todo.ID, todo.Name)
		}
	}

	return sb.String()
}

// LinkDigest renders the unread saved-links reminder.
func LinkDigest(links []domain.Link) string {
	if len(links) == 0 {
		return NoUnreadLinks
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 <b>Reading list</b> — %d unread\n", len(links))
	for _, link := range links {
		sb.WriteString("\n🔗 ")
		fmt.Fprintf(&sb, "<code>%d</code>. ", link.ID)
		if link.Title != "" {
			sb.WriteString(link.Title)
			sb.WriteString("\n   ")
		}
		sb.WriteString(link.URL)
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// LinkInfo renders one saved link in full, including its summary when
// the enrichment pass has produced one.
func LinkInfo(link domain.Link) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🔗 Link <code>%d</code>\n", link.ID)
	if link.Title != "" {
		fmt.Fprintf(&sb, "📝 %s\n", link.Title)
	}
	fmt.Fprintf(&sb, "🌐 %s\n", link.URL)
	if link.Summary != "" {
		fmt.Fprintf(&sb, "📋 %s\n", link.Summary)
	}
	fmt.Fprintf(&sb, "⏰ saved %s", link.CreatedAt.Format(itemTimeLayout))
	return sb.String()
}

func statusGlyph(status string) string {
	if status == domain.TodoStatusCompleted {
		return "✅"
	}
	return "🔸"
}

// remainingLabel annotates a deadline relative to now: whole days when
// at least one day remains, hours below that, and "expired" once passed.
func remainingLabel(deadline, now time.Time) string {
	if !deadline.After(now) {
		return "expired"
	}
	left := deadline.Sub(now)
	if days := int(left.Hours() / 24); days >= 1 {
		return fmt.Sprintf("%d days left", days)
	}
	if hours := int(left.Hours()); hours >= 1 {
		return fmt.Sprintf("%d hours left", hours)
	}
	return "less than an hour left"
}
