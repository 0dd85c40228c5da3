package domain

import "time"

// IntentKind identifies the classified meaning of one line of user text.
type IntentKind string

const (
	IntentCreate       IntentKind = "create"
	IntentComplete     IntentKind = "complete"
	IntentDelete       IntentKind = "delete"
	IntentChangeTime   IntentKind = "change_time"
	IntentReschedule   IntentKind = "reschedule"
	IntentSaveLink     IntentKind = "save_link"
	IntentListTodos    IntentKind = "list_todos"
	IntentMarkLinkRead IntentKind = "mark_link_read"
	IntentUnreadCount  IntentKind = "unread_count"
	IntentSummarize    IntentKind = "summarize"
)

// Intent is the classifier's result: one tagged intent per input line.
// Only the fields relevant to Kind are populated.
type Intent struct {
	Kind IntentKind

	// Create
	Name     string
	Deadline *time.Time

	// Complete, Delete, Reschedule, MarkLinkRead
	TodoID int64
	LinkID int64

	// ChangeTime: validated HH:MM wall-clock time.
	ClockTime string

	// SaveLink
	URL   string
	Title string

	// ListTodos
	ListMode TodoListMode
}
