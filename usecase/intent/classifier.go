package intent

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/remindly/bot/domain"
	"github.com/remindly/bot/pkg/chrono"
)

// urlPattern matches the first http(s) URL anywhere in a message.
var urlPattern = regexp.MustCompile(`https?://(?:[-\w.]|%[0-9a-fA-F]{2})+`)

// Classifier maps one line of user text onto exactly one intent.
// It is stateless per call: the same input and clock always produce
// the same result, and every input maps to one intent or one typed
// error. Classification has no side effects; callers execute the
// returned intent against the stores.
type Classifier struct {
	parser *chrono.Parser
}

func NewClassifier(parser *chrono.Parser) *Classifier {
	return &Classifier{parser: parser}
}

// Classify inspects trimmed text and returns its intent.
//
// URL detection takes priority over every command prefix, so a message
// that starts with "done" but contains a URL is a link save, not a
// completion. Command words match case-insensitively on the first
// whitespace-separated token, except "change", which is only a command
// when followed by "time" or "endtime"; anything unrecognized falls
// through to todo creation with optional deadline extraction.
func (c *Classifier) Classify(text string) (domain.Intent, error) {
	text = strings.TrimSpace(text)

	if url := urlPattern.FindString(text); url != "" {
		title := strings.TrimSpace(strings.Replace(text, url, "", 1))
		return domain.Intent{Kind: domain.IntentSaveLink, URL: url, Title: title}, nil
	}

	fields := strings.Fields(text)
	head := ""
	if len(fields) > 0 {
		head = strings.ToLower(fields[0])
	}

	if head == "change" && len(fields) >= 2 {
		if it, ok, err := c.classifyChange(fields); ok {
			return it, err
		}
	}

	switch head {
	case "done":
		id, err := parseID(fields, 2)
		if err != nil {
			return domain.Intent{}, err
		}
		return domain.Intent{Kind: domain.IntentComplete, TodoID: id}, nil

	case "delete":
		id, err := parseID(fields, 2)
		if err != nil {
			return domain.Intent{}, err
		}
		return domain.Intent{Kind: domain.IntentDelete, TodoID: id}, nil

	case "/demo":
		return domain.Intent{Kind: domain.IntentListTodos, ListMode: domain.TodoListAll}, nil

	case "/demoz":
		return domain.Intent{Kind: domain.IntentListTodos, ListMode: domain.TodoListPending}, nil

	case "/unread":
		return domain.Intent{Kind: domain.IntentUnreadCount}, nil

	case "/summarize":
		return domain.Intent{Kind: domain.IntentSummarize}, nil

	case "/read":
		id, err := parseID(fields, 2)
		if err != nil {
			return domain.Intent{}, err
		}
		return domain.Intent{Kind: domain.IntentMarkLinkRead, LinkID: id}, nil
	}

	// Unknown slash commands never fall through to todo creation,
	// except the explicit /todo no-deadline prefix.
	if strings.HasPrefix(head, "/") && head != "/todo" {
		return domain.Intent{}, domain.NewError(domain.ErrCodeInvalid, "unknown command "+head)
	}

	deadline, name, err := c.parser.ParseTodoInput(text)
	if err != nil {
		return domain.Intent{}, err
	}
	if name == "" {
		return domain.Intent{}, domain.ErrEmptyContent
	}
	return domain.Intent{Kind: domain.IntentCreate, Name: name, Deadline: deadline}, nil
}

// classifyChange handles the two-word prefixes "change time <HH:MM>"
// and "change endtime <id> <timestamp>". Any other second word is not
// a command: ok is false and the text falls through to todo creation.
func (c *Classifier) classifyChange(fields []string) (domain.Intent, bool, error) {
	switch strings.ToLower(fields[1]) {
	case "time":
		if len(fields) != 3 {
			return domain.Intent{}, true, domain.ErrMalformedClock
		}
		if _, _, err := chrono.ParseClock(fields[2]); err != nil {
			return domain.Intent{}, true, err
		}
		return domain.Intent{Kind: domain.IntentChangeTime, ClockTime: fields[2]}, true, nil

	case "endtime":
		if len(fields) < 4 {
			return domain.Intent{}, true, domain.NewError(domain.ErrCodeInvalid,
				"usage: change endtime <id> YYYY-MM-DD [HH:MM]")
		}
		id, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return domain.Intent{}, true, domain.ErrInvalidID
		}
		deadline, err := c.parser.ParseDeadline(strings.Join(fields[3:], " "))
		if err != nil {
			return domain.Intent{}, true, err
		}
		return domain.Intent{Kind: domain.IntentReschedule, TodoID: id, Deadline: deadline}, true, nil
	}

	return domain.Intent{}, false, nil
}

func parseID(fields []string, wantLen int) (int64, error) {
	if len(fields) != wantLen {
		return 0, domain.ErrInvalidID
	}
	id, err := strconv.ParseInt(fields[wantLen-1], 10, 64)
	if err != nil {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
