package chrono

import (
	"strings"
	"time"

	"github.com/remindly/bot/domain"
)

const (
	// DeadlineLayout is the only accepted deadline format. A bare date
	// (DateLayout) is augmented with DefaultDeadlineClock before parsing.
	DeadlineLayout = "2006-01-02 15:04"
	DateLayout     = "2006-01-02"
	ClockLayout    = "15:04"

	// DefaultDeadlineClock is appended when the user supplies a date only.
	DefaultDeadlineClock = "18:00"

	// noDeadlinePrefix explicitly marks a todo without a deadline.
	noDeadlinePrefix = "/todo"
)

// Parser turns free-form todo text into an optional deadline plus the
// remaining content. All timestamps are interpreted as wall-clock times
// in one fixed timezone and validated to be strictly in the future.
type Parser struct {
	loc   *time.Location
	clock Clock
}

// NewParser builds a Parser bound to the given timezone and clock.
func NewParser(loc *time.Location, clock Clock) *Parser {
	if loc == nil {
		loc = time.Local
	}
	if clock == nil {
		clock = SystemClock{}
	}
	return &Parser{loc: loc, clock: clock}
}

// Location returns the timezone all parsing and comparisons use.
func (p *Parser) Location() *time.Location { return p.loc }

// Now returns the current time in the parser's timezone.
func (p *Parser) Now() time.Time { return p.clock.Now().In(p.loc) }

// ParseTodoInput splits text into an optional deadline and the todo content.
//
// Supported forms:
//
//	"2025-01-14 09:30, buy milk"  -> deadline + content
//	"2025-01-14, buy milk"        -> date gets the 18:00 default clock
//	"/todo buy milk"              -> explicit no-deadline content
//	"buy milk"                    -> no deadline
//
// Only the first comma splits candidate timestamp from content. A comma
// with a candidate that does not match the layout is a malformed
// timestamp, and whitespace-only content after a valid timestamp is an
// empty-content error.
func (p *Parser) ParseTodoInput(text string) (*time.Time, string, error) {
	text = strings.TrimSpace(text)

	if i := strings.Index(text, ","); i >= 0 {
		deadline, err := p.ParseDeadline(text[:i])
		if err != nil {
			return nil, "", err
		}
		content := strings.TrimSpace(text[i+1:])
		if content == "" {
			return nil, "", domain.ErrEmptyContent
		}
		return deadline, content, nil
	}

	if rest, ok := strings.CutPrefix(text, noDeadlinePrefix); ok {
		return nil, strings.TrimSpace(rest), nil
	}

	return nil, text, nil
}

// ParseDeadline parses a single deadline candidate. A candidate of
// exactly ten characters is treated as a bare date and augmented with
// the default 18:00 clock. The result is localized to the configured
// timezone and must be strictly after the current time there.
func (p *Parser) ParseDeadline(candidate string) (*time.Time, error) {
	candidate = strings.TrimSpace(candidate)
	if len(candidate) == len(DateLayout) {
		candidate += " " + DefaultDeadlineClock
	}

	t, err := time.ParseInLocation(DeadlineLayout, candidate, p.loc)
	if err != nil {
		return nil, domain.ErrMalformedTimestamp
	}
	if !t.After(p.Now()) {
		return nil, domain.ErrPastDeadline
	}
	return &t, nil
}

// ParseClock validates an HH:MM wall-clock value and returns its
// hour and minute components.
func ParseClock(s string) (hour, minute int, err error) {
	t, parseErr := time.Parse(ClockLayout, strings.TrimSpace(s))
	if parseErr != nil {
		return 0, 0, domain.ErrMalformedClock
	}
	return t.Hour(), t.Minute(), nil
}
