package chrono

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/remindly/bot/domain"
)

var testLoc = time.FixedZone("CST", 8*3600)

func testParser(now time.Time) *Parser {
	return NewParser(testLoc, FixedClock{At: now})
}

func TestParseTodoInput(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, testLoc)
	p := testParser(now)

	t.Run("bare date defaults to 18:00", func(t *testing.T) {
		deadline, content, err := p.ParseTodoInput("2025-06-02, buy milk")
		require.NoError(t, err)
		require.NotNil(t, deadline)
		assert.Equal(t, "buy milk", content)
		assert.Equal(t, time.Date(2025, 6, 2, 18, 0, 0, 0, testLoc).Unix(), deadline.Unix())
		assert.Equal(t, 18, deadline.Hour())
		assert.Equal(t, 0, deadline.Minute())
	})

	t.Run("explicit date and time", func(t *testing.T) {
		deadline, content, err := p.ParseTodoInput("2025-06-02 09:30, pay rent")
		require.NoError(t, err)
		require.NotNil(t, deadline)
		assert.Equal(t, "pay rent", content)
		assert.Equal(t, time.Date(2025, 6, 2, 9, 30, 0, 0, testLoc).Unix(), deadline.Unix())
	})

	t.Run("only first comma splits", func(t *testing.T) {
		deadline, content, err := p.ParseTodoInput("2025-06-02, call mum, then dad")
		require.NoError(t, err)
		require.NotNil(t, deadline)
		assert.Equal(t, "call mum, then dad", content)
	})

	t.Run("no comma means no deadline", func(t *testing.T) {
		deadline, content, err := p.ParseTodoInput("  water the plants  ")
		require.NoError(t, err)
		assert.Nil(t, deadline)
		assert.Equal(t, "water the plants", content)
	})

	t.Run("todo prefix strips and carries no deadline", func(t *testing.T) {
		deadline, content, err := p.ParseTodoInput("/todo water the plants")
		require.NoError(t, err)
		assert.Nil(t, deadline)
		assert.Equal(t, "water the plants", content)
	})

	t.Run("malformed timestamp", func(t *testing.T) {
		_, _, err := p.ParseTodoInput("tomorrow, buy milk")
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeMalformedTimestamp))
	})

	t.Run("empty content after valid timestamp", func(t *testing.T) {
		_, _, err := p.ParseTodoInput("2025-06-02,   ")
		assert.True(t, domain.IsDomainError(err, domain.ErrCodeInvalid))
	})
}

func TestParseDeadlineFutureCheck(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, testLoc)
	p := testParser(now)

	tests := []struct {
		name      string
		candidate string
		wantCode  domain.ErrorCode
	}{
		{"past date", "2025-05-31", domain.ErrCodePastDeadline},
		{"earlier same day", "2025-06-01 11:59", domain.ErrCodePastDeadline},
		{"exactly now", "2025-06-01 12:00", domain.ErrCodePastDeadline},
		{"one minute ahead", "2025-06-01 12:01", ""},
		{"same day evening via date default", "2025-06-01", ""},
		{"far future", "2030-01-01", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deadline, err := p.ParseDeadline(tt.candidate)
			if tt.wantCode != "" {
				assert.True(t, domain.IsDomainError(err, tt.wantCode), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.True(t, deadline.After(now))
		})
	}
}

func TestParseClock(t *testing.T) {
	hour, minute, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, hour)
	assert.Equal(t, 30, minute)

	for _, bad := range []string{"9h30", "24:00", "12:60", "morning", ""} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, "input %q", bad)
	}
}
