package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/remindly/bot/domain"
	"github.com/remindly/bot/pkg/chrono"
)

type fakeTransport struct {
	sent []string
	err  error
}

func (f *fakeTransport) SendText(recipient int64, body string, mode domain.RenderMode) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, body)
	return nil
}

func newTestScheduler(transport Transport, clock chrono.Clock) *Scheduler {
	return New(transport, 42, clock, time.FixedZone("CST", 8*3600), zap.NewNop())
}

func at(hour, minute int) time.Time {
	return time.Date(2025, 6, 2, hour, minute, 30, 0, time.FixedZone("CST", 8*3600))
}

func staticJob(name string, hour, minute int, body string) *Job {
	return &Job{
		Name:   name,
		Hour:   hour,
		Minute: minute,
		Build: func(context.Context) (string, error) {
			return body, nil
		},
	}
}

func TestSchedulerFiresAtConfiguredMinute(t *testing.T) {
	transport := &fakeTransport{}

	clock := &mutableClock{now: at(8, 59)}
	s := newTestScheduler(transport, clock)
	s.Register(staticJob("morning", 9, 0, "digest body"))

	s.tick(context.Background())
	assert.Empty(t, transport.sent, "must not fire before the configured minute")

	clock.now = at(9, 0)
	s.tick(context.Background())
	require.Len(t, transport.sent, 1)
	assert.Equal(t, "digest body", transport.sent[0])
}

func TestSchedulerDedupesWithinTheMinute(t *testing.T) {
	transport := &fakeTransport{}
	s := newTestScheduler(transport, chrono.FixedClock{At: at(9, 0)})
	s.Register(staticJob("morning", 9, 0, "digest body"))

	s.tick(context.Background())
	s.tick(context.Background())
	s.tick(context.Background())

	assert.Len(t, transport.sent, 1, "same minute must fire exactly once")
}

func TestSchedulerFiresAgainOnTheNextDay(t *testing.T) {
	transport := &fakeTransport{}
	clock := &mutableClock{now: at(9, 0)}
	s := newTestScheduler(transport, clock)
	s.Register(staticJob("morning", 9, 0, "digest body"))

	s.tick(context.Background())
	clock.now = clock.now.AddDate(0, 0, 1)
	s.tick(context.Background())

	assert.Len(t, transport.sent, 2)
}

func TestSchedulerFailingJobDoesNotBlockOthers(t *testing.T) {
	transport := &fakeTransport{}
	s := newTestScheduler(transport, chrono.FixedClock{At: at(9, 0)})
	s.Register(&Job{
		Name: "broken", Hour: 9, Minute: 0,
		Build: func(context.Context) (string, error) {
			return "", errors.New("db down")
		},
	})
	s.Register(staticJob("morning", 9, 0, "digest body"))

	s.tick(context.Background())

	require.Len(t, transport.sent, 1)
	assert.Equal(t, "digest body", transport.sent[0])
}

func TestSchedulerReportsEmptyBuilderResult(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	transport := &fakeTransport{}
	s := New(transport, 42, chrono.FixedClock{At: at(10, 0)}, time.FixedZone("CST", 8*3600), zap.New(core))
	s.Register(staticJob("links", 10, 0, ""))

	s.tick(context.Background())

	assert.Empty(t, transport.sent)
	require.Equal(t, 1, logs.Len(), "an empty builder result must never pass silently")
	assert.Contains(t, logs.All()[0].Message, "empty body")
}

func TestSetJobTime(t *testing.T) {
	transport := &fakeTransport{}
	clock := &mutableClock{now: at(9, 0)}
	s := newTestScheduler(transport, clock)
	s.Register(staticJob("morning", 9, 0, "digest body"))

	require.NoError(t, s.SetJobTime("morning", 21, 30))

	s.tick(context.Background())
	assert.Empty(t, transport.sent, "old fire time must no longer apply")

	clock.now = at(21, 30)
	s.tick(context.Background())
	assert.Len(t, transport.sent, 1)

	err := s.SetJobTime("evening", 8, 0)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

type mutableClock struct {
	now time.Time
}

func (c *mutableClock) Now() time.Time { return c.now }
