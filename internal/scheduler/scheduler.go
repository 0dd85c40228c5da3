package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/remindly/bot/domain"
	"github.com/remindly/bot/pkg/chrono"
)

// Transport delivers a rendered digest to the bot's owner.
type Transport interface {
	SendText(recipient int64, body string, mode domain.RenderMode) error
}

// Job is a daily reminder: a fire time in the scheduler's location and a
// builder that renders the digest body at fire time.
type Job struct {
	Name   string
	Hour   int
	Minute int
	Build  func(ctx context.Context) (string, error)
}

const defaultTickInterval = 20 * time.Second

// Scheduler fires each registered job once per day at its HH:MM. Ticks
// are deduplicated per minute, so a job never fires twice even when
// several ticks land inside the same minute.
type Scheduler struct {
	transport Transport
	recipient int64
	clock     chrono.Clock
	loc       *time.Location
	interval  time.Duration
	logger    *zap.Logger

	mu    sync.Mutex
	jobs  []*Job
	fired map[string]string

	stopCh chan struct{}
	doneCh chan struct{}
}

func New(
	transport Transport,
	recipient int64,
	clock chrono.Clock,
	loc *time.Location,
	logger *zap.Logger,
) *Scheduler {
	return &Scheduler{
		transport: transport,
		recipient: recipient,
		clock:     clock,
		loc:       loc,
		interval:  defaultTickInterval,
		logger:    logger,
		fired:     make(map[string]string),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Register adds a job. Names must be unique; registration is expected
// during wiring, before Start.
func (s *Scheduler) Register(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job)
}

// SetJobTime moves a registered job to a new daily fire time.
func (s *Scheduler) SetJobTime(name string, hour, minute int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, job := range s.jobs {
		if job.Name == name {
			job.Hour = hour
			job.Minute = minute
			return nil
		}
	}
	return domain.NewError(domain.ErrCodeNotFound, "unknown reminder job: "+name)
}

func (s *Scheduler) Start() {
	go s.loop()
	s.logger.Info("reminder scheduler started",
		zap.Duration("tick_interval", s.interval),
		zap.String("timezone", s.loc.String()))
}

// Stop signals the loop and waits for any in-flight delivery to finish.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.logger.Info("reminder scheduler stopped")
}

func (s *Scheduler) loop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick(context.Background())
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	now := s.clock.Now().In(s.loc)
	stamp := now.Format("2006-01-02 15:04")

	s.mu.Lock()
	var due []*Job
	for _, job := range s.jobs {
		if job.Hour == now.Hour() && job.Minute == now.Minute() && s.fired[job.Name] != stamp {
			s.fired[job.Name] = stamp
			due = append(due, job)
		}
	}
	s.mu.Unlock()

	for _, job := range due {
		s.run(ctx, job)
	}
}

// run builds and delivers one digest. A failing job only logs, so one
// broken builder never blocks the other reminders.
func (s *Scheduler) run(ctx context.Context, job *Job) {
	body, err := job.Build(ctx)
	if err != nil {
		s.logger.Error("building reminder digest failed",
			zap.String("job", job.Name),
			zap.Error(err))
		return
	}
	if body == "" {
		// Builders emit sentinels when nothing is due, so an empty
		// body is a builder bug. Surface it instead of skipping quietly.
		s.logger.Warn("reminder builder returned an empty body, nothing sent",
			zap.String("job", job.Name))
		return
	}
	if err := s.transport.SendText(s.recipient, body, domain.RenderHTML); err != nil {
		s.logger.Error("delivering reminder failed",
			zap.String("job", job.Name),
			zap.Error(err))
		return
	}
	s.logger.Info("reminder delivered", zap.String("job", job.Name))
}
