package services

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/remindly/bot/domain"
	"github.com/remindly/bot/internal/infrastructure/buffer"
	"github.com/remindly/bot/repository"
)

// Summarizer produces a short description of a saved link.
type Summarizer interface {
	Summarize(ctx context.Context, url, title string) (string, error)
}

var titlePattern = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)

const (
	fetchTimeout    = 15 * time.Second
	summarizeBudget = 45 * time.Second
	maxTitleRunes   = 200
	drainBatch      = 20
)

// Enricher fills in the title and AI summary of saved links in the
// background. Jobs are queued in BoltDB and drained on a cron schedule,
// so Telegram replies never wait on page fetches or the AI API.
type Enricher struct {
	queue      *buffer.Store
	links      repository.LinkRepository
	summarizer Summarizer
	maxRetry   int
	interval   time.Duration
	http       *fasthttp.Client
	logger     *zap.Logger
	cron       *cron.Cron
}

func NewEnricher(
	queue *buffer.Store,
	links repository.LinkRepository,
	summarizer Summarizer,
	maxRetry int,
	interval time.Duration,
	logger *zap.Logger,
) *Enricher {
	return &Enricher{
		queue:      queue,
		links:      links,
		summarizer: summarizer,
		maxRetry:   maxRetry,
		interval:   interval,
		http: &fasthttp.Client{
			ReadTimeout:         fetchTimeout,
			WriteTimeout:        fetchTimeout,
			MaxResponseBodySize: 2 << 20,
		},
		logger: logger,
	}
}

// Enqueue schedules an enrichment pass for a freshly saved link.
// wantTitle marks links saved without a caption, whose title must be
// scraped from the page itself.
func (e *Enricher) Enqueue(link *domain.Link, wantTitle bool) {
	job := buffer.Job{
		LinkID:    link.ID,
		URL:       link.URL,
		WantTitle: wantTitle,
	}
	if err := e.queue.Enqueue(job); err != nil {
		e.logger.Error("enqueueing enrichment job failed",
			zap.Int64("link_id", link.ID),
			zap.Error(err))
	}
}

// Start begins the periodic drain.
func (e *Enricher) Start() error {
	e.cron = cron.New()
	spec := fmt.Sprintf("@every %s", e.interval)
	if _, err := e.cron.AddFunc(spec, e.drain); err != nil {
		return err
	}
	e.cron.Start()
	e.logger.Info("link enricher started", zap.Duration("drain_interval", e.interval))
	return nil
}

// Stop halts the cron schedule and waits for a running drain to finish.
func (e *Enricher) Stop() {
	if e.cron == nil {
		return
	}
	ctx := e.cron.Stop()
	<-ctx.Done()
	e.logger.Info("link enricher stopped")
}

func (e *Enricher) drain() {
	jobs, err := e.queue.GetBatch(drainBatch)
	if err != nil {
		e.logger.Error("reading enrichment queue failed", zap.Error(err))
		return
	}

	for _, job := range jobs {
		if err := e.process(job); err != nil {
			e.retry(job, err)
			continue
		}
		if err := e.queue.Remove(job); err != nil {
			e.logger.Error("removing finished job failed",
				zap.String("job_id", job.ID),
				zap.Error(err))
		}
	}
}

func (e *Enricher) process(job buffer.Job) error {
	ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout+summarizeBudget)
	defer cancel()

	link, err := e.links.GetByID(ctx, job.LinkID)
	if err != nil {
		// A deleted or unknown link is not retryable.
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return nil
		}
		return err
	}

	title := link.Title
	if job.WantTitle && title == "" {
		title, err = e.fetchTitle(job.URL)
		if err != nil {
			return err
		}
		if title != "" {
			if err := e.links.UpdateTitle(ctx, job.LinkID, title); err != nil {
				return err
			}
		}
	}

	if link.Summary != "" {
		return nil
	}
	summary, err := e.summarizer.Summarize(ctx, job.URL, title)
	if err != nil {
		return err
	}
	return e.links.UpdateSummary(ctx, job.LinkID, summary)
}

func (e *Enricher) retry(job buffer.Job, cause error) {
	job.Retries++
	if job.Retries >= e.maxRetry {
		e.logger.Warn("dropping enrichment job after retry budget",
			zap.String("job_id", job.ID),
			zap.Int64("link_id", job.LinkID),
			zap.Int("retries", job.Retries),
			zap.Error(cause))
		if err := e.queue.Remove(job); err != nil {
			e.logger.Error("removing exhausted job failed", zap.Error(err))
		}
		return
	}

	e.logger.Warn("enrichment failed, requeueing",
		zap.String("job_id", job.ID),
		zap.Int("retries", job.Retries),
		zap.Error(cause))
	if err := e.queue.Remove(job); err != nil {
		e.logger.Error("removing job before requeue failed", zap.Error(err))
		return
	}
	if err := e.queue.Requeue(job); err != nil {
		e.logger.Error("requeueing job failed", zap.Error(err))
	}
}

func (e *Enricher) fetchTitle(url string) (string, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent("Mozilla/5.0 (compatible; remindly-bot/1.0)")

	if err := e.http.DoRedirects(req, resp, 5); err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", url, resp.StatusCode())
	}

	match := titlePattern.FindSubmatch(resp.Body())
	if match == nil {
		return "", nil
	}
	title := html.UnescapeString(strings.TrimSpace(string(match[1])))
	title = strings.Join(strings.Fields(title), " ")
	runes := []rune(title)
	if len(runes) > maxTitleRunes {
		title = string(runes[:maxTitleRunes])
	}
	return title, nil
}
