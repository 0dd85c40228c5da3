package telegram

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/remindly/bot/domain"
	"github.com/remindly/bot/repository"
)

// Handler turns one inbound message into the reply body to send back.
// An empty reply means nothing is sent.
type Handler func(ctx context.Context, chatID int64, text string) string

// Poller drives the getUpdates long-poll loop, persisting the consumed
// offset so a restart never replays old messages.
type Poller struct {
	client         *Client
	state          repository.BotStateRepository
	handle         Handler
	allowedChatID  int64
	requestTimeout time.Duration
	logger         *zap.Logger

	stopCh chan struct{}
	doneCh chan struct{}
}

func NewPoller(
	client *Client,
	state repository.BotStateRepository,
	handle Handler,
	allowedChatID int64,
	requestTimeout time.Duration,
	logger *zap.Logger,
) *Poller {
	return &Poller{
		client:         client,
		state:          state,
		handle:         handle,
		allowedChatID:  allowedChatID,
		requestTimeout: requestTimeout,
		logger:         logger,
		stopCh:         make(chan struct{}),
		doneCh:         make(chan struct{}),
	}
}

func (p *Poller) Start() {
	go p.loop()
	p.logger.Info("telegram poller started", zap.Int64("chat_id", p.allowedChatID))
}

// Stop signals the loop and waits for the in-flight poll to wind down.
func (p *Poller) Stop() {
	close(p.stopCh)
	<-p.doneCh
	p.logger.Info("telegram poller stopped")
}

func (p *Poller) loop() {
	defer close(p.doneCh)

	ctx := context.Background()
	offset, err := p.state.UpdateOffset(ctx)
	if err != nil {
		p.logger.Warn("loading update offset failed, starting from zero", zap.Error(err))
		offset = 0
	}

	for {
		select {
		case <-p.stopCh:
			return
		default:
		}

		updates, err := p.client.GetUpdates(offset)
		if err != nil {
			p.logger.Error("polling updates failed", zap.Error(err))
			select {
			case <-p.stopCh:
				return
			case <-time.After(5 * time.Second):
			}
			continue
		}

		for _, update := range updates {
			offset = update.UpdateID + 1
			p.process(ctx, update)
		}

		if len(updates) > 0 {
			if err := p.state.SetUpdateOffset(ctx, offset); err != nil {
				p.logger.Error("persisting update offset failed", zap.Error(err))
			}
		}
	}
}

func (p *Poller) process(ctx context.Context, update Update) {
	msg := update.Message
	if msg == nil || msg.Text == "" {
		return
	}
	if msg.Chat.ID != p.allowedChatID {
		p.logger.Warn("ignoring message from unknown chat",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int64("update_id", update.UpdateID))
		return
	}

	handleCtx, cancel := context.WithTimeout(ctx, p.requestTimeout)
	reply := p.handle(handleCtx, msg.Chat.ID, msg.Text)
	cancel()

	if reply == "" {
		return
	}
	if err := p.client.SendText(msg.Chat.ID, reply, domain.RenderHTML); err != nil {
		p.logger.Error("sending reply failed",
			zap.Int64("update_id", update.UpdateID),
			zap.Error(err))
	}
}
