package redis

import (
	"context"
	"strconv"

	redislib "github.com/redis/go-redis/v9"

	"github.com/remindly/bot/repository"
)

type stateRepository struct {
	client *redislib.Client
	prefix string
}

// NewStateRepository creates a Redis-backed bot state repository.
func NewStateRepository(client *redislib.Client) repository.BotStateRepository {
	return &stateRepository{
		client: client,
		prefix: "bot:",
	}
}

func (r *stateRepository) UpdateOffset(ctx context.Context) (int64, error) {
	result, err := r.client.Get(ctx, r.prefix+"update_offset").Result()
	if err != nil {
		if err == redislib.Nil {
			return 0, nil
		}
		return 0, err
	}
	return strconv.ParseInt(result, 10, 64)
}

func (r *stateRepository) SetUpdateOffset(ctx context.Context, offset int64) error {
	return r.client.Set(ctx, r.prefix+"update_offset", strconv.FormatInt(offset, 10), 0).Err()
}

func (r *stateRepository) ReminderTime(ctx context.Context) (string, error) {
	result, err := r.client.Get(ctx, r.prefix+"reminder_time").Result()
	if err != nil {
		if err == redislib.Nil {
			return "", nil
		}
		return "", err
	}
	return result, nil
}

func (r *stateRepository) SetReminderTime(ctx context.Context, clock string) error {
	return r.client.Set(ctx, r.prefix+"reminder_time", clock, 0).Err()
}
