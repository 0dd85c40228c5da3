package repository

import "context"

// BotStateRepository persists the small amount of mutable bot state
// that must survive restarts: the chat-update offset consumed by the
// long-poll loop and the user-adjustable daily reminder time.
type BotStateRepository interface {
	// UpdateOffset returns the last acknowledged update offset,
	// or 0 when none has been stored yet.
	UpdateOffset(ctx context.Context) (int64, error)
	SetUpdateOffset(ctx context.Context, offset int64) error

	// ReminderTime returns the stored HH:MM reminder time,
	// or "" when the configured default should apply.
	ReminderTime(ctx context.Context) (string, error)
	SetReminderTime(ctx context.Context, clock string) error
}
