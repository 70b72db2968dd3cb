package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/CalebMUC/Quickcrate-Merchant-Dashboard-sub000/internal/logger"
)

// Action is the kind of mutation a notification reports.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Notification is the user-visible message emitted after a successful
// mutation.
type Notification struct {
	Action  Action
	Entity  string // "Category", "Subcategory", "Sub-subcategory"
	ID      string
	Name    string
	Message string
}

// Notifier receives success notifications from the services. Failures are
// returned as errors and never notified.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification)

// Notify calls f(ctx, n).
func (f NotifierFunc) Notify(ctx context.Context, n Notification) { f(ctx, n) }

// NopNotifier discards notifications.
type NopNotifier struct{}

// Notify does nothing.
func (NopNotifier) Notify(context.Context, Notification) {}

// LogNotifier writes notifications to a zap logger.
type LogNotifier struct {
	Logger *zap.Logger
}

// Notify logs n at info level.
func (l LogNotifier) Notify(ctx context.Context, n Notification) {
	logger.For(ctx, l.Logger).Info(n.Message,
		zap.String("action", string(n.Action)),
		zap.String("entity", n.Entity),
		zap.String("id", n.ID),
		zap.String("name", n.Name),
	)
}

func newNotification(action Action, entity, id, name string) Notification {
	var msg string
	if name != "" {
		msg = fmt.Sprintf("%s %q %s successfully", entity, name, action)
	} else {
		msg = fmt.Sprintf("%s %s successfully", entity, action)
	}
	return Notification{Action: action, Entity: entity, ID: id, Name: name, Message: msg}
}
