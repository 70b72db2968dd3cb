package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewNotification(t *testing.T) {
	tests := []struct {
		action Action
		entity string
		name   string
		want   string
	}{
		{ActionCreated, "Category", "Phones", `Category "Phones" created successfully`},
		{ActionUpdated, "Subcategory", "Men's Shoes", `Subcategory "Men's Shoes" updated successfully`},
		{ActionDeleted, "Sub-subcategory", "", "Sub-subcategory deleted successfully"},
	}

	for _, tt := range tests {
		n := newNotification(tt.action, tt.entity, "id-1", tt.name)
		assert.Equal(t, tt.want, n.Message)
		assert.Equal(t, "id-1", n.ID)
		assert.Equal(t, tt.action, n.Action)
	}
}

func TestNotifierFunc(t *testing.T) {
	var got []Notification
	var n Notifier = NotifierFunc(func(_ context.Context, n Notification) { got = append(got, n) })

	n.Notify(context.Background(), newNotification(ActionCreated, "Category", "c1", "Toys"))
	require.Len(t, got, 1)
	assert.Equal(t, "Toys", got[0].Name)

	NopNotifier{}.Notify(context.Background(), got[0])
}

func TestLogNotifier(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	n := LogNotifier{Logger: zap.New(core)}

	n.Notify(context.Background(), newNotification(ActionDeleted, "Category", "c1", ""))

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Category deleted successfully", entries[0].Message)
	fields := entries[0].ContextMap()
	assert.Equal(t, "deleted", fields["action"])
	assert.Equal(t, "c1", fields["id"])
}
