package services

import (
	"strings"
	"testing"
	"time"

	"fumotion/internal/domain"
	"fumotion/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessagingFlow(t *testing.T) {
	f := newFixture(t)
	svc := MessageService{Base: f.base}
	a, b, c := f.user("A"), f.user("B"), f.user("C")
	trip := f.trip(a.ID, 3, 24*time.Hour)

	_, err := svc.Send(f.ctx, a.ID, models.Message{ReceiverID: a.ID, Content: "hi me"})
	assert.True(t, domain.IsInvalidOperation(err))
	_, err = svc.Send(f.ctx, a.ID, models.Message{ReceiverID: b.ID, Content: "   "})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.Send(f.ctx, a.ID, models.Message{ReceiverID: b.ID, Content: strings.Repeat("x", 2001)})
	assert.True(t, domain.IsValidation(err))
	_, err = svc.Send(f.ctx, a.ID, models.Message{ReceiverID: 777, Content: "hello"})
	assert.True(t, domain.IsNotFound(err))

	_, err = svc.Send(f.ctx, b.ID, models.Message{ReceiverID: a.ID, TripID: &trip.ID, Content: "is there room?"})
	require.NoError(t, err)
	_, err = svc.Send(f.ctx, a.ID, models.Message{ReceiverID: b.ID, Content: "yes"})
	require.NoError(t, err)
	_, err = svc.Send(f.ctx, c.ID, models.Message{ReceiverID: a.ID, Content: "ping"})
	require.NoError(t, err)
	_, err = svc.Send(f.ctx, c.ID, models.Message{ReceiverID: a.ID, Content: "ping again"})
	require.NoError(t, err)

	unread, err := svc.UnreadCount(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, unread)

	convs, err := svc.Conversations(f.ctx, a.ID)
	require.NoError(t, err)
	require.Len(t, convs, 2)
	assert.Equal(t, c.ID, convs[0].UserID, "most recent conversation first")
	assert.Equal(t, "ping again", convs[0].LastMessage.Content)
	assert.Equal(t, 2, convs[0].UnreadCount)
	assert.Equal(t, b.ID, convs[1].UserID)
	assert.Equal(t, "yes", convs[1].LastMessage.Content)
	assert.Equal(t, 1, convs[1].UnreadCount)

	thread, err := svc.Thread(f.ctx, a.ID, b.ID, domain.NewPagination(1, 50, 50, 100))
	require.NoError(t, err)
	require.Len(t, thread.Items, 2)
	assert.Equal(t, "is there room?", thread.Items[0].Content)
	require.NotNil(t, thread.Items[0].TripID)
	assert.Equal(t, trip.ID, *thread.Items[0].TripID)

	n, err := svc.MarkRead(f.ctx, a.ID, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	unread, err = svc.UnreadCount(f.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)
}
