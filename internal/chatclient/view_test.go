package chatclient_test

import (
	"testing"
	"time"

	"chatlink/backend/internal/chatclient"
	"chatlink/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newView(t *testing.T, stream *fakeStream) *chatclient.ConversationView {
	t.Helper()
	v := chatclient.NewConversationView(stream, "u1", "u2", zap.NewNop().Sugar())
	v.Loc = time.UTC
	return v
}

func mountWith(t *testing.T, v *chatclient.ConversationView, page []models.Message) {
	t.Helper()
	require.NoError(t, v.Mount(func() ([]models.Message, error) {
		return page, nil
	}))
}

// at builds a millisecond timestamp for a UTC wall-clock instant.
func at(day, hour int) int64 {
	return time.Date(2024, time.March, day, hour, 0, 0, 0, time.UTC).UnixMilli()
}

func TestMountSubscribesBeforeFetch(t *testing.T) {
	stream := newFakeStream()
	v := newView(t, stream)

	require.NoError(t, v.Mount(func() ([]models.Message, error) {
		// The subscription must already be armed while the page fetch
		// runs, or a message published in between would be lost.
		assert.True(t, stream.subscribed["chat:u1--u2"])
		return nil, nil
	}))
}

func TestUnmountDetaches(t *testing.T) {
	stream := newFakeStream()
	v := newView(t, stream)
	mountWith(t, v, nil)

	v.Unmount()
	assert.False(t, stream.subscribed["chat:u1--u2"])
	assert.Empty(t, stream.bindings)
}

func TestLiveMessagePrepends(t *testing.T) {
	stream := newFakeStream()
	v := newView(t, stream)
	mountWith(t, v, []models.Message{
		{ID: "m1", SenderID: "u2", Text: "old", Timestamp: at(1, 10)},
	})

	stream.fire("chat:u1--u2", models.EventIncomingMessage,
		models.Message{ID: "m2", SenderID: "u2", Text: "new", Timestamp: at(1, 11)})

	messages := v.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "m2", messages[0].ID, "live message should land at the newest position")
	assert.Equal(t, "m1", messages[1].ID)
}

// TestMergeDeduplicatesByID covers the reconnect case where a message
// arrives both in the initial page and over the live channel.
func TestMergeDeduplicatesByID(t *testing.T) {
	stream := newFakeStream()
	v := newView(t, stream)
	msg := models.Message{ID: "m1", SenderID: "u2", Text: "hi", Timestamp: at(1, 10)}
	mountWith(t, v, []models.Message{msg})

	stream.fire("chat:u1--u2", models.EventIncomingMessage, msg)
	stream.fire("chat:u1--u2", models.EventIncomingMessage, msg)

	assert.Len(t, v.Messages(), 1)
}

func TestSenderGrouping(t *testing.T) {
	stream := newFakeStream()
	v := newView(t, stream)
	// Display order newest-first: m3(u1), m2(u2), m1(u2).
	mountWith(t, v, []models.Message{
		{ID: "m3", SenderID: "u1", Text: "c", Timestamp: at(1, 12)},
		{ID: "m2", SenderID: "u2", Text: "b", Timestamp: at(1, 11)},
		{ID: "m1", SenderID: "u2", Text: "a", Timestamp: at(1, 10)},
	})

	rows := v.Rows()
	require.Len(t, rows, 3)
	assert.False(t, rows[0].Continuation)
	assert.False(t, rows[1].Continuation, "sender change breaks the group")
	assert.True(t, rows[2].Continuation, "second consecutive u2 message is a continuation")

	assert.True(t, rows[0].FromSession)
	assert.False(t, rows[1].FromSession)
}

// TestDateSeparatorPlacement is the D2/D1/D1 scenario: exactly one
// separator, attached to the message that starts the newer day.
func TestDateSeparatorPlacement(t *testing.T) {
	stream := newFakeStream()
	v := newView(t, stream)
	mountWith(t, v, []models.Message{
		{ID: "m3", SenderID: "u1", Text: "c", Timestamp: at(2, 9)},  // D2
		{ID: "m2", SenderID: "u2", Text: "b", Timestamp: at(1, 18)}, // D1
		{ID: "m1", SenderID: "u2", Text: "a", Timestamp: at(1, 10)}, // D1
	})

	rows := v.Rows()
	require.Len(t, rows, 3)
	assert.True(t, rows[0].DateSeparator, "day boundary sits between m3 and m2")
	assert.False(t, rows[1].DateSeparator)
	assert.False(t, rows[2].DateSeparator, "oldest message gets no separator")

	separators := 0
	for _, row := range rows {
		if row.DateSeparator {
			separators++
		}
	}
	assert.Equal(t, 1, separators)
}

func TestSameDayNoSeparators(t *testing.T) {
	stream := newFakeStream()
	v := newView(t, stream)
	mountWith(t, v, []models.Message{
		{ID: "m2", SenderID: "u1", Text: "b", Timestamp: at(1, 12)},
		{ID: "m1", SenderID: "u2", Text: "a", Timestamp: at(1, 10)},
	})

	for _, row := range v.Rows() {
		assert.False(t, row.DateSeparator)
	}
}

// TestPushDuringFetchKeepsOrder simulates a message published while the
// initial fetch was in flight: it arrives live first, then again inside
// the page, and the merged view stays deduplicated and ordered.
func TestPushDuringFetchKeepsOrder(t *testing.T) {
	stream := newFakeStream()
	v := newView(t, stream)

	inFlight := models.Message{ID: "m2", SenderID: "u2", Text: "b", Timestamp: at(1, 11)}
	require.NoError(t, v.Mount(func() ([]models.Message, error) {
		stream.fire("chat:u1--u2", models.EventIncomingMessage, inFlight)
		return []models.Message{
			inFlight,
			{ID: "m1", SenderID: "u2", Text: "a", Timestamp: at(1, 10)},
		}, nil
	}))

	messages := v.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, "m2", messages[0].ID)
	assert.Equal(t, "m1", messages[1].ID)
}
