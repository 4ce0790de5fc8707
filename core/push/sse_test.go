package push_test

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gamekit/core/push"
)

func TestMessage_WriteSSE_FrameFormat(t *testing.T) {
	t.Parallel()

	msg := push.NewMessage("lobby.player.joined", map[string]string{"lobby_id": "L1"})
	msg.Channel = "lobby:L1"

	var sb strings.Builder
	require.NoError(t, msg.WriteSSE(&sb))
	frame := sb.String()

	assert.True(t, strings.HasPrefix(frame, "event: lobby.player.joined\n"), "frame should start with the event line")
	assert.Contains(t, frame, "\ndata: {")
	assert.Contains(t, frame, `"channel":"lobby:L1"`)
	assert.Contains(t, frame, `"lobby_id":"L1"`)
	assert.True(t, strings.HasSuffix(frame, "\n\n"), "frame must be terminated by a blank line")
}

func TestSSEStream_Send_BufferFull(t *testing.T) {
	t.Parallel()

	stream := push.NewSSEStream(push.WithSSEBuffer(1))
	defer stream.Close()

	require.NoError(t, stream.Send(context.Background(), push.NewMessage("ping", nil)))
	require.ErrorIs(t, stream.Send(context.Background(), push.NewMessage("ping", nil)), push.ErrBufferFull)
}

func TestSSEStream_Send_AfterClose(t *testing.T) {
	t.Parallel()

	stream := push.NewSSEStream()
	require.True(t, stream.Alive())

	require.NoError(t, stream.Close())
	require.NoError(t, stream.Close(), "close must be idempotent")

	assert.False(t, stream.Alive())
	require.ErrorIs(t, stream.Send(context.Background(), push.NewMessage("ping", nil)), push.ErrConnectionClosed)
}

func TestSSEStream_Serve_WritesFrames(t *testing.T) {
	t.Parallel()

	stream := push.NewSSEStream()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/events", nil)

	msg := push.NewMessage("lobby.created", map[string]string{"id": "L1"})
	require.NoError(t, stream.Send(context.Background(), msg))

	done := make(chan error, 1)
	go func() {
		done <- stream.Serve(rec, req)
	}()

	// Give the loop a moment to drain the buffered message, then stop it.
	require.Eventually(t, func() bool {
		return stream.Alive()
	}, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, stream.Close())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("serve loop did not stop after close")
	}

	body := rec.Body.String()
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.True(t, strings.HasPrefix(body, ": connected\n\n"))
	assert.Contains(t, body, "event: lobby.created\n")
	assert.Contains(t, body, `"id":"L1"`)
}

func TestSSEStream_Serve_StopsWhenRequestEnds(t *testing.T) {
	t.Parallel()

	stream := push.NewSSEStream()
	rec := httptest.NewRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest("GET", "/events", nil).WithContext(ctx)

	done := make(chan error, 1)
	go func() {
		done <- stream.Serve(rec, req)
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("serve loop did not stop after request context cancellation")
	}
}
