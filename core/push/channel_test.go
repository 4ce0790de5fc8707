package push_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gamekit/core/push"
)

func newRegistries(t *testing.T) (*push.ConnectionRegistry, *push.ChannelRegistry) {
	t.Helper()
	conns := push.NewConnectionRegistry()
	return conns, push.NewChannelRegistry(conns)
}

func addConn(t *testing.T, conns *push.ConnectionRegistry, id, userID string) *fakeSender {
	t.Helper()
	sender := &fakeSender{}
	require.NoError(t, conns.Add(push.NewConnection(id, userID, sender)))
	return sender
}

func TestChannelRegistry_Subscribe(t *testing.T) {
	t.Parallel()

	conns, channels := newRegistries(t)
	addConn(t, conns, "c1", "")

	require.NoError(t, channels.Subscribe("lobby:42", "c1"))

	assert.Equal(t, 1, channels.MemberCount("lobby:42"))
	assert.Contains(t, channels.Channels(), "lobby:42")
	assert.Contains(t, channels.ChannelsOf("c1"), "lobby:42", "membership must be mirrored into the connection")
}

func TestChannelRegistry_Subscribe_UnknownConnection(t *testing.T) {
	t.Parallel()

	_, channels := newRegistries(t)
	err := channels.Subscribe("lobby:42", "ghost")
	require.ErrorIs(t, err, push.ErrUnknownConnection)
	assert.Equal(t, 0, channels.Len(), "failed subscribe must not create the channel")
}

func TestChannelRegistry_Subscribe_DeadConnection(t *testing.T) {
	t.Parallel()

	conns, channels := newRegistries(t)
	sender := addConn(t, conns, "c1", "")
	sender.kill()

	require.ErrorIs(t, channels.Subscribe("lobby:42", "c1"), push.ErrConnectionDead)
}

func TestChannelRegistry_Subscribe_EmptyName(t *testing.T) {
	t.Parallel()

	conns, channels := newRegistries(t)
	addConn(t, conns, "c1", "")
	require.ErrorIs(t, channels.Subscribe("", "c1"), push.ErrEmptyChannelName)
}

func TestChannelRegistry_Unsubscribe_DeletesEmptyChannel(t *testing.T) {
	t.Parallel()

	conns, channels := newRegistries(t)
	addConn(t, conns, "c1", "")
	require.NoError(t, channels.Subscribe("lobby:42", "c1"))

	assert.True(t, channels.Unsubscribe("lobby:42", "c1"))
	assert.False(t, channels.Unsubscribe("lobby:42", "c1"), "second unsubscribe should report no membership")

	assert.Equal(t, 0, channels.Len(), "empty channel must not persist")
	assert.Empty(t, channels.ChannelsOf("c1"))
}

func TestChannelRegistry_Unsubscribe_KeepsChannelWithMembers(t *testing.T) {
	t.Parallel()

	conns, channels := newRegistries(t)
	addConn(t, conns, "c1", "")
	addConn(t, conns, "c2", "")
	require.NoError(t, channels.Subscribe("lobby:42", "c1"))
	require.NoError(t, channels.Subscribe("lobby:42", "c2"))

	assert.True(t, channels.Unsubscribe("lobby:42", "c1"))
	assert.Equal(t, 1, channels.MemberCount("lobby:42"))
}

func TestChannelRegistry_Broadcast_DeliversToAllMembers(t *testing.T) {
	t.Parallel()

	conns, channels := newRegistries(t)
	s1 := addConn(t, conns, "c1", "")
	s2 := addConn(t, conns, "c2", "")
	s3 := addConn(t, conns, "c3", "")
	require.NoError(t, channels.Subscribe("lobby:42", "c1"))
	require.NoError(t, channels.Subscribe("lobby:42", "c2"))
	require.NoError(t, channels.Subscribe("other", "c3"))

	delivered := channels.Broadcast(context.Background(), "lobby:42", push.NewMessage("lobby.player.joined", nil))

	assert.Equal(t, 2, delivered)
	require.Len(t, s1.messages(), 1)
	require.Len(t, s2.messages(), 1)
	assert.Empty(t, s3.messages(), "members of other channels must not receive")
	assert.Equal(t, "lobby:42", s1.messages()[0].Channel, "broadcast should stamp the channel name")
}

func TestChannelRegistry_Broadcast_AtMostOncePerMember(t *testing.T) {
	t.Parallel()

	conns, channels := newRegistries(t)
	sender := addConn(t, conns, "c1", "")
	require.NoError(t, channels.Subscribe("lobby:42", "c1"))
	require.NoError(t, channels.Subscribe("lobby:42", "c1"), "re-subscribe is idempotent")

	channels.Broadcast(context.Background(), "lobby:42", push.NewMessage("ping", nil))
	assert.Len(t, sender.messages(), 1)
}

func TestChannelRegistry_Broadcast_UnknownChannel(t *testing.T) {
	t.Parallel()

	_, channels := newRegistries(t)
	delivered := channels.Broadcast(context.Background(), "nobody-home", push.NewMessage("ping", nil))
	assert.Equal(t, 0, delivered, "broadcasting to a missing channel is a benign no-op")
}

func TestChannelRegistry_Broadcast_PrunesDeadMember(t *testing.T) {
	t.Parallel()

	conns, channels := newRegistries(t)
	dead := addConn(t, conns, "c1", "")
	alive := addConn(t, conns, "c2", "")
	require.NoError(t, channels.Subscribe("lobby:42", "c1"))
	require.NoError(t, channels.Subscribe("lobby:42", "c2"))
	dead.kill()

	delivered := channels.Broadcast(context.Background(), "lobby:42", push.NewMessage("ping", nil))

	assert.Equal(t, 1, delivered)
	assert.Len(t, alive.messages(), 1)
	assert.Equal(t, 1, channels.MemberCount("lobby:42"), "dead member must be pruned")

	_, ok := conns.Get("c1")
	assert.False(t, ok, "dead connection should be evicted from the registry too")
}

func TestChannelRegistry_Broadcast_DeletesEmptiedChannel(t *testing.T) {
	t.Parallel()

	conns, channels := newRegistries(t)
	sender := addConn(t, conns, "c1", "")
	require.NoError(t, channels.Subscribe("lobby:42", "c1"))
	sender.kill()

	channels.Broadcast(context.Background(), "lobby:42", push.NewMessage("ping", nil))

	assert.Equal(t, 0, channels.Len(), "channel emptied by pruning must be deleted")
	assert.NotContains(t, channels.Channels(), "lobby:42")
}

func TestChannelRegistry_Cleanup_IntersectsWithAliveConnections(t *testing.T) {
	t.Parallel()

	conns, channels := newRegistries(t)
	healthy := addConn(t, conns, "ok", "")
	dying := addConn(t, conns, "dead", "")
	require.NoError(t, channels.Subscribe("lobby:42", "ok"))
	require.NoError(t, channels.Subscribe("lobby:42", "dead"))
	require.NoError(t, channels.Subscribe("lobby:43", "dead"))
	dying.kill()

	channels.Cleanup()

	assert.Equal(t, 1, channels.MemberCount("lobby:42"))
	assert.NotContains(t, channels.Channels(), "lobby:43", "channel left empty by cleanup must be deleted")
	_ = healthy
}

func TestChannelRegistry_Create_Idempotent(t *testing.T) {
	t.Parallel()

	conns, channels := newRegistries(t)
	require.NoError(t, channels.Create("lobbies"))
	require.NoError(t, channels.Create("lobbies"))
	require.ErrorIs(t, channels.Create(""), push.ErrEmptyChannelName)

	addConn(t, conns, "c1", "")
	require.NoError(t, channels.Subscribe("lobbies", "c1"))
	assert.Equal(t, 1, channels.MemberCount("lobbies"))
}

func TestJanitor_Sweep(t *testing.T) {
	t.Parallel()

	conns, channels := newRegistries(t)
	dying := addConn(t, conns, "c1", "")
	addConn(t, conns, "c2", "")
	require.NoError(t, channels.Subscribe("lobby:42", "c1"))
	require.NoError(t, channels.Subscribe("lobby:42", "c2"))
	dying.kill()

	janitor := push.NewJanitor(conns, channels)
	evicted := janitor.Sweep()

	assert.Equal(t, 1, evicted)
	assert.Equal(t, 1, conns.Len())
	assert.Equal(t, 1, channels.MemberCount("lobby:42"))
}

func TestJanitor_Run_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	conns, channels := newRegistries(t)
	janitor := push.NewJanitor(conns, channels, push.WithJanitorInterval(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- janitor.Run(ctx)()
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after context cancellation")
	}
}

func TestJanitor_Healthcheck(t *testing.T) {
	t.Parallel()

	conns, channels := newRegistries(t)
	janitor := push.NewJanitor(conns, channels, push.WithJanitorInterval(10*time.Millisecond))

	err := janitor.Healthcheck(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, push.ErrHealthcheckFailed)
	assert.ErrorIs(t, err, push.ErrJanitorNotRunning)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- janitor.Run(ctx)()
	}()

	require.Eventually(t, func() bool {
		return janitor.Healthcheck(context.Background()) == nil
	}, time.Second, 5*time.Millisecond, "janitor should report healthy once running")

	cancel()
	require.NoError(t, <-done)
	assert.ErrorIs(t, janitor.Healthcheck(context.Background()), push.ErrHealthcheckFailed)
}
