package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentkit-go/agentkit/store"
)

func newTestStore(t *testing.T) *RedisThreadStore {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	s := NewRedisThreadStore(RedisOptions{Addr: mr.Addr()})
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRedisThreadStore_Threads(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	now := time.Now()
	require.NoError(t, s.CreateThread(ctx, &store.Thread{ID: "t1", AgentID: "chat", Title: "First", CreatedAt: now.Add(-time.Hour)}))
	require.NoError(t, s.CreateThread(ctx, &store.Thread{ID: "t2", AgentID: "chat", Title: "Second", CreatedAt: now}))
	require.NoError(t, s.CreateThread(ctx, &store.Thread{ID: "t3", AgentID: "canvas", CreatedAt: now}))

	loaded, err := s.GetThread(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, "First", loaded.Title)

	_, err = s.GetThread(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrThreadNotFound)

	threads, err := s.ListThreads(ctx, "chat")
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, "t2", threads[0].ID)

	all, err := s.ListThreads(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestRedisThreadStore_Messages(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateThread(ctx, &store.Thread{ID: "t1", AgentID: "chat"}))

	require.NoError(t, s.AppendMessage(ctx, &store.Message{ID: "m1", ThreadID: "t1", Role: "user", Content: "hi"}))
	require.NoError(t, s.AppendMessage(ctx, &store.Message{ID: "m2", ThreadID: "t1", Role: "assistant", Content: "hello"}))

	msgs, err := s.ListMessages(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, "m1", msgs[0].ID)
	assert.Equal(t, "hello", msgs[1].Content)

	err = s.AppendMessage(ctx, &store.Message{ID: "m3", ThreadID: "missing", Role: "user"})
	assert.ErrorIs(t, err, store.ErrThreadNotFound)
}

func TestRedisThreadStore_Surfaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateThread(ctx, &store.Thread{ID: "t1", AgentID: "ui"}))

	require.NoError(t, s.SaveSurface(ctx, "t1", "main", []byte(`{"v":1}`)))
	require.NoError(t, s.SaveSurface(ctx, "t1", "dialog", []byte(`{"v":2}`)))

	surfaces, err := s.LoadSurfaces(ctx, "t1")
	require.NoError(t, err)
	require.Len(t, surfaces, 2)
	assert.JSONEq(t, `{"v":1}`, string(surfaces["main"]))

	require.NoError(t, s.SaveSurface(ctx, "t1", "main", []byte(`{"v":3}`)))
	surfaces, err = s.LoadSurfaces(ctx, "t1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":3}`, string(surfaces["main"]))

	require.NoError(t, s.DeleteSurface(ctx, "t1", "dialog"))
	surfaces, err = s.LoadSurfaces(ctx, "t1")
	require.NoError(t, err)
	assert.Len(t, surfaces, 1)
}

func TestRedisThreadStore_DeleteThreadCascades(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateThread(ctx, &store.Thread{ID: "t1", AgentID: "chat"}))
	require.NoError(t, s.AppendMessage(ctx, &store.Message{ID: "m1", ThreadID: "t1", Role: "user", Content: "hi"}))
	require.NoError(t, s.SaveSurface(ctx, "t1", "main", []byte(`{}`)))

	require.NoError(t, s.DeleteThread(ctx, "t1"))

	_, err := s.GetThread(ctx, "t1")
	assert.ErrorIs(t, err, store.ErrThreadNotFound)

	surfaces, err := s.LoadSurfaces(ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, surfaces)

	all, err := s.ListThreads(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 0)
}
