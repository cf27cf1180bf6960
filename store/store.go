// Package store provides persistence for conversation threads, their
// messages, and the UI surfaces attached to them. The in-memory
// implementation here is the default; sqlite, redis and postgres
// subpackages provide durable backends behind the same interface.
package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

var (
	// ErrThreadNotFound is returned when a thread ID does not exist
	ErrThreadNotFound = errors.New("thread not found")
	// ErrSurfaceNotFound is returned when a surface snapshot does not exist
	ErrSurfaceNotFound = errors.New("surface not found")
)

// Thread is a single conversation between a user and an agent.
type Thread struct {
	ID        string    `json:"id"`
	AgentID   string    `json:"agentId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message is one turn within a thread.
type Message struct {
	ID        string    `json:"id"`
	ThreadID  string    `json:"threadId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// ThreadStore persists threads, messages and surface snapshots.
// Surface snapshots are stored as opaque JSON so the store does not
// depend on the surface representation.
type ThreadStore interface {
	CreateThread(ctx context.Context, thread *Thread) error
	GetThread(ctx context.Context, threadID string) (*Thread, error)
	ListThreads(ctx context.Context, agentID string) ([]*Thread, error)
	DeleteThread(ctx context.Context, threadID string) error

	AppendMessage(ctx context.Context, msg *Message) error
	ListMessages(ctx context.Context, threadID string) ([]*Message, error)

	SaveSurface(ctx context.Context, threadID, surfaceID string, snapshot []byte) error
	LoadSurfaces(ctx context.Context, threadID string) (map[string][]byte, error)
	DeleteSurface(ctx context.Context, threadID, surfaceID string) error

	Close() error
}

// MemoryThreadStore is an in-memory ThreadStore, safe for concurrent use.
type MemoryThreadStore struct {
	mu       sync.RWMutex
	threads  map[string]*Thread
	messages map[string][]*Message
	surfaces map[string]map[string][]byte
}

// NewMemoryThreadStore creates an empty in-memory store.
func NewMemoryThreadStore() *MemoryThreadStore {
	return &MemoryThreadStore{
		threads:  make(map[string]*Thread),
		messages: make(map[string][]*Message),
		surfaces: make(map[string]map[string][]byte),
	}
}

// CreateThread stores a new thread. Saving an existing ID overwrites it.
func (s *MemoryThreadStore) CreateThread(ctx context.Context, thread *Thread) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *thread
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.threads[cp.ID] = &cp
	return nil
}

// GetThread retrieves a thread by ID.
func (s *MemoryThreadStore) GetThread(ctx context.Context, threadID string) (*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thread, ok := s.threads[threadID]
	if !ok {
		return nil, ErrThreadNotFound
	}
	cp := *thread
	return &cp, nil
}

// ListThreads returns all threads for an agent, newest first.
// An empty agentID returns every thread.
func (s *MemoryThreadStore) ListThreads(ctx context.Context, agentID string) ([]*Thread, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	threads := make([]*Thread, 0, len(s.threads))
	for _, thread := range s.threads {
		if agentID != "" && thread.AgentID != agentID {
			continue
		}
		cp := *thread
		threads = append(threads, &cp)
	}

	sort.Slice(threads, func(i, j int) bool {
		return threads[i].CreatedAt.After(threads[j].CreatedAt)
	})
	return threads, nil
}

// DeleteThread removes a thread along with its messages and surfaces.
// Deleting an unknown thread is a no-op.
func (s *MemoryThreadStore) DeleteThread(ctx context.Context, threadID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.threads, threadID)
	delete(s.messages, threadID)
	delete(s.surfaces, threadID)
	return nil
}

// AppendMessage adds a message to its thread.
func (s *MemoryThreadStore) AppendMessage(ctx context.Context, msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.threads[msg.ThreadID]; !ok {
		return ErrThreadNotFound
	}

	cp := *msg
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	s.messages[cp.ThreadID] = append(s.messages[cp.ThreadID], &cp)
	return nil
}

// ListMessages returns a thread's messages in insertion order.
func (s *MemoryThreadStore) ListMessages(ctx context.Context, threadID string) ([]*Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.threads[threadID]; !ok {
		return nil, ErrThreadNotFound
	}

	msgs := s.messages[threadID]
	out := make([]*Message, len(msgs))
	for i, msg := range msgs {
		cp := *msg
		out[i] = &cp
	}
	return out, nil
}

// SaveSurface stores or replaces a surface snapshot for a thread.
func (s *MemoryThreadStore) SaveSurface(ctx context.Context, threadID, surfaceID string, snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.surfaces[threadID] == nil {
		s.surfaces[threadID] = make(map[string][]byte)
	}
	cp := make([]byte, len(snapshot))
	copy(cp, snapshot)
	s.surfaces[threadID][surfaceID] = cp
	return nil
}

// LoadSurfaces returns all surface snapshots for a thread, keyed by surface ID.
func (s *MemoryThreadStore) LoadSurfaces(ctx context.Context, threadID string) (map[string][]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]byte, len(s.surfaces[threadID]))
	for id, snapshot := range s.surfaces[threadID] {
		cp := make([]byte, len(snapshot))
		copy(cp, snapshot)
		out[id] = cp
	}
	return out, nil
}

// DeleteSurface removes a surface snapshot. Unknown surfaces are a no-op.
func (s *MemoryThreadStore) DeleteSurface(ctx context.Context, threadID, surfaceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.surfaces[threadID], surfaceID)
	return nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryThreadStore) Close() error {
	return nil
}
