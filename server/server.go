// Package server exposes the agents over HTTP: REST endpoints for threads
// and surfaces, an SSE endpoint streaming run events, and an endpoint
// receiving client protocol messages.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/agentkit-go/agentkit/a2ui"
	"github.com/agentkit-go/agentkit/agent"
	"github.com/agentkit-go/agentkit/agui"
	"github.com/agentkit-go/agentkit/log"
	"github.com/agentkit-go/agentkit/sse"
	"github.com/agentkit-go/agentkit/store"
)

// Server wires agents, persistence and the surface manager behind HTTP.
type Server struct {
	echo     *echo.Echo
	agents   *agent.Registry
	threads  store.ThreadStore
	surfaces *a2ui.SurfaceManager
	resolver *a2ui.ActionResolver
	logger   log.Logger
}

// ServerOption configures the server.
type ServerOption func(*Server)

// WithLogger sets the logger.
func WithLogger(logger log.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server over the given agents, thread store and surfaces.
func New(agents *agent.Registry, threads store.ThreadStore, surfaces *a2ui.SurfaceManager, opts ...ServerOption) *Server {
	s := &Server{
		echo:     echo.New(),
		agents:   agents,
		threads:  threads,
		surfaces: surfaces,
		resolver: a2ui.NewActionResolver(surfaces),
		logger:   log.GetDefaultLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.echo.HideBanner = true
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.CORS())
	s.routes()
	return s
}

func (s *Server) routes() {
	api := s.echo.Group("/api")

	api.GET("/agents", s.handleListAgents)

	api.POST("/threads", s.handleCreateThread)
	api.GET("/threads", s.handleListThreads)
	api.GET("/threads/:thread", s.handleGetThread)
	api.DELETE("/threads/:thread", s.handleDeleteThread)
	api.GET("/threads/:thread/messages", s.handleListMessages)
	api.GET("/threads/:thread/surfaces", s.handleListSurfaces)
	api.POST("/threads/:thread/action", s.handleAction)

	api.POST("/agents/:agent/threads/:thread/run", s.handleRun)
}

// Echo exposes the underlying router, used by tests and custom middleware.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Resolver exposes the action resolver so callers can register handlers.
func (s *Server) Resolver() *a2ui.ActionResolver {
	return s.resolver
}

// Start begins serving on addr and blocks.
func (s *Server) Start(addr string) error {
	s.logger.Info("server listening on %s", addr)
	return s.echo.Start(addr)
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleListAgents(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{"agents": s.agents.IDs()})
}

type createThreadRequest struct {
	AgentID string `json:"agentId"`
	Title   string `json:"title"`
}

func (s *Server) handleCreateThread(c echo.Context) error {
	var req createThreadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.AgentID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "agentId is required")
	}
	if _, err := s.agents.Get(req.AgentID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	thread := &store.Thread{
		ID:        uuid.NewString(),
		AgentID:   req.AgentID,
		Title:     req.Title,
		CreatedAt: time.Now(),
	}
	if err := s.threads.CreateThread(c.Request().Context(), thread); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, thread)
}

func (s *Server) handleListThreads(c echo.Context) error {
	threads, err := s.threads.ListThreads(c.Request().Context(), c.QueryParam("agent"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"threads": threads})
}

func (s *Server) handleGetThread(c echo.Context) error {
	thread, err := s.threads.GetThread(c.Request().Context(), c.Param("thread"))
	if err != nil {
		if err == store.ErrThreadNotFound {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, thread)
}

func (s *Server) handleDeleteThread(c echo.Context) error {
	if err := s.threads.DeleteThread(c.Request().Context(), c.Param("thread")); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleListMessages(c echo.Context) error {
	msgs, err := s.threads.ListMessages(c.Request().Context(), c.Param("thread"))
	if err != nil {
		if err == store.ErrThreadNotFound {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]any{"messages": msgs})
}

func (s *Server) handleListSurfaces(c echo.Context) error {
	snapshots := make(map[string]a2ui.SurfaceSnapshot)
	for _, id := range s.surfaces.SurfaceIDs() {
		if snap, ok := s.surfaces.Snapshot(id); ok {
			snapshots[id] = snap
		}
	}
	return c.JSON(http.StatusOK, map[string]any{"surfaces": snapshots})
}

// handleAction receives a client protocol message. User actions are
// dispatched to registered handlers; error messages are logged.
func (s *Server) handleAction(c echo.Context) error {
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unreadable body")
	}

	msg, err := a2ui.DecodeClientMessage(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	switch m := msg.(type) {
	case a2ui.UserAction:
		s.resolver.Dispatch(m)
		return c.JSON(http.StatusAccepted, map[string]any{"status": "dispatched"})
	case a2ui.ErrorMessage:
		s.logger.Warn("client error on thread %s: %s", c.Param("thread"), m.Message)
		return c.NoContent(http.StatusNoContent)
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported message")
	}
}

type runRequest struct {
	Prompt string `json:"prompt"`
}

// handleRun executes one agent run, streaming its events over SSE.
func (s *Server) handleRun(c echo.Context) error {
	ctx := c.Request().Context()

	ag, err := s.agents.Get(c.Param("agent"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	threadID := c.Param("thread")
	thread, err := s.threads.GetThread(ctx, threadID)
	if err != nil {
		if err == store.ErrThreadNotFound {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var req runRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Prompt == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}

	history, err := s.threads.ListMessages(ctx, threadID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := s.threads.AppendMessage(ctx, &store.Message{
		ID:        uuid.NewString(),
		ThreadID:  threadID,
		Role:      "user",
		Content:   req.Prompt,
		CreatedAt: time.Now(),
	}); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	w := sse.NewWriter(c.Response())
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Close()

	runID := uuid.NewString()
	events := make(chan agui.Event, 64)
	emit := func(ev agui.Event) {
		select {
		case events <- ev:
		case <-ctx.Done():
		}
	}

	go func() {
		defer close(events)

		emit(agui.NewRunStarted(runID, threadID, thread.AgentID))

		reply, err := ag.Run(ctx, agent.RunInput{
			RunID:    runID,
			ThreadID: threadID,
			Prompt:   req.Prompt,
			History:  history,
		}, emit)
		if err != nil {
			s.logger.Error("run %s failed: %v", runID, err)
			emit(agui.NewRunError(runID, err.Error()))
			return
		}

		if err := s.threads.AppendMessage(ctx, &store.Message{
			ID:        uuid.NewString(),
			ThreadID:  threadID,
			Role:      "assistant",
			Content:   reply,
			CreatedAt: time.Now(),
		}); err != nil {
			s.logger.Warn("persist reply for run %s: %v", runID, err)
		}
		s.persistSurfaces(ctx, threadID)

		emit(agui.NewRunFinished(runID))
	}()

	// Drains until the run goroutine closes the channel or the client
	// disconnects; keep-alive comments cover quiet stretches.
	if err := sse.StreamEvents(ctx, w, events); err != nil && ctx.Err() == nil {
		s.logger.Warn("stream for run %s ended: %v", runID, err)
	}
	return nil
}

// persistSurfaces saves a snapshot of every live surface to the thread.
func (s *Server) persistSurfaces(ctx context.Context, threadID string) {
	for _, id := range s.surfaces.SurfaceIDs() {
		snap, ok := s.surfaces.Snapshot(id)
		if !ok {
			continue
		}
		data, err := json.Marshal(snap)
		if err != nil {
			s.logger.Warn("marshal surface %s: %v", id, err)
			continue
		}
		if err := s.threads.SaveSurface(ctx, threadID, id, data); err != nil {
			s.logger.Warn("persist surface %s: %v", id, err)
		}
	}
}
