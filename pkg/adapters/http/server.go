// Package http exposes the event pipeline to external processes over
// HTTP/SSE. Install the Server as a feature, then serve its handler.
package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/agent"
	"github.com/aretw0/arbor/pkg/pipeline"
)

// Config configures the event server feature.
type Config struct {
	Logger *slog.Logger

	// BufferSize is the per-subscriber event buffer; a subscriber that
	// falls this far behind starts dropping events.
	BufferSize int
}

// Server broadcasts serialized pipeline events to SSE subscribers.
type Server struct {
	mu          sync.Mutex
	subscribers map[chan []byte]struct{}
	bufferSize  int
	logger      *slog.Logger
}

var _ agent.Feature[Config] = (*Server)(nil)

// NewServer creates an event server.
func NewServer() *Server {
	return &Server{
		subscribers: make(map[chan []byte]struct{}),
		bufferSize:  64,
		logger:      logging.NewNop(),
	}
}

func (s *Server) DefaultConfig() Config {
	return Config{BufferSize: 64}
}

// Install registers listeners for every pipeline event kind. The stable,
// serializable event shape is the JSON encoding of the typed event.
func (s *Server) Install(config Config, setup *agent.FeatureSetup) {
	if config.Logger != nil {
		s.logger = config.Logger
	}
	if config.BufferSize > 0 {
		s.bufferSize = config.BufferSize
	}

	setup.Pipeline.InterceptAgentEvents(func(ev *pipeline.AgentEvent) { s.publish(ev) })
	setup.Pipeline.InterceptStrategyEvents(func(ev *pipeline.StrategyEvent) { s.publish(ev) })
	setup.Pipeline.InterceptNodeEvents(func(ev *pipeline.NodeEvent) { s.publish(ev) })
	setup.Pipeline.InterceptSubgraphEvents(func(ev *pipeline.SubgraphEvent) { s.publish(ev) })
	setup.Pipeline.InterceptLLMCallEvents(func(ev *pipeline.LLMCallEvent) { s.publish(ev) })
	setup.Pipeline.InterceptToolCallEvents(func(ev *pipeline.ToolCallEvent) { s.publish(ev) })
	setup.Pipeline.InterceptStreamingEvents(func(ev *pipeline.StreamingEvent) { s.publish(ev) })
}

func (s *Server) publish(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Warn("failed to serialize pipeline event", "err", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- data:
		default:
			// Slow subscriber: drop rather than block the run.
		}
	}
}

func (s *Server) subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, s.bufferSize)
	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		delete(s.subscribers, ch)
		s.mu.Unlock()
	}
}

// Handler returns the HTTP handler serving the SSE event stream.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/events", s.handleEvents)
	return r
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, unsubscribe := s.subscribe()
	defer unsubscribe()

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case data := <-events:
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}

// Serve runs the event server until the context is cancelled.
func (s *Server) Serve(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("event server listening", "addr", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
