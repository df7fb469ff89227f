// Package redis persists pipeline events as an append-only run journal,
// so a run's event stream can be replayed after the process exits.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/agent"
	"github.com/aretw0/arbor/pkg/pipeline"
)

// Config configures the journal feature.
type Config struct {
	Logger *slog.Logger
}

// Journal appends serialized pipeline events to a per-run Redis list.
type Journal struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	maxLen int64
	logger *slog.Logger
}

var _ agent.Feature[Config] = (*Journal)(nil)

type Option func(*Journal)

// WithTTL sets the expiration for run journals.
func WithTTL(ttl time.Duration) Option {
	return func(j *Journal) {
		j.ttl = ttl
	}
}

// WithPrefix sets the key prefix for run journals.
func WithPrefix(prefix string) Option {
	return func(j *Journal) {
		j.prefix = prefix
	}
}

// WithMaxLen caps the number of events retained per run. Zero means
// unbounded.
func WithMaxLen(n int64) Option {
	return func(j *Journal) {
		j.maxLen = n
	}
}

// New creates a journal backed by a new Redis client.
func New(address, password string, db int, opts ...Option) *Journal {
	client := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(client, opts...)
}

// NewFromClient creates a journal from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Journal {
	journal := &Journal{
		client: client,
		prefix: "arbor:run:",
		ttl:    0,
		logger: logging.NewNop(),
	}

	for _, opt := range opts {
		opt(journal)
	}

	return journal
}

func (j *Journal) DefaultConfig() Config {
	return Config{}
}

// Install registers listeners for every pipeline event kind.
func (j *Journal) Install(config Config, setup *agent.FeatureSetup) {
	if config.Logger != nil {
		j.logger = config.Logger
	}

	setup.Pipeline.InterceptAgentEvents(func(ev *pipeline.AgentEvent) { j.append(ev.RunID, ev) })
	setup.Pipeline.InterceptStrategyEvents(func(ev *pipeline.StrategyEvent) { j.append(ev.RunID, ev) })
	setup.Pipeline.InterceptNodeEvents(func(ev *pipeline.NodeEvent) { j.append(ev.RunID, ev) })
	setup.Pipeline.InterceptSubgraphEvents(func(ev *pipeline.SubgraphEvent) { j.append(ev.RunID, ev) })
	setup.Pipeline.InterceptLLMCallEvents(func(ev *pipeline.LLMCallEvent) { j.append(ev.RunID, ev) })
	setup.Pipeline.InterceptToolCallEvents(func(ev *pipeline.ToolCallEvent) { j.append(ev.RunID, ev) })
	setup.Pipeline.InterceptStreamingEvents(func(ev *pipeline.StreamingEvent) { j.append(ev.RunID, ev) })
}

func (j *Journal) key(runID string) string {
	return j.prefix + runID
}

func (j *Journal) append(runID string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		j.logger.Warn("failed to serialize pipeline event", "err", err)
		return
	}

	ctx := context.Background()
	pipe := j.client.Pipeline()
	pipe.RPush(ctx, j.key(runID), data)
	if j.maxLen > 0 {
		pipe.LTrim(ctx, j.key(runID), -j.maxLen, -1)
	}
	if j.ttl > 0 {
		pipe.Expire(ctx, j.key(runID), j.ttl)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		j.logger.Warn("failed to journal pipeline event", "run_id", runID, "err", err)
	}
}

// Events returns the raw serialized events recorded for a run, oldest
// first.
func (j *Journal) Events(ctx context.Context, runID string) ([]json.RawMessage, error) {
	entries, err := j.client.LRange(ctx, j.key(runID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read run journal: %w", err)
	}

	events := make([]json.RawMessage, len(entries))
	for i, entry := range entries {
		events[i] = json.RawMessage(entry)
	}
	return events, nil
}

// Close closes the redis client.
func (j *Journal) Close() error {
	return j.client.Close()
}
