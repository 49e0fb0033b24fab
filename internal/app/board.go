package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samvad-hq/departure-board/internal/config"
	"github.com/samvad-hq/departure-board/internal/display"
	"github.com/samvad-hq/departure-board/internal/domain"
	"github.com/samvad-hq/departure-board/internal/logger"
	"github.com/samvad-hq/departure-board/internal/storage"
	"github.com/samvad-hq/departure-board/pkg/apiclient"
	"github.com/samvad-hq/departure-board/pkg/layout"
	"github.com/samvad-hq/departure-board/pkg/publishers"
)

// Fetcher is the request executor surface the board depends on.
type Fetcher interface {
	Get(ctx context.Context, endpoint string, params map[string]string) (*apiclient.Response, error)
}

// LayoutSource yields the layout to apply on each poll.
type LayoutSource interface {
	Current() *layout.Layout
}

// EventPublisher delivers board changes downstream.
type EventPublisher interface {
	Publish(ctx context.Context, evt publishers.Event) (int, error)
}

// Deps bundles the collaborators of a Board. Nil Store and Publisher disable
// change publishing; a nil Layout uses layout.Default.
type Deps struct {
	Client    Fetcher
	Layout    LayoutSource
	Renderer  *display.Renderer
	Publisher EventPublisher
	Store     storage.Store
	Log       logger.Logger
}

// Board polls one endpoint on a fixed interval, renders the configured
// fields and publishes a change event whenever the displayed values change.
type Board struct {
	endpoint     string
	pollInterval time.Duration
	client       Fetcher
	layout       LayoutSource
	renderer     *display.Renderer
	publisher    EventPublisher
	store        storage.Store
	log          logger.Logger

	mu     sync.RWMutex
	latest *domain.Snapshot
}

type staticLayout struct{ l *layout.Layout }

func (s staticLayout) Current() *layout.Layout { return s.l }

// NewBoard builds a board runtime for cfg.
func NewBoard(cfg *config.Config, deps Deps) (*Board, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if deps.Client == nil {
		return nil, fmt.Errorf("api client must not be nil")
	}
	if deps.Renderer == nil {
		return nil, fmt.Errorf("renderer must not be nil")
	}
	if deps.Log == nil {
		deps.Log = logger.NopLogger{}
	}
	if deps.Layout == nil {
		deps.Layout = staticLayout{l: layout.Default()}
	}

	return &Board{
		endpoint:     cfg.Endpoint(),
		pollInterval: cfg.PollInterval,
		client:       deps.Client,
		layout:       deps.Layout,
		renderer:     deps.Renderer,
		publisher:    deps.Publisher,
		store:        deps.Store,
		log:          deps.Log,
	}, nil
}

// Run polls immediately and then on every tick until the context is cancelled.
func (b *Board) Run(ctx context.Context) error {
	if b == nil || b.client == nil {
		return fmt.Errorf("board is not initialized")
	}

	b.log.InfoObj("board loop starting", "board_state", map[string]any{
		"endpoint":      b.endpoint,
		"poll_interval": b.pollInterval.String(),
	})

	if err := b.PollOnce(ctx); err != nil {
		b.log.ErrorObj("initial poll failed", "error", err.Error())
	}

	ticker := time.NewTicker(b.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			b.log.InfoObj("board loop exiting", "reason", ctx.Err().Error())
			return nil
		case <-ticker.C:
			if err := b.PollOnce(ctx); err != nil {
				b.log.ErrorObj("scheduled poll failed", "error", err.Error())
			}
		}
	}
}

// PollOnce fetches the endpoint, renders the result and publishes changes.
// Request errors are rendered and returned; publish errors are logged only.
func (b *Board) PollOnce(ctx context.Context) error {
	start := time.Now()
	resp, err := b.client.Get(ctx, b.endpoint, nil)
	if err != nil {
		if rerr := b.renderer.Error(err); rerr != nil {
			return errors.Join(err, rerr)
		}
		return err
	}

	lines := b.layout.Current().Extract(resp)
	if err := b.renderer.Lines(lines); err != nil {
		return fmt.Errorf("render board: %w", err)
	}

	snap := domain.NewSnapshot(b.endpoint, lines, time.Now())
	b.mu.Lock()
	b.latest = &snap
	b.mu.Unlock()

	b.log.DebugObj("poll completed", "poll_meta", map[string]any{
		"endpoint":    b.endpoint,
		"status":      resp.StatusCode(),
		"snapshot_id": snap.ID,
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})

	b.publishChange(ctx, snap)
	return nil
}

// Latest returns the most recent successful snapshot.
func (b *Board) Latest() (domain.Snapshot, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.latest == nil {
		return domain.Snapshot{}, false
	}
	return *b.latest, true
}

func (b *Board) publishChange(ctx context.Context, snap domain.Snapshot) {
	if b.publisher == nil {
		return
	}
	if b.store != nil {
		seen, err := b.store.SeenSnapshot(snap.ID)
		if err != nil {
			b.log.WarnObj("snapshot lookup failed; publishing anyway", "store_error", map[string]any{
				"snapshot_id": snap.ID,
				"error":       err.Error(),
			})
		} else if seen {
			return
		}
	}

	delivered, err := b.publisher.Publish(ctx, publishers.NewEvent(snap))
	if err != nil {
		b.log.ErrorObj("board change publish failed", "publish_error", map[string]any{
			"snapshot_id": snap.ID,
			"delivered":   delivered,
			"error":       err.Error(),
		})
	}
	if delivered == 0 || b.store == nil {
		return
	}
	if err := b.store.MarkSnapshot(snap.ID); err != nil {
		b.log.WarnObj("snapshot mark failed", "store_error", map[string]any{
			"snapshot_id": snap.ID,
			"error":       err.Error(),
		})
	}
}
