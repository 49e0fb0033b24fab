package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/samvad-hq/departure-board/internal/config"
	"github.com/samvad-hq/departure-board/internal/display"
	"github.com/samvad-hq/departure-board/internal/logger"
	"github.com/samvad-hq/departure-board/internal/server"
	"github.com/samvad-hq/departure-board/internal/storage"
	"github.com/samvad-hq/departure-board/pkg/apiclient"
	"github.com/samvad-hq/departure-board/pkg/httpclient"
	"github.com/samvad-hq/departure-board/pkg/layout"
	"github.com/samvad-hq/departure-board/pkg/publishers"
	"golang.org/x/sync/errgroup"
)

// Runtime owns every long-lived component of the board process.
type Runtime struct {
	Board  *Board
	layout *layout.Watcher
	server *server.Server
	fanout *publishers.Fanout
	store  storage.Store
	log    logger.Logger
}

// NewClient builds the API client from config, logging through log.
func NewClient(cfg *config.Config, log *logger.ZapLogger) (*apiclient.Client, error) {
	opts := []apiclient.Option{}
	if log != nil {
		opts = append(opts,
			apiclient.WithLogger(log),
			apiclient.WithHTTPClient(httpclient.NewRestyClient(cfg.RequestTimeout, log.Sugar())),
		)
	}
	client, err := apiclient.New(apiclient.Config{
		BaseURL: cfg.APIBaseURL,
		Token:   cfg.APIToken,
		Timeout: cfg.RequestTimeout,
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	return client, nil
}

// NewRuntime wires the client, layout, publishers, storage and optional
// status server from config. Output of the board goes to out.
func NewRuntime(ctx context.Context, cfg *config.Config, log *logger.ZapLogger, out io.Writer) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	var rlog logger.Logger = logger.NopLogger{}
	if log != nil {
		rlog = log
	}

	client, err := NewClient(cfg, log)
	if err != nil {
		return nil, err
	}

	watcher, err := layout.NewWatcher(cfg.LayoutFile, rlog)
	if err != nil {
		return nil, fmt.Errorf("load layout: %w", err)
	}

	rt := &Runtime{layout: watcher, log: rlog}

	if strings.TrimSpace(cfg.PublishersFile) != "" {
		fanout, err := buildFanout(ctx, cfg.PublishersFile, rlog)
		if err != nil {
			return nil, err
		}
		rt.fanout = fanout
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		SnapshotTTL:     cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanup,
	})
	if err != nil {
		rt.Close()
		return nil, fmt.Errorf("init storage: %w", err)
	}
	rt.store = store
	rlog.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"snapshot_ttl_seconds":     int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanup.Seconds()),
	})

	deps := Deps{
		Client:   client,
		Layout:   watcher,
		Renderer: display.NewRenderer(out),
		Store:    store,
		Log:      rlog,
	}
	if rt.fanout != nil {
		deps.Publisher = rt.fanout
	}
	board, err := NewBoard(cfg, deps)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.Board = board

	if addr := strings.TrimSpace(cfg.HTTPAddr); addr != "" {
		rt.server = server.New(addr, board, rlog)
	}
	return rt, nil
}

func buildFanout(ctx context.Context, path string, log logger.Logger) (*publishers.Fanout, error) {
	publisherReg, err := publishers.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("load publishers registry: %w", err)
	}
	enabled := publisherReg.Enabled()
	pubClients, err := publishers.BuildAll(ctx, publishers.DefaultRegistry(), enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build publishers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, pubCfg := range enabled {
		summaries = append(summaries, map[string]string{
			"id":   pubCfg.ID,
			"type": pubCfg.Type,
		})
	}
	log.InfoObj("publishers registry loaded", "publishers_meta", map[string]any{
		"count":      len(summaries),
		"publishers": summaries,
	})
	return publishers.NewFanout(pubClients), nil
}

// Run starts the layout watcher, the optional status server and the board
// loop, and stops them all when ctx is cancelled or one of them fails.
func (r *Runtime) Run(ctx context.Context) error {
	if r == nil || r.Board == nil {
		return fmt.Errorf("runtime is not initialized")
	}
	defer r.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.layout.Run(gctx) })
	if r.server != nil {
		g.Go(func() error { return r.server.Run(gctx) })
	}
	g.Go(func() error { return r.Board.Run(gctx) })
	return g.Wait()
}

// Close releases storage and publisher connections, logging any errors encountered.
func (r *Runtime) Close() {
	if r == nil {
		return
	}
	if r.fanout != nil {
		if err := r.fanout.Close(); err != nil {
			r.log.ErrorObj("publisher close failed", "error", err.Error())
		}
		r.fanout = nil
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			r.log.ErrorObj("storage close failed", "error", err.Error())
		}
		r.store = nil
	}
}
