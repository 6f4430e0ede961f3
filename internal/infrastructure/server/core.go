package server

import (
	"fmt"

	"github.com/GriffinCanCode/webtop/internal/domain/events"
	"github.com/GriffinCanCode/webtop/internal/domain/registry"
	"github.com/GriffinCanCode/webtop/internal/domain/store"
	"github.com/GriffinCanCode/webtop/internal/domain/window"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/config"
	"github.com/GriffinCanCode/webtop/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"go.uber.org/zap"
)

// Core is the window manager with its store, bus and registry, without any
// transport. The CLI inspection commands use it directly.
type Core struct {
	Store    *store.Guarded
	Bus      *events.Bus
	Registry *registry.Manager
	Windows  *window.Manager
	Viewport *window.StaticViewport
	Seeder   *registry.Seeder
	Seeded   registry.SeedResult

	logger *zap.Logger
}

// NewCore opens the store, hydrates the window manager, seeds the built-in
// apps and then the manifests on disk, and marks registration complete. A
// manifest with a built-in id replaces the built-in.
// metrics may be nil.
func NewCore(cfg *config.Config, logger *zap.Logger, metrics *monitoring.Metrics) (*Core, error) {
	inner, err := openStore(cfg.Store, logger)
	if err != nil {
		return nil, err
	}

	guard := store.GuardOptions{
		MaxFailures: uint32(max(cfg.Store.MaxFailures, 1)),
		Cooldown:    cfg.Store.BreakerCooldown,
		Logger:      logger.Named("store"),
	}
	busOpts := events.Options{Logger: logger.Named("events")}
	if metrics != nil {
		guard.OnFailure = metrics.RecordStoreFailure
		busOpts.OnPublish = func(kind types.EventKind) { metrics.RecordEvent(string(kind)) }
		busOpts.OnFailure = func(kind types.EventKind, _ error) { metrics.RecordSubscriberFailure(string(kind)) }
	}
	st := store.NewGuarded(inner, guard)
	bus := events.New(busOpts)

	reg := registry.NewManager(logger.Named("registry"))
	viewport := window.NewStaticViewport(window.ViewportMetrics{
		Width:         cfg.Viewport.Width,
		Height:        cfg.Viewport.Height,
		TaskbarHeight: cfg.Viewport.TaskbarHeight,
	})

	opts := window.Options{
		Store:    st,
		Registry: reg,
		Bus:      bus,
		Viewport: viewport,
		Logger:   logger.Named("window"),
	}
	if metrics != nil {
		opts.Metrics = metrics
	}
	wm := window.New(opts)

	seeder, err := registry.NewSeeder(wm, cfg.Apps.Dir, registry.SeederOptions{Logger: logger.Named("seeder")})
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create app seeder: %w", err)
	}

	c := &Core{
		Store:    st,
		Bus:      bus,
		Registry: reg,
		Windows:  wm,
		Viewport: viewport,
		Seeder:   seeder,
		logger:   logger,
	}
	c.seed()
	wm.Ready()

	if metrics != nil {
		metrics.SetRegistryApps(reg.Len())
	}
	return c, nil
}

func (c *Core) seed() {
	defaults, err := c.Seeder.SeedDefaults()
	if err != nil {
		c.logger.Warn("Failed to seed default apps", zap.Error(err))
	}
	res, err := c.Seeder.SeedApps()
	if err != nil {
		c.logger.Warn("Failed to seed apps from disk", zap.Error(err))
	}

	c.Seeded = registry.SeedResult{
		Loaded: res.Loaded + defaults.Loaded,
		Failed: res.Failed + defaults.Failed,
		IDs:    append(defaults.IDs, res.IDs...),
	}
	c.logger.Info("Apps seeded",
		zap.Int("loaded", c.Seeded.Loaded),
		zap.Int("failed", c.Seeded.Failed))
}

// Close flushes and closes the store
func (c *Core) Close() error {
	if err := c.Store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return nil
}

func openStore(cfg config.StoreConfig, logger *zap.Logger) (store.Store, error) {
	if cfg.Path == "" {
		logger.Info("State kept in memory only")
		return store.NewMemory(), nil
	}
	fs, err := store.OpenFile(store.FileOptions{
		Path:          cfg.Path,
		Compress:      cfg.Compress,
		FlushInterval: cfg.FlushInterval,
		Logger:        logger.Named("store"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open state file: %w", err)
	}
	if cfg.ReadOnly {
		mem := store.NewMemory()
		n, err := store.Copy(mem, fs)
		fs.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to load state file: %w", err)
		}
		logger.Info("State file loaded read-only", zap.String("path", fs.Path()), zap.Int("keys", n))
		return mem, nil
	}

	logger.Info("State file opened", zap.String("path", fs.Path()), zap.Bool("compress", cfg.Compress))
	return fs, nil
}
