package arena

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"schema-reconciler/internal/datasource"
	"schema-reconciler/internal/diagnostic"
)

// Introspector lists the attributes the store currently exposes for a data
// source.
type Introspector interface {
	Introspect(ctx context.Context, ds *datasource.DataSource) (datasource.Attributes, error)
}

// Refresher periodically re-introspects every published data source and
// publishes the merged result.
type Refresher struct {
	arena    *Arena
	source   Introspector
	interval time.Duration
	logger   *slog.Logger
}

// NewRefresher returns a refresher. interval is used for data sources whose
// refresh rule has no parseable period; a nil logger discards output.
func NewRefresher(a *Arena, source Introspector, interval time.Duration, logger *slog.Logger) *Refresher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Refresher{arena: a, source: source, interval: interval, logger: logger}
}

// Refresh runs one introspection cycle for name and publishes the result.
// On introspection failure the published version stays as it is.
func (r *Refresher) Refresh(ctx context.Context, name string) (*Version, diagnostic.Diagnostics, error) {
	var diags diagnostic.Diagnostics

	current, ok := r.arena.Current(name)
	if !ok {
		return nil, diags, ErrNotFound
	}

	attrs, err := r.source.Introspect(ctx, current.DataSource)
	if err != nil {
		return nil, diags, err
	}

	v, err := r.arena.Update(name, func(ds *datasource.DataSource) (*datasource.DataSource, error) {
		next, d := ds.AddAttributes(attrs)
		diags = d

		return next, nil
	})
	if err != nil {
		return nil, diags, err
	}

	return v, diags, nil
}

// Run refreshes every data source published when Run starts, each on its own
// timer, until ctx is canceled. Data sources with introspection turned off
// are skipped.
func (r *Refresher) Run(ctx context.Context) {
	var wg sync.WaitGroup

	for _, ds := range r.arena.Snapshot() {
		if !ds.Introspection.Introspects() {
			r.logger.Info("introspection disabled", "dataSource", ds.Name)
			continue
		}

		wg.Add(1)

		go func(name string, every time.Duration) {
			defer wg.Done()
			r.loop(ctx, name, every)
		}(ds.Name, r.intervalFor(ds))
	}

	wg.Wait()
}

func (r *Refresher) intervalFor(ds *datasource.DataSource) time.Duration {
	if d, err := ParseDuration(ds.RefreshRule.Refresh); err == nil && d > 0 {
		return d
	}

	return r.interval
}

func (r *Refresher) loop(ctx context.Context, name string, every time.Duration) {
	log := r.logger.With("dataSource", name)
	log.Debug("refresh loop started", "interval", every)

	r.cycle(ctx, log, name)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("refresh loop stopped")
			return
		case <-ticker.C:
			r.cycle(ctx, log, name)
		}
	}
}

func (r *Refresher) cycle(ctx context.Context, log *slog.Logger, name string) {
	v, diags, err := r.Refresh(ctx, name)
	if err != nil {
		if ctx.Err() == nil {
			log.Error("refresh failed", "error", err)
		}

		return
	}

	for _, d := range diags.All() {
		log.Info(d.Message, "code", d.Code, "subject", d.Subject, "severity", d.Severity.String())
	}

	log.Info("published", "version", v.ID.String(), "seq", v.Seq,
		"dimensions", len(v.DataSource.Dimensions), "measures", len(v.DataSource.Measures))

	for _, issue := range v.DataSource.Issues() {
		log.Warn("issue", "issue", issue)
	}
}
