package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/davecgh/go-spew/spew"
	"gopkg.in/yaml.v3"

	"schema-reconciler/internal/arena"
	"schema-reconciler/internal/config"
	"schema-reconciler/internal/datasource"
	"schema-reconciler/internal/diagnostic"
	"schema-reconciler/internal/introspect"
	"schema-reconciler/internal/viz"
)

var errProblems = errors.New("problems found")

type app struct {
	cfg *config.Config
	log *slog.Logger
	out io.Writer
	// msg receives diagnostics when out carries YAML.
	msg io.Writer
}

func (a *app) load(path string) ([]*datasource.DataSource, diagnostic.Diagnostics, error) {
	dss, diags, err := datasource.LoadAllFile(path, a.cfg.Settings())
	if err != nil {
		return nil, diags, err
	}

	a.log.Debug("loaded data sources", "path", path, "count", len(dss))

	return dss, diags, nil
}

func (a *app) find(name string) (*datasource.DataSource, error) {
	dss, _, err := a.load(a.cfg.DataSources)
	if err != nil {
		return nil, err
	}

	for _, ds := range dss {
		if ds.Name == name {
			return ds, nil
		}
	}

	return nil, fmt.Errorf("no data source named '%s' in %s", name, a.cfg.DataSources)
}

func report(w io.Writer, diags diagnostic.Diagnostics) {
	for _, d := range diags.All() {
		fmt.Fprintln(w, d.String())
	}
}

func (a *app) dump(v any) {
	if *debugFlag {
		spew.Fdump(a.out, v)
	}
}

// check validates every data source. Load failures and issues make it fail.
func (a *app) check(args []string) error {
	path := a.cfg.DataSources
	if len(args) > 0 {
		path = args[0]
	}

	dss, diags, err := a.load(path)
	if err != nil {
		return err
	}

	report(a.out, diags)

	problems := len(diags.Errors)

	for _, ds := range dss {
		issues := ds.Issues()
		for _, issue := range issues {
			fmt.Fprintf(a.out, "%s: %s\n", ds.Name, issue)
		}

		problems += len(issues)
	}

	if problems > 0 {
		return fmt.Errorf("%w: %d", errProblems, problems)
	}

	fmt.Fprintf(a.out, "%d data sources ok\n", len(dss))

	return nil
}

// migrate prints the file in the current shape. Legacy entries are migrated
// while loading.
func (a *app) migrate(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: migrate <file>")
	}

	dss, diags, err := a.load(args[0])
	if err != nil {
		return err
	}

	if diags.HasErrors() {
		report(a.msg, diags)
		return diags.Error()
	}

	data, err := datasource.MarshalAll(dss)
	if err != nil {
		return err
	}

	_, err = a.out.Write(data)

	return err
}

func (a *app) deduce(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: deduce <data source>")
	}

	ds, err := a.find(args[0])
	if err != nil {
		return err
	}

	attrs := ds.DeduceAttributes()
	a.dump(attrs)

	data, err := yaml.Marshal(attrs)
	if err != nil {
		return err
	}

	_, err = a.out.Write(data)

	return err
}

func (a *app) introspector() (arena.Introspector, func(), error) {
	if a.cfg.DB.Driver != "" {
		s, err := introspect.OpenSQL(a.cfg.DB.Driver, a.cfg.DB.DSN)
		if err != nil {
			return nil, nil, err
		}

		return s, func() { s.Close() }, nil
	}

	if a.cfg.Catalog != "" {
		s, err := introspect.LoadStaticFile(a.cfg.Catalog)
		if err != nil {
			return nil, nil, err
		}

		return s, func() {}, nil
	}

	return nil, nil, errors.New("no attribute source: set RECONCILER_DB_DRIVER or RECONCILER_CATALOG")
}

// introspect merges introspected attributes into every data source that
// allows it and prints the result, or writes it back with -write. A data
// source whose introspection fails is kept as loaded.
func (a *app) introspect(args []string) error {
	fs := flag.NewFlagSet("introspect", flag.ContinueOnError)
	write := fs.Bool("write", false, "write the merged data sources back to the config file")

	if err := fs.Parse(args); err != nil {
		return err
	}

	src, closeSrc, err := a.introspector()
	if err != nil {
		return err
	}
	defer closeSrc()

	dss, diags, err := a.load(a.cfg.DataSources)
	if err != nil {
		return err
	}

	// Entries that failed to load are missing from dss; rewriting the file
	// would drop them.
	if *write && diags.HasErrors() {
		report(a.msg, diags)
		return fmt.Errorf("not rewriting %s: %w", a.cfg.DataSources, diags.Error())
	}

	ctx := context.Background()

	for i, ds := range dss {
		if !ds.Introspection.Introspects() {
			continue
		}

		attrs, err := src.Introspect(ctx, ds)
		if err != nil {
			diags.AddError(diagnostic.CodeLoadFailed, err.Error(), ds.Name, "")
			continue
		}

		merged, d := ds.AddAttributes(attrs)
		diags.Merge(d)
		dss[i] = merged
	}

	report(a.msg, diags)
	a.dump(dss)

	data, err := datasource.MarshalAll(dss)
	if err != nil {
		return err
	}

	if *write {
		return os.WriteFile(a.cfg.DataSources, data, 0644)
	}

	_, err = a.out.Write(data)

	return err
}

// selectViz picks a visualization: select [-current id] <data source> [dimension...].
// With no dimensions the data source's default splits are used.
func (a *app) selectViz(args []string) error {
	fs := flag.NewFlagSet("select", flag.ContinueOnError)
	current := fs.String("current", "", "id of the visualization currently shown")
	colors := fs.String("colors", "", "dimension the current colors are keyed by")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 {
		return errors.New("usage: select [-current id] [-colors dimension] <data source> [dimension...]")
	}

	ds, err := a.find(fs.Arg(0))
	if err != nil {
		return err
	}

	splits := viz.SplitOn(fs.Args()[1:]...)
	if splits.Len() == 0 {
		splits = viz.DefaultSplits(ds)
	}

	var c *viz.Colors
	if *colors != "" {
		c = &viz.Colors{Dimension: *colors}
	}

	sel, ok := viz.Select(viz.Builtin(), ds, splits, c, *current)
	if !ok {
		return errors.New("no visualization claims these splits")
	}

	a.dump(sel)

	fmt.Fprintf(a.out, "%s (%s, score %d)\n", sel.Manifest.ID, sel.Resolve.State, sel.Resolve.Score)
	fmt.Fprintf(a.out, "splits: %s\n", splitNames(sel.Splits))

	if sel.Adjusted {
		fmt.Fprintln(a.out, "adjusted")
	}

	for _, cand := range sel.Candidates {
		fmt.Fprintf(a.out, "  %-12s %-9s %d\n", cand.Manifest.ID, cand.Resolve.State, cand.Resolve.Score)
	}

	return nil
}

func splitNames(s viz.Splits) string {
	if s.Len() == 0 {
		return "-"
	}

	names := make([]string, s.Len())
	for i, sp := range s {
		names[i] = sp.Dimension
	}

	return strings.Join(names, ", ")
}

// watch publishes every data source and refreshes it until interrupted.
func (a *app) watch(_ []string) error {
	src, closeSrc, err := a.introspector()
	if err != nil {
		return err
	}
	defer closeSrc()

	dss, diags, err := a.load(a.cfg.DataSources)
	if err != nil {
		return err
	}

	for _, d := range diags.All() {
		a.log.Warn(d.Message, "dataSource", d.DataSource, "code", d.Code)
	}

	ar := arena.New()
	for _, ds := range dss {
		v := ar.Publish(ds)
		a.log.Info("published", "dataSource", ds.Name, "version", v.ID.String())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	arena.NewRefresher(ar, src, a.cfg.Refresh, a.log).Run(ctx)

	return nil
}
