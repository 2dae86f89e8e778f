// Package main provides the CLI entrypoint for the schema reconciler.
//
// reconciler keeps data source declarations in line with the attributes
// their stores expose:
//   - Validates declarations and reports issues
//   - Rewrites legacy configs into the current shape
//   - Merges introspected attributes into declarations
//   - Picks the visualization for a split state
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/davecgh/go-spew/spew"

	"schema-reconciler/internal/config"
)

const usage = `usage: reconciler [-debug] <command> [<args>]

The data source file is read from RECONCILER_CONFIG (default datasources.yaml).
Attributes are introspected from RECONCILER_DB_DRIVER/RECONCILER_DB_DSN or, when
no database is set, from the static catalog in RECONCILER_CATALOG.

Commands
   check       Validate every data source and list its issues
   migrate     Rewrite a (possibly legacy) data source file in the current shape
   deduce      Print the attributes a data source's expressions imply
   introspect  Merge introspected attributes into the data sources
   select      Pick the visualization for a data source and splits
   watch       Re-introspect data sources periodically until interrupted
   help        Display this message
`

var debugFlag = flag.Bool("debug", false, "dump internal values")

func main() {
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, "missing command\n\n", usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := cfg.Logger(os.Stderr)
	if *debugFlag {
		log.Debug("configuration", "config", spew.Sdump(cfg))
	}

	a := &app{cfg: cfg, log: log, out: os.Stdout, msg: os.Stderr}

	switch cmd := args[0]; cmd {
	case "check":
		err = a.check(args[1:])
	case "migrate":
		err = a.migrate(args[1:])
	case "deduce":
		err = a.deduce(args[1:])
	case "introspect":
		err = a.introspect(args[1:])
	case "select":
		err = a.selectViz(args[1:])
	case "watch":
		err = a.watch(args[1:])
	case "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n%s", cmd, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Error("command failed", slog.String("command", args[0]), slog.Any("error", err))
		os.Exit(1)
	}
}
