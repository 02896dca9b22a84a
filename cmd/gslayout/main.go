// Command gslayout checks a video memory layout file and prints the slot
// table it builds, or dumps the built-in table as a starting point.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"emotion/gsmem"
	"emotion/internal/diag"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

func main() {
	var (
		path  = flag.String("layout", "", "Layout file (empty checks the built-in table).")
		pool  = flag.Int("pages", gsmem.PoolPages, "Video memory pool size in 8 KiB pages.")
		dump  = flag.Bool("dump", false, "Write the layout as YAML to stdout and exit.")
		level = flag.String("log", "info", "Log level.")
	)
	flag.Parse()

	lvl, err := diag.ParseLevel(*level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(2)
	}
	logger := diag.New(os.Stderr, lvl)

	if err := run(os.Stdout, logger, *path, *pool, *dump); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

func run(out io.Writer, l log.FieldLogger, path string, pool int, dump bool) error {
	layout, err := gsmem.LoadLayout(path)
	if err != nil {
		return err
	}
	if dump {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(layout); err != nil {
			return fmt.Errorf("encode layout: %w", err)
		}
		return enc.Close()
	}
	a, err := gsmem.Build(layout, pool)
	if err != nil {
		return err
	}
	a.Print(l)
	fmt.Fprintf(out, "ok: %d slots, %d of %d pages free\n", len(a.Allocation()), a.FreePages(), a.PoolPages())
	return nil
}
