// Command tinscript is a small operator CLI around the compiled-block
// cache and string table: filesystem-facing tooling that sits outside the
// embeddable core (file loading, a GUI console) but that a host project
// still wants on hand. Built on cobra/liner/treeprint rather than bare
// flag; see DESIGN.md for the reasoning.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"tinscript/internal/diag"
)

// config holds the environment-overridable defaults every subcommand reads
// its cache/string-table paths from: flags with env fallback, parsed via
// caarlos0/env instead of re-parsing os.Getenv by hand.
type config struct {
	CacheDir    string `env:"TINSCRIPT_CACHE_DIR" envDefault:".tinscript-cache"`
	StringTable string `env:"TINSCRIPT_STRINGTABLE" envDefault:"stringtable.txt"`
	Verbose     bool   `env:"TINSCRIPT_VERBOSE"`
}

func newLog(verbose bool) *diag.Log {
	if !verbose {
		return diag.NewLog(nil)
	}
	z, err := zap.NewDevelopment()
	if err != nil {
		return diag.NewLog(nil)
	}
	return diag.NewLog(z)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := loadConfig()

	root := &cobra.Command{
		Use:   "tinscript",
		Short: "Inspect and manage TinScript compiled-block caches and string tables",
	}
	root.PersistentFlags().StringVar(&cfg.CacheDir, "cache-dir", cfg.CacheDir, "directory holding .cso cache files")
	root.PersistentFlags().StringVar(&cfg.StringTable, "string-table", cfg.StringTable, "path to a persisted stringtable.txt")
	root.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "enable trace-level logging")

	root.AddCommand(newCacheCmd(cfg))
	root.AddCommand(newStringsCmd(cfg))
	return root
}
