package main

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"tinscript/internal/strtable"
)

func newStringsCmd(cfg *config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "strings",
		Short: "Inspect a persisted stringtable.txt",
	}
	cmd.AddCommand(newStringsListCmd(cfg))
	cmd.AddCommand(newStringsReplCmd(cfg))
	return cmd
}

func newStringsReplCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactively look up string-table entries by hash or name substring",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStringsRepl(cfg)
		},
	}
}

// runStringsRepl is the UnHash debugging aid: it loads the names a prior run
// persisted to the string table file so that hashes can be looked up as
// readable names, in an interactive liner shell instead of a one-shot
// lookup. It only reads the file; nothing is written back.
func runStringsRepl(cfg *config) error {
	f, err := os.Open(cfg.StringTable)
	if err != nil {
		return fmt.Errorf("tinscript: open %s: %w", cfg.StringTable, err)
	}
	t := strtable.New(false)
	loadErr := t.Load(f)
	f.Close()
	if loadErr != nil {
		return fmt.Errorf("tinscript: load %s: %w", cfg.StringTable, loadErr)
	}

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	fmt.Printf("%d strings loaded from %s. Enter a 0x-hash or a name substring; Ctrl-D to quit.\n",
		t.Len(), cfg.StringTable)
	for {
		query, err := line.Prompt("tinscript-strings> ")
		if err != nil {
			return nil
		}
		line.AppendHistory(query)
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		if h, perr := strconv.ParseUint(strings.TrimPrefix(query, "0x"), 16, 32); perr == nil {
			if s, ok := t.Lookup(uint32(h)); ok {
				fmt.Printf("0x%08x -> %q\n", h, s)
				continue
			}
		}
		matched := 0
		t.Each(func(h uint32, s string, refs int) bool {
			if strings.Contains(s, query) {
				fmt.Printf("0x%08x  %-32s refs=%d\n", h, s, refs)
				matched++
			}
			return true
		})
		if matched == 0 {
			fmt.Println("no match")
		}
	}
}

func newStringsListCmd(cfg *config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every hash/string pair in the string table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStringsList(cfg)
		},
	}
}

func runStringsList(cfg *config) error {
	log := newLog(cfg.Verbose)
	log.Tracef("strings", "loading %s", cfg.StringTable)

	f, err := os.Open(cfg.StringTable)
	if err != nil {
		return fmt.Errorf("tinscript: open %s: %w", cfg.StringTable, err)
	}
	defer f.Close()

	t := strtable.New(false)
	if err := t.Load(f); err != nil {
		return fmt.Errorf("tinscript: load %s: %w", cfg.StringTable, err)
	}

	type row struct {
		hash uint32
		s    string
		refs int
	}
	var rows []row
	t.Each(func(h uint32, s string, refs int) bool {
		rows = append(rows, row{h, s, refs})
		return true
	})
	sort.Slice(rows, func(i, j int) bool { return rows[i].s < rows[j].s })

	for _, r := range rows {
		fmt.Printf("0x%08x  %-32s refs=%d\n", r.hash, r.s, r.refs)
	}
	fmt.Printf("%d entries\n", len(rows))
	return nil
}
