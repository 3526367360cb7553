package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/lrkit/lr"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var parsegenFlags = struct {
	output    *string
	canonical *bool
	dot       *string
	html      *string
	dump      *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parsegen [grammar spec path]",
		Short:   "Generate LR(1) parser tables from a grammar specification",
		Example: `  lrkit parsegen grammar.san -o parser.json --dot parser.dot`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runParsegen,
	}
	parsegenFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	parsegenFlags.canonical = cmd.Flags().Bool("canonical", false, "keep one item per lookahead, do not merge lookaheads")
	parsegenFlags.dot = cmd.Flags().String("dot", "", "write the LR(1) automaton in Graphviz format to a file")
	parsegenFlags.html = cmd.Flags().String("html", "", "write the ACTION and GOTO tables as HTML to a file")
	parsegenFlags.dump = cmd.Flags().Bool("dump", false, "print the grammar and the ACTION table")
	rootCmd.AddCommand(cmd)
}

func runParsegen(cmd *cobra.Command, args []string) error {
	var path string
	name := "stdin"
	if len(args) > 0 {
		path = args[0]
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	in, err := openInput(path)
	if err != nil {
		return fmt.Errorf("cannot open the grammar spec: %w", err)
	}
	defer in.Close()
	g, err := lr.ReadGrammar(name, in)
	if err != nil {
		return err
	}
	ga, err := lr.Analysis(g)
	if err != nil {
		return err
	}
	lrgen := lr.NewTableGenerator(ga, lr.Canonical(*parsegenFlags.canonical))
	if err := lrgen.CreateTables(); err != nil {
		return err
	}
	out, err := createOutput(*parsegenFlags.output)
	if err != nil {
		return err
	}
	if err := lrgen.Tables().Save(out); err != nil {
		out.Close()
		return fmt.Errorf("cannot write the parser tables: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	if err := writeFile(*parsegenFlags.dot, lrgen.DFA2GraphViz); err != nil {
		return err
	}
	err = writeFile(*parsegenFlags.html, func(w io.Writer) error {
		if err := lr.ActionTableAsHTML(lrgen, w); err != nil {
			return err
		}
		return lr.GotoTableAsHTML(lrgen, w)
	})
	if err != nil {
		return err
	}
	if *parsegenFlags.dump {
		for _, p := range g.Productions() {
			fmt.Printf("%3d: %s\n", p.Serial, p)
		}
		dumpActionTable(lrgen.Tables())
	}
	if n := len(lrgen.Conflicts()); n > 0 {
		pterm.Warning.Println(fmt.Sprintf("%d conflicts resolved by first-wins", n))
		for _, c := range lrgen.Conflicts() {
			fmt.Fprintln(os.Stderr, c)
		}
	}
	return nil
}

// dumpActionTable prints the ACTION and GOTO tables, one row per state.
func dumpActionTable(tables *lr.Tables) {
	terms := tables.G.Symbols().Terminals()
	nonterms := tables.G.Symbols().NonTerminals()
	header := []string{"state"}
	for _, a := range terms {
		if a == tables.G.Symbols().Epsilon() {
			continue
		}
		header = append(header, a.Name)
	}
	for _, A := range nonterms {
		if A == tables.G.Symbols().AugmentedStart() {
			continue
		}
		header = append(header, A.Name)
	}
	data := pterm.TableData{header}
	for state := 0; state < tables.States; state++ {
		row := []string{fmt.Sprintf("%d", state)}
		for _, a := range terms {
			if a == tables.G.Symbols().Epsilon() {
				continue
			}
			row = append(row, actionCell(tables.Action(state, a)))
		}
		for _, A := range nonterms {
			if A == tables.G.Symbols().AugmentedStart() {
				continue
			}
			cell := ""
			if next, ok := tables.Goto(state, A); ok {
				cell = fmt.Sprintf("%d", next)
			}
			row = append(row, cell)
		}
		data = append(data, row)
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func actionCell(action lr.Action) string {
	switch action.Kind {
	case lr.Shift:
		return fmt.Sprintf("s%d", action.Target)
	case lr.Reduce:
		return fmt.Sprintf("r%d", action.Target)
	case lr.Accept:
		return "acc"
	}
	return ""
}
