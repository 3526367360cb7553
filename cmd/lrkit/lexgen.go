package main

import (
	"fmt"
	"io"

	"github.com/npillmayer/lrkit/lex"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var lexgenFlags = struct {
	output *string
	dot    *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "lexgen [lexical spec path]",
		Short:   "Generate lexer tables from a lexical specification",
		Example: `  lrkit lexgen spec.lan -o lexer.json`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runLexgen,
	}
	lexgenFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	lexgenFlags.dot = cmd.Flags().String("dot", "", "write the lexer automata in Graphviz format to a file")
	rootCmd.AddCommand(cmd)
}

func runLexgen(cmd *cobra.Command, args []string) error {
	var path string
	if len(args) > 0 {
		path = args[0]
	}
	in, err := openInput(path)
	if err != nil {
		return fmt.Errorf("cannot open the lexical spec: %w", err)
	}
	defer in.Close()
	spec, err := lex.ReadSpec(in)
	if err != nil {
		return err
	}
	tables, err := lex.Generate(spec)
	if err != nil {
		return err
	}
	out, err := createOutput(*lexgenFlags.output)
	if err != nil {
		return err
	}
	if err := tables.Save(out); err != nil {
		out.Close()
		return fmt.Errorf("cannot write the lexer tables: %w", err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	err = writeFile(*lexgenFlags.dot, func(w io.Writer) error {
		for _, m := range tables.Machines {
			if err := m.GraphViz(w); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if *lexgenFlags.output != "" {
		pterm.Info.Println(fmt.Sprintf("lexer tables for %d lexer states written to %s",
			len(tables.Machines), *lexgenFlags.output))
	}
	return nil
}
