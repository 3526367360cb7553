package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/lrkit/lex"
	"github.com/spf13/cobra"
)

var lexFlags = struct {
	source *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "lex <lexer tables path>",
		Short:   "Tokenize a source text",
		Example: `  cat src | lrkit lex lexer.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runLex,
	}
	lexFlags.source = cmd.Flags().StringP("source", "s", "", "source file path (default stdin)")
	rootCmd.AddCommand(cmd)
}

func runLex(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("cannot open the lexer tables: %w", err)
	}
	tables, err := lex.LoadTables(f)
	f.Close()
	if err != nil {
		return err
	}
	src, err := openInput(*lexFlags.source)
	if err != nil {
		return err
	}
	defer src.Close()
	lx, err := lex.NewLexer(tables, src, lex.WithErrorHandler(func(e error) {
		fmt.Fprintln(os.Stderr, e)
	}))
	if err != nil {
		return err
	}
	return lex.WriteTokens(os.Stdout, lx)
}
