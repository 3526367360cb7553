/*
Command lrkit generates lexer and LR(1) parser tables and runs them.

	lrkit lexgen spec.lan -o lexer.json
	lrkit lex lexer.json < source > tokens
	lrkit parsegen grammar.san -o parser.json
	lrkit parse parser.json < tokens

Tables are written as JSON, thus generating and using tables may happen in
separate invocations.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © 2017–2021 Norbert Pillmayer <norbert@pillmayer.com>

*/
package main

import (
	"io"
	"os"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rootFlags = struct {
	trace *string
}{}

var rootCmd = &cobra.Command{
	Use:   "lrkit",
	Short: "Generate lexer and LR(1) parser tables, and run them",
	Long: `lrkit provides four commands:
- lexgen generates lexer tables from a lexical specification.
- lex tokenizes a source text with generated lexer tables.
- parsegen generates LR(1) parser tables from a grammar specification.
- parse parses a token stream with generated parser tables and prints the parse tree.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		setupTracing(*rootFlags.trace)
	},
}

func init() {
	rootFlags.trace = rootCmd.PersistentFlags().String("trace", "Error", "trace level [Debug|Info|Error]")
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		pterm.Error.Println(err.Error())
		return err
	}
	return nil
}

var traceKeys = []string{
	"lrkit.automaton",
	"lrkit.regex",
	"lrkit.lex",
	"lrkit.lr",
	"lrkit.scanner",
}

func setupTracing(level string) {
	gtrace.SyntaxTracer = gologadapter.New()
	l := tracing.TraceLevelFromString(level)
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(l)
	}
}

// openInput opens the file at path, or stdin if path is empty.
func openInput(path string) (io.ReadCloser, error) {
	if path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// createOutput creates the file at path, or returns stdout if path is empty.
func createOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopWriteCloser{os.Stdout}, nil
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
}

// writeFile writes to the file at path using write, if path is not empty.
func writeFile(path string, write func(io.Writer) error) error {
	if path == "" {
		return nil
	}
	f, err := createOutput(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
