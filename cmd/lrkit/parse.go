package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/lrkit/lr"
	"github.com/npillmayer/lrkit/lr/lr1"
	"github.com/npillmayer/lrkit/lr/scanner"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source   *string
	pretty   *bool
	goTokens *bool
	comments *bool
	unify    *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <parser tables path>",
		Short:   "Parse a token stream",
		Example: `  lrkit lex lexer.json < src | lrkit parse parser.json
  lrkit parse --go -s prog.txt parser.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runParse,
	}
	parseFlags.source = cmd.Flags().StringP("source", "s", "", "token stream file path (default stdin)")
	parseFlags.pretty = cmd.Flags().Bool("pretty", false, "render the parse tree graphically")
	parseFlags.goTokens = cmd.Flags().Bool("go", false, "tokenize the source with Go-like token names (Ident, Int, String, +, ...)")
	parseFlags.comments = cmd.Flags().Bool("comments", false, "with --go: deliver comments as tokens named Comment")
	parseFlags.unify = cmd.Flags().Bool("unify-strings", false, "with --go: deliver raw strings and characters as String tokens")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("cannot open the parser tables: %w", err)
	}
	tables, err := lr.LoadTables(f)
	f.Close()
	if err != nil {
		return err
	}
	src, err := openInput(*parseFlags.source)
	if err != nil {
		return err
	}
	defer src.Close()
	var tokens scanner.Tokenizer
	if *parseFlags.goTokens {
		name := *parseFlags.source
		if name == "" {
			name = "stdin"
		}
		tokens = scanner.GoTokenizer(name, src,
			scanner.SkipComments(!*parseFlags.comments),
			scanner.UnifyStrings(*parseFlags.unify))
	} else if tokens, err = scanner.NewTokenStream(src, scanner.Terminals(tables.G)); err != nil {
		return err
	}
	p := lr1.NewParser(tables, lr1.WithSink(os.Stderr))
	accepted, err := p.Parse(tokens)
	if err != nil {
		return err
	}
	if !accepted {
		for _, n := range p.PartialForest() {
			lr1.PrintTree(os.Stdout, n)
		}
		return fmt.Errorf("input not accepted, %d syntax errors", len(p.SyntaxErrors()))
	}
	if *parseFlags.pretty {
		printPretty(p.ParseTree())
	} else if err := lr1.PrintTree(os.Stdout, p.ParseTree()); err != nil {
		return err
	}
	if n := len(p.SyntaxErrors()); n > 0 {
		pterm.Warning.Println(fmt.Sprintf("recovered from %d syntax errors", n))
	}
	return nil
}

// printPretty renders a parse tree with pterm.
func printPretty(tree *lr1.Node) {
	var ll pterm.LeveledList
	tree.Walk(func(n *lr1.Node, depth int) {
		ll = append(ll, pterm.LeveledListItem{Level: depth, Text: n.Label()})
	})
	root := pterm.NewTreeFromLeveledList(ll)
	pterm.DefaultTree.WithRoot(root).Render()
}
