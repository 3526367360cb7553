package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/lrkit/lr"
	"github.com/npillmayer/lrkit/lr/lr1"
	"github.com/npillmayer/lrkit/lr/scanner"
	"github.com/npillmayer/lrkit/lr/scanner/lexmach"
	"github.com/pterm/pterm"

	"github.com/npillmayer/schuko/gtrace"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
)

// We provide a simple expression grammar. Semicolons separate expressions
// and serve as synchronization points for error recovery.
//
//  #start ➞ List
//  List   ➞ List ; Expr  |  Expr
//  Expr   ➞ Expr SumOp Term  |  Term
//  Term   ➞ Term ProdOp Factor  |   Factor
//  Factor ➞ number  |   ( Expr )
//  SumOp  ➞ +  |  -
//  ProdOp ➞ *  |  /
//
func makeExprGrammar() (*lr.Grammar, error) {
	b := lr.NewGrammarBuilder("Expr")
	b.LHS("List").N("List").T(";").N("Expr").End()
	b.LHS("List").N("Expr").End()
	b.LHS("Expr").N("Expr").N("SumOp").N("Term").End()
	b.LHS("Expr").N("Term").End()
	b.LHS("Term").N("Term").N("ProdOp").N("Factor").End()
	b.LHS("Term").N("Factor").End()
	b.LHS("Factor").T("number").End()
	b.LHS("Factor").T("(").N("Expr").T(")").End()
	b.LHS("SumOp").T("+").End()
	b.LHS("SumOp").T("-").End()
	b.LHS("ProdOp").T("*").End()
	b.LHS("ProdOp").T("/").End()
	b.Sync(";")
	return b.Grammar()
}

func makeTables() (*lr.Tables, error) {
	level := tracer().GetTraceLevel()
	tracer().SetTraceLevel(tracing.LevelError)
	defer tracer().SetTraceLevel(level)
	g, err := makeExprGrammar()
	if err != nil {
		return nil, fmt.Errorf("error creating grammar: %w", err)
	}
	ga, err := lr.Analysis(g)
	if err != nil {
		return nil, err
	}
	lrgen := lr.NewTableGenerator(ga)
	if err := lrgen.CreateTables(); err != nil {
		return nil, err
	}
	return lrgen.Tables(), nil
}

func makeLexer(tables *lr.Tables) (*lexmach.Lexer, error) {
	lexer, err := lexmach.Compile(func(r *lexmach.Rules) {
		r.Literals("+", "-", "*", "/", "(", ")", ";")
		r.Value(`[0-9]+(\.[0-9]+)?`, "number", func(s string) (interface{}, error) {
			return strconv.ParseFloat(s, 64)
		})
		r.Skip(`( |\t|\n|\r)+`)
	})
	if err != nil {
		return nil, err
	}
	return lexer, lexer.Check(scanner.Terminals(tables.G))
}

// main() starts an interactive CLI, where users may enter arithmetic
// expressions. Each expression is parsed, its parse tree is displayed and
// its value is printed.
//
func main() {
	// set up logging
	initDisplay()
	gtrace.SyntaxTracer = gologadapter.New()
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	initf := flag.String("init", "", "Initial load")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelInfo) // will set the correct level later
	pterm.Info.Println("Welcome to LRREPL")   // colored welcome message
	tracer().Infof("Trace level is %s", *tlevel)
	//
	// set up grammar, tables and lexer
	tables, err := makeTables()
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	lm, err := makeLexer(tables)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	tracer().SetTraceLevel(tracing.TraceLevelFromString(*tlevel)) // now set the user supplied level
	tables.G.Dump()                                               // only visible in debug mode
	//
	// set up REPL
	repl, err := readline.New("lrrepl> ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{
		tables: tables,
		lm:     lm,
		repl:   repl,
	}
	if input := strings.TrimSpace(strings.Join(flag.Args(), " ")); input != "" {
		intp.Eval(input)
	}
	//
	// load an init file and start receiving expressions
	tracer().Infof("Quit with <ctrl>D") // inform user how to stop the CLI
	intp.loadInitFile(*initf)           // init file name provided by flag
	intp.REPL()                         // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	tables *lr.Tables
	lm     *lexmach.Lexer
	repl   *readline.Instance
	last   *lr1.Node // last parse tree
}

func (intp *Intp) loadInitFile(filename string) {
	if filename == "" {
		return
	}
	f, err := os.Open(filename)
	if err != nil {
		tracer().Errorf("Unable to open init file: %s", filename)
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineno := 1
	for scanner.Scan() {
		line := scanner.Text()
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if err := intp.Eval(line); err != nil {
			tracer().Errorf("Error line %d: "+err.Error(), lineno)
		}
		lineno++
	}
	if err := scanner.Err(); err != nil {
		tracer().Errorf("Error while reading init file: " + err.Error())
	}
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if err := intp.Eval(line); err != nil {
			pterm.Error.Println(err.Error())
		}
	}
	println("Good bye!")
}

// Eval parses an input line and prints its parse tree.
func (intp *Intp) Eval(line string) error {
	tree, errs, err := Parse(intp.tables, intp.lm, line)
	for _, e := range errs {
		pterm.Warning.Println(e.Error())
	}
	if err != nil {
		return err
	}
	intp.last = tree
	root := pterm.NewTreeFromLeveledList(leveledList(tree))
	pterm.DefaultTree.WithRoot(root).Render()
	for _, v := range evaluate(tree) {
		pterm.Info.Println(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return nil
}

// Parse parses input with the expression grammar and returns a parse tree,
// together with the syntax errors the parser recovered from.
func Parse(tables *lr.Tables, lm *lexmach.Lexer, input string) (*lr1.Node, []*lr1.SyntaxError, error) {
	scan, err := lm.Scanner(input)
	if err != nil {
		return nil, nil, err
	}
	scan.SetErrorHandler(func(e error) {
		tracer().Errorf("scanner: %v", e)
	})
	parser := lr1.NewParser(tables)
	accepted, err := parser.Parse(scan)
	if err != nil {
		return nil, nil, err
	}
	if !accepted {
		return nil, parser.SyntaxErrors(), fmt.Errorf("could not parse input")
	}
	tracer().Infof("Successfully parsed input")
	return parser.ParseTree(), parser.SyntaxErrors(), nil
}

func leveledList(tree *lr1.Node) pterm.LeveledList {
	var ll pterm.LeveledList
	tree.Walk(func(n *lr1.Node, depth int) {
		ll = append(ll, pterm.LeveledListItem{Level: depth, Text: n.Label()})
	})
	return ll
}

// evaluate computes the values of the expressions in a parse tree for the
// expression grammar, in order of appearance.
func evaluate(n *lr1.Node) []float64 {
	if n.Symbol.Name != "List" {
		return []float64{value(n)}
	}
	var vals []float64
	for _, child := range n.Children {
		switch child.Symbol.Name {
		case "List":
			vals = append(vals, evaluate(child)...)
		case "Expr":
			vals = append(vals, value(child))
		}
	}
	return vals
}

func value(n *lr1.Node) float64 {
	switch n.Symbol.Name {
	case "Expr", "Term":
		if len(n.Children) == 1 {
			return value(n.Children[0])
		}
		x, y := value(n.Children[0]), value(n.Children[2])
		switch n.Children[1].Children[0].Symbol.Name { // SumOp or ProdOp
		case "+":
			return x + y
		case "-":
			return x - y
		case "*":
			return x * y
		case "/":
			return x / y
		}
	case "Factor":
		if len(n.Children) == 3 { // ( Expr )
			return value(n.Children[1])
		}
		v, _ := n.Children[0].Value().(float64)
		return v
	}
	return 0
}
