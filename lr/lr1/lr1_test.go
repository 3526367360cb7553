package lr1

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/npillmayer/lrkit/lr"
	"github.com/npillmayer/lrkit/lr/scanner"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func tok(name string, line int, lexeme string) scanner.DefaultToken {
	return scanner.MakeDefaultToken(name, line, lexeme)
}

func parensTables(t *testing.T, opts ...lr.Option) *lr.Tables {
	b := lr.NewGrammarBuilder("Parens")
	b.LHS("S").T("(").N("S").T(")").End()
	b.LHS("S").T("a").End()
	b.Sync(")")
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	return makeTables(t, g, opts...)
}

func makeTables(t *testing.T, g *lr.Grammar, opts ...lr.Option) *lr.Tables {
	ga, err := lr.Analysis(g)
	if err != nil {
		t.Fatal(err)
	}
	lrgen := lr.NewTableGenerator(ga, opts...)
	if err := lrgen.CreateTables(); err != nil {
		t.Fatal(err)
	}
	return lrgen.Tables()
}

var statements = `%V <L> <S>
%T id ;
%Syn ;
<L>
 <L> <S>
 <S>
<S>
 id ;
`

func statementTables(t *testing.T) *lr.Tables {
	g, err := lr.ReadGrammar("Statements", strings.NewReader(statements))
	if err != nil {
		t.Fatal(err)
	}
	return makeTables(t, g)
}

func TestParens(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	p := NewParser(parensTables(t))
	input := scanner.Tokens(tok("(", 1, "("), tok("(", 1, "("), tok("a", 2, "a"), tok(")", 3, ")"), tok(")", 3, ")"))
	accepted, err := p.Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	if !accepted {
		t.Fatalf("expected input to be accepted, errors: %v", p.SyntaxErrors())
	}
	tree := p.ParseTree()
	expected := `S
 ( 1 (
 S
  ( 1 (
  S
   a 2 a
  ) 3 )
 ) 3 )
`
	if tree.String() != expected {
		t.Errorf("unexpected parse tree:\n%s", tree)
	}
	if tree.Span.From() != 1 || tree.Span.To() != 4 {
		t.Errorf("root should span lines 1 to 3, spans %s", tree.Span)
	}
	if len(p.SyntaxErrors()) != 0 {
		t.Errorf("expected no syntax errors, have %v", p.SyntaxErrors())
	}
}

func TestEpsilonLeaf(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	b := lr.NewGrammarBuilder("G")
	b.LHS("S").N("A").T("a").End()
	b.LHS("A").T("b").End()
	b.LHS("A").Epsilon()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	p := NewParser(makeTables(t, g))
	accepted, _ := p.Parse(scanner.Tokens(tok("a", 1, "a")))
	if !accepted {
		t.Fatalf("expected input to be accepted")
	}
	expected := "S\n A\n  $\n a 1 a\n"
	if s := p.ParseTree().String(); s != expected {
		t.Errorf("expected tree %q, have %q", expected, s)
	}
}

func TestRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	tables := statementTables(t)
	var buf bytes.Buffer
	if err := tables.Save(&buf); err != nil {
		t.Fatal(err)
	}
	loaded, err := lr.LoadTables(&buf)
	if err != nil {
		t.Fatal(err)
	}
	input := "id 1 x\n; 1 ;\nid 2 y\n; 2 ;\n"
	var trees []string
	for _, tables := range []*lr.Tables{tables, loaded} {
		ts, err := scanner.NewTokenStream(strings.NewReader(input), scanner.Terminals(tables.G))
		if err != nil {
			t.Fatal(err)
		}
		p := NewParser(tables)
		if accepted, _ := p.Parse(ts); !accepted {
			t.Fatalf("expected input to be accepted, errors: %v", p.SyntaxErrors())
		}
		trees = append(trees, p.ParseTree().String())
	}
	if trees[0] != trees[1] {
		t.Errorf("trees differ:\n%s\n%s", trees[0], trees[1])
	}
	expected := `<L>
 <L>
  <S>
   id 1 x
   ; 1 ;
 <S>
  id 2 y
  ; 2 ;
`
	if trees[0] != expected {
		t.Errorf("unexpected parse tree:\n%s", trees[0])
	}
}

func TestCanonicalTablesParseAlike(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	var trees []string
	for _, canonical := range []bool{false, true} {
		p := NewParser(parensTables(t, lr.Canonical(canonical)))
		input := scanner.Tokens(tok("(", 1, "("), tok("a", 1, "a"), tok(")", 1, ")"))
		if accepted, _ := p.Parse(input); !accepted {
			t.Fatalf("expected input to be accepted, canonical=%v", canonical)
		}
		trees = append(trees, p.ParseTree().String())
	}
	if trees[0] != trees[1] {
		t.Errorf("trees differ:\n%s\n%s", trees[0], trees[1])
	}
}

func TestResumeAtSyncToken(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	var sink bytes.Buffer
	p := NewParser(statementTables(t), WithSink(&sink))
	input := scanner.Tokens(
		tok("id", 1, "a"), tok(";", 1, ";"),
		tok("id", 2, "b"), tok("id", 2, "c"), tok(";", 2, ";"),
		tok("id", 3, "d"), tok(";", 3, ";"),
	)
	accepted, err := p.Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	if !accepted {
		t.Fatalf("parser should have recovered and accepted, errors: %v", p.SyntaxErrors())
	}
	errs := p.SyntaxErrors()
	if len(errs) != 1 {
		t.Fatalf("expected one syntax error, have %v", errs)
	}
	if errs[0].Kind != ParseError || errs[0].Line != 2 || errs[0].Token.Lexeme() != "c" {
		t.Errorf("unexpected syntax error %v", errs[0])
	}
	if len(errs[0].Expected) != 1 || errs[0].Expected[0] != ";" {
		t.Errorf("expected ; to be the only acceptable terminal, have %v", errs[0].Expected)
	}
	count := 0
	p.ParseTree().Walk(func(n *Node, _ int) {
		if n.Symbol.Name == "<S>" {
			count++
		}
	})
	if count != 3 {
		t.Errorf("expected 3 statements in tree, have %d:\n%s", count, p.ParseTree())
	}
	if !strings.Contains(sink.String(), "Syntax error in line 2") {
		t.Errorf("expected error message in sink, have %q", sink.String())
	}
}

func TestRecoveryWithoutSyncToken(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	p := NewParser(statementTables(t))
	input := scanner.Tokens(tok("id", 1, "a"), tok("id", 1, "b"), tok("id", 2, "c"))
	accepted, err := p.Parse(input)
	if err != nil {
		t.Fatal(err)
	}
	if accepted {
		t.Fatalf("input without ; must not be accepted")
	}
	errs := p.SyntaxErrors()
	if len(errs) != 2 || errs[0].Kind != ParseError || errs[1].Kind != RecoveryFailure {
		t.Fatalf("expected a parse error followed by a recovery failure, have %v", errs)
	}
	if p.ParseTree() != nil {
		t.Errorf("failed parse should not produce a tree")
	}
	forest := p.PartialForest()
	if len(forest) != 1 || forest[0].Label() != "id 1 a" {
		t.Errorf("expected partial forest [id 1 a], have %v", forest)
	}
}

func TestRecoveryStackExhausted(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	p := NewParser(statementTables(t))
	accepted, _ := p.Parse(scanner.Tokens(tok(";", 1, ";"), tok("id", 1, "a"), tok(";", 1, ";")))
	if accepted {
		t.Fatalf("input starting with ; must not be accepted")
	}
	errs := p.SyntaxErrors()
	if len(errs) != 2 || errs[1].Kind != RecoveryFailure {
		t.Errorf("expected recovery to fail, have %v", errs)
	}
}

func TestUnknownTokenIsSyntaxError(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	p := NewParser(statementTables(t))
	input := scanner.Tokens(tok("id", 1, "a"), tok("?", 1, "?"), tok(";", 1, ";"))
	accepted, _ := p.Parse(input)
	if !accepted {
		t.Errorf("parser should skip the unknown token and accept")
	}
	if errs := p.SyntaxErrors(); len(errs) != 1 || errs[0].Token.Name() != "?" {
		t.Errorf("expected one syntax error at ?, have %v", errs)
	}
}

func TestUninitializedParser(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	p := NewParser(nil)
	if _, err := p.Parse(scanner.Tokens()); err == nil {
		t.Errorf("expected error from uninitialized parser")
	}
}

func TestPrintTree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	var buf bytes.Buffer
	if err := PrintTree(&buf, nil); err != nil || buf.Len() != 0 {
		t.Errorf("printing a nil tree should be a no-op")
	}
	p := NewParser(parensTables(t))
	p.Parse(scanner.Tokens(tok("a", 7, "a")))
	if err := PrintTree(&buf, p.ParseTree()); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "S\n a 7 a\n" {
		t.Errorf("unexpected tree output %q", buf.String())
	}
}

func TestLeafValues(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	b := lr.NewGrammarBuilder("Sum")
	b.LHS("S").T("Int").T("+").T("Int").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	p := NewParser(makeTables(t, g))
	accepted, _ := p.Parse(scanner.GoTokenizer("sum", strings.NewReader("1 +\n 41")))
	if !accepted {
		t.Fatalf("expected input to be accepted, errors: %v", p.SyntaxErrors())
	}
	var sum int64
	p.ParseTree().Walk(func(n *Node, depth int) {
		if x, ok := n.Value().(int64); ok {
			sum += x
		}
	})
	if sum != 42 {
		t.Errorf("expected leaf values to sum up to 42, have %d", sum)
	}
	if v := p.ParseTree().Value(); v != nil {
		t.Errorf("inner nodes should not have a value, have %v", v)
	}
	expected := "S\n Int 1 1\n + 1 +\n Int 2 41\n"
	if s := p.ParseTree().String(); s != expected {
		t.Errorf("expected tree %q, have %q", expected, s)
	}
}

func TestMissingGotoKeepsSubtree(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	var buf bytes.Buffer
	if err := parensTables(t).Save(&buf); err != nil {
		t.Fatal(err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	raw["gotos"] = []interface{}{} // tables without GOTO entries
	data, err := json.Marshal(raw)
	if err != nil {
		t.Fatal(err)
	}
	tables, err := lr.LoadTables(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	p := NewParser(tables)
	accepted, _ := p.Parse(scanner.Tokens(tok("(", 1, "("), tok("a", 1, "a"), tok(")", 1, ")")))
	if accepted {
		t.Fatalf("expected input to be rejected")
	}
	errs := p.SyntaxErrors()
	if len(errs) != 2 || errs[0].Kind != StructuralMismatch || errs[1].Kind != RecoveryFailure {
		t.Errorf("expected a structural mismatch and a recovery failure, have %v", errs)
	}
	forest := p.PartialForest()
	if len(forest) == 0 {
		t.Fatalf("expected the reduced subtree in the partial forest")
	}
	if s := forest[len(forest)-1].String(); s != "S\n a 1 a\n" {
		t.Errorf("expected subtree S -> a, have %q", s)
	}
}
