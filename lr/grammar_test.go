package lr

import (
	"errors"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
)

func TestSymbolOrder(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("G")
	b.LHS("S").N("A").T("b").End()
	b.LHS("A").T("a").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	st := g.Symbols()
	var names []string
	for _, A := range st.Symbols() {
		names = append(names, A.Name)
	}
	expected := "#start A S #eof $ a b"
	if strings.Join(names, " ") != expected {
		t.Errorf("expected symbol order %q, have %q", expected, strings.Join(names, " "))
	}
	for i, A := range st.Symbols() {
		if A.Serial() != i || st.BySerial(i) != A {
			t.Errorf("serial of %s should be %d, is %d", A, i, A.Serial())
		}
	}
	if len(st.NonTerminals()) != 3 || len(st.Terminals()) != 4 {
		t.Errorf("expected 3 non-terminals and 4 terminals")
	}
	if st.TerminalAt(0) != st.EndOfStream() {
		t.Errorf("expected #eof to be terminal bit 0")
	}
	if A, _ := st.ResolveOrDefine("a", Terminal); A != st.Resolve("a", Terminal) {
		t.Errorf("symbols must be interned")
	}
	if st.Resolve("a", NonTerminal) != nil {
		t.Errorf("a has not been defined as a non-terminal")
	}
}

func TestAugmentedProduction(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("G")
	b.LHS("S").N("A").T("a").End()
	b.LHS("A").T("b").End()
	b.LHS("A").Epsilon()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	if g.Size() != 4 {
		t.Fatalf("expected 4 productions, have %d", g.Size())
	}
	p0 := g.Production(0)
	if p0.LHS != g.Symbols().AugmentedStart() || len(p0.RHS()) != 1 || p0.RHS()[0] != g.Start {
		t.Errorf("production 0 should be the augmented production, is %s", p0)
	}
	if g.Start.Name != "S" {
		t.Errorf("start symbol should be S, is %s", g.Start)
	}
	if !g.Production(3).IsEpsilon() {
		t.Errorf("production 3 should be an epsilon production")
	}
	if p := g.Production(1).String(); p != "[S] ::= [A a]" {
		t.Errorf("unexpected rendering of production 1: %s", p)
	}
	g2, _ := b.Grammar()
	if g2 != g {
		t.Errorf("second call to Grammar() should return the same grammar")
	}
}

func TestNullable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("G1")
	b.LHS("S").N("A").N("B").End()
	b.LHS("A").Epsilon()
	b.LHS("B").T("b").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	g.AnnotateNullable()
	st := g.Symbols()
	if !st.Resolve("A", NonTerminal).Nullable {
		t.Errorf("A should be nullable")
	}
	if st.Resolve("S", NonTerminal).Nullable {
		t.Errorf("S should not be nullable, as B is not nullable")
	}
	if st.Resolve("B", NonTerminal).Nullable {
		t.Errorf("B should not be nullable")
	}
	g.AnnotateNullable() // idempotent
	if !st.Resolve("A", NonTerminal).Nullable || st.Resolve("S", NonTerminal).Nullable {
		t.Errorf("nullability should not change on a second run")
	}
	//
	b = NewGrammarBuilder("G2")
	b.LHS("S").N("A").End()
	b.LHS("A").Epsilon()
	g, err = b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	g.AnnotateNullable()
	st = g.Symbols()
	if !st.Resolve("S", NonTerminal).Nullable || !st.Resolve("A", NonTerminal).Nullable {
		t.Errorf("S and A should be nullable")
	}
}

func TestFirstSets(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("G")
	b.LHS("S").N("A").T("a").End()
	b.LHS("A").N("B").N("D").End()
	b.LHS("B").T("b").End()
	b.LHS("B").Epsilon()
	b.LHS("D").T("d").End()
	b.LHS("D").Epsilon()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	ga, err := Analysis(g)
	if err != nil {
		t.Fatal(err)
	}
	expected := map[string]string{
		"#start": "a b d",
		"S":      "a b d",
		"A":      "b d",
		"B":      "b",
		"D":      "d",
	}
	g.EachNonTerminal(func(A *Symbol) {
		var names []string
		for _, a := range ga.First(A) {
			names = append(names, a.Name)
		}
		if first := strings.Join(names, " "); first != expected[A.Name] {
			t.Errorf("FIRST(%s) should be {%s}, is {%s}", A, expected[A.Name], first)
		}
	})
	// A -> B D: suffix sets fold in nullable continuations
	p := g.Production(2)
	if !p.IsEmptyFrom(0) {
		t.Errorf("B D should be nullable from position 0")
	}
	if n := p.StartsAt(0).Len(); n != 2 {
		t.Errorf("start set of B D should have 2 terminals, has %d", n)
	}
	if !p.StartsAt(2).IsEmpty() {
		t.Errorf("start set at end of RHS should be empty")
	}
	// S -> A a
	p = g.Production(1)
	if p.IsEmptyFrom(0) || p.IsEmptyFrom(1) || !p.IsEmptyFrom(2) {
		t.Errorf("A a should be non-nullable up to position 2")
	}
}

func TestFirstSetsOfRecursiveGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("Expr")
	b.LHS("E").N("E").T("+").N("T").End()
	b.LHS("E").N("T").End()
	b.LHS("T").N("T").T("*").N("F").End()
	b.LHS("T").N("F").End()
	b.LHS("F").T("(").N("E").T(")").End()
	b.LHS("F").T("id").End()
	g, err := b.Grammar()
	if err != nil {
		t.Fatal(err)
	}
	ga, err := Analysis(g)
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"E", "T", "F"} {
		first := ga.First(g.Symbols().Resolve(name, NonTerminal))
		if len(first) != 2 || first[0].Name != "(" || first[1].Name != "id" {
			t.Errorf("FIRST(%s) should be { ( id }, is %v", name, first)
		}
	}
}

func TestUndefinedNonTerminal(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("G")
	b.LHS("S").N("A").N("X").End()
	b.LHS("A").T("a").End()
	_, err := b.Grammar()
	var gi *GrammarInconsistency
	if !errors.As(err, &gi) {
		t.Fatalf("expected grammar inconsistency, have %v", err)
	}
	if !strings.Contains(gi.Msg, "X") {
		t.Errorf("error should name X: %v", err)
	}
}

func TestBuilderErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("G")
	b.LHS("S").T("$").End()
	if _, err := b.Grammar(); err == nil {
		t.Errorf("expected $ to be rejected as a terminal name")
	}
	b = NewGrammarBuilder("Empty")
	if _, err := b.Grammar(); err == nil {
		t.Errorf("expected a grammar without productions to be rejected")
	}
	b = NewGrammarBuilder("G")
	b.LHS("S").T("a").Epsilon()
	if _, err := b.Grammar(); err == nil {
		t.Errorf("expected epsilon production with RHS symbols to be rejected")
	}
}

func TestTerminalAndNonTerminalWithSameName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	b := NewGrammarBuilder("G")
	b.LHS("S").N("a").T("a").End()
	b.LHS("a").T("b").End()
	_, err := b.Grammar()
	var gi *GrammarInconsistency
	if !errors.As(err, &gi) {
		t.Fatalf("expected grammar inconsistency, have %v", err)
	}
	if !strings.Contains(gi.Msg, "a used for a terminal and a non-terminal") {
		t.Errorf("unexpected message: %s", gi.Msg)
	}
	_, err = ReadGrammar("clash", strings.NewReader("%V <S>\n%T <S> x\n<S>\n x\n"))
	if !errors.As(err, &gi) {
		t.Errorf("expected grammar inconsistency for %%T <S>, have %v", err)
	}
}

var grammarSpec = `%V <S> <A> <B>
%T a b c
%Syn c
<S>
 <A> <B> c
<A>
 a
 $
<B>
 b <B>
 $
`

func TestReadGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	g, err := ReadGrammar("spec", strings.NewReader(grammarSpec))
	if err != nil {
		t.Fatal(err)
	}
	if g.Start.Name != "<S>" {
		t.Errorf("start symbol should be <S>, is %s", g.Start)
	}
	if g.Size() != 6 {
		t.Errorf("expected 6 productions, have %d", g.Size())
	}
	if !g.Production(3).IsEpsilon() || g.Production(3).LHS.Name != "<A>" {
		t.Errorf("production 3 should be <A> -> $, is %s", g.Production(3))
	}
	c := g.Symbols().Resolve("c", Terminal)
	if c == nil || !c.Sync {
		t.Errorf("c should be a sync terminal")
	}
	if a := g.Symbols().Resolve("a", Terminal); a == nil || a.Sync {
		t.Errorf("a should be a terminal, but not a sync terminal")
	}
}

func TestReadGrammarErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lr")
	defer teardown()
	//
	tests := []struct {
		spec string
		line int
	}{
		{"%V <S>\n%T a\n<S>\n a x\n", 4},
		{"%V <S>\n%T a\n<Q>\n a\n", 3},
		{"%V <S>\n%T a\n%Syn b\n", 3},
		{"%V S\n", 1},
		{"%T a\n<S>\n a\n", 2},
	}
	for _, tt := range tests {
		_, err := ReadGrammar("broken", strings.NewReader(tt.spec))
		var serr *SpecError
		if !errors.As(err, &serr) {
			t.Errorf("expected spec error for %q, have %v", tt.spec, err)
			continue
		}
		if serr.Line != tt.line {
			t.Errorf("expected error in line %d for %q, have line %d", tt.line, tt.spec, serr.Line)
		}
	}
	// undefined non-terminal is reported as a grammar inconsistency
	_, err := ReadGrammar("undef", strings.NewReader("%V <S> <A>\n%T a\n<S>\n <A> a\n"))
	var gi *GrammarInconsistency
	if !errors.As(err, &gi) {
		t.Errorf("expected grammar inconsistency, have %v", err)
	}
}
