package lexmach

import (
	"strconv"
	"testing"

	"github.com/npillmayer/lrkit/lr"
	"github.com/npillmayer/lrkit/lr/lr1"
	"github.com/npillmayer/lrkit/lr/scanner"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var inputStrings = []string{
	"1",
	"1+12",
	"Hello #World",
	`x="mystring" // commented `,
	"1,22,333",
}

var tokenCounts = []int{1, 3, 2, 3, 3}

func defineTokens(r *Rules) {
	r.Literals("'", "(", ")", "[", "]", "=", "+", "-", "*", "/")
	r.Keywords("nil", "t")
	r.Skip(`//[^\n]*\n?`)
	r.Token(`\"[^"]*\"`, "STRING")
	r.Token(`#?([a-z]|[A-Z])([a-z]|[A-Z]|[0-9]|_|-)*[!\?]?`, "ID")
	r.Value(`[1-9][0-9]*`, "NUM", func(s string) (interface{}, error) {
		return strconv.Atoi(s)
	})
	r.Skip(`( |\,|\t|\n|\r)+`)
}

func TestLM(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.scanner")
	defer teardown()
	//
	lexer, err := Compile(defineTokens)
	require.NoError(t, err)
	for i, input := range inputStrings {
		t.Logf("------+-----------------+--------")
		sc, err := lexer.Scanner(input)
		require.NoError(t, err)
		count := 0
		for token := sc.NextToken(); token.Name() != scanner.EOF; token = sc.NextToken() {
			t.Logf(" %6s | %15s | %5d", token.Name(), token.Lexeme(), token.Line())
			count++
		}
		assert.Equal(t, tokenCounts[i], count, "token count for input #%d", i)
	}
	t.Logf("------+-----------------+--------")
}

func TestTokenNamesLinesAndValues(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.scanner")
	defer teardown()
	//
	lexer, err := Compile(defineTokens)
	require.NoError(t, err)
	sc, err := lexer.Scanner("a = 17\n(nil)")
	require.NoError(t, err)
	expected := []struct {
		name, lexeme string
		line         int
		value        interface{}
	}{
		{"ID", "a", 1, nil},
		{"=", "=", 1, nil},
		{"NUM", "17", 1, 17},
		{"(", "(", 2, nil},
		{"nil", "nil", 2, nil},
		{")", ")", 2, nil},
		{scanner.EOF, "", 2, nil},
	}
	base := 0
	for i, exp := range expected {
		token := sc.NextToken()
		if i == 0 {
			base = token.Line() - 1
		}
		assert.Equal(t, exp.name, token.Name())
		assert.Equal(t, exp.lexeme, token.Lexeme())
		assert.Equal(t, exp.line, token.Line()-base, "line of %s", exp.name)
		v, ok := token.(scanner.Valuer)
		require.True(t, ok)
		assert.Equal(t, exp.value, v.Value(), "value of %s", exp.name)
	}
}

func TestSkipsUnconsumedInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.scanner")
	defer teardown()
	//
	lexer, err := Compile(defineTokens)
	require.NoError(t, err)
	sc, err := lexer.Scanner("1 % 2")
	require.NoError(t, err)
	var errs []error
	sc.SetErrorHandler(func(e error) { errs = append(errs, e) })
	count := 0
	for token := sc.NextToken(); token.Name() != scanner.EOF; token = sc.NextToken() {
		assert.Equal(t, "NUM", token.Name())
		count++
	}
	assert.Equal(t, 2, count)
	assert.NotEmpty(t, errs)
}

func TestCheckAgainstGrammar(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.scanner")
	defer teardown()
	//
	b := lr.NewGrammarBuilder("Sum")
	b.LHS("S").N("S").T("+").T("NUM").End()
	b.LHS("S").T("NUM").End()
	g, err := b.Grammar()
	require.NoError(t, err)
	lexer, err := Compile(func(r *Rules) {
		r.Literals("+")
		r.Value(`[0-9]+`, "NUM", func(s string) (interface{}, error) {
			return strconv.Atoi(s)
		})
		r.Skip(`( |\n)+`)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"+", "NUM"}, lexer.TokenNames())
	require.NoError(t, lexer.Check(scanner.Terminals(g)))
	//
	ga, err := lr.Analysis(g)
	require.NoError(t, err)
	lrgen := lr.NewTableGenerator(ga)
	require.NoError(t, lrgen.CreateTables())
	sc, err := lexer.Scanner("1 + 2\n+ 39")
	require.NoError(t, err)
	p := lr1.NewParser(lrgen.Tables())
	accepted, err := p.Parse(sc)
	require.NoError(t, err)
	require.True(t, accepted, "errors: %v", p.SyntaxErrors())
	sum := 0
	p.ParseTree().Walk(func(n *lr1.Node, depth int) {
		if x, ok := n.Value().(int); ok {
			sum += x
		}
	})
	assert.Equal(t, 42, sum)
	//
	other, err := Compile(func(r *Rules) { r.Token(`[a-z]+`, "ID") })
	require.NoError(t, err)
	assert.Error(t, other.Check(scanner.Terminals(g)))
}
