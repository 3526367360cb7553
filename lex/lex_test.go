package lex

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/npillmayer/lrkit/lr"
	"github.com/npillmayer/lrkit/lr/lr1"
	"github.com/npillmayer/lrkit/regex"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var lexSpec = `{digit} 0|1|2|3|4|5|6|7|8|9
{letter} a|b|c|d|e|f|i|x|y|z
{ws} \_|\t
%X S_init S_comment
%L NUM IDN PLUS MINUS KR_IF
<S_init>{ws}
{
-
}
<S_init>\n
{
-
NOVI_REDAK
}
<S_init>if
{
KR_IF
}
<S_init>{letter}({letter}|{digit})*
{
IDN
}
<S_init>{digit}{digit}*
{
NUM
}
<S_init>+
{
PLUS
}
<S_init>-{digit}
{
MINUS
VRATI_SE 1
}
<S_init>#
{
-
UDJI_U_STANJE S_comment
}
<S_comment>\n
{
-
NOVI_REDAK
UDJI_U_STANJE S_init
}
<S_comment>{letter}|{digit}|{ws}|+
{
-
}
`

func generate(t *testing.T) *Tables {
	return tablesFor(t, lexSpec)
}

func TestReadSpec(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lex")
	defer teardown()
	//
	spec, err := ReadSpec(strings.NewReader(lexSpec))
	require.NoError(t, err)
	assert.Len(t, spec.Definitions, 3)
	assert.Equal(t, []string{"S_init", "S_comment"}, spec.States)
	assert.Equal(t, []string{"NUM", "IDN", "PLUS", "MINUS", "KR_IF"}, spec.Classes)
	assert.Len(t, spec.RulesFor("S_init"), 8)
	assert.Len(t, spec.RulesFor("S_comment"), 2)
	comment := spec.RulesFor("S_comment")[0]
	assert.Equal(t, "", comment.Class)
	assert.Equal(t, []Action{{Kind: NewLine}, {Kind: EnterState, State: "S_init"}}, comment.Actions)
	minus := spec.RulesFor("S_init")[6]
	assert.Equal(t, "MINUS", minus.Class)
	assert.Equal(t, []Action{{Kind: GoBack, N: 1}}, minus.Actions)
}

func TestSpecErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lex")
	defer teardown()
	//
	tests := []struct {
		spec string
		line int
	}{
		{"%X S\n%L A\n<T>a\n{\nA\n}\n", 3},
		{"%X S\n%L A\n<S>a\n{\nB\n}\n", 5},
		{"%X S\n%L A\n<S>a\n{\nA\nFOO\n}\n", 6},
		{"%X S\n%L A\n<S>a\n{\nA\nVRATI_SE x\n}\n", 6},
		{"%X S\n%L A\n<S>a\n{\nA\n", 5},
		{"%X S\n%L A\n<S>a\nA\n", 4},
		{"%L A\n", 1},
	}
	for _, tt := range tests {
		_, err := ReadSpec(strings.NewReader(tt.spec))
		var serr *SpecError
		if assert.True(t, errors.As(err, &serr), "expected spec error for %q, have %v", tt.spec, err) {
			assert.Equal(t, tt.line, serr.Line, "error line for %q", tt.spec)
		}
	}
}

func TestPatternErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lex")
	defer teardown()
	//
	tests := []struct {
		spec string
		line int
	}{
		{"%X S\n%L A\n<S>(a\n{\nA\n}\n", 3},
		{"{a} {b}\n%X S\n", 1},
	}
	for _, tt := range tests {
		spec, err := ReadSpec(strings.NewReader(tt.spec))
		require.NoError(t, err)
		_, err = Generate(spec)
		var serr *SpecError
		var perr *regex.PatternError
		if assert.True(t, errors.As(err, &serr), "expected spec error for %q, have %v", tt.spec, err) {
			assert.Equal(t, tt.line, serr.Line)
		}
		assert.True(t, errors.As(err, &perr), "expected pattern error as cause, have %v", err)
	}
}

func TestLexer(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lex")
	defer teardown()
	//
	lx, err := NewLexer(generate(t), strings.NewReader("if x1 + 23\n-5 # c x\nifx"))
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, WriteTokens(&out, lx))
	expected := `KR_IF 1 if
IDN 1 x1
PLUS 1 +
NUM 1 23
MINUS 2 -
NUM 2 5
IDN 3 ifx
`
	assert.Equal(t, expected, out.String())
	assert.Equal(t, "S_init", lx.State())
	assert.Equal(t, 3, lx.Line())
	tok := lx.NextToken()
	assert.Equal(t, "#eof", tok.Name())
}

func TestLexerSkipsUnmatchedInput(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lex")
	defer teardown()
	//
	var errs []error
	lx, err := NewLexer(generate(t), strings.NewReader("x ? y"), WithErrorHandler(func(e error) {
		errs = append(errs, e)
	}))
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, WriteTokens(&out, lx))
	assert.Equal(t, "IDN 1 x\nIDN 1 y\n", out.String())
	require.Len(t, errs, 1)
	var ierr *InputError
	require.True(t, errors.As(errs[0], &ierr))
	assert.Equal(t, '?', ierr.Char)
	assert.Equal(t, 1, ierr.Line)
}

func TestEarliestRuleWins(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lex")
	defer teardown()
	//
	tables := generate(t)
	m, ok := tables.Machine("S_init")
	require.True(t, ok)
	mt := newMatcher(m)
	state := 0
	for _, r := range "if" {
		next, ok := mt.next[state][r]
		require.True(t, ok)
		state = next
	}
	assert.Equal(t, 2, m.Accept[state], "if should be accepted by the keyword rule")
	next, ok := mt.next[state]['x']
	require.True(t, ok)
	assert.Equal(t, 3, m.Accept[next], "ifx should be accepted by the identifier rule")
}

func tablesFor(t *testing.T, src string) *Tables {
	spec, err := ReadSpec(strings.NewReader(src))
	require.NoError(t, err)
	tables, err := Generate(spec)
	require.NoError(t, err)
	return tables
}

func lexAll(t *testing.T, tables *Tables, input string, opts ...Option) (*Lexer, string) {
	lx, err := NewLexer(tables, strings.NewReader(input), opts...)
	require.NoError(t, err)
	var out bytes.Buffer
	require.NoError(t, WriteTokens(&out, lx))
	return lx, out.String()
}

func TestTieGoesToEarlierRule(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lex")
	defer teardown()
	//
	spec := "%%X S\n%%L P Q\n<S>x\n{\n%s\n}\n<S>x\n{\n%s\n}\n"
	_, out := lexAll(t, tablesFor(t, fmt.Sprintf(spec, "P", "Q")), "xx")
	assert.Equal(t, "P 1 x\nP 1 x\n", out)
	_, out = lexAll(t, tablesFor(t, fmt.Sprintf(spec, "Q", "P")), "xx")
	assert.Equal(t, "Q 1 x\nQ 1 x\n", out)
}

func TestEmptyMatchSwitchesState(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lex")
	defer teardown()
	//
	tables := tablesFor(t, `%X S_a S_b
%L A B
<S_a>a
{
A
}
<S_a>$
{
-
UDJI_U_STANJE S_b
}
<S_b>b
{
B
}
`)
	var errs []error
	lx, out := lexAll(t, tables, "abb", WithErrorHandler(func(e error) {
		errs = append(errs, e)
	}))
	assert.Equal(t, "A 1 a\nB 1 b\nB 1 b\n", out)
	assert.Empty(t, errs)
	assert.Equal(t, "S_b", lx.State())
}

func TestEmptyMatchesCyclingTerminate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lex")
	defer teardown()
	//
	tables := tablesFor(t, `%X S_a S_b
%L A
<S_a>$
{
-
UDJI_U_STANJE S_b
}
<S_b>$
{
-
UDJI_U_STANJE S_a
}
`)
	var errs []error
	_, out := lexAll(t, tables, "z", WithErrorHandler(func(e error) {
		errs = append(errs, e)
	}))
	assert.Equal(t, "", out)
	require.Len(t, errs, 1)
	var ierr *InputError
	require.True(t, errors.As(errs[0], &ierr))
	assert.Equal(t, 'z', ierr.Char)
}

func TestSaveAndLoad(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lex")
	defer teardown()
	//
	tables := generate(t)
	var buf1, buf2 bytes.Buffer
	require.NoError(t, tables.Save(&buf1))
	loaded, err := LoadTables(bytes.NewReader(buf1.Bytes()))
	require.NoError(t, err)
	require.NoError(t, loaded.Save(&buf2))
	assert.Equal(t, buf1.String(), buf2.String())
	fp1, err := tables.Fingerprint()
	require.NoError(t, err)
	fp2, err := loaded.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fp1, fp2)
	//
	input := "if x1 + 23\n-5 # c x\nifx"
	var out1, out2 bytes.Buffer
	lx1, _ := NewLexer(tables, strings.NewReader(input))
	lx2, _ := NewLexer(loaded, strings.NewReader(input))
	require.NoError(t, WriteTokens(&out1, lx1))
	require.NoError(t, WriteTokens(&out2, lx2))
	assert.Equal(t, out1.String(), out2.String())
}

func TestReproducibleTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lex")
	defer teardown()
	//
	var buf1, buf2 bytes.Buffer
	require.NoError(t, generate(t).Save(&buf1))
	require.NoError(t, generate(t).Save(&buf2))
	assert.Equal(t, buf1.String(), buf2.String())
}

func TestLoadRejectsBrokenTables(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lex")
	defer teardown()
	//
	_, err := LoadTables(strings.NewReader(`{"start":"S","states":["S"],"classes":[],"machines":[]}`))
	assert.Error(t, err)
	_, err = LoadTables(strings.NewReader(`{"start":"S","states":["S"],"classes":[],"machines":[
		{"state":"S","rules":[],"size":1,"edges":[{"from":0,"char":97,"to":3}],"accept":[-1]}]}`))
	assert.Error(t, err)
}

func TestGraphViz(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lex")
	defer teardown()
	//
	m, _ := generate(t).Machine("S_comment")
	var buf bytes.Buffer
	require.NoError(t, m.GraphViz(&buf))
	assert.Contains(t, buf.String(), "doublecircle")
	assert.Contains(t, buf.String(), "s000 -> ")
}

func TestLexerFeedsParser(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "lrkit.lex")
	defer teardown()
	//
	g, err := lr.ReadGrammar("Sum", strings.NewReader(`%V <E> <T>
%T PLUS IDN NUM
%Syn PLUS
<E>
 <E> PLUS <T>
 <T>
<T>
 IDN
 NUM
`))
	require.NoError(t, err)
	ga, err := lr.Analysis(g)
	require.NoError(t, err)
	lrgen := lr.NewTableGenerator(ga)
	require.NoError(t, lrgen.CreateTables())
	lx, err := NewLexer(generate(t), strings.NewReader("x1 + 23\n+ y"))
	require.NoError(t, err)
	p := lr1.NewParser(lrgen.Tables())
	accepted, err := p.Parse(lx)
	require.NoError(t, err)
	require.True(t, accepted, "errors: %v", p.SyntaxErrors())
	expected := `<E>
 <E>
  <E>
   <T>
    IDN 1 x1
  PLUS 1 +
  <T>
   NUM 1 23
 PLUS 2 +
 <T>
  IDN 2 y
`
	assert.Equal(t, expected, p.ParseTree().String())
}
