package lex

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SpecError is an error in a lexical spec, located by line.
type SpecError struct {
	Line  int
	Cause error
}

func (e *SpecError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Cause)
}

func (e *SpecError) Unwrap() error {
	return e.Cause
}

// ActionKind is the kind of a lexer action.
type ActionKind string

// Lexer actions, named as they appear in a lexical spec.
const (
	NewLine    ActionKind = "NOVI_REDAK"    // increment line counter
	EnterState ActionKind = "UDJI_U_STANJE" // switch lexer state
	GoBack     ActionKind = "VRATI_SE"      // shorten the match
)

// Action is an action to perform after a rule matched.
type Action struct {
	Kind  ActionKind `json:"kind"`
	State string     `json:"state,omitempty"` // for EnterState
	N     int        `json:"n,omitempty"`     // for GoBack
}

func (a Action) String() string {
	switch a.Kind {
	case EnterState:
		return fmt.Sprintf("%s %s", a.Kind, a.State)
	case GoBack:
		return fmt.Sprintf("%s %d", a.Kind, a.N)
	}
	return string(a.Kind)
}

// Rule is a lexer rule: if Pattern matches in lexer state State, a token of
// lexical class Class is emitted and Actions are performed. An empty Class
// means that no token is emitted.
type Rule struct {
	State   string   `json:"-"`
	Pattern string   `json:"pattern"`
	Class   string   `json:"class,omitempty"`
	Actions []Action `json:"actions,omitempty"`
}

// Definition is a named regular expression.
type Definition struct {
	Name    string
	Pattern string
	line    int
}

// Spec is a lexical specification.
type Spec struct {
	Definitions []Definition
	States      []string // lexer states, the first one is the initial state
	Classes     []string // lexical classes
	Rules       []*Rule  // in order of appearance
	lines       map[*Rule]int
}

// RulesFor returns the rules for a lexer state, in order of appearance.
func (spec *Spec) RulesFor(state string) []*Rule {
	var rules []*Rule
	for _, r := range spec.Rules {
		if r.State == state {
			rules = append(rules, r)
		}
	}
	return rules
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// ReadSpec reads a lexical specification. See the package documentation for
// the format.
func ReadSpec(r io.Reader) (*Spec, error) {
	spec := &Spec{lines: make(map[*Rule]int)}
	sc := bufio.NewScanner(r)
	lineno := 0
	serr := func(format string, args ...interface{}) error {
		return &SpecError{Line: lineno, Cause: fmt.Errorf(format, args...)}
	}
	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		lineno++
		return strings.TrimRight(sc.Text(), "\r"), true
	}
	for {
		line, ok := next()
		if !ok {
			break
		}
		switch {
		case strings.TrimSpace(line) == "":
			continue
		case strings.HasPrefix(line, "%X"):
			spec.States = strings.Fields(line[2:])
			if len(spec.States) == 0 {
				return nil, serr("%%X needs at least one lexer state")
			}
		case strings.HasPrefix(line, "%L"):
			spec.Classes = strings.Fields(line[2:])
		case strings.HasPrefix(line, "{"):
			if spec.States != nil {
				return nil, serr("definitions have to precede %%X")
			}
			close := strings.IndexByte(line, '}')
			if close < 2 {
				return nil, serr("malformed definition %q", line)
			}
			def := Definition{
				Name:    line[1:close],
				Pattern: strings.TrimSpace(line[close+1:]),
				line:    lineno,
			}
			if def.Pattern == "" {
				return nil, serr("definition {%s} without pattern", def.Name)
			}
			spec.Definitions = append(spec.Definitions, def)
		case strings.HasPrefix(line, "<"):
			close := strings.IndexByte(line, '>')
			if close < 0 {
				return nil, serr("malformed rule %q", line)
			}
			rule := &Rule{State: line[1:close], Pattern: line[close+1:]}
			spec.lines[rule] = lineno
			if !contains(spec.States, rule.State) {
				return nil, serr("undeclared lexer state %s", rule.State)
			}
			if rule.Pattern == "" {
				return nil, serr("rule without pattern")
			}
			if l, ok := next(); !ok || strings.TrimSpace(l) != "{" {
				return nil, serr("expected { after rule")
			}
			class, ok := next()
			class = strings.TrimSpace(class)
			if !ok || class == "}" {
				return nil, serr("expected lexical class or -")
			}
			if class != "-" {
				if !contains(spec.Classes, class) {
					return nil, serr("undeclared lexical class %s", class)
				}
				rule.Class = class
			}
			for {
				l, ok := next()
				if !ok {
					return nil, serr("unterminated rule")
				}
				fields := strings.Fields(l)
				if len(fields) == 1 && fields[0] == "}" {
					break
				}
				if len(fields) == 0 {
					continue
				}
				action, err := readAction(spec, fields)
				if err != nil {
					return nil, serr("%v", err)
				}
				rule.Actions = append(rule.Actions, action)
			}
			spec.Rules = append(spec.Rules, rule)
		default:
			return nil, serr("unexpected line %q", line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(spec.States) == 0 {
		return nil, serr("missing %%X declaration of lexer states")
	}
	tracer().Debugf("lexical spec: %d definitions, %d states, %d rules",
		len(spec.Definitions), len(spec.States), len(spec.Rules))
	return spec, nil
}

func readAction(spec *Spec, fields []string) (Action, error) {
	action := Action{Kind: ActionKind(fields[0])}
	switch action.Kind {
	case NewLine:
		if len(fields) != 1 {
			return action, fmt.Errorf("%s takes no argument", action.Kind)
		}
	case EnterState:
		if len(fields) != 2 || !contains(spec.States, fields[1]) {
			return action, fmt.Errorf("%s needs a declared lexer state", action.Kind)
		}
		action.State = fields[1]
	case GoBack:
		if len(fields) != 2 {
			return action, fmt.Errorf("%s needs a character count", action.Kind)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 0 {
			return action, fmt.Errorf("%s needs a character count, have %q", action.Kind, fields[1])
		}
		action.N = n
	default:
		return action, fmt.Errorf("unknown action %s", fields[0])
	}
	return action, nil
}
