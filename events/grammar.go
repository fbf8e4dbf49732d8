package events

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer/stateful"
)

var (
	eventLexer = stateful.MustSimple([]stateful.Rule{
		{Name: "Number", Pattern: `0[xX][0-9a-fA-F]+|[0-9]+`, Action: nil},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.\-]*`, Action: nil},
		{Name: "Punct", Pattern: `[/:,=]`, Action: nil},
		{Name: "Whitespace", Pattern: `[ \t]+`, Action: nil},
	})
	eventParser = participle.MustBuild(&eventExpr{},
		participle.Lexer(eventLexer),
		participle.Elide("Whitespace"),
		participle.UseLookahead(4),
	)
	termsParser = participle.MustBuild(&termList{},
		participle.Lexer(eventLexer),
		participle.Elide("Whitespace"),
	)
)

// eventExpr is a single event as written by the user.
type eventExpr struct {
	PMU    *pmuExpr    `parser:"  @@"`
	Symbol *symbolExpr `parser:"| @@"`
}

// pmuExpr is a sysfs PMU event like cpu/event=0x3c,umask=0x0/u
type pmuExpr struct {
	PMU       string      `parser:"@Ident '/'"`
	Terms     []*termExpr `parser:"( @@ ( ',' @@ )* )? '/'"`
	Modifiers string      `parser:"( ':'? @Ident )?"`
}

// termExpr is a single name[=value] term of a PMU event or sysfs event alias.
type termExpr struct {
	Name  string `parser:"@Ident"`
	Value string `parser:"( '=' @(Number | Ident) )?"`
}

// symbolExpr is a named event with colon separated attributes, like PERF_COUNT_HW_CACHE_L1D:WRITE:MISS, cycles:u
// or sched:sched_switch
type symbolExpr struct {
	Name  string   `parser:"@Ident"`
	Attrs []string `parser:"( ':' @(Ident | Number) )*"`
}

// termList is the contents of a sysfs event alias file, like "event=0xc0,umask=0x00"
type termList struct {
	Terms []*termExpr `parser:"@@ ( ',' @@ )*"`
}

func parseEvent(name string) (*eventExpr, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: empty event name", ErrSyntax)
	}

	expr := &eventExpr{}
	err := eventParser.Parse(name, strings.NewReader(name), expr)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, err)
	}
	if expr.PMU == nil && expr.Symbol == nil {
		return nil, fmt.Errorf("%w: '%s'", ErrSyntax, name)
	}

	return expr, nil
}

func parseTerms(filename, contents string) ([]*termExpr, error) {
	list := &termList{}
	err := termsParser.Parse(filename, strings.NewReader(strings.TrimSpace(contents)), list)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSyntax, err)
	}

	return list.Terms, nil
}
