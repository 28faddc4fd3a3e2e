package netlist

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Grammar of an s-domain expression:
//
//	sum     = product { ("+" | "-") product }
//	product = unary { ("*" | "/") unary }
//	unary   = ["-"] power
//	power   = primary ["^" unary]
//	primary = number | ident ["(" sum ")"] | "(" sum ")"

type sumExpr struct {
	Left  *productExpr `@@`
	Right []*sumOp     `@@*`
}

type sumOp struct {
	Op   string       `@("+" | "-")`
	Term *productExpr `@@`
}

type productExpr struct {
	Left  *unaryExpr   `@@`
	Right []*productOp `@@*`
}

type productOp struct {
	Op     string     `@("*" | "/")`
	Factor *unaryExpr `@@`
}

type unaryExpr struct {
	Neg   bool       `@"-"?`
	Power *powerExpr `@@`
}

type powerExpr struct {
	Base *primaryExpr `@@`
	Exp  *unaryExpr   `("^" @@)?`
}

type primaryExpr struct {
	Number *float64   `  @Number`
	Ident  *identExpr `| @@`
	Sub    *sumExpr   `| "(" @@ ")"`
}

type identExpr struct {
	Name string   `@Ident`
	Arg  *sumExpr `("(" @@ ")")?`
}

var sexprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Number", Pattern: `(\d+\.\d*|\.\d+|\d+)([eE][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_]\w*`},
	{Name: "Punct", Pattern: `[-+*/^()]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

var sexprParser = participle.MustBuild[sumExpr](
	participle.Lexer(sexprLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

type cfunc = func(complex128) complex128

var sexprConstants = map[string]complex128{
	"j":  1i,
	"pi": complex(math.Pi, 0),
}

var sexprFunctions = map[string]cfunc{
	"exp":  cmplx.Exp,
	"sqrt": cmplx.Sqrt,
	"log":  cmplx.Log,
	"sin":  cmplx.Sin,
	"cos":  cmplx.Cos,
}

// ParseSExpr compiles an expression in the complex frequency s, e.g.
// "10/(s*(s+2))" or "exp(-s)/s".
func ParseSExpr(text string) (func(complex128) complex128, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty s-domain expression")
	}
	ast, err := sexprParser.ParseString("", text)
	if err != nil {
		return nil, fmt.Errorf("s-domain expression %q: %w", text, err)
	}
	f, err := ast.compile()
	if err != nil {
		return nil, fmt.Errorf("s-domain expression %q: %w", text, err)
	}
	return f, nil
}

func (e *sumExpr) compile() (cfunc, error) {
	f, err := e.Left.compile()
	if err != nil {
		return nil, err
	}
	for _, op := range e.Right {
		g, err := op.Term.compile()
		if err != nil {
			return nil, err
		}
		a := f
		if op.Op == "+" {
			f = func(s complex128) complex128 { return a(s) + g(s) }
		} else {
			f = func(s complex128) complex128 { return a(s) - g(s) }
		}
	}
	return f, nil
}

func (e *productExpr) compile() (cfunc, error) {
	f, err := e.Left.compile()
	if err != nil {
		return nil, err
	}
	for _, op := range e.Right {
		g, err := op.Factor.compile()
		if err != nil {
			return nil, err
		}
		a := f
		if op.Op == "*" {
			f = func(s complex128) complex128 { return a(s) * g(s) }
		} else {
			f = func(s complex128) complex128 { return a(s) / g(s) }
		}
	}
	return f, nil
}

func (e *unaryExpr) compile() (cfunc, error) {
	f, err := e.Power.compile()
	if err != nil {
		return nil, err
	}
	if e.Neg {
		return func(s complex128) complex128 { return -f(s) }, nil
	}
	return f, nil
}

func (e *powerExpr) compile() (cfunc, error) {
	base, err := e.Base.compile()
	if err != nil {
		return nil, err
	}
	if e.Exp == nil {
		return base, nil
	}
	exp, err := e.Exp.compile()
	if err != nil {
		return nil, err
	}
	return func(s complex128) complex128 { return pow(base(s), exp(s)) }, nil
}

// pow multiplies out small integer powers so that poles stay exact.
func pow(x, y complex128) complex128 {
	if imag(y) == 0 && real(y) == math.Trunc(real(y)) && math.Abs(real(y)) <= 16 {
		n := int(real(y))
		r := complex(1, 0)
		for i := 0; i < abs(n); i++ {
			r *= x
		}
		if n < 0 {
			return 1 / r
		}
		return r
	}
	return cmplx.Pow(x, y)
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (e *primaryExpr) compile() (cfunc, error) {
	switch {
	case e.Number != nil:
		c := complex(*e.Number, 0)
		return func(complex128) complex128 { return c }, nil
	case e.Ident != nil:
		return e.Ident.compile()
	default:
		return e.Sub.compile()
	}
}

func (e *identExpr) compile() (cfunc, error) {
	name := strings.ToLower(e.Name)
	if e.Arg != nil {
		fn, ok := sexprFunctions[name]
		if !ok {
			return nil, fmt.Errorf("unknown function %s", e.Name)
		}
		arg, err := e.Arg.compile()
		if err != nil {
			return nil, err
		}
		return func(s complex128) complex128 { return fn(arg(s)) }, nil
	}

	if name == "s" {
		return func(s complex128) complex128 { return s }, nil
	}
	if c, ok := sexprConstants[name]; ok {
		return func(complex128) complex128 { return c }, nil
	}
	return nil, fmt.Errorf("unknown identifier %s", e.Name)
}
