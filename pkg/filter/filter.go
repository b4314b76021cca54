// Package filter compiles storefront filter expressions into predicates.
//
// Expressions use expr-lang syntax and must evaluate to a boolean, e.g.
//
//	price < 10 && category == "honey" && stock > 0
//
// Compiled programs are cached by source text.
package filter

import (
	"fmt"
	"strings"
	"time"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"

	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/pkg/cache"
	"github.com/dixis/dixis/pkg/slug"
)

// MaxExpressionLength bounds the accepted source size.
const MaxExpressionLength = 500

// Predicate is a compiled boolean expression.
type Predicate struct {
	program *exprvm.Program
}

// Match evaluates the predicate against env.
func (p *Predicate) Match(env map[string]any) (bool, error) {
	out, err := exprlang.Run(p.program, env)
	if err != nil {
		return false, fmt.Errorf("%w: filter evaluation failed: %v", pkg.ErrUnprocessable, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("%w: filter must evaluate to a boolean", pkg.ErrUnprocessable)
	}
	return b, nil
}

// Compiler compiles and caches predicates.
type Compiler struct {
	programs *cache.TTLCache[string, *exprvm.Program]
}

// NewCompiler returns a Compiler that keeps programs for ttl.
func NewCompiler(ttl time.Duration) *Compiler {
	return &Compiler{programs: cache.New[string, *exprvm.Program](ttl, ttl)}
}

// Close releases the program cache.
func (c *Compiler) Close() { c.programs.Close() }

// Compile parses src. Invalid expressions wrap pkg.ErrUnprocessable.
func (c *Compiler) Compile(src string) (*Predicate, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, fmt.Errorf("%w: filter must not be empty", pkg.ErrUnprocessable)
	}
	if len(src) > MaxExpressionLength {
		return nil, fmt.Errorf("%w: filter longer than %d characters", pkg.ErrUnprocessable, MaxExpressionLength)
	}

	program, err := c.programs.GetOrLoad(src, func() (*exprvm.Program, error) {
		return exprlang.Compile(src,
			exprlang.Env(map[string]any{}),
			exprlang.AllowUndefinedVariables(),
			exprlang.AsBool(),
			exprlang.Function("fold", foldFunc, new(func(string) string)),
		)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: invalid filter: %v", pkg.ErrUnprocessable, err)
	}

	return &Predicate{program: program}, nil
}

// foldFunc lets expressions compare text accent-insensitively: fold(name) contains "μελι".
func foldFunc(params ...any) (any, error) {
	s, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("fold expects a string, got %T", params[0])
	}
	return slug.Fold(s), nil
}
