package script

import (
	"fmt"
	"strconv"
	"strings"
)

// ErrBudgetExceeded is returned when a script performs more operations than
// its configured budget allows.
type budgetExceededError struct{}

func (budgetExceededError) Error() string { return "script: operation budget exceeded" }

// ErrBudgetExceeded is the sentinel error for a runaway script.
var ErrBudgetExceeded error = budgetExceededError{}

// Program is a compiled script, ready to be invoked repeatedly.
type Program struct {
	prog *program
}

// Compile parses source into a runnable Program. Compile itself performs no
// evaluation and cannot be budget-limited.
func Compile(source string) (*Program, error) {
	prog, err := parse(source)
	if err != nil {
		return nil, err
	}
	if _, ok := prog.fns["translate"]; !ok {
		return nil, fmt.Errorf("script: missing mandatory fn translate(input)")
	}
	return &Program{prog: prog}, nil
}

// Result is the four-element tuple a translate() call must return.
type Result struct {
	Code       string
	Remaining  string
	Texts      []string
	AutoCommit bool
}

type env struct {
	vars   map[string]any
	parent *env
}

func newEnv(parent *env) *env { return &env{vars: map[string]any{}, parent: parent} }

func (e *env) get(name string) (any, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if v, ok := cur.vars[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (e *env) set(name string, v any) { e.vars[name] = v }

// assign updates name in the nearest enclosing scope that already declares
// it, falling back to declaring it in the current scope (used for loop
// accumulators declared in an outer block).
func (e *env) assign(name string, v any) {
	for cur := e; cur != nil; cur = cur.parent {
		if _, ok := cur.vars[name]; ok {
			cur.vars[name] = v
			return
		}
	}
	e.vars[name] = v
}

type interp struct {
	prog    *program
	budget  int
	spent   int
	globals *env
}

type returnSignal struct{ value any }

// Translate runs translate(input) against the compiled program with the
// given operation budget. A script that exceeds its budget or raises a
// runtime error returns ErrBudgetExceeded/an evaluation error; the caller
// (the translator) treats either as "skip this predicate source".
func (pr *Program) Translate(input string, budget int) (Result, error) {
	if budget <= 0 {
		budget = 10000
	}
	it := &interp{prog: pr.prog, budget: budget, globals: newEnv(nil)}
	fn := pr.prog.fns["translate"]
	v, err := it.callFn(fn, []any{input})
	if err != nil {
		return Result{}, err
	}
	return toResult(v)
}

func toResult(v any) (Result, error) {
	arr, ok := v.([]any)
	if !ok || len(arr) != 4 {
		return Result{}, fmt.Errorf("script: translate() must return [code, remaining, texts, autoCommit]")
	}
	code, ok := arr[0].(string)
	if !ok {
		return Result{}, fmt.Errorf("script: translate() code must be a string")
	}
	remaining, ok := arr[1].(string)
	if !ok {
		return Result{}, fmt.Errorf("script: translate() remaining must be a string")
	}
	var texts []string
	switch t := arr[2].(type) {
	case string:
		texts = []string{t}
	case []any:
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return Result{}, fmt.Errorf("script: translate() texts must be strings")
			}
			texts = append(texts, s)
		}
	default:
		return Result{}, fmt.Errorf("script: translate() texts must be a string or array of strings")
	}
	autoCommit, _ := arr[3].(bool)
	return Result{Code: code, Remaining: remaining, Texts: texts, AutoCommit: autoCommit}, nil
}

func (it *interp) charge() error {
	it.spent++
	if it.spent > it.budget {
		return ErrBudgetExceeded
	}
	return nil
}

func (it *interp) callFn(fn *fnDecl, args []any) (any, error) {
	if err := it.charge(); err != nil {
		return nil, err
	}
	if len(args) != len(fn.params) {
		return nil, fmt.Errorf("script: %s expects %d arguments, got %d", fn.name, len(fn.params), len(args))
	}
	local := newEnv(it.globals)
	for i, p := range fn.params {
		local.set(p, args[i])
	}
	for _, s := range fn.body {
		v, returned, err := it.execStmt(s, local)
		if err != nil {
			return nil, err
		}
		if returned {
			return v, nil
		}
	}
	return nil, nil
}

func (it *interp) execStmt(s stmt, e *env) (any, bool, error) {
	if err := it.charge(); err != nil {
		return nil, false, err
	}
	switch n := s.(type) {
	case *letStmt:
		v, err := it.eval(n.value, e)
		if err != nil {
			return nil, false, err
		}
		e.set(n.name, v)
		return nil, false, nil
	case *exprStmt:
		_, err := it.eval(n.value, e)
		return nil, false, err
	case *assignStmt:
		v, err := it.eval(n.value, e)
		if err != nil {
			return nil, false, err
		}
		e.assign(n.name, v)
		return nil, false, nil
	case *returnStmt:
		v, err := it.eval(n.value, e)
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	case *ifStmt:
		cond, err := it.eval(n.cond, e)
		if err != nil {
			return nil, false, err
		}
		branch := n.elseBranch
		if truthy(cond) {
			branch = n.thenBranch
		}
		for _, st := range branch {
			v, returned, err := it.execStmt(st, e)
			if err != nil {
				return nil, false, err
			}
			if returned {
				return v, true, nil
			}
		}
		return nil, false, nil
	case *forStmt:
		from, err := it.eval(n.from, e)
		if err != nil {
			return nil, false, err
		}
		to, err := it.eval(n.to, e)
		if err != nil {
			return nil, false, err
		}
		fromI, ok1 := from.(int64)
		toI, ok2 := to.(int64)
		if !ok1 || !ok2 {
			return nil, false, fmt.Errorf("script: range bounds must be integers")
		}
		for i := fromI; i < toI; i++ {
			if err := it.charge(); err != nil {
				return nil, false, err
			}
			loopEnv := newEnv(e)
			loopEnv.set(n.variable, i)
			for _, st := range n.body {
				v, returned, err := it.execStmt(st, loopEnv)
				if err != nil {
					return nil, false, err
				}
				if returned {
					return v, true, nil
				}
			}
		}
		return nil, false, nil
	default:
		return nil, false, fmt.Errorf("script: unknown statement type %T", s)
	}
}

func (it *interp) eval(x expr, e *env) (any, error) {
	if err := it.charge(); err != nil {
		return nil, err
	}
	switch n := x.(type) {
	case *intLit:
		return n.v, nil
	case *stringLit:
		return n.v, nil
	case *boolLit:
		return n.v, nil
	case *ident:
		v, ok := e.get(n.name)
		if !ok {
			return nil, fmt.Errorf("script: undefined variable %q", n.name)
		}
		return v, nil
	case *arrayLit:
		vals := make([]any, 0, len(n.elems))
		for _, el := range n.elems {
			v, err := it.eval(el, e)
			if err != nil {
				return nil, err
			}
			vals = append(vals, v)
		}
		return vals, nil
	case *indexExpr:
		base, err := it.eval(n.base, e)
		if err != nil {
			return nil, err
		}
		idx, err := it.eval(n.index, e)
		if err != nil {
			return nil, err
		}
		i, ok := idx.(int64)
		if !ok {
			return nil, fmt.Errorf("script: index must be an integer")
		}
		switch b := base.(type) {
		case []any:
			if i < 0 || i >= int64(len(b)) {
				return nil, fmt.Errorf("script: array index out of range")
			}
			return b[i], nil
		case string:
			runes := []rune(b)
			if i < 0 || i >= int64(len(runes)) {
				return nil, fmt.Errorf("script: string index out of range")
			}
			return string(runes[i]), nil
		default:
			return nil, fmt.Errorf("script: cannot index %T", base)
		}
	case *unaryExpr:
		v, err := it.eval(n.x, e)
		if err != nil {
			return nil, err
		}
		switch n.op {
		case "-":
			i, ok := v.(int64)
			if !ok {
				return nil, fmt.Errorf("script: unary - requires an integer")
			}
			return -i, nil
		case "!":
			return !truthy(v), nil
		}
		return nil, fmt.Errorf("script: unknown unary operator %q", n.op)
	case *binaryExpr:
		return it.evalBinary(n, e)
	case *callExpr:
		return it.evalCall(n, e)
	default:
		return nil, fmt.Errorf("script: unknown expression type %T", x)
	}
}

func (it *interp) evalBinary(n *binaryExpr, e *env) (any, error) {
	if n.op == "&&" {
		l, err := it.eval(n.l, e)
		if err != nil {
			return nil, err
		}
		if !truthy(l) {
			return false, nil
		}
		r, err := it.eval(n.r, e)
		if err != nil {
			return nil, err
		}
		return truthy(r), nil
	}
	if n.op == "||" {
		l, err := it.eval(n.l, e)
		if err != nil {
			return nil, err
		}
		if truthy(l) {
			return true, nil
		}
		r, err := it.eval(n.r, e)
		if err != nil {
			return nil, err
		}
		return truthy(r), nil
	}

	l, err := it.eval(n.l, e)
	if err != nil {
		return nil, err
	}
	r, err := it.eval(n.r, e)
	if err != nil {
		return nil, err
	}

	if n.op == "+" {
		if ls, ok := l.(string); ok {
			rs, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("script: cannot add string and %T", r)
			}
			return ls + rs, nil
		}
	}
	if n.op == "==" {
		return valuesEqual(l, r), nil
	}
	if n.op == "!=" {
		return !valuesEqual(l, r), nil
	}

	li, ok1 := l.(int64)
	ri, ok2 := r.(int64)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("script: operator %q requires integers, got %T and %T", n.op, l, r)
	}
	switch n.op {
	case "+":
		return li + ri, nil
	case "-":
		return li - ri, nil
	case "*":
		return li * ri, nil
	case "/":
		if ri == 0 {
			return nil, fmt.Errorf("script: division by zero")
		}
		return li / ri, nil
	case "%":
		if ri == 0 {
			return nil, fmt.Errorf("script: modulo by zero")
		}
		return li % ri, nil
	case "<":
		return li < ri, nil
	case ">":
		return li > ri, nil
	case "<=":
		return li <= ri, nil
	case ">=":
		return li >= ri, nil
	}
	return nil, fmt.Errorf("script: unknown binary operator %q", n.op)
}

func (it *interp) evalCall(n *callExpr, e *env) (any, error) {
	args := make([]any, 0, len(n.args))
	for _, a := range n.args {
		v, err := it.eval(a, e)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	if fn, ok := it.prog.fns[n.fn]; ok {
		return it.callFn(fn, args)
	}
	return callBuiltin(n.fn, args)
}

func callBuiltin(name string, args []any) (any, error) {
	switch name {
	case "len":
		if len(args) != 1 {
			return nil, fmt.Errorf("script: len() takes 1 argument")
		}
		switch v := args[0].(type) {
		case string:
			return int64(len([]rune(v))), nil
		case []any:
			return int64(len(v)), nil
		}
		return nil, fmt.Errorf("script: len() requires a string or array")
	case "substr":
		if len(args) != 3 {
			return nil, fmt.Errorf("script: substr(s, start, end) takes 3 arguments")
		}
		s, ok := args[0].(string)
		start, ok2 := args[1].(int64)
		end, ok3 := args[2].(int64)
		if !ok || !ok2 || !ok3 {
			return nil, fmt.Errorf("script: substr() argument types")
		}
		runes := []rune(s)
		if start < 0 || end > int64(len(runes)) || start > end {
			return nil, fmt.Errorf("script: substr() range out of bounds")
		}
		return string(runes[start:end]), nil
	case "concat":
		var b strings.Builder
		for _, a := range args {
			s, ok := a.(string)
			if !ok {
				return nil, fmt.Errorf("script: concat() requires strings")
			}
			b.WriteString(s)
		}
		return b.String(), nil
	case "parseInt":
		if len(args) != 1 {
			return nil, fmt.Errorf("script: parseInt() takes 1 argument")
		}
		s, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("script: parseInt() requires a string")
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("script: parseInt(): %w", err)
		}
		return n, nil
	case "toString":
		if len(args) != 1 {
			return nil, fmt.Errorf("script: toString() takes 1 argument")
		}
		switch v := args[0].(type) {
		case int64:
			return strconv.FormatInt(v, 10), nil
		case bool:
			return strconv.FormatBool(v), nil
		case string:
			return v, nil
		}
		return nil, fmt.Errorf("script: toString() unsupported type %T", args[0])
	case "startsWith":
		if len(args) != 2 {
			return nil, fmt.Errorf("script: startsWith(s, prefix) takes 2 arguments")
		}
		s, ok1 := args[0].(string)
		prefix, ok2 := args[1].(string)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("script: startsWith() requires strings")
		}
		return strings.HasPrefix(s, prefix), nil
	default:
		return nil, fmt.Errorf("script: unknown function %q", name)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int64:
		return t != 0
	case string:
		return t != ""
	}
	return v != nil
}

func valuesEqual(a, b any) bool {
	switch av := a.(type) {
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}
