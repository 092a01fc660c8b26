// Package filter is the Filter Evaluator: it walks a declarative
// predicate tree against an instrument's field-map snapshot.
// Evaluation is pure and side-effect-free; it never panics, and any
// evaluation error (unsupported operator, type mismatch, missing field)
// resolves to a non-match rather than propagating, since the Dispatcher
// must never be brought down by a malformed subscription filter.
package filter

import (
	"fmt"
	"log/slog"

	"bondstream/internal/model"
)

// Evaluate reports whether node matches fields. A nil node always matches
// — a subscription without a predicate admits everything.
func Evaluate(node *model.PredicateNode, fields map[string]any, log *slog.Logger) bool {
	if node == nil {
		return true
	}
	if log == nil {
		log = slog.Default()
	}
	v, err := eval(node, fields)
	if err != nil {
		log.Warn("filter evaluator: predicate error", "err", err)
		return false
	}
	b, ok := v.(bool)
	if !ok {
		log.Warn("filter evaluator: predicate did not resolve to a boolean", "value", v)
		return false
	}
	return b
}

// eval resolves node to a Go value: a leaf resolves to the variable's
// field value or the literal, an operator node resolves to its result
// (always a bool for comparison/logical/membership operators — the only
// operator kinds this evaluator supports at the top level).
func eval(node *model.PredicateNode, fields map[string]any) (any, error) {
	switch {
	case node.IsVar != "":
		v, ok := fields[node.IsVar]
		if !ok {
			return nil, fmt.Errorf("unknown field %q", node.IsVar)
		}
		return v, nil
	case node.IsLiteral:
		return node.Literal, nil
	}

	switch node.Op {
	case model.OpAnd:
		return evalAnd(node.Args, fields)
	case model.OpOr:
		return evalOr(node.Args, fields)
	case model.OpNot:
		return evalNot(node.Args, fields)
	case model.OpEq, model.OpNeq, model.OpLt, model.OpLte, model.OpGt, model.OpGte:
		return evalComparison(node.Op, node.Args, fields)
	case model.OpIn:
		return evalIn(node.Args, fields)
	default:
		return nil, fmt.Errorf("unsupported operator %q", node.Op)
	}
}

func evalAnd(args []*model.PredicateNode, fields map[string]any) (any, error) {
	for _, a := range args {
		v, err := eval(a, fields)
		if err != nil {
			return nil, err
		}
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("and: operand is not a boolean: %v", v)
		}
		if !b {
			return false, nil
		}
	}
	return true, nil
}

func evalOr(args []*model.PredicateNode, fields map[string]any) (any, error) {
	for _, a := range args {
		v, err := eval(a, fields)
		if err != nil {
			return nil, err
		}
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("or: operand is not a boolean: %v", v)
		}
		if b {
			return true, nil
		}
	}
	return false, nil
}

func evalNot(args []*model.PredicateNode, fields map[string]any) (any, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("not: expected exactly 1 operand, got %d", len(args))
	}
	v, err := eval(args[0], fields)
	if err != nil {
		return nil, err
	}
	b, ok := v.(bool)
	if !ok {
		return nil, fmt.Errorf("not: operand is not a boolean: %v", v)
	}
	return !b, nil
}

func evalComparison(op string, args []*model.PredicateNode, fields map[string]any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("%s: expected exactly 2 operands, got %d", op, len(args))
	}
	lhs, err := eval(args[0], fields)
	if err != nil {
		return nil, err
	}
	rhs, err := eval(args[1], fields)
	if err != nil {
		return nil, err
	}

	if op == model.OpEq || op == model.OpNeq {
		eq := equal(lhs, rhs)
		if op == model.OpNeq {
			return !eq, nil
		}
		return eq, nil
	}

	lf, lok := asFloat(lhs)
	rf, rok := asFloat(rhs)
	if !lok || !rok {
		return nil, fmt.Errorf("%s: operands are not numeric: %v, %v", op, lhs, rhs)
	}
	switch op {
	case model.OpLt:
		return lf < rf, nil
	case model.OpLte:
		return lf <= rf, nil
	case model.OpGt:
		return lf > rf, nil
	case model.OpGte:
		return lf >= rf, nil
	}
	return nil, fmt.Errorf("unreachable comparison operator %q", op)
}

func evalIn(args []*model.PredicateNode, fields map[string]any) (any, error) {
	if len(args) != 2 {
		return nil, fmt.Errorf("in: expected exactly 2 operands, got %d", len(args))
	}
	needle, err := eval(args[0], fields)
	if err != nil {
		return nil, err
	}
	haystack, err := eval(args[1], fields)
	if err != nil {
		return nil, err
	}
	set, ok := haystack.([]any)
	if !ok {
		return nil, fmt.Errorf("in: right operand is not a list: %v", haystack)
	}
	for _, v := range set {
		if equal(needle, v) {
			return true, nil
		}
	}
	return false, nil
}

func equal(a, b any) bool {
	if af, aok := asFloat(a); aok {
		if bf, bok := asFloat(b); bok {
			return af == bf
		}
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
