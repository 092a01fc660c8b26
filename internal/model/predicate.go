package model

import (
	"encoding/json"
	"fmt"
)

// Comparison, logical and membership operators recognized by the Filter
// Evaluator. An operator not in this set is an invalid-argument error at
// subscribe time and a non-match at evaluation time.
const (
	OpEq  = "=="
	OpNeq = "!="
	OpLt  = "<"
	OpLte = "<="
	OpGt  = ">"
	OpGte = ">="
	OpAnd = "and"
	OpOr  = "or"
	OpNot = "not"
	OpIn  = "in"
)

var validOps = map[string]bool{
	OpEq: true, OpNeq: true, OpLt: true, OpLte: true, OpGt: true, OpGte: true,
	OpAnd: true, OpOr: true, OpNot: true, OpIn: true,
}

// PredicateNode is a recursive variant over a small closed operator set.
// A node is exactly one of:
//   - an operator node: Op set, Args holds the operand sub-trees
//   - a variable leaf: IsVar holds the name of a field in the instrument's field map
//   - a literal leaf: IsLiteral set, Literal holds the decoded JSON value
type PredicateNode struct {
	Op   string
	Args []*PredicateNode

	IsVar string // non-empty when this node is a {"var": "..."} leaf

	IsLiteral bool
	Literal   any
}

// UnmarshalJSON decodes the recursive `{ operator: [operand, ...] }` shape
// with a `{"var": "field"}` leaf, or a bare JSON literal.
func (p *PredicateNode) UnmarshalJSON(data []byte) error {
	var asVar struct {
		Var *string `json:"var"`
	}
	if err := json.Unmarshal(data, &asVar); err == nil && asVar.Var != nil {
		p.IsVar = *asVar.Var
		return nil
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(data, &asObject); err == nil {
		if len(asObject) != 1 {
			return fmt.Errorf("predicate node: expected exactly one operator key, got %d", len(asObject))
		}
		for op, raw := range asObject {
			var rawArgs []json.RawMessage
			if err := json.Unmarshal(raw, &rawArgs); err != nil {
				// A unary form like {"not": {...}} instead of {"not": [{...}]}.
				rawArgs = []json.RawMessage{raw}
			}
			args := make([]*PredicateNode, 0, len(rawArgs))
			for _, r := range rawArgs {
				node := &PredicateNode{}
				if err := json.Unmarshal(r, node); err != nil {
					return fmt.Errorf("predicate node: operand of %q: %w", op, err)
				}
				args = append(args, node)
			}
			p.Op = op
			p.Args = args
		}
		return nil
	}

	var literal any
	if err := json.Unmarshal(data, &literal); err != nil {
		return fmt.Errorf("predicate node: not a var, operator, or literal: %w", err)
	}
	p.IsLiteral = true
	p.Literal = literal
	return nil
}

// Validate walks the tree and rejects any operator outside the closed set,
// so a malformed predicate fails the subscribe request up front instead of
// silently evaluating to non-match on every delta. A nil tree is valid.
func (p *PredicateNode) Validate() error {
	if p == nil || p.IsVar != "" || p.IsLiteral {
		return nil
	}
	if !validOps[p.Op] {
		return fmt.Errorf("%w: unknown predicate operator %q", ErrInvalidArgument, p.Op)
	}
	for _, a := range p.Args {
		if err := a.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON re-encodes the node back to its wire shape.
func (p *PredicateNode) MarshalJSON() ([]byte, error) {
	if p.IsVar != "" {
		return json.Marshal(map[string]string{"var": p.IsVar})
	}
	if p.IsLiteral {
		return json.Marshal(p.Literal)
	}
	return json.Marshal(map[string]any{p.Op: p.Args})
}
