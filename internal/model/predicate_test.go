package model

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestPredicateNodeUnmarshalEquality(t *testing.T) {
	t.Parallel()
	raw := `{"==": [{"var":"securityType"}, "Bond"]}`

	var node PredicateNode
	if err := json.Unmarshal([]byte(raw), &node); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if node.Op != OpEq {
		t.Fatalf("op = %q, want %q", node.Op, OpEq)
	}
	if len(node.Args) != 2 {
		t.Fatalf("args = %d, want 2", len(node.Args))
	}
	if node.Args[0].IsVar != "securityType" {
		t.Errorf("args[0].IsVar = %q, want securityType", node.Args[0].IsVar)
	}
	if node.Args[1].Literal != "Bond" {
		t.Errorf("args[1].Literal = %v, want Bond", node.Args[1].Literal)
	}
}

func TestPredicateNodeUnmarshalNested(t *testing.T) {
	t.Parallel()
	raw := `{"and": [
		{"==": [{"var":"securityType"}, "Bond"]},
		{">": [{"var":"yield"}, 3]}
	]}`

	var node PredicateNode
	if err := json.Unmarshal([]byte(raw), &node); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if node.Op != OpAnd || len(node.Args) != 2 {
		t.Fatalf("unexpected tree: %+v", node)
	}
	if node.Args[1].Op != OpGt {
		t.Errorf("args[1].Op = %q, want %q", node.Args[1].Op, OpGt)
	}
}

func TestPredicateNodeValidateRejectsUnknownOperator(t *testing.T) {
	t.Parallel()
	node := &PredicateNode{Op: OpAnd, Args: []*PredicateNode{
		{Op: "xor", Args: []*PredicateNode{{IsLiteral: true, Literal: true}}},
	}}
	if err := node.Validate(); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("Validate() = %v, want ErrInvalidArgument for nested unknown operator", err)
	}

	known := &PredicateNode{Op: OpEq, Args: []*PredicateNode{
		{IsVar: "status"},
		{IsLiteral: true, Literal: "ACTIVE"},
	}}
	if err := known.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil for a well-formed tree", err)
	}

	var nilNode *PredicateNode
	if err := nilNode.Validate(); err != nil {
		t.Fatalf("Validate() on nil tree = %v, want nil", err)
	}
}

func TestPredicateNodeUnmarshalUnaryNot(t *testing.T) {
	t.Parallel()
	raw := `{"not": {"==": [{"var":"status"}, "HALTED"]}}`

	var node PredicateNode
	if err := json.Unmarshal([]byte(raw), &node); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if node.Op != OpNot || len(node.Args) != 1 {
		t.Fatalf("unexpected tree: %+v", node)
	}
}
