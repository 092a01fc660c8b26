package filter

import (
	"encoding/json"
	"testing"

	"bondstream/internal/model"
)

func parsePredicate(t *testing.T, raw string) *model.PredicateNode {
	t.Helper()
	var node model.PredicateNode
	if err := json.Unmarshal([]byte(raw), &node); err != nil {
		t.Fatalf("parse predicate: %v", err)
	}
	return &node
}

func TestEvaluateNilPredicateAdmitsEverything(t *testing.T) {
	t.Parallel()
	if !Evaluate(nil, map[string]any{}, nil) {
		t.Error("nil predicate should admit everything")
	}
}

func TestEvaluateEquality(t *testing.T) {
	t.Parallel()
	node := parsePredicate(t, `{"==": [{"var":"securityType"}, "Bond"]}`)
	fields := map[string]any{"securityType": "Bond"}
	if !Evaluate(node, fields, nil) {
		t.Error("expected match on equal securityType")
	}
	fields["securityType"] = "Swap"
	if Evaluate(node, fields, nil) {
		t.Error("expected no match on differing securityType")
	}
}

func TestEvaluateNumericComparison(t *testing.T) {
	t.Parallel()
	node := parsePredicate(t, `{">": [{"var":"yield"}, 3]}`)
	if !Evaluate(node, map[string]any{"yield": 4.2}, nil) {
		t.Error("4.2 > 3 should match")
	}
	if Evaluate(node, map[string]any{"yield": 2.0}, nil) {
		t.Error("2.0 > 3 should not match")
	}
}

func TestEvaluateAndOr(t *testing.T) {
	t.Parallel()
	node := parsePredicate(t, `{"and": [
		{"==": [{"var":"securityType"}, "Bond"]},
		{">": [{"var":"yield"}, 3]}
	]}`)
	if !Evaluate(node, map[string]any{"securityType": "Bond", "yield": 4.0}, nil) {
		t.Error("expected and() to match")
	}
	if Evaluate(node, map[string]any{"securityType": "Swap", "yield": 4.0}, nil) {
		t.Error("expected and() to not match")
	}

	orNode := parsePredicate(t, `{"or": [
		{"==": [{"var":"securityType"}, "Swap"]},
		{">": [{"var":"yield"}, 3]}
	]}`)
	if !Evaluate(orNode, map[string]any{"securityType": "Bond", "yield": 4.0}, nil) {
		t.Error("expected or() to match via yield clause")
	}
}

func TestEvaluateNot(t *testing.T) {
	t.Parallel()
	node := parsePredicate(t, `{"not": {"==": [{"var":"status"}, "HALTED"]}}`)
	if !Evaluate(node, map[string]any{"status": "ACTIVE"}, nil) {
		t.Error("expected not(HALTED) to match ACTIVE")
	}
	if Evaluate(node, map[string]any{"status": "HALTED"}, nil) {
		t.Error("expected not(HALTED) to reject HALTED")
	}
}

func TestEvaluateIn(t *testing.T) {
	t.Parallel()
	node := parsePredicate(t, `{"in": [{"var":"rating"}, ["AAA", "AA"]]}`)
	if !Evaluate(node, map[string]any{"rating": "AA"}, nil) {
		t.Error("expected AA to be in [AAA, AA]")
	}
	if Evaluate(node, map[string]any{"rating": "BBB"}, nil) {
		t.Error("expected BBB to not be in [AAA, AA]")
	}
}

func TestEvaluateMissingFieldIsNonMatchNotPanic(t *testing.T) {
	t.Parallel()
	node := parsePredicate(t, `{"==": [{"var":"doesNotExist"}, "x"]}`)
	if Evaluate(node, map[string]any{}, nil) {
		t.Error("missing field should resolve to non-match")
	}
}

func TestEvaluateUnsupportedOperatorIsNonMatch(t *testing.T) {
	t.Parallel()
	node := &model.PredicateNode{Op: "xor", Args: []*model.PredicateNode{
		{IsLiteral: true, Literal: true},
		{IsLiteral: true, Literal: false},
	}}
	if Evaluate(node, map[string]any{}, nil) {
		t.Error("unsupported operator should resolve to non-match, not panic")
	}
}

func TestEvaluateTypeMismatchIsNonMatch(t *testing.T) {
	t.Parallel()
	node := parsePredicate(t, `{">": [{"var":"securityType"}, 3]}`)
	if Evaluate(node, map[string]any{"securityType": "Bond"}, nil) {
		t.Error("comparing a string against a number should be a non-match, not a panic")
	}
}
