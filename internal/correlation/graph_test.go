package correlation

import (
	"math/rand"
	"testing"

	"bondstream/internal/model"
)

func TestOnInsertIsSymmetric(t *testing.T) {
	t.Parallel()
	g := New(1.0)
	rng := rand.New(rand.NewSource(1))

	a := Attrs{ID: "A", Kind: model.KindBond, Sector: "Treasury", Currency: "USD"}
	b := Attrs{ID: "B", Kind: model.KindBond, Sector: "Corporate", Currency: "EUR"}

	g.OnInsert(a, nil, rng)
	g.OnInsert(b, []Attrs{a}, rng)

	cab, ok := g.Get("A", "B")
	if !ok {
		t.Fatal("expected coefficient between A and B")
	}
	cba, ok := g.Get("B", "A")
	if !ok {
		t.Fatal("expected coefficient between B and A")
	}
	if cab != cba {
		t.Errorf("c(A,B) = %v, c(B,A) = %v, want equal", cab, cba)
	}
}

func TestOnInsertAllAttributesMatchStaysInBounds(t *testing.T) {
	t.Parallel()
	g := New(1.0)
	rng := rand.New(rand.NewSource(7))

	ids := []string{"X", "Y", "Z"}
	var inserted []Attrs
	for _, id := range ids {
		a := Attrs{ID: id, Kind: model.KindSwap, Sector: "Financials", Currency: "USD"}
		g.OnInsert(a, inserted, rng)
		inserted = append(inserted, a)
	}

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			c, ok := g.Get(ids[i], ids[j])
			if !ok {
				t.Fatalf("missing coefficient for %s,%s", ids[i], ids[j])
			}
			if c < -1 || c > 1 {
				t.Errorf("c(%s,%s) = %v, want in [-1, 1]", ids[i], ids[j], c)
			}
			// same kind + sector + currency contributes 0.9 raw before noise,
			// so with strength 1.0 the coefficient should land solidly positive.
			if c <= 0 {
				t.Errorf("c(%s,%s) = %v, want > 0 for fully-matching attrs", ids[i], ids[j], c)
			}
		}
	}
}

func TestOnRemoveErasesRowsAndColumns(t *testing.T) {
	t.Parallel()
	g := New(1.0)
	rng := rand.New(rand.NewSource(3))

	a := Attrs{ID: "A", Kind: model.KindBond, Sector: "Treasury", Currency: "USD"}
	b := Attrs{ID: "B", Kind: model.KindBond, Sector: "Treasury", Currency: "USD"}
	c := Attrs{ID: "C", Kind: model.KindFuture, Sector: "Energy", Currency: "EUR"}

	g.OnInsert(a, nil, rng)
	g.OnInsert(b, []Attrs{a}, rng)
	g.OnInsert(c, []Attrs{a, b}, rng)

	if g.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", g.Len())
	}

	g.OnRemove("A")

	if g.Len() != 1 {
		t.Fatalf("Len() after removing A = %d, want 1 (only B,C left)", g.Len())
	}
	if _, ok := g.Get("A", "B"); ok {
		t.Error("coefficient A,B should be gone after OnRemove(A)")
	}
	if _, ok := g.Get("A", "C"); ok {
		t.Error("coefficient A,C should be gone after OnRemove(A)")
	}
	if _, ok := g.Get("B", "C"); !ok {
		t.Error("coefficient B,C should survive OnRemove(A)")
	}
}

func TestRowReturnsAllNeighbors(t *testing.T) {
	t.Parallel()
	g := New(1.0)
	rng := rand.New(rand.NewSource(11))

	a := Attrs{ID: "A", Kind: model.KindBond, Sector: "Treasury", Currency: "USD"}
	b := Attrs{ID: "B", Kind: model.KindBond, Sector: "Treasury", Currency: "USD"}
	c := Attrs{ID: "C", Kind: model.KindFuture, Sector: "Energy", Currency: "EUR"}

	g.OnInsert(a, nil, rng)
	g.OnInsert(b, []Attrs{a}, rng)
	g.OnInsert(c, []Attrs{a, b}, rng)

	row := g.Row("A")
	if len(row) != 2 {
		t.Fatalf("Row(A) = %v, want 2 entries", row)
	}
	if _, ok := row["B"]; !ok {
		t.Error("Row(A) missing B")
	}
	if _, ok := row["C"]; !ok {
		t.Error("Row(A) missing C")
	}
}

func TestGetSelfPairUndefined(t *testing.T) {
	t.Parallel()
	g := New(1.0)
	if _, ok := g.Get("A", "A"); ok {
		t.Error("Get(A, A) should be undefined")
	}
}
