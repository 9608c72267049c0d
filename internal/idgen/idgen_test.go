package idgen

import "testing"

func TestNextIsDeterministicAndUnique(t *testing.T) {
	g1 := New()
	g2 := New()

	seen := make(map[string]bool)
	for i := 0; i < 500; i++ {
		id1, err := g1.Next()
		if err != nil {
			t.Fatalf("g1.Next(): %v", err)
		}
		id2, err := g2.Next()
		if err != nil {
			t.Fatalf("g2.Next(): %v", err)
		}
		if id1 != id2 {
			t.Fatalf("identical input sequences diverged at %d: %q != %q", i, id1, id2)
		}
		if seen[id1] {
			t.Fatalf("duplicate id %q at index %d", id1, i)
		}
		seen[id1] = true
	}
}

func TestResetRestartsSequence(t *testing.T) {
	g := New()
	first, _ := g.Next()
	_, _ = g.Next()
	g.Reset()
	afterReset, _ := g.Next()

	if first != afterReset {
		t.Fatalf("Reset did not restart sequence: first=%q afterReset=%q", first, afterReset)
	}
}

func TestEncodeKnownValues(t *testing.T) {
	cases := []struct {
		n    uint64
		want string
	}{
		{0, "0"},
		{1, "1"},
		{2, "1T"},
		{3, "10"},
		{4, "11"},
	}
	for _, c := range cases {
		got := encode(c.n)
		if got != c.want {
			t.Errorf("encode(%d) = %q, want %q", c.n, got, c.want)
		}
	}
}
