package refcache

import "testing"

func TestSearchCreatesUnknownAndIsIdempotent(t *testing.T) {
	c := New()
	if _, ok := c.Find("printf(3)"); ok {
		t.Fatal("Find should report absence before Search ever ran")
	}

	g1 := c.Search("printf(3)")
	if g1.State != Unknown {
		t.Fatalf("State = %v, want Unknown", g1.State)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1", c.Len())
	}

	g2 := c.Search("printf(3)")
	if g1 != g2 {
		t.Fatal("Search should return the same *GRef on repeated calls")
	}

	g3, ok := c.Find("printf(3)")
	if !ok || g3 != g1 {
		t.Fatal("Find should agree with Search once the entry exists")
	}
}

func TestSetValidOnExistingEntry(t *testing.T) {
	c := New()
	g := c.Search("ls(1)")
	g.State = Invalid

	c.SetValid("ls(1)")
	if g.State != Valid {
		t.Fatalf("State = %v, want Valid after SetValid", g.State)
	}
	if c.Len() != 1 {
		t.Fatalf("Len = %d, want 1 (no duplicate entry)", c.Len())
	}
}

func TestSetValidOnNewEntry(t *testing.T) {
	c := New()
	c.SetValid("awk(1)")
	g, ok := c.Find("awk(1)")
	if !ok {
		t.Fatal("SetValid should intern a fresh entry")
	}
	if g.State != Valid {
		t.Fatalf("State = %v, want Valid", g.State)
	}
}
