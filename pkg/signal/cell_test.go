package signal

import "testing"

func TestCellBasic(t *testing.T) {
	c := NewCell(0)

	if got := c.Get(); got != 0 {
		t.Errorf("expected initial value 0, got %d", got)
	}

	if !c.Set(5) {
		t.Error("expected Set to report a change")
	}
	if got := c.Get(); got != 5 {
		t.Errorf("expected value 5, got %d", got)
	}

	// Same value is not a change.
	if c.Set(5) {
		t.Error("setting an equal value should not report a change")
	}

	if !c.Update(func(n int) int { return n * 2 }) {
		t.Error("expected Update to report a change")
	}
	if got := c.Get(); got != 10 {
		t.Errorf("expected value 10, got %d", got)
	}
}

func TestCellDefaultEqualsNonComparable(t *testing.T) {
	c := NewCell([]string{"a"})

	if c.Set([]string{"a"}) {
		t.Error("deep-equal slices should not report a change")
	}
	if !c.Set([]string{"b"}) {
		t.Error("different slices should report a change")
	}
}

func TestCellWithEquals(t *testing.T) {
	// Custom equality: compare only the first rune.
	c := NewCell("apple").WithEquals(func(a, b string) bool {
		if a == "" || b == "" {
			return a == b
		}
		return a[0] == b[0]
	})

	if c.Set("avocado") {
		t.Error("values equal under custom equality should not change")
	}
	if got := c.Get(); got != "apple" {
		t.Errorf("expected unchanged value, got %q", got)
	}
	if !c.Set("banana") {
		t.Error("expected a change under custom equality")
	}
}
