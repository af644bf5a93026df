// go test github.com/homemade/kepi/sync -v
package sync

import (
	"testing"
)

func TestPageCursor_TotalPages(t *testing.T) {
	cases := []struct {
		count    int64
		expected int
	}{
		{0, 0},
		{1, 1},
		{99, 1},
		{100, 1},
		{101, 2},
		{250, 3},
		{300, 3},
	}
	cursor := NewPageCursor()
	for _, c := range cases {
		if have := cursor.TotalPages(c.count); have != c.expected {
			t.Errorf("TotalPages(%d) = %d, expected %d", c.count, have, c.expected)
		}
	}
}

func TestPageCursor_SequenceForThreePages(t *testing.T) {
	cursor := NewPageCursor()
	if cursor.Page() != 1 {
		t.Fatalf("expected cursor to start at page 1, have %d", cursor.Page())
	}
	expected := []int{2, 3}
	var have []int
	for {
		next, ok := cursor.Next(250)
		if !ok {
			break
		}
		have = append(have, next)
	}
	if len(have) != len(expected) {
		t.Fatalf("expected pages %v, have %v", expected, have)
	}
	for i := range expected {
		if have[i] != expected[i] {
			t.Errorf("expected page %d at position %d, have %d", expected[i], i, have[i])
		}
	}
}

func TestPageCursor_StrictlyIncreasing(t *testing.T) {
	cursor := NewPageCursor()
	last := cursor.Page()
	for {
		next, ok := cursor.Next(1000)
		if !ok {
			break
		}
		if next <= last {
			t.Fatalf("page %d issued after page %d", next, last)
		}
		last = next
	}
	if last != 10 {
		t.Errorf("expected final page 10 for 1000 records, have %d", last)
	}
}

func TestPageCursor_TerminalOnMissingCount(t *testing.T) {
	cursor := NewPageCursor()
	if next, ok := cursor.Next(0); ok {
		t.Errorf("expected terminal cursor for zero count, have page %d", next)
	}
}

func TestPageCursor_NeverExceedsTotalPages(t *testing.T) {
	cursor := NewPageCursor()
	for i := 0; i < 20; i++ {
		next, ok := cursor.Next(250)
		if ok && next > 3 {
			t.Fatalf("cursor issued page %d beyond total pages 3", next)
		}
	}
}
