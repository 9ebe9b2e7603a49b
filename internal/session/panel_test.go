package session

import (
	"testing"

	"guildcore/pkg/types"
)

func TestNewSurfaceRoundsToRows(t *testing.T) {
	cases := []struct {
		size, want int
	}{
		{0, 9},
		{-5, 9},
		{9, 9},
		{10, 18},
		{36, 36},
		{54, 54},
		{90, 54},
	}
	for _, c := range cases {
		if got := NewSurface("t", c.size).Size(); got != c.want {
			t.Fatalf("NewSurface(%d).Size() = %d, want %d", c.size, got, c.want)
		}
	}
}

func TestSurfaceSlots(t *testing.T) {
	s := NewSurface("Guild List", 27)
	it := &types.Item{Material: "PAPER"}
	if !s.SetAt(1, 2, it) || s.Item(11) != it {
		t.Fatalf("SetAt(1,2) did not land in slot 11")
	}
	if s.Set(27, it) || s.Set(-1, it) || s.SetAt(0, 9, it) {
		t.Fatalf("out of range slot accepted")
	}
	border := &types.Item{Material: "GLASS_PANE"}
	s.Fill(border)
	if s.Item(11) != it || s.Item(0) != border {
		t.Fatalf("Fill overwrote or skipped slots")
	}
	c := s.Contents()
	c[0] = nil
	if s.Item(0) == nil {
		t.Fatalf("Contents is not a copy")
	}
}
