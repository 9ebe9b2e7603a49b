package session

import (
	"context"

	"guildcore/pkg/types"
)

// Panel is a renderable, clickable, closable surface description. The
// manager never mutates a Panel; it only invokes it.
type Panel interface {
	Title() string
	// Size is the slot count; it is rounded up to whole rows of RowWidth.
	Size() int
	Render(s *Surface) error
	OnClick(ctx context.Context, user types.UserID, c Click) error
	OnClose(user types.UserID)
}

// NameInputTarget is implemented by panels that collect a guild name
// through the guild_name_input mode.
type NameInputTarget interface {
	HandleInputComplete(user types.UserID, input string) error
	HandleCancel(user types.UserID) error
}

// Click is a user interaction forwarded to Panel.OnClick.
type Click struct {
	Slot int
	// Item is the payload in the clicked slot; nil for an empty slot.
	Item *types.Item
	Kind types.ClickKind
}

// Surface geometry.
const (
	RowWidth = 9
	MaxRows  = 6
)

// Surface is the grid a panel renders into and the host presents.
type Surface struct {
	title string
	slots []*types.Item
}

// NewSurface returns an empty surface with size rounded up to whole rows and
// clamped to [RowWidth, RowWidth*MaxRows].
func NewSurface(title string, size int) *Surface {
	rows := (size + RowWidth - 1) / RowWidth
	if rows < 1 {
		rows = 1
	}
	if rows > MaxRows {
		rows = MaxRows
	}
	return &Surface{title: title, slots: make([]*types.Item, rows*RowWidth)}
}

func (s *Surface) Title() string { return s.title }
func (s *Surface) Size() int     { return len(s.slots) }
func (s *Surface) Rows() int     { return len(s.slots) / RowWidth }

// Set places item in slot and reports whether slot is in range.
func (s *Surface) Set(slot int, item *types.Item) bool {
	if slot < 0 || slot >= len(s.slots) {
		return false
	}
	s.slots[slot] = item
	return true
}

// SetAt places item at row/column.
func (s *Surface) SetAt(row, col int, item *types.Item) bool {
	if col < 0 || col >= RowWidth {
		return false
	}
	return s.Set(row*RowWidth+col, item)
}

// Item returns the payload in slot, or nil.
func (s *Surface) Item(slot int) *types.Item {
	if slot < 0 || slot >= len(s.slots) {
		return nil
	}
	return s.slots[slot]
}

// Fill sets every empty slot to item.
func (s *Surface) Fill(item *types.Item) {
	for i, it := range s.slots {
		if it == nil {
			s.slots[i] = item
		}
	}
}

// Contents returns a copy of the slot array.
func (s *Surface) Contents() []*types.Item {
	out := make([]*types.Item, len(s.slots))
	copy(out, s.slots)
	return out
}
