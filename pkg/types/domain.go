package types

import (
	"fmt"

	"github.com/google/uuid"
)

// UserID is the stable identifier of a connected user.
type UserID = uuid.UUID

// EntityID identifies a live entity in the game world.
type EntityID = uuid.UUID

// ParseUserID parses the canonical textual form of a user id.
func ParseUserID(s string) (UserID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse user id %q: %w", s, err)
	}
	return id, nil
}

// Location is a block position in a named world.
type Location struct {
	World string `json:"world"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Z     int    `json:"z"`
}

// ChunkX returns the chunk column of the location.
func (l Location) ChunkX() int { return l.X >> 4 }

// ChunkZ returns the chunk row of the location.
func (l Location) ChunkZ() int { return l.Z >> 4 }

// ClickKind is the kind of click the host reported for an interaction.
type ClickKind string

const (
	ClickLeft       ClickKind = "left"
	ClickRight      ClickKind = "right"
	ClickShiftLeft  ClickKind = "shift_left"
	ClickShiftRight ClickKind = "shift_right"
	ClickMiddle     ClickKind = "middle"
	ClickDouble     ClickKind = "double"
	ClickDrop       ClickKind = "drop"
	ClickNumberKey  ClickKind = "number_key"
	ClickUnknown    ClickKind = "unknown"
)

// IsShift reports whether the click was made with shift held.
func (k ClickKind) IsShift() bool { return k == ClickShiftLeft || k == ClickShiftRight }

// Item is the opaque payload shown in a surface slot.
// A nil *Item is an empty slot.
type Item struct {
	Material string   `json:"material"`
	Amount   int      `json:"amount,omitempty"`
	Name     string   `json:"name,omitempty"`
	Lore     []string `json:"lore,omitempty"`
	// Tag carries panel-private data, e.g. the guild id an entry refers to.
	Tag string `json:"tag,omitempty"`
}
