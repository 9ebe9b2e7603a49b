package scheduler

import (
	"fmt"

	"guildcore/pkg/types"
)

// Kind classifies a Scope.
type Kind int

const (
	KindGlobal Kind = iota
	KindRegion
	KindEntity
)

func (k Kind) String() string {
	switch k {
	case KindGlobal:
		return "global"
	case KindRegion:
		return "region"
	case KindEntity:
		return "entity"
	default:
		return "unknown"
	}
}

// Scope identifies the owner of a piece of state. Scopes are comparable and
// two equal scopes share one queue.
type Scope struct {
	kind Kind
	key  string
}

// Global is the scope of process-wide state, including panel sessions.
func Global() Scope { return Scope{kind: KindGlobal} }

// Entity is the scope of a live entity; it follows the entity across regions.
func Entity(id types.EntityID) Scope {
	return Scope{kind: KindEntity, key: id.String()}
}

// RegionOf returns the scope of the region containing loc. Regions are square
// groups of 2^shift by 2^shift chunks.
func RegionOf(loc types.Location, shift int) Scope {
	if shift < 0 {
		shift = 0
	}
	rx := loc.ChunkX() >> shift
	rz := loc.ChunkZ() >> shift
	return Scope{kind: KindRegion, key: fmt.Sprintf("%s:%d:%d", loc.World, rx, rz)}
}

// Kind reports the scope classification.
func (s Scope) Kind() Kind { return s.kind }

func (s Scope) String() string {
	if s.kind == KindGlobal {
		return "global"
	}
	return s.kind.String() + ":" + s.key
}
