// Package connector fits tangent-continuous curb curves between poles,
// the oriented curb endpoints of roads meeting at a junction.
package connector

import (
	"fmt"
	"math"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
)

// Side is the side of a carriageway a pole sits on, relative to the road's
// centerline direction.
type Side uint8

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	}
	return "none"
}

// Role is the traffic flow at a pole relative to the junction.
type Role uint8

const (
	// RoleAuto infers the role from flow or side.
	RoleAuto Role = iota
	RoleEnter
	RoleExit
)

func (r Role) String() string {
	switch r {
	case RoleEnter:
		return "enter"
	case RoleExit:
		return "exit"
	}
	return "auto"
}

// Pole is a connector anchor on a road edge. Cut locates it along the road
// centerline (0 at the road's A end, 1 at its B end), so a pole with
// Cut >= 0.5 sits where the road runs into the junction along RoadDir.
type Pole struct {
	Pos     geo.Point2D `json:"pos"`
	Road    string      `json:"road"`
	Side    Side        `json:"side"`
	Role    Role        `json:"role"`
	Cut     float64     `json:"cut"`
	RoadDir geo.Point2D `json:"road_dir"`
	// Flow is the local travel direction at the pole, zero when unknown.
	Flow geo.Point2D `json:"flow"`
}

// Inward returns the unit direction from the road into the junction.
func (p Pole) Inward() geo.Point2D {
	d := p.RoadDir.Normalize()
	if p.Cut >= 0.5 {
		return d
	}
	return d.Scale(-1)
}

// Outward returns the unit direction leaving the junction along the road.
func (p Pole) Outward() geo.Point2D {
	return p.Inward().Scale(-1)
}

// EffectiveRole returns the explicit role, or infers it. With a flow
// direction the pole is an entry when traffic moves toward the junction.
// Without one, right-hand traffic is assumed: the side to the right of the
// inward direction enters.
func (p Pole) EffectiveRole() Role {
	if p.Role != RoleAuto {
		return p.Role
	}
	atEnd := p.Cut >= 0.5
	if !p.Flow.IsZero() {
		if (p.Flow.Dot(p.RoadDir) >= 0) == atEnd {
			return RoleEnter
		}
		return RoleExit
	}
	switch p.Side {
	case SideRight:
		if atEnd {
			return RoleEnter
		}
		return RoleExit
	case SideLeft:
		if atEnd {
			return RoleExit
		}
		return RoleEnter
	}
	return RoleAuto
}

// keyQuantum is the grid poles are snapped to when used as map keys.
const keyQuantum = 1e-4

// PoleKey identifies a pole by road, cut and quantized position.
type PoleKey struct {
	Road string
	Cut  int64
	X, Z int64
}

// Key returns the composite map key of the pole.
func (p Pole) Key() PoleKey {
	return PoleKey{
		Road: p.Road,
		Cut:  quantize(p.Cut),
		X:    quantize(p.Pos.X),
		Z:    quantize(p.Pos.Z),
	}
}

// CutKey groups poles at the same place on the same road.
type CutKey struct {
	Road string
	Cut  int64
}

// CutKey returns the (road, cut) group of the pole.
func (p Pole) CutKey() CutKey {
	return CutKey{Road: p.Road, Cut: quantize(p.Cut)}
}

func (k PoleKey) String() string {
	return fmt.Sprintf("%s@%g(%g,%g)", k.Road, float64(k.Cut)*keyQuantum, float64(k.X)*keyQuantum, float64(k.Z)*keyQuantum)
}

func quantize(v float64) int64 {
	return int64(math.Round(v / keyQuantum))
}
