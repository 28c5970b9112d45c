package connector

import (
	"math"
	"strings"
	"testing"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
)

const tolerance = 1e-6

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

// rightTurn returns poles for a right turn from a northbound road into an
// eastbound road meeting at the origin.
func rightTurn() (Pole, Pole) {
	a := Pole{Pos: geo.Pt(0, -5), Road: "south", Side: SideRight, Cut: 1, RoadDir: geo.Pt(0, 1)}
	b := Pole{Pos: geo.Pt(5, 0), Road: "east", Side: SideRight, Cut: 0, RoadDir: geo.Pt(1, 0)}
	return a, b
}

func TestFitRightTurn(t *testing.T) {
	a, b := rightTurn()
	c := Fit(a, b, DefaultParams(10))
	if !c.Valid {
		t.Fatalf("connector invalid: %s", c.Reason)
	}
	if c.Family != FamilyRSR {
		t.Errorf("family = %s, want RSR", c.Family)
	}
	if !approxEqual(c.Radius, 5, tolerance) {
		t.Errorf("radius = %f, want 5", c.Radius)
	}
	if !approxEqual(c.Length(), 5*math.Pi/2, tolerance) {
		t.Errorf("length = %f, want %f", c.Length(), 5*math.Pi/2)
	}
	if c.StartDot < 0.999 || c.EndDot < 0.999 {
		t.Errorf("tangency dots = %f, %f", c.StartDot, c.EndDot)
	}
}

func TestFitTangencyBelowThreshold(t *testing.T) {
	a, b := rightTurn()
	p := DefaultParams(10)
	p.MinTangencyDot = 1.01
	c := Fit(a, b, p)
	if c.Valid {
		t.Fatal("connector should fail a tangency threshold above 1")
	}
	if c.Reason != "tangency below threshold" {
		t.Errorf("reason = %q", c.Reason)
	}
	if c.Family != FamilyRSR || !approxEqual(c.Radius, 5, tolerance) {
		t.Errorf("geometry changed with the threshold: %s radius %f", c.Family, c.Radius)
	}
}

func TestFitRadiusBoundedByMax(t *testing.T) {
	a, b := rightTurn()
	c := Fit(a, b, DefaultParams(2))
	if !c.Valid {
		t.Fatalf("connector invalid: %s", c.Reason)
	}
	if !approxEqual(c.Radius, 2, tolerance) {
		t.Errorf("radius = %f, want 2", c.Radius)
	}
	// Two eighth-turns of radius 2 joined by the diagonal between centres
	// (2,-5) and (5,-2).
	want := 2*(2*math.Pi/4) + 3*math.Sqrt2
	if !approxEqual(c.Length(), want, tolerance) {
		t.Errorf("length = %f, want %f", c.Length(), want)
	}
}

func TestFitLeftTurn(t *testing.T) {
	a := Pole{Pos: geo.Pt(0, -5), Road: "south", Cut: 1, RoadDir: geo.Pt(0, 1)}
	b := Pole{Pos: geo.Pt(-5, 0), Road: "west", Cut: 0, RoadDir: geo.Pt(-1, 0)}
	c := Fit(a, b, DefaultParams(10))
	if !c.Valid || c.Family != FamilyLSL {
		t.Fatalf("family = %s valid = %v (%s), want valid LSL", c.Family, c.Valid, c.Reason)
	}
}

func TestFitStraightThrough(t *testing.T) {
	a := Pole{Pos: geo.Pt(0, 0), Road: "s", Cut: 1, RoadDir: geo.Pt(0, 1)}
	b := Pole{Pos: geo.Pt(0, 12), Road: "n", Cut: 0, RoadDir: geo.Pt(0, 1)}
	c := Fit(a, b, DefaultParams(5))
	if !c.Valid {
		t.Fatalf("connector invalid: %s", c.Reason)
	}
	if len(c.Pieces) != 1 || c.Pieces[0].Kind != KindStraight {
		t.Fatalf("pieces = %+v, want one straight", c.Pieces)
	}
	if !approxEqual(c.Length(), 12, tolerance) {
		t.Errorf("length = %f, want 12", c.Length())
	}
}

func TestFitSCurveIsInvalid(t *testing.T) {
	a := Pole{Pos: geo.Pt(0, 0), Road: "s", Cut: 1, RoadDir: geo.Pt(0, 1)}
	b := Pole{Pos: geo.Pt(10, 20), Road: "n", Cut: 0, RoadDir: geo.Pt(0, 1)}
	c := Fit(a, b, DefaultParams(5))
	if c.Valid {
		t.Fatal("lateral offset should need a mixed path and be invalid")
	}
	if c.Family != FamilyRSL {
		t.Errorf("family = %s, want RSL", c.Family)
	}
	if !strings.Contains(c.Reason, "mixed") {
		t.Errorf("reason = %q", c.Reason)
	}
}

func TestFitDegenerateInput(t *testing.T) {
	a, b := rightTurn()
	b.Pos = a.Pos
	if c := Fit(a, b, DefaultParams(5)); c.Valid {
		t.Error("coincident poles should be invalid")
	}
	a, b = rightTurn()
	a.RoadDir = geo.Point2D{}
	if c := Fit(a, b, DefaultParams(5)); c.Valid {
		t.Error("pole without direction should be invalid")
	}
}

func TestConnectorTangencyAtBothPoles(t *testing.T) {
	// A spread of turn angles from the same approach.
	a := Pole{Pos: geo.Pt(0, -6), Road: "in", Cut: 1, RoadDir: geo.Pt(0, 1)}
	for _, deg := range []float64{-120, -90, -45, -10, 10, 45, 90, 120} {
		ang := math.Pi/2 + deg*math.Pi/180
		out := geo.Pt(math.Cos(ang), math.Sin(ang))
		b := Pole{Pos: out.Scale(6), Road: "out", Cut: 0, RoadDir: out}
		c := Fit(a, b, DefaultParams(8))
		if !c.Valid {
			t.Errorf("%v°: invalid (%s)", deg, c.Reason)
			continue
		}
		if c.StartDot < 0.92 || c.EndDot < 0.92 {
			t.Errorf("%v°: dots %f, %f", deg, c.StartDot, c.EndDot)
		}
		if !c.Family.SameHanded() {
			t.Errorf("%v°: family %s", deg, c.Family)
		}
		pts := c.Points(math.Pi / 32)
		if !pts[0].Near(a.Pos, 1e-9) || !pts[len(pts)-1].Near(b.Pos, 1e-6) {
			t.Errorf("%v°: polyline runs %v → %v", deg, pts[0], pts[len(pts)-1])
		}
	}
}

func TestPointsSampling(t *testing.T) {
	a, b := rightTurn()
	c := Fit(a, b, DefaultParams(10))
	pts := c.Points(math.Pi / 8)
	// A quarter circle at π/8 per chord gives 4 chords.
	if len(pts) != 5 {
		t.Fatalf("points = %d, want 5", len(pts))
	}
	center := geo.Pt(5, -5)
	for _, p := range pts {
		if !approxEqual(p.Distance(center), 5, 1e-9) {
			t.Errorf("point %v off the arc", p)
		}
	}
}

func TestEffectiveRole(t *testing.T) {
	cases := []struct {
		name string
		pole Pole
		want Role
	}{
		{"explicit", Pole{Role: RoleExit, Side: SideRight, Cut: 1, RoadDir: geo.Pt(1, 0)}, RoleExit},
		{"right at end", Pole{Side: SideRight, Cut: 1, RoadDir: geo.Pt(1, 0)}, RoleEnter},
		{"right at start", Pole{Side: SideRight, Cut: 0, RoadDir: geo.Pt(1, 0)}, RoleExit},
		{"left at end", Pole{Side: SideLeft, Cut: 1, RoadDir: geo.Pt(1, 0)}, RoleExit},
		{"flow toward end", Pole{Side: SideLeft, Cut: 1, RoadDir: geo.Pt(1, 0), Flow: geo.Pt(1, 0)}, RoleEnter},
		{"flow away from start", Pole{Cut: 0, RoadDir: geo.Pt(1, 0), Flow: geo.Pt(1, 0)}, RoleExit},
		{"unknown", Pole{Cut: 1, RoadDir: geo.Pt(1, 0)}, RoleAuto},
	}
	for _, c := range cases {
		if got := c.pole.EffectiveRole(); got != c.want {
			t.Errorf("%s: role = %s, want %s", c.name, got, c.want)
		}
	}
}

func TestPoleKeyQuantized(t *testing.T) {
	p := Pole{Pos: geo.Pt(1.23456, 7), Road: "r", Cut: 1}
	q := p
	q.Pos = q.Pos.Add(geo.Pt(1e-6, -1e-6))
	if p.Key() != q.Key() {
		t.Errorf("keys differ: %v vs %v", p.Key(), q.Key())
	}
	q.Road = "other"
	if p.Key() == q.Key() {
		t.Error("keys on different roads should differ")
	}
}
