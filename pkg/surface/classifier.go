package surface

import (
	"sort"

	"go.uber.org/zap"

	"github.com/ChicagoDave/roadgrid/pkg/geo"
	"github.com/ChicagoDave/roadgrid/pkg/tile"
)

// WheelID names one wheel of a vehicle.
type WheelID string

// Transition records a wheel changing surface between two updates.
type Transition struct {
	Wheel       WheelID `json:"wheel"`
	From        Surface `json:"from"`
	To          Surface `json:"to"`
	HeightDelta float64 `json:"height_delta"`
}

// Result is the outcome of one update.
type Result struct {
	Surfaces    map[WheelID]Surface `json:"surfaces"`
	Heights     map[WheelID]float64 `json:"heights"`
	Distances   map[WheelID]float64 `json:"distances"`
	Transitions []Transition        `json:"transitions"`
}

// Classifier tracks per-wheel surfaces across simulation ticks. It is not
// safe for concurrent use; call Update once per tick from one goroutine.
type Classifier struct {
	params tile.Params
	loops  []geo.Polygon
	prev   map[WheelID]Surface
	log    *zap.Logger
}

// NewClassifier returns a classifier for the given road parameters. A nil
// logger disables logging.
func NewClassifier(params tile.Params, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Classifier{params: params, prev: make(map[WheelID]Surface), log: log}
}

// SetLoops sets the stitched loops consulted where no tile has roadway.
func (c *Classifier) SetLoops(loops []geo.Polygon) {
	c.loops = loops
}

// Update classifies every wheel against the tiles and commits the new
// surfaces as the next tick's history. Wheels missing from the call are
// forgotten. Transitions are reported for wheels seen on the previous
// tick, sorted by wheel id.
func (c *Classifier) Update(wheels map[WheelID]geo.Point2D, tiles tile.Lookup) Result {
	res := Result{
		Surfaces:    make(map[WheelID]Surface, len(wheels)),
		Heights:     make(map[WheelID]float64, len(wheels)),
		Distances:   make(map[WheelID]float64, len(wheels)),
		Transitions: []Transition{},
	}
	next := make(map[WheelID]Surface, len(wheels))

	for id, p := range wheels {
		prev, seen := c.prev[id]
		s, _ := Locate(p, tiles, c.loops, c.params, prev)
		res.Surfaces[id] = s.Surface
		res.Heights[id] = Height(s.Surface, c.params)
		res.Distances[id] = s.Distance
		next[id] = s.Surface

		if seen && prev != s.Surface {
			res.Transitions = append(res.Transitions, Transition{
				Wheel:       id,
				From:        prev,
				To:          s.Surface,
				HeightDelta: Height(s.Surface, c.params) - Height(prev, c.params),
			})
		}
	}
	sort.Slice(res.Transitions, func(i, j int) bool {
		return res.Transitions[i].Wheel < res.Transitions[j].Wheel
	})
	for _, tr := range res.Transitions {
		c.log.Debug("surface transition",
			zap.String("wheel", string(tr.Wheel)),
			zap.Stringer("from", tr.From),
			zap.Stringer("to", tr.To),
			zap.Float64("height_delta", tr.HeightDelta),
		)
	}

	c.prev = next
	return res
}

// Surface returns the committed surface of a wheel.
func (c *Classifier) Surface(id WheelID) Surface {
	return c.prev[id]
}

// Reset forgets all wheel history.
func (c *Classifier) Reset() {
	c.prev = make(map[WheelID]Surface)
}

// Replay forgets all history and runs Update over ticks in order.
func (c *Classifier) Replay(ticks []map[WheelID]geo.Point2D, tiles tile.Lookup) []Result {
	c.Reset()
	out := make([]Result, 0, len(ticks))
	for _, wheels := range ticks {
		out = append(out, c.Update(wheels, tiles))
	}
	return out
}
