// Package physics computes 2D positions for topology snapshots using a
// force-directed spring-and-repulsion model seeded by a golden-angle spiral.
package physics

import (
	"math"

	"github.com/nettap/topoviz/models"
)

// LayoutAlgorithm defines an interface for layout algorithms.
type LayoutAlgorithm interface {
	Initialize(snap *models.Snapshot)
	Step() bool // Returns true once the layout is finished
	Positions() []models.PositionedDevice
	Name() string
}

// Params holds the simulation tuning knobs. The defaults were hand-tuned for
// LAN-scale device counts; they affect aesthetics, not correctness.
type Params struct {
	Repulsion     float64 // inverse-square repulsion strength
	SpringLength  float64 // rest length of connection springs
	SpringK       float64 // spring stiffness
	CenterGravity float64 // pull toward the viewport center
	Damping       float64 // velocity decay per iteration
	Iterations    int     // fixed iteration count
	NodeRadius    float64 // node radius, determines the boundary clamp pad
}

// DefaultParams returns the standard simulation parameters.
func DefaultParams() Params {
	return Params{
		Repulsion:     2000,
		SpringLength:  120,
		SpringK:       0.005,
		CenterGravity: 0.01,
		Damping:       0.85,
		Iterations:    100,
		NodeRadius:    18,
	}
}

// Pad returns the boundary clamp padding derived from the node radius.
func (p Params) Pad() float64 {
	return p.NodeRadius + 4
}

// simNode is the per-device simulation state. One per input device, created
// fresh on every Initialize; nothing persists across snapshots.
type simNode struct {
	x, y   float64
	vx, vy float64
}

// spring is a resolved connection between two simulation nodes, referenced
// by slice index.
type spring struct {
	a, b int
}

// ForceDirectedLayout positions devices with pairwise repulsion, spring
// attraction along connections, center gravity and damped integration.
// Deterministic for identical input ordering: the only seed is the fixed
// golden-angle spiral.
type ForceDirectedLayout struct {
	params  Params
	width   float64
	height  float64
	devices []models.Device
	nodes   []simNode
	springs []spring
	iter    int
}

// NewForceDirectedLayout creates a force-directed layout with the given
// parameters.
func NewForceDirectedLayout(params Params) *ForceDirectedLayout {
	return &ForceDirectedLayout{params: params}
}

// Name returns the name of the layout algorithm.
func (fd *ForceDirectedLayout) Name() string {
	return "Force-Directed Layout"
}

// goldenAngle is the irrational angular increment pi*(3-sqrt(5)) used to
// distribute seed positions evenly around the center without periodic
// alignment.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Initialize seeds one simulation node per device on a golden-angle spiral:
// highly-connected devices start near the center, isolated ones near the
// periphery. Connections between unknown IPs are dropped from the spring set.
func (fd *ForceDirectedLayout) Initialize(snap *models.Snapshot) {
	fd.width = snap.Width
	fd.height = snap.Height
	if fd.width <= 0 {
		fd.width = models.DefaultWidth
	}
	if fd.height <= 0 {
		fd.height = models.DefaultHeight
	}
	fd.devices = snap.Devices
	fd.nodes = make([]simNode, len(snap.Devices))
	fd.springs = fd.springs[:0]
	fd.iter = 0

	centerX := fd.width / 2
	centerY := fd.height / 2
	maxRadius := math.Min(centerX, centerY) * 0.75

	maxConn := 0
	for i := range snap.Devices {
		if snap.Devices[i].ConnectionCount > maxConn {
			maxConn = snap.Devices[i].ConnectionCount
		}
	}
	if maxConn == 0 {
		maxConn = 1
	}

	index := make(map[string]int, len(snap.Devices))
	for i := range snap.Devices {
		d := &snap.Devices[i]
		r := (1-float64(d.ConnectionCount)/float64(maxConn))*maxRadius + 30
		angle := float64(i) * goldenAngle
		fd.nodes[i] = simNode{
			x: centerX + r*math.Cos(angle),
			y: centerY + r*math.Sin(angle),
		}
		index[d.IP] = i
	}

	for _, c := range snap.Connections {
		a, okA := index[c.SourceIP]
		b, okB := index[c.TargetIP]
		if !okA || !okB {
			continue
		}
		fd.springs = append(fd.springs, spring{a: a, b: b})
	}
}

// Step runs one simulation pass and returns true once the fixed iteration
// budget is spent. The algorithm has no failure mode: it always terminates
// and always yields a position for every device.
func (fd *ForceDirectedLayout) Step() bool {
	if fd.iter >= fd.params.Iterations || len(fd.nodes) == 0 {
		return true
	}

	centerX := fd.width / 2
	centerY := fd.height / 2

	// Pairwise repulsion, inverse-square in distance.
	for i := range fd.nodes {
		for j := i + 1; j < len(fd.nodes); j++ {
			dx := fd.nodes[i].x - fd.nodes[j].x
			dy := fd.nodes[i].y - fd.nodes[j].y
			dist := math.Sqrt(dx*dx + dy*dy)
			if dist == 0 {
				// Coincident nodes get no direction bias; self-corrects
				// on the next iteration.
				dist = 1
			}
			f := fd.params.Repulsion / (dist * dist)
			fx := dx / dist * f
			fy := dy / dist * f
			fd.nodes[i].vx += fx
			fd.nodes[i].vy += fy
			fd.nodes[j].vx -= fx
			fd.nodes[j].vy -= fy
		}
	}

	// Spring attraction toward the rest length: contracts when stretched,
	// expands when compressed.
	for _, s := range fd.springs {
		dx := fd.nodes[s.b].x - fd.nodes[s.a].x
		dy := fd.nodes[s.b].y - fd.nodes[s.a].y
		dist := math.Sqrt(dx*dx + dy*dy)
		if dist == 0 {
			dist = 1
		}
		f := fd.params.SpringK * (dist - fd.params.SpringLength)
		fx := dx / dist * f
		fy := dy / dist * f
		fd.nodes[s.a].vx += fx
		fd.nodes[s.a].vy += fy
		fd.nodes[s.b].vx -= fx
		fd.nodes[s.b].vy -= fy
	}

	// Center gravity, damping, integration and boundary clamp.
	pad := fd.params.Pad()
	for i := range fd.nodes {
		n := &fd.nodes[i]
		n.vx += (centerX - n.x) * fd.params.CenterGravity
		n.vy += (centerY - n.y) * fd.params.CenterGravity
		n.vx *= fd.params.Damping
		n.vy *= fd.params.Damping
		n.x = clamp(n.x+n.vx, pad, fd.width-pad)
		n.y = clamp(n.y+n.vy, pad, fd.height-pad)
	}

	fd.iter++
	return fd.iter >= fd.params.Iterations
}

// Positions returns one positioned device per input device, in input order.
func (fd *ForceDirectedLayout) Positions() []models.PositionedDevice {
	result := make([]models.PositionedDevice, len(fd.devices))
	for i := range fd.devices {
		result[i] = models.PositionedDevice{
			Device: fd.devices[i],
			X:      fd.nodes[i].x,
			Y:      fd.nodes[i].y,
		}
	}
	return result
}

// Run initializes the algorithm on the snapshot, steps it to completion and
// returns the final positions. This is the whole layout as a single pure
// computation: no I/O, no shared state, no failure modes.
func Run(algo LayoutAlgorithm, snap *models.Snapshot) []models.PositionedDevice {
	algo.Initialize(snap)
	for !algo.Step() {
	}
	return algo.Positions()
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
