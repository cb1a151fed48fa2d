package physics

import (
	"fmt"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/nettap/topoviz/models"
)

// JitterLayout decorates a base layout with a small deterministic
// opensimplex displacement. It breaks up the grid-like regularity a fully
// converged simulation can settle into on dense snapshots while keeping
// repeated runs reproducible: the noise field is seeded explicitly, not from
// the clock.
type JitterLayout struct {
	base      LayoutAlgorithm
	noise     opensimplex.Noise
	scale     float64
	intensity float64
	pad       float64
	width     float64
	height    float64
}

// NewJitterLayout wraps base with noise displacement of the given intensity
// in [0, 1]. Intensity 0 leaves the base positions untouched.
func NewJitterLayout(base LayoutAlgorithm, intensity float64, seed int64, pad float64) *JitterLayout {
	return &JitterLayout{
		base:      base,
		noise:     opensimplex.New(seed),
		scale:     0.03,
		intensity: intensity,
		pad:       pad,
	}
}

// Name returns the name of the layout algorithm.
func (jl *JitterLayout) Name() string {
	return fmt.Sprintf("Jittered %s", jl.base.Name())
}

// Initialize initializes the base layout and records the clamp bounds.
func (jl *JitterLayout) Initialize(snap *models.Snapshot) {
	jl.width = snap.Width
	jl.height = snap.Height
	if jl.width <= 0 {
		jl.width = models.DefaultWidth
	}
	if jl.height <= 0 {
		jl.height = models.DefaultHeight
	}
	jl.base.Initialize(snap)
}

// Step steps the base layout.
func (jl *JitterLayout) Step() bool {
	return jl.base.Step()
}

// Positions returns the base positions displaced by the noise field and
// re-clamped to the viewport.
func (jl *JitterLayout) Positions() []models.PositionedDevice {
	positioned := jl.base.Positions()
	if jl.intensity <= 0 {
		return positioned
	}

	// Displacement caps at roughly one spring length at full intensity.
	amount := jl.intensity * 20.0
	for i := range positioned {
		p := &positioned[i]
		nx := jl.noise.Eval2(p.X*jl.scale, p.Y*jl.scale)
		ny := jl.noise.Eval2(p.X*jl.scale+100, p.Y*jl.scale+100)
		p.X = clamp(p.X+nx*amount, jl.pad, jl.width-jl.pad)
		p.Y = clamp(p.Y+ny*amount, jl.pad, jl.height-jl.pad)
	}
	return positioned
}

// GetLayoutAlgorithm returns a layout algorithm by name. Unknown names fall
// back to the plain force-directed layout.
func GetLayoutAlgorithm(name string, params Params, jitterIntensity float64, jitterSeed int64) LayoutAlgorithm {
	base := NewForceDirectedLayout(params)
	switch name {
	case "jitter":
		return NewJitterLayout(base, jitterIntensity, jitterSeed, params.Pad())
	case "force":
		return base
	default:
		return base
	}
}
