package physics

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/nettap/topoviz/models"
)

// snapshotFor builds a snapshot from generated connection counts and a flat
// list of edge seeds. Edge endpoints are derived from the seeds so that some
// connections resolve and some reference unknown devices.
func snapshotFor(counts []int, edgeSeeds []int) *models.Snapshot {
	snap := models.NewSnapshot("generated")
	for i, c := range counts {
		snap.AddDevice(models.Device{
			IP:              fmt.Sprintf("10.9.0.%d", i+1),
			ConnectionCount: c,
		})
	}
	n := len(counts)
	for _, seed := range edgeSeeds {
		if n == 0 {
			break
		}
		a := seed % n
		b := (seed / 3) % (n + 2) // occasionally out of range: unknown endpoint
		snap.AddConnection(models.Connection{
			SourceIP: fmt.Sprintf("10.9.0.%d", a+1),
			TargetIP: fmt.Sprintf("10.9.0.%d", b+1),
			Bytes:    int64(seed) * 7,
			Protocol: "TCP",
		})
	}
	return snap
}

// TestLayoutInvariants verifies the properties that must hold for any input:
// the layout never drops or invents devices, always lands inside the clamp
// bounds, and is reproducible for identical inputs.
func TestLayoutInvariants(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping property-based test in short mode")
	}

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 30
	parameters.Rng.Seed(1)

	properties := gopter.NewProperties(parameters)

	countsGen := gen.SliceOf(gen.IntRange(0, 40))
	edgesGen := gen.SliceOf(gen.IntRange(0, 1000))

	properties.Property("positioned devices are 1:1 with input devices", prop.ForAll(
		func(counts []int, edgeSeeds []int) bool {
			snap := snapshotFor(counts, edgeSeeds)
			positioned := Run(NewForceDirectedLayout(DefaultParams()), snap)
			if len(positioned) != len(snap.Devices) {
				return false
			}
			for i := range positioned {
				if positioned[i].IP != snap.Devices[i].IP {
					return false
				}
			}
			return true
		},
		countsGen,
		edgesGen,
	))

	properties.Property("final positions lie within the clamp bounds", prop.ForAll(
		func(counts []int, edgeSeeds []int) bool {
			params := DefaultParams()
			snap := snapshotFor(counts, edgeSeeds)
			positioned := Run(NewForceDirectedLayout(params), snap)
			pad := params.Pad()
			for _, p := range positioned {
				if p.X < pad || p.X > snap.Width-pad {
					return false
				}
				if p.Y < pad || p.Y > snap.Height-pad {
					return false
				}
			}
			return true
		},
		countsGen,
		edgesGen,
	))

	properties.Property("identical inputs produce identical layouts", prop.ForAll(
		func(counts []int, edgeSeeds []int) bool {
			first := Run(NewForceDirectedLayout(DefaultParams()), snapshotFor(counts, edgeSeeds))
			second := Run(NewForceDirectedLayout(DefaultParams()), snapshotFor(counts, edgeSeeds))
			const epsilon = 1e-6
			for i := range first {
				if first[i].X-second[i].X > epsilon || second[i].X-first[i].X > epsilon {
					return false
				}
				if first[i].Y-second[i].Y > epsilon || second[i].Y-first[i].Y > epsilon {
					return false
				}
			}
			return true
		},
		countsGen,
		edgesGen,
	))

	properties.TestingRun(t)
}
