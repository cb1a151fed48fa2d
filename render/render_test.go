package render

import (
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nettap/topoviz/models"
	"github.com/nettap/topoviz/physics"
)

func testDevices() []models.PositionedDevice {
	return []models.PositionedDevice{
		{Device: models.Device{IP: "10.0.0.1", Label: "edge-router", Type: models.DeviceRouter, Risk: models.RiskLow}, X: 400, Y: 300},
		{Device: models.Device{IP: "10.0.0.2", Label: "a-device-with-a-long-name", Type: models.DeviceDesktop, Risk: models.RiskCritical}, X: 200, Y: 150},
	}
}

func testConnections() []models.Connection {
	return []models.Connection{
		{SourceIP: "10.0.0.1", TargetIP: "10.0.0.2", Bytes: 1000, Protocol: "TCP"},
		{SourceIP: "10.0.0.1", TargetIP: "10.66.0.9", Bytes: 500, Protocol: "DNS"}, // unresolved
	}
}

func TestGetRenderer(t *testing.T) {
	for _, format := range []string{"svg", "json", "dot", "SVG"} {
		r, err := GetRenderer(format)
		require.NoError(t, err)
		assert.NotNil(t, r)
	}
	_, err := GetRenderer("webgl")
	assert.Error(t, err)
}

func TestSVGRenderer(t *testing.T) {
	out, err := (&SVGRenderer{}).Render(testDevices(), testConnections(), NewDefaultOptions("svg"))
	require.NoError(t, err)
	svg := string(out)

	assert.True(t, strings.HasPrefix(svg, `<?xml`))
	assert.Contains(t, svg, "<svg")

	// Router draws as a hexagon, desktop as a circle; both carry data-ip.
	assert.Contains(t, svg, "<polygon")
	assert.Contains(t, svg, "<circle")
	assert.Contains(t, svg, `data-ip="10.0.0.1"`)
	assert.Contains(t, svg, `data-ip="10.0.0.2"`)

	// Only the resolved connection is drawn.
	assert.Equal(t, 1, strings.Count(svg, "<line"))

	// Long labels are truncated with an ellipsis.
	assert.Contains(t, svg, "a-device-with⋯")
	assert.NotContains(t, svg, "a-device-with-a-long-name")
}

func TestSVGRendererEscapesLabels(t *testing.T) {
	devices := []models.PositionedDevice{
		{Device: models.Device{IP: "10.0.0.3", Label: "a<b&c"}, X: 100, Y: 100},
	}
	out, err := (&SVGRenderer{}).Render(devices, nil, NewDefaultOptions("svg"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "a&lt;b&amp;c")
}

func TestJSONRenderer(t *testing.T) {
	out, err := (&JSONRenderer{}).Render(testDevices(), testConnections(), NewDefaultOptions("json"))
	require.NoError(t, err)

	var decoded struct {
		Devices []struct {
			IP    string  `json:"ip"`
			X     float64 `json:"x"`
			Y     float64 `json:"y"`
			Color string  `json:"color"`
			Shape string  `json:"shape"`
		} `json:"devices"`
		Edges []struct {
			SourceIP string  `json:"source_ip"`
			Width    float64 `json:"width"`
			Color    string  `json:"color"`
		} `json:"edges"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))

	require.Len(t, decoded.Devices, 2)
	assert.Equal(t, "hexagon", decoded.Devices[0].Shape)
	assert.Equal(t, "circle", decoded.Devices[1].Shape)
	assert.NotEmpty(t, decoded.Devices[0].Color)

	// Unresolved edges are dropped; the surviving edge carries the maximum
	// byte count and therefore the maximum stroke width.
	require.Len(t, decoded.Edges, 1)
	assert.Equal(t, "10.0.0.1", decoded.Edges[0].SourceIP)
	assert.Equal(t, 4.0, decoded.Edges[0].Width)
}

func TestDOTRenderer(t *testing.T) {
	out, err := (&DOTRenderer{}).Render(testDevices(), testConnections(), NewDefaultOptions("dot"))
	require.NoError(t, err)
	dot := string(out)

	assert.True(t, strings.HasPrefix(dot, "graph topology {"))
	assert.Contains(t, dot, `"10.0.0.1"`)
	assert.Contains(t, dot, "shape=hexagon")
	assert.Contains(t, dot, `"10.0.0.1" -- "10.0.0.2"`)
	assert.NotContains(t, dot, "10.66.0.9")
}

func TestGenerate(t *testing.T) {
	snap := models.NewSnapshot("test")
	snap.AddDevice(models.Device{IP: "10.0.0.1", Label: "gw", Type: models.DeviceRouter, ConnectionCount: 1})
	snap.AddDevice(models.Device{IP: "10.0.0.2", Label: "pc", ConnectionCount: 1})
	snap.AddConnection(models.Connection{SourceIP: "10.0.0.1", TargetIP: "10.0.0.2", Bytes: 100, Protocol: "TCP"})

	options := NewDefaultOptions("svg")
	out, err := Generate(snap, physics.NewForceDirectedLayout(physics.DefaultParams()), options)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<svg")
	assert.Equal(t, 1, strings.Count(string(out), "<line"))
}

func TestGenerateUnknownFormat(t *testing.T) {
	snap := models.NewSnapshot("test")
	_, err := Generate(snap, physics.NewForceDirectedLayout(physics.DefaultParams()), NewDefaultOptions("png"))
	assert.Error(t, err)
}
