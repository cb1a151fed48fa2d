// Package render turns positioned topology snapshots into SVG, JSON and DOT
// output.
package render

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/nettap/topoviz/models"
	"github.com/nettap/topoviz/physics"
	"github.com/nettap/topoviz/style"
)

// Options defines rendering configuration.
type Options struct {
	Format     string  // Output format (svg, json, dot)
	Width      float64 // Width of the output viewport
	Height     float64 // Height of the output viewport
	Background string  // Background color
	NodeRadius float64 // Node radius in pixels
	FontSize   float64 // Font size for labels
	ShowLabels bool    // Draw device labels
	MaxLabel   int     // Label budget in runes before truncation
	Timestamp  bool    // Include render timestamp
}

// NewDefaultOptions creates a default set of output options.
func NewDefaultOptions(format string) *Options {
	return &Options{
		Format:     format,
		Width:      models.DefaultWidth,
		Height:     models.DefaultHeight,
		Background: "#0d1117",
		NodeRadius: 18,
		FontSize:   10,
		ShowLabels: true,
		MaxLabel:   style.DefaultMaxLabel,
		Timestamp:  false,
	}
}

// Renderer is implemented by all rendering backends.
type Renderer interface {
	// Render draws the positioned devices and their connections.
	Render(devices []models.PositionedDevice, connections []models.Connection, options *Options) ([]byte, error)

	// Name returns the name of the renderer.
	Name() string
}

// GetRenderer returns the renderer for a format.
func GetRenderer(format string) (Renderer, error) {
	switch strings.ToLower(format) {
	case "svg":
		return &SVGRenderer{}, nil
	case "json":
		return &JSONRenderer{}, nil
	case "dot":
		return &DOTRenderer{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s", format)
	}
}

// Generate lays out a snapshot and renders it in one pass.
func Generate(snap *models.Snapshot, algo physics.LayoutAlgorithm, options *Options) ([]byte, error) {
	if options.Width > 0 && options.Height > 0 {
		snap.SetDimensions(options.Width, options.Height)
	}
	options.Width = snap.Width
	options.Height = snap.Height

	positioned := physics.Run(algo, snap)

	renderer, err := GetRenderer(options.Format)
	if err != nil {
		return nil, err
	}
	return renderer.Render(positioned, snap.Connections, options)
}

// resolveEdges pairs each connection with the positioned endpoints it
// references. Connections naming unknown devices are dropped silently;
// partial data between device and connection captures is expected.
func resolveEdges(devices []models.PositionedDevice, connections []models.Connection) []resolvedEdge {
	index := make(map[string]int, len(devices))
	for i := range devices {
		index[devices[i].IP] = i
	}
	edges := make([]resolvedEdge, 0, len(connections))
	for _, c := range connections {
		a, okA := index[c.SourceIP]
		b, okB := index[c.TargetIP]
		if !okA || !okB {
			continue
		}
		edges = append(edges, resolvedEdge{conn: c, source: &devices[a], target: &devices[b]})
	}
	return edges
}

type resolvedEdge struct {
	conn   models.Connection
	source *models.PositionedDevice
	target *models.PositionedDevice
}

// maxBytes returns the largest byte count across the connection set.
func maxBytes(connections []models.Connection) int64 {
	var max int64
	for _, c := range connections {
		if c.Bytes > max {
			max = c.Bytes
		}
	}
	return max
}

// SVGRenderer outputs SVG.
type SVGRenderer struct{}

// Name returns the name of the renderer.
func (r *SVGRenderer) Name() string {
	return "SVG Renderer"
}

// Render creates an SVG drawing of the topology. Edges are drawn first with
// protocol-colored, byte-weighted strokes; nodes are drawn on top as
// risk-colored hexagons (routers) or circles, each carrying a data-ip
// attribute so a host page can attach click handlers.
func (r *SVGRenderer) Render(devices []models.PositionedDevice, connections []models.Connection, options *Options) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>
<svg width="%g" height="%g" viewBox="0 0 %g %g" xmlns="http://www.w3.org/2000/svg">
<rect width="100%%" height="100%%" fill="%s"/>
`, options.Width, options.Height, options.Width, options.Height, options.Background))

	top := maxBytes(connections)
	for _, e := range resolveEdges(devices, connections) {
		buf.WriteString(fmt.Sprintf(`<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f" stroke-opacity="0.6"/>
`, e.source.X, e.source.Y, e.target.X, e.target.Y,
			style.ProtocolColor(e.conn.Protocol),
			style.ConnectionWidth(e.conn.Bytes, top)))
	}

	for i := range devices {
		d := &devices[i]
		fill := style.RiskColor(d.Risk)

		buf.WriteString(fmt.Sprintf(`<g data-ip="%s">
`, d.IP))
		if d.Type == models.DeviceRouter {
			buf.WriteString(fmt.Sprintf(`<polygon points="%s" transform="translate(%.2f,%.2f)" fill="%s" stroke="rgba(0,0,0,0.4)" stroke-width="1"/>
`, style.HexagonPoints(options.NodeRadius), d.X, d.Y, fill))
		} else {
			buf.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="rgba(0,0,0,0.4)" stroke-width="1"/>
`, d.X, d.Y, options.NodeRadius, fill))
		}
		if options.ShowLabels && d.Label != "" {
			label := style.TruncateLabel(d.Label, options.MaxLabel)
			buf.WriteString(fmt.Sprintf(`<text x="%.2f" y="%.2f" font-family="sans-serif" font-size="%g" fill="#c9d1d9" text-anchor="middle">%s</text>
`, d.X, d.Y+options.NodeRadius+options.FontSize+2, options.FontSize, escapeXML(label)))
		}
		buf.WriteString("</g>\n")
	}

	if options.Timestamp {
		buf.WriteString(fmt.Sprintf(`<text x="5" y="%g" font-family="sans-serif" font-size="8" fill="%s">%s</text>
`, options.Height-5, style.FallbackColor, time.Now().Format("2006-01-02 15:04:05")))
	}

	buf.WriteString("</svg>")
	return buf.Bytes(), nil
}

// JSONRenderer outputs layout data for machine consumption.
type JSONRenderer struct{}

// Name returns the name of the renderer.
func (r *JSONRenderer) Name() string {
	return "JSON Renderer"
}

// Render emits the positioned devices and resolved edges together with the
// derived styling attributes, ready for a client-side canvas to draw.
func (r *JSONRenderer) Render(devices []models.PositionedDevice, connections []models.Connection, options *Options) ([]byte, error) {
	type jsonEdge struct {
		SourceIP string  `json:"source_ip"`
		TargetIP string  `json:"target_ip"`
		Bytes    int64   `json:"bytes"`
		Protocol string  `json:"protocol"`
		Width    float64 `json:"width"`
		Color    string  `json:"color"`
	}
	type jsonDevice struct {
		models.PositionedDevice
		Color string `json:"color"`
		Shape string `json:"shape"`
	}
	type jsonLayout struct {
		Devices  []jsonDevice   `json:"devices"`
		Edges    []jsonEdge     `json:"edges"`
		Metadata map[string]any `json:"metadata"`
	}

	out := jsonLayout{
		Devices: make([]jsonDevice, 0, len(devices)),
		Edges:   make([]jsonEdge, 0, len(connections)),
		Metadata: map[string]any{
			"width":       options.Width,
			"height":      options.Height,
			"deviceCount": len(devices),
		},
	}

	for _, d := range devices {
		shape := "circle"
		if d.Type == models.DeviceRouter {
			shape = "hexagon"
		}
		out.Devices = append(out.Devices, jsonDevice{
			PositionedDevice: d,
			Color:            style.RiskColor(d.Risk),
			Shape:            shape,
		})
	}

	top := maxBytes(connections)
	for _, e := range resolveEdges(devices, connections) {
		out.Edges = append(out.Edges, jsonEdge{
			SourceIP: e.conn.SourceIP,
			TargetIP: e.conn.TargetIP,
			Bytes:    e.conn.Bytes,
			Protocol: e.conn.Protocol,
			Width:    style.ConnectionWidth(e.conn.Bytes, top),
			Color:    style.ProtocolColor(e.conn.Protocol),
		})
	}

	return json.MarshalIndent(out, "", "  ")
}

// DOTRenderer outputs Graphviz DOT.
type DOTRenderer struct{}

// Name returns the name of the renderer.
func (r *DOTRenderer) Name() string {
	return "DOT Renderer"
}

// Render creates a DOT representation of the topology with pinned positions,
// risk-colored nodes and byte-weighted edges.
func (r *DOTRenderer) Render(devices []models.PositionedDevice, connections []models.Connection, options *Options) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("graph topology {\n")
	buf.WriteString(fmt.Sprintf("  graph [bgcolor=\"%s\"];\n", options.Background))
	buf.WriteString(fmt.Sprintf("  node [fontname=\"Arial\", fontsize=%g, style=filled];\n", options.FontSize))

	for _, d := range devices {
		shape := "circle"
		if d.Type == models.DeviceRouter {
			shape = "hexagon"
		}
		buf.WriteString(fmt.Sprintf("  \"%s\" [label=\"%s\", shape=%s, fillcolor=\"%s\", pos=\"%.2f,%.2f!\"];\n",
			d.IP, style.TruncateLabel(d.Label, options.MaxLabel), shape,
			style.RiskColor(d.Risk), d.X/72.0, d.Y/72.0))
	}

	top := maxBytes(connections)
	for _, e := range resolveEdges(devices, connections) {
		buf.WriteString(fmt.Sprintf("  \"%s\" -- \"%s\" [color=\"%s\", penwidth=%.2f, label=\"%s\"];\n",
			e.conn.SourceIP, e.conn.TargetIP,
			style.ProtocolColor(e.conn.Protocol),
			style.ConnectionWidth(e.conn.Bytes, top),
			e.conn.Protocol))
	}

	buf.WriteString("}\n")
	return buf.Bytes(), nil
}

// escapeXML escapes the characters that terminate SVG text content.
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
