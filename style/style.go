// Package style derives rendering attributes from topology data: edge stroke
// widths from byte volume, colors from protocol and risk level, truncated
// labels and node geometry. Everything here is a pure function over its
// arguments.
package style

import (
	"fmt"
	"math"
	"strings"

	"github.com/nettap/topoviz/models"
)

// FallbackColor is used for unrecognized protocols and risk levels.
const FallbackColor = "#8b949e"

// DefaultMaxLabel is the on-canvas label budget in runes.
const DefaultMaxLabel = 14

// protocolColors maps protocol labels to stroke colors. Lookup is exact
// string match; both case variants are pre-populated for the common
// protocols rather than normalizing at lookup time.
var protocolColors = map[string]string{
	"TCP":   "#58a6ff",
	"tcp":   "#58a6ff",
	"UDP":   "#bc8cff",
	"udp":   "#bc8cff",
	"HTTP":  "#7ee787",
	"http":  "#7ee787",
	"HTTPS": "#3fb950",
	"https": "#3fb950",
	"DNS":   "#d2a8ff",
	"dns":   "#d2a8ff",
	"TLS":   "#79c0ff",
	"tls":   "#79c0ff",
	"SSH":   "#ff7b72",
	"ssh":   "#ff7b72",
	"ICMP":  "#ffa657",
	"icmp":  "#ffa657",
	"ARP":   "#e3b341",
	"arp":   "#e3b341",
	"QUIC":  "#56d364",
	"quic":  "#56d364",
}

// riskColors maps risk levels to node fill colors.
var riskColors = map[models.RiskLevel]string{
	models.RiskLow:      "#3fb950",
	models.RiskMedium:   "#d29922",
	models.RiskHigh:     "#db6d28",
	models.RiskCritical: "#f85149",
}

// ConnectionWidth maps a connection's byte count onto a stroke width in
// [1, 4] by linear interpolation against the snapshot-wide maximum. A
// non-positive maximum yields the minimum width.
func ConnectionWidth(bytes, maxBytes int64) float64 {
	if maxBytes <= 0 {
		return 1
	}
	return 1 + float64(bytes)/float64(maxBytes)*3
}

// ProtocolColor returns the stroke color for a protocol label, or the gray
// fallback for unrecognized protocols.
func ProtocolColor(protocol string) string {
	if c, ok := protocolColors[protocol]; ok {
		return c
	}
	return FallbackColor
}

// RiskColor returns the fill color for a risk level, or the gray fallback.
func RiskColor(level models.RiskLevel) string {
	if c, ok := riskColors[level]; ok {
		return c
	}
	return FallbackColor
}

// TruncateLabel bounds a label to max runes, replacing the tail with a
// single ellipsis rune when it exceeds the budget.
func TruncateLabel(label string, max int) string {
	if max <= 0 {
		return label
	}
	runes := []rune(label)
	if len(runes) <= max {
		return label
	}
	return string(runes[:max-1]) + "⋯"
}

// HexagonPoints returns the SVG points attribute for a hexagon of the given
// radius centered on the origin: six vertices at 60-degree spacing, offset
// by -30 degrees so the hexagon rests on a flat top.
func HexagonPoints(radius float64) string {
	points := make([]string, 0, 6)
	for i := 0; i < 6; i++ {
		angle := (60*float64(i) - 30) * math.Pi / 180
		x := radius * math.Cos(angle)
		y := radius * math.Sin(angle)
		points = append(points, fmt.Sprintf("%.2f,%.2f", x, y))
	}
	return strings.Join(points, " ")
}
