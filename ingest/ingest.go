// Package ingest decodes capture-daemon exports into topology snapshots.
package ingest

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"

	"github.com/nettap/topoviz/models"
)

// DataProcessor defines the interface that all snapshot decoders implement.
type DataProcessor interface {
	// ProcessData takes raw data bytes and returns a topology snapshot.
	ProcessData(data []byte) (*models.Snapshot, error)

	// Name returns the name of the processor.
	Name() string
}

// JSONProcessor decodes the daemon's JSON snapshot export:
//
//	{
//	  "name": "...",
//	  "width": 800, "height": 600,
//	  "devices": [{"ip", "label", "type", "risk_level",
//	               "connection_count", "total_bytes"}],
//	  "connections": [{"source_ip", "target_ip", "bytes", "protocol"}]
//	}
type JSONProcessor struct {
	validate *validator.Validate
}

// NewJSONProcessor creates a JSON snapshot processor.
func NewJSONProcessor() *JSONProcessor {
	return &JSONProcessor{validate: validator.New()}
}

// Name returns the name of the processor.
func (p *JSONProcessor) Name() string {
	return "JSON Processor"
}

// snapshotData is the wire shape of a snapshot export. Device type and risk
// level arrive as free-form strings and are normalized onto the known
// enumerations.
type snapshotData struct {
	Name    string  `json:"name"`
	Width   float64 `json:"width"`
	Height  float64 `json:"height"`
	Devices []struct {
		IP              string `json:"ip" validate:"required"`
		Label           string `json:"label"`
		Type            string `json:"type"`
		RiskLevel       string `json:"risk_level"`
		ConnectionCount int    `json:"connection_count" validate:"gte=0"`
		TotalBytes      int64  `json:"total_bytes" validate:"gte=0"`
	} `json:"devices" validate:"dive"`
	Connections []struct {
		SourceIP string `json:"source_ip" validate:"required"`
		TargetIP string `json:"target_ip" validate:"required"`
		Bytes    int64  `json:"bytes" validate:"gte=0"`
		Protocol string `json:"protocol"`
	} `json:"connections" validate:"dive"`
}

// ProcessData decodes and validates a JSON snapshot export.
func (p *JSONProcessor) ProcessData(data []byte) (*models.Snapshot, error) {
	var raw snapshotData
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("error parsing snapshot JSON: %w", err)
	}
	if err := p.validate.Struct(&raw); err != nil {
		return nil, fmt.Errorf("invalid snapshot: %w", err)
	}

	name := raw.Name
	if name == "" {
		name = "Snapshot Import"
	}
	snap := models.NewSnapshot(name)
	snap.SetDimensions(raw.Width, raw.Height)

	for _, d := range raw.Devices {
		label := d.Label
		if label == "" {
			label = d.IP
		}
		snap.AddDevice(models.Device{
			IP:              d.IP,
			Label:           label,
			Type:            models.ParseDeviceType(d.Type),
			Risk:            models.ParseRiskLevel(d.RiskLevel),
			ConnectionCount: d.ConnectionCount,
			TotalBytes:      d.TotalBytes,
		})
	}
	for _, c := range raw.Connections {
		snap.AddConnection(models.Connection{
			SourceIP: c.SourceIP,
			TargetIP: c.TargetIP,
			Bytes:    c.Bytes,
			Protocol: c.Protocol,
		})
	}

	// Older daemon exports omit per-device counts; reconstruct them from
	// the connection list so initial placement still reflects connectivity.
	snap.DeriveConnectionCounts()

	return snap, nil
}
