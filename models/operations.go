package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultWidth and DefaultHeight are the viewport dimensions used when a
// snapshot does not carry its own.
const (
	DefaultWidth  = 800.0
	DefaultHeight = 600.0
)

// NewSnapshot creates an empty snapshot with a unique ID, default viewport
// dimensions and the current capture time.
func NewSnapshot(name string) *Snapshot {
	return &Snapshot{
		ID:          uuid.New().String(),
		Name:        name,
		Devices:     []Device{},
		Connections: []Connection{},
		Width:       DefaultWidth,
		Height:      DefaultHeight,
		CapturedAt:  time.Now(),
	}
}

// AddDevice appends a device to the snapshot.
func (s *Snapshot) AddDevice(d Device) {
	s.Devices = append(s.Devices, d)
}

// AddConnection appends a connection to the snapshot. Endpoints are not
// checked here; unresolved connections are tolerated by design.
func (s *Snapshot) AddConnection(c Connection) {
	s.Connections = append(s.Connections, c)
}

// SetDimensions sets the viewport the layout targets. Non-positive values
// fall back to the defaults.
func (s *Snapshot) SetDimensions(width, height float64) {
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	s.Width = width
	s.Height = height
}
