// Package models provides the core domain types for topoviz: devices and
// connections observed on a network, the snapshots that group them, and the
// positioned devices produced by the layout engine.
package models

import (
	"time"
)

// DeviceType classifies a device for shape selection and filtering.
type DeviceType string

const (
	DeviceRouter  DeviceType = "router"
	DeviceServer  DeviceType = "server"
	DeviceDesktop DeviceType = "desktop"
	DeviceMobile  DeviceType = "mobile"
	DeviceIoT     DeviceType = "iot"
	DeviceUnknown DeviceType = "unknown"
)

// ParseDeviceType maps a free-form type string onto the known enumeration,
// falling back to DeviceUnknown.
func ParseDeviceType(s string) DeviceType {
	switch DeviceType(s) {
	case DeviceRouter, DeviceServer, DeviceDesktop, DeviceMobile, DeviceIoT:
		return DeviceType(s)
	default:
		return DeviceUnknown
	}
}

// RiskLevel is the ordered device-threat classification.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Rank returns the ordering of a risk level. Unknown levels rank below low.
func (r RiskLevel) Rank() int {
	switch r {
	case RiskLow:
		return 1
	case RiskMedium:
		return 2
	case RiskHigh:
		return 3
	case RiskCritical:
		return 4
	default:
		return 0
	}
}

// ParseRiskLevel maps a string onto the known levels, falling back to RiskLow.
func ParseRiskLevel(s string) RiskLevel {
	switch RiskLevel(s) {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return RiskLevel(s)
	default:
		return RiskLow
	}
}

// Device is a node in the topology as reported by the capture daemon.
type Device struct {
	IP              string     `json:"ip" validate:"required"`
	Label           string     `json:"label"`
	Type            DeviceType `json:"type"`
	Risk            RiskLevel  `json:"risk_level"`
	ConnectionCount int        `json:"connection_count" validate:"gte=0"`
	TotalBytes      int64      `json:"total_bytes" validate:"gte=0"`
}

// Connection is an observed flow between two devices. Endpoints are not
// validated against the device inventory; a connection referencing an unknown
// IP exerts no spring force and is skipped at render time.
type Connection struct {
	SourceIP string `json:"source_ip" validate:"required"`
	TargetIP string `json:"target_ip" validate:"required"`
	Bytes    int64  `json:"bytes" validate:"gte=0"`
	Protocol string `json:"protocol"`
}

// Snapshot is one capture of the network: the device inventory, the
// connections seen between devices, and the viewport the layout targets.
// Snapshots are replaced wholesale when new data arrives; there is no
// incremental merge.
type Snapshot struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Devices     []Device     `json:"devices"`
	Connections []Connection `json:"connections"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	CapturedAt  time.Time    `json:"captured_at"`
}

// PositionedDevice is a device with its final layout coordinates.
type PositionedDevice struct {
	Device
	X float64 `json:"x"`
	Y float64 `json:"y"`
}
