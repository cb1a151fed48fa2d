package models

// DeviceFilter is a predicate used to select devices from a snapshot.
type DeviceFilter func(d *Device) bool

// FindDeviceByIP returns the device with the given IP, or nil if the
// snapshot does not contain it.
func (s *Snapshot) FindDeviceByIP(ip string) *Device {
	for i := range s.Devices {
		if s.Devices[i].IP == ip {
			return &s.Devices[i]
		}
	}
	return nil
}

// HasDevice reports whether the snapshot contains a device with the given IP.
func (s *Snapshot) HasDevice(ip string) bool {
	return s.FindDeviceByIP(ip) != nil
}

// ConnectionsFor returns every connection that has the given IP as either
// endpoint.
func (s *Snapshot) ConnectionsFor(ip string) []Connection {
	var result []Connection
	for _, c := range s.Connections {
		if c.SourceIP == ip || c.TargetIP == ip {
			result = append(result, c)
		}
	}
	return result
}

// ResolvedConnections returns the connections whose endpoints both reference
// known devices. Unresolved connections are dropped silently; partial or
// stale data between device and connection captures is expected.
func (s *Snapshot) ResolvedConnections() []Connection {
	known := make(map[string]struct{}, len(s.Devices))
	for i := range s.Devices {
		known[s.Devices[i].IP] = struct{}{}
	}
	result := make([]Connection, 0, len(s.Connections))
	for _, c := range s.Connections {
		if _, ok := known[c.SourceIP]; !ok {
			continue
		}
		if _, ok := known[c.TargetIP]; !ok {
			continue
		}
		result = append(result, c)
	}
	return result
}

// FilterDevices returns the devices matching the provided filter.
func (s *Snapshot) FilterDevices(filter DeviceFilter) []Device {
	var result []Device
	for i := range s.Devices {
		if filter(&s.Devices[i]) {
			result = append(result, s.Devices[i])
		}
	}
	return result
}

// DevicesByType returns all devices of the given type.
func (s *Snapshot) DevicesByType(t DeviceType) []Device {
	return s.FilterDevices(func(d *Device) bool { return d.Type == t })
}

// DevicesAtOrAbove returns all devices whose risk level ranks at or above
// the given level.
func (s *Snapshot) DevicesAtOrAbove(level RiskLevel) []Device {
	return s.FilterDevices(func(d *Device) bool { return d.Risk.Rank() >= level.Rank() })
}

// MaxConnectionBytes returns the largest byte count across the snapshot's
// connections, used to scale edge stroke widths. Returns 0 for an empty set.
func (s *Snapshot) MaxConnectionBytes() int64 {
	var max int64
	for _, c := range s.Connections {
		if c.Bytes > max {
			max = c.Bytes
		}
	}
	return max
}

// DeriveConnectionCounts fills in per-device connection counts from the
// connection list when the capture daemon did not supply them. Devices with
// a non-zero count are left untouched.
func (s *Snapshot) DeriveConnectionCounts() {
	counts := make(map[string]int, len(s.Devices))
	for _, c := range s.Connections {
		counts[c.SourceIP]++
		counts[c.TargetIP]++
	}
	for i := range s.Devices {
		if s.Devices[i].ConnectionCount == 0 {
			s.Devices[i].ConnectionCount = counts[s.Devices[i].IP]
		}
	}
}
