package model

// Sample is one telemetry snapshot streamed to the display, one JSON line per tick.
// Field order matches the wire format the firmware parses.
type Sample struct {
	CPUPercent  float64 `json:"cpu_percent"`
	NetDownKB   uint64  `json:"net_down_kb"`
	MemPercent  float64 `json:"mem_percent"`
	DiskPercent uint64  `json:"disk_percent"`
}

// DiskUsage is a mounted volume as seen by the sampler.
type DiskUsage struct {
	Mountpoint string
	Total      uint64
	Available  uint64
}
