package sampler

import (
	"errors"
	"runtime"

	"github.com/VladimirGitsarev/Tinytosh/internal/model"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

var errNoCPU = errors.New("no cpu times reported")

// Primary volumes probed in order. Mountpoint is the label gopsutil reports
// for the volume; path is what disk.Usage is called with. On Windows "/"
// resolves to the current drive, so each entry is only probed on its OS.
var primaryMounts = []struct {
	mountpoint, path string
	windows          bool
}{
	{"/", "/", false},
	{"C:", `C:\`, true},
}

// HostReader exposes the raw host counters a Sample is built from.
type HostReader interface {
	CPUTimes() (cpu.TimesStat, error)
	Memory() (used, total uint64, err error)
	Disks() ([]model.DiskUsage, error)
	NetRecvBytes() ([]uint64, error)
}

// Sampler builds Samples from a HostReader. Not safe for concurrent use;
// the bridge loop is its only caller.
type Sampler struct {
	host HostReader

	prevTotal float64
	prevIdle  float64
}

func New(host HostReader) *Sampler {
	if host == nil {
		host = gopsutilReader{}
	}
	return &Sampler{host: host}
}

// Sample reads every counter and never fails: a counter that cannot be read
// leaves its field at zero.
func (s *Sampler) Sample() model.Sample {
	out := model.Sample{CPUPercent: s.cpuPercent()}

	if used, total, err := s.host.Memory(); err == nil {
		out.MemPercent = MemPercent(used, total)
	}
	if disks, err := s.host.Disks(); err == nil {
		out.DiskPercent = DiskPercent(disks)
	}
	if rx, err := s.host.NetRecvBytes(); err == nil {
		out.NetDownKB = NetDownKB(rx)
	}
	return out
}

// CPU percentage from times delta.
func (s *Sampler) cpuPercent() (total float64) {
	cur, err := s.host.CPUTimes()
	if err != nil {
		return 0
	}
	curTotal := cur.Total()
	curIdle := cur.Idle + cur.Iowait
	if s.prevTotal > 0 {
		dt := curTotal - s.prevTotal
		di := curIdle - s.prevIdle
		if dt > 0 {
			total = 100 * (1 - di/dt)
		}
	}
	s.prevTotal, s.prevIdle = curTotal, curIdle
	return clamp(total)
}

// MemPercent is used/total as a percentage.
func MemPercent(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return clamp(float64(used) / float64(total) * 100)
}

// DiskPercent returns the integer usage of the primary volume, or 0 when
// neither "/" nor "C:" is mounted. Other disks are never substituted.
func DiskPercent(disks []model.DiskUsage) uint64 {
	for _, mount := range primaryMounts {
		for _, d := range disks {
			if d.Mountpoint != mount.mountpoint {
				continue
			}
			if d.Total == 0 || d.Available > d.Total {
				return 0
			}
			return (d.Total - d.Available) * 100 / d.Total
		}
	}
	return 0
}

// NetDownKB sums bytes received on every interface since boot, in whole KiB.
// The value is cumulative, not a per-tick rate.
func NetDownKB(recv []uint64) uint64 {
	var sum uint64
	for _, b := range recv {
		sum += b
	}
	return sum / 1024
}

func clamp(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

type gopsutilReader struct{}

func (gopsutilReader) CPUTimes() (cpu.TimesStat, error) {
	times, err := cpu.Times(false)
	if err != nil {
		return cpu.TimesStat{}, err
	}
	if len(times) == 0 {
		return cpu.TimesStat{}, errNoCPU
	}
	return times[0], nil
}

func (gopsutilReader) Memory() (uint64, uint64, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, err
	}
	return vm.Used, vm.Total, nil
}

// Disks asks for the primary volumes directly rather than walking
// disk.Partitions, which hides nodev roots such as overlayfs. A volume whose
// usage cannot be read is treated as absent.
func (gopsutilReader) Disks() ([]model.DiskUsage, error) {
	var out []model.DiskUsage
	for _, m := range primaryMounts {
		if m.windows != (runtime.GOOS == "windows") {
			continue
		}
		u, err := disk.Usage(m.path)
		if err != nil {
			continue
		}
		out = append(out, model.DiskUsage{Mountpoint: m.mountpoint, Total: u.Total, Available: u.Free})
	}
	return out, nil
}

func (gopsutilReader) NetRecvBytes() ([]uint64, error) {
	counters, err := net.IOCounters(true)
	if err != nil {
		return nil, err
	}
	rx := make([]uint64, 0, len(counters))
	for _, c := range counters {
		rx = append(rx, c.BytesRecv)
	}
	return rx, nil
}
