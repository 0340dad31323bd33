package sampler

import (
	"errors"
	"runtime"
	"testing"

	"github.com/VladimirGitsarev/Tinytosh/internal/model"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHost struct {
	times    []cpu.TimesStat
	calls    int
	used     uint64
	total    uint64
	memErr   error
	disks    []model.DiskUsage
	diskErr  error
	rx       []uint64
	rxPerTic uint64
	netErr   error
}

func (f *fakeHost) CPUTimes() (cpu.TimesStat, error) {
	if len(f.times) == 0 {
		return cpu.TimesStat{}, errors.New("no cpu")
	}
	t := f.times[min(f.calls, len(f.times)-1)]
	f.calls++
	return t, nil
}

func (f *fakeHost) Memory() (uint64, uint64, error) { return f.used, f.total, f.memErr }

func (f *fakeHost) Disks() ([]model.DiskUsage, error) { return f.disks, f.diskErr }

func (f *fakeHost) NetRecvBytes() ([]uint64, error) {
	if f.netErr != nil {
		return nil, f.netErr
	}
	out := append([]uint64(nil), f.rx...)
	for i := range f.rx {
		f.rx[i] += f.rxPerTic
	}
	return out, nil
}

func TestNetDownKB(t *testing.T) {
	assert.Equal(t, uint64(3), NetDownKB([]uint64{2048, 1024}))
	assert.Equal(t, uint64(0), NetDownKB(nil))
	assert.Equal(t, uint64(1), NetDownKB([]uint64{1023, 1}))
	assert.Equal(t, uint64(0), NetDownKB([]uint64{1023}))
}

func TestDiskPercent(t *testing.T) {
	tests := []struct {
		name  string
		disks []model.DiskUsage
		want  uint64
	}{
		{
			name:  "root volume",
			disks: []model.DiskUsage{{Mountpoint: "/", Total: 1000, Available: 250}},
			want:  75,
		},
		{
			name:  "windows system drive",
			disks: []model.DiskUsage{{Mountpoint: "C:", Total: 1000, Available: 250}},
			want:  75,
		},
		{
			name:  "windows drive nearly empty",
			disks: []model.DiskUsage{{Mountpoint: "C:", Total: 1000, Available: 999}},
			want:  0,
		},
		{
			name:  "root preferred over C",
			disks: []model.DiskUsage{{Mountpoint: "C:", Total: 100, Available: 0}, {Mountpoint: "/", Total: 100, Available: 50}},
			want:  50,
		},
		{
			name:  "no primary mount",
			disks: []model.DiskUsage{{Mountpoint: "/home", Total: 1000, Available: 0}, {Mountpoint: "D:", Total: 10, Available: 1}},
			want:  0,
		},
		{
			name:  "empty list",
			disks: nil,
			want:  0,
		},
		{
			name:  "zero total",
			disks: []model.DiskUsage{{Mountpoint: "/"}},
			want:  0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DiskPercent(tt.disks))
		})
	}
}

func TestMemPercentBounds(t *testing.T) {
	cases := [][2]uint64{{0, 0}, {0, 100}, {50, 100}, {100, 100}, {1 << 40, 1 << 41}, {7, 3}}
	for _, c := range cases {
		pct := MemPercent(c[0], c[1])
		assert.GreaterOrEqual(t, pct, 0.0)
		assert.LessOrEqual(t, pct, 100.0)
	}
	assert.InDelta(t, 50.0, MemPercent(50, 100), 1e-9)
}

func TestSampleCPUFromDelta(t *testing.T) {
	host := &fakeHost{times: []cpu.TimesStat{
		{User: 10, Idle: 90},
		{User: 40, Idle: 160},
	}}
	s := New(host)

	first := s.Sample()
	assert.Zero(t, first.CPUPercent, "no previous sample yet")

	second := s.Sample()
	// 100 units elapsed, 70 of them idle.
	assert.InDelta(t, 30.0, second.CPUPercent, 1e-9)
}

func TestSampleFallsBackToZero(t *testing.T) {
	fail := errors.New("boom")
	s := New(&fakeHost{memErr: fail, diskErr: fail, netErr: fail})

	got := s.Sample()
	assert.Equal(t, model.Sample{}, got)
}

func TestSampleComposesFields(t *testing.T) {
	s := New(&fakeHost{
		used:  25,
		total: 100,
		disks: []model.DiskUsage{{Mountpoint: "/", Total: 1000, Available: 250}},
		rx:    []uint64{2048, 1024},
	})

	got := s.Sample()
	assert.InDelta(t, 25.0, got.MemPercent, 1e-9)
	assert.Equal(t, uint64(75), got.DiskPercent)
	assert.Equal(t, uint64(3), got.NetDownKB)
}

func TestNetDownKBIsCumulative(t *testing.T) {
	host := &fakeHost{rx: []uint64{4096, 0}, rxPerTic: 512}
	s := New(host)

	prev := s.Sample().NetDownKB
	for i := 0; i < 10; i++ {
		cur := s.Sample().NetDownKB
		assert.GreaterOrEqual(t, cur, prev)
		prev = cur
	}
	// 4096 + 10*1024 bytes accumulated across both interfaces.
	assert.Equal(t, uint64(14), prev)
}

func TestGopsutilReaderOnHost(t *testing.T) {
	host := gopsutilReader{}

	used, total, err := host.Memory()
	require.NoError(t, err)
	assert.Greater(t, total, uint64(0))
	assert.LessOrEqual(t, used, total)

	_, err = host.NetRecvBytes()
	assert.NoError(t, err)

	_, err = host.CPUTimes()
	assert.NoError(t, err)

	disks, err := host.Disks()
	require.NoError(t, err)
	want := "/"
	if runtime.GOOS == "windows" {
		want = "C:"
	}
	var mounts []string
	for _, d := range disks {
		mounts = append(mounts, d.Mountpoint)
	}
	assert.Contains(t, mounts, want)
	assert.LessOrEqual(t, DiskPercent(disks), uint64(100))
}
