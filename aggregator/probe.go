package aggregator

import (
	"fmt"
	"math"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shirou/gopsutil/v4/mem"
)

// Reserve ratio bounds for NewRuntimeProbe.
const (
	MinReserveRatio = 0.1
	MaxReserveRatio = 0.5
)

// MemoryProbe reports whether free memory has fallen to the reserve.
type MemoryProbe interface {
	Exceeded() bool
}

// ProbeFunc adapts a function to MemoryProbe.
type ProbeFunc func() bool

// Exceeded calls f.
func (f ProbeFunc) Exceeded() bool { return f() }

// NeverExceeded is a probe that never reports pressure.
var NeverExceeded MemoryProbe = ProbeFunc(func() bool { return false })

// Sample is one memory reading: bytes in use against the ceiling.
type Sample struct {
	Used  uint64
	Limit uint64
}

// Free returns the bytes left under the ceiling.
func (s Sample) Free() uint64 {
	if s.Used >= s.Limit {
		return 0
	}
	return s.Limit - s.Used
}

func (s Sample) String() string {
	return fmt.Sprintf("used %d of %d bytes", s.Used, s.Limit)
}

// sampler is implemented by probes that can describe their last reading.
type sampler interface {
	LastSample() Sample
}

// RuntimeProbe compares memory in use with a ceiling. With GOMEMLIMIT set
// the ceiling is that limit and usage is the Go runtime's own memory;
// otherwise the ceiling is system memory and usage is everything not
// available to new allocations.
type RuntimeProbe struct {
	ratio float64
	read  func() (Sample, error)

	mu   sync.Mutex
	last Sample
}

// NewRuntimeProbe creates a probe keeping ratio of the ceiling free.
// ratio is clamped to [MinReserveRatio, MaxReserveRatio].
func NewRuntimeProbe(ratio float64) *RuntimeProbe {
	return newRuntimeProbe(ratio, readMemory)
}

func newRuntimeProbe(ratio float64, read func() (Sample, error)) *RuntimeProbe {
	return &RuntimeProbe{ratio: clampRatio(ratio), read: read}
}

func clampRatio(ratio float64) float64 {
	return math.Min(math.Max(ratio, MinReserveRatio), MaxReserveRatio)
}

// Ratio returns the effective reserve ratio.
func (p *RuntimeProbe) Ratio() float64 { return p.ratio }

// Exceeded samples memory and reports whether free memory is at or below
// the reserve. A failed reading never reports pressure.
func (p *RuntimeProbe) Exceeded() bool {
	s, err := p.read()
	if err != nil || s.Limit == 0 {
		return false
	}
	p.mu.Lock()
	p.last = s
	p.mu.Unlock()
	reserve := uint64(math.Round(p.ratio * float64(s.Limit)))
	return s.Free() <= reserve
}

// LastSample returns the reading taken by the last successful Exceeded call.
func (p *RuntimeProbe) LastSample() Sample {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

func readMemory() (Sample, error) {
	if limit := debug.SetMemoryLimit(-1); limit != math.MaxInt64 {
		var ms runtime.MemStats
		runtime.ReadMemStats(&ms)
		return Sample{Used: ms.Sys - ms.HeapReleased, Limit: uint64(limit)}, nil
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		return Sample{}, err
	}
	if vm.Available > vm.Total {
		return Sample{Limit: vm.Total}, nil
	}
	return Sample{Used: vm.Total - vm.Available, Limit: vm.Total}, nil
}
