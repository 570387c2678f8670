package msr

import (
	"github.com/pkg/errors"
)

// RegisterReader is the per-CPU register access PerfTimer needs; *Reader
// satisfies it.
type RegisterReader interface {
	Read(cpu int, msr int64) (uint64, error)
}

// PerfTimer snapshots the APERF/MPERF counter pair and the free-running time
// stamp counter around a measured region. It is a tagged variant rather than
// an interface: when disabled every method is a cheap branch on a bool, so
// the timed region pays no indirect call. The variant is selected once at
// thread-spawn time.
type PerfTimer struct {
	enabled bool
	reader  RegisterReader
	cpu     int
	now     func() uint64

	mperf   uint64
	aperf   uint64
	tsc     uint64
	running bool
}

// NewPerfTimer returns a timer bound to one logical CPU. With enabled false
// the timer is inert and its ratios read as zero. The now function supplies
// free-running counter reads so the package stays architecture-agnostic.
func NewPerfTimer(reader RegisterReader, cpu int, enabled bool, now func() uint64) *PerfTimer {
	return &PerfTimer{enabled: enabled, reader: reader, cpu: cpu, now: now}
}

// Enabled reports whether the timer takes real snapshots.
func (t *PerfTimer) Enabled() bool {
	return t.enabled
}

// Disable permanently switches the timer to the inert variant: subsequent
// Start/Stop calls are no-ops and both ratios read as zero. Used when a
// register read fails mid-run; the measurement protocol must keep going.
func (t *PerfTimer) Disable() {
	t.enabled = false
	t.running = false
}

// Start snapshots the counters. Must not be called inside the inner trial
// loop; it wraps the whole trial pass.
func (t *PerfTimer) Start() error {
	if !t.enabled {
		return nil
	}
	if t.running {
		return errors.New("perf timer started twice")
	}
	var err error
	if t.mperf, err = t.reader.Read(t.cpu, MPERF); err != nil {
		return err
	}
	if t.aperf, err = t.reader.Read(t.cpu, APERF); err != nil {
		return err
	}
	t.tsc = t.now()
	t.running = true
	return nil
}

// Stop converts the stored snapshots into deltas.
func (t *PerfTimer) Stop() error {
	if !t.enabled {
		return nil
	}
	if !t.running {
		return errors.New("perf timer stopped while not running")
	}
	mperf, err := t.reader.Read(t.cpu, MPERF)
	if err != nil {
		return err
	}
	aperf, err := t.reader.Read(t.cpu, APERF)
	if err != nil {
		return err
	}
	t.mperf = mperf - t.mperf
	t.aperf = aperf - t.aperf
	t.tsc = t.now() - t.tsc
	t.running = false
	return nil
}

// AMRatio returns aperf/mperf over the measured region: the ratio of actual
// to nominal core frequency. Below 1.0 means the core downclocked.
func (t *PerfTimer) AMRatio() float64 {
	if !t.enabled || t.mperf == 0 {
		return 0.0
	}
	return float64(t.aperf) / float64(t.mperf)
}

// MTRatio returns mperf/tsc over the measured region: the fraction of time
// the core was unhalted.
func (t *PerfTimer) MTRatio() float64 {
	if !t.enabled || t.tsc == 0 {
		return 0.0
	}
	return float64(t.mperf) / float64(t.tsc)
}
