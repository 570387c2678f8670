// Package msr reads model-specific registers through the Linux msr driver.
// The harness uses the free-running APERF/MPERF counter pair to derive
// effective-frequency ratios alongside each measurement. Unreadable registers
// degrade the run to "feature disabled"; they are never an error.
package msr

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/pkg/errors"
)

// Free-running power-state counters, Intel SDM Vol4.
const (
	MPERF int64 = 0xE7
	APERF int64 = 0xE8
)

// Reader reads MSRs per logical CPU. It owns a lazily grown cache of open
// register-file handles, guarded by a mutex since distinct measurement
// threads query distinct CPU ids. Callers must not read MSRs inside the
// nanosecond-critical inner trial loop: a read may block briefly on lock
// contention and always pays a syscall.
type Reader struct {
	mu    sync.Mutex
	files map[int]*os.File
}

// NewReader returns an empty reader; handles open on first use.
func NewReader() *Reader {
	return &Reader{files: map[int]*os.File{}}
}

func (r *Reader) file(cpu int) (*os.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if f, ok := r.files[cpu]; ok {
		return f, nil
	}
	f, err := os.Open(fmt.Sprintf("/dev/cpu/%d/msr", cpu))
	if err != nil {
		return nil, errors.Wrapf(err, "could not open msr device for CPU %d", cpu)
	}
	r.files[cpu] = f
	return f, nil
}

// Read returns the value of the given register on the given logical CPU.
func (r *Reader) Read(cpu int, msr int64) (uint64, error) {
	f, err := r.file(cpu)
	if err != nil {
		return 0, err
	}

	buf := make([]byte, 8)
	if _, err := f.ReadAt(buf, msr); err != nil {
		return 0, errors.Wrapf(err, "could not read msr 0x%x on CPU %d", msr, cpu)
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// Supported probes whether APERF and MPERF reads work at all. Probed once at
// startup; requires the msr module and root.
func (r *Reader) Supported() bool {
	if _, err := r.Read(0, MPERF); err != nil {
		return false
	}
	if _, err := r.Read(0, APERF); err != nil {
		return false
	}
	return true
}

// Close releases all cached handles.
func (r *Reader) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for cpu, f := range r.files {
		f.Close()
		delete(r.files, cpu)
	}
}
