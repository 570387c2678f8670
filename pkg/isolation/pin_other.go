//go:build !linux

package isolation

import "github.com/pkg/errors"

// PinToCPU is unsupported off Linux; callers treat the failure as
// best-effort and continue unpinned.
func PinToCPU(cpuID int) error {
	return errors.Errorf("CPU pinning is not supported on this platform (requested CPU %d)", cpuID)
}
