// Package uuid generates the random run identifier stamped into the logs of
// each harness invocation, so results from interleaved runs on a shared
// machine can be told apart.
package uuid

import (
	"crypto/rand"
	"fmt"
)

// New returns a fresh random identifier in XXXXXXXX-XXXX-... format, one per
// process invocation.
func New() string {
	uuid := [16]byte{}
	_, err := rand.Read(uuid[:])
	if err != nil {
		panic("cannot generate uuid using rand")
	}
	return fmt.Sprintf("%x-%x-%x-%x-%x", uuid[0:4], uuid[4:6], uuid[6:8], uuid[8:10], uuid[10:])
}
