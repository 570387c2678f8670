package workloads

import (
	"math"
	"math/bits"
)

// Sinks keep the optimizer from discarding the loop bodies. Reads and writes
// of package-level variables are observable effects the compiler must keep.
var (
	sinkU64 uint64
	sinkF64 float64
)

func nopLoop(iters uint64) {
	acc := sinkU64
	for i := uint64(0); i < iters; i++ {
		acc++
	}
	sinkU64 = acc
}

func scalarIAdd(iters uint64) {
	// One serially dependent add per iteration: latency-bound.
	acc := sinkU64
	for i := uint64(0); i < iters; i++ {
		acc += 3
	}
	sinkU64 = acc
}

func scalarIAddParallel(iters uint64) {
	// Four independent chains per iteration: throughput-bound.
	a, b, c, d := sinkU64, sinkU64+1, sinkU64+2, sinkU64+3
	for i := uint64(0); i < iters; i++ {
		a += 3
		b += 5
		c += 7
		d += 11
	}
	sinkU64 = a ^ b ^ c ^ d
}

func scalarIMul(iters uint64) {
	acc := sinkU64 | 1
	for i := uint64(0); i < iters; i++ {
		acc *= 0x9E3779B97F4A7C15
	}
	sinkU64 = acc
}

func scalarPopcnt(iters uint64) {
	acc := sinkU64
	for i := uint64(0); i < iters; i++ {
		acc += uint64(bits.OnesCount64(acc | 1))
	}
	sinkU64 = acc
}

func scalarFMA(iters uint64) {
	// Serially dependent fused multiply-add chain.
	x := sinkF64 + 0.5
	for i := uint64(0); i < iters; i++ {
		x = math.FMA(x, 0.999999999, 1e-9)
	}
	sinkF64 = x
}

func scalarFMAParallel(iters uint64) {
	x, y := sinkF64+0.25, sinkF64+0.75
	for i := uint64(0); i < iters; i++ {
		x = math.FMA(x, 0.999999999, 1e-9)
		y = math.FMA(y, 0.999999998, 2e-9)
	}
	sinkF64 = x + y
}

func movChain(iters uint64) {
	a, b, c, d := sinkU64, sinkU64+1, sinkU64+2, sinkU64+3
	for i := uint64(0); i < iters; i++ {
		a, b, c, d = d, a, b, c
	}
	sinkU64 = a + b + c + d
}

// dirtyBuf is wide enough that the compiler copies it with vector moves.
var dirtyBuf [64]float64

// DirtyUpper deliberately leaves vector architectural state dirty before a
// trial, to probe whether implicit state transitions affect the timed
// workload. Best-effort: the bulk copy is lowered to wide register moves on
// amd64. It is a pre-trial side effect only and takes no part in the timed
// protocol.
func DirtyUpper() {
	var scratch [64]float64
	copy(scratch[:], dirtyBuf[:])
	dirtyBuf[0] = scratch[63] + 1
}
