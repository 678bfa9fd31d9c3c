package ml

import (
	"fmt"

	"github.com/klauspost/cpuid/v2"
	torch "github.com/wangkuiyi/gotorch"
	"github.com/wangkuiyi/gotorch/nn/initializer"
)

// Context is the execution context threaded through model construction and
// training instead of a process-wide device.
type Context struct {
	Device torch.Device
	CUDA   bool
	Seed   int64
}

// NewContext picks CUDA when libtorch can see a GPU and falls back to the
// CPU otherwise. Parameter initialization is seeded with seed.
func NewContext(seed int64) Context {
	initializer.ManualSeed(seed)
	if torch.IsCUDAAvailable() {
		return Context{Device: torch.NewDevice("cuda"), CUDA: true, Seed: seed}
	}
	return Context{Device: torch.NewDevice("cpu"), Seed: seed}
}

// CPUContext always runs on the CPU.
func CPUContext(seed int64) Context {
	initializer.ManualSeed(seed)
	return Context{Device: torch.NewDevice("cpu"), Seed: seed}
}

func (c Context) Describe() string {
	if c.CUDA {
		return fmt.Sprintf("device=cuda seed=%d", c.Seed)
	}
	simd := "none"
	switch {
	case cpuid.CPU.Supports(cpuid.AVX512F, cpuid.AVX512DQ):
		simd = "avx512"
	case cpuid.CPU.Supports(cpuid.AVX2):
		simd = "avx2"
	}
	return fmt.Sprintf("device=cpu cpu=%q cores=%d threads=%d simd=%s seed=%d",
		cpuid.CPU.BrandName, cpuid.CPU.PhysicalCores, cpuid.CPU.LogicalCores, simd, c.Seed)
}
