//go:build amd64

package vector

import "golang.org/x/sys/cpu"

func selectKernel() *Kernel {
	if cpu.X86.HasAVX2 {
		return &Kernel{name: "westmere-avx2", width: 32}
	}
	if cpu.X86.HasSSE42 {
		return &Kernel{name: "westmere-sse42", width: 16}
	}
	return &Kernel{name: "generic", width: ChunkSize}
}
