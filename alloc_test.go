package canard

import "testing"

// arenaAllocator is a minimal Allocator for tests: it hands out fresh slices
// from the Go heap but tracks bytes-in-use and allocation counts so tests
// can assert the OOM and rollback invariants.
type arenaAllocator struct {
	limit          int // 0 means unlimited
	bytesInUse     int
	numAllocations int
}

func (a *arenaAllocator) Allocate(size int) []byte {
	if a.limit > 0 && a.bytesInUse+size > a.limit {
		return nil
	}
	a.bytesInUse += size
	a.numAllocations++
	return make([]byte, size)
}

func (a *arenaAllocator) Deallocate(buf []byte) {
	if buf == nil {
		return
	}
	a.bytesInUse -= cap(buf)
	a.numAllocations--
}

func TestArenaAllocatorBalances(t *testing.T) {
	a := &arenaAllocator{}
	b1 := a.Allocate(10)
	b2 := a.Allocate(20)
	if a.numAllocations != 2 || a.bytesInUse != 30 {
		t.Fatalf("got allocations=%d bytesInUse=%d", a.numAllocations, a.bytesInUse)
	}
	a.Deallocate(b1)
	a.Deallocate(b2)
	if a.numAllocations != 0 || a.bytesInUse != 0 {
		t.Fatalf("allocator did not balance: allocations=%d bytesInUse=%d", a.numAllocations, a.bytesInUse)
	}
}
