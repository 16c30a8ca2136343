// Package pool provides bucketed sync.Pool instances for sample plane
// buffers. Buffers are organized by size class to minimize waste.
package pool

import "sync"

// Size classes for bucketed pools, in elements.
const (
	Size256B = 256
	Size1K   = 1024
	Size4K   = 4096
	Size16K  = 16384
	Size64K  = 65536
	Size256K = 262144
	Size1M   = 1048576
)

// bucketIndex returns the pool index for a given size.
func bucketIndex(size int) int {
	switch {
	case size <= Size256B:
		return 0
	case size <= Size1K:
		return 1
	case size <= Size4K:
		return 2
	case size <= Size16K:
		return 3
	case size <= Size64K:
		return 4
	case size <= Size256K:
		return 5
	default:
		return 6
	}
}

var sizes = [7]int{Size256B, Size1K, Size4K, Size16K, Size64K, Size256K, Size1M}

// bucketed is a set of size-class pools for slices of T.
type bucketed[T any] struct {
	pools [7]sync.Pool
}

func newBucketed[T any]() *bucketed[T] {
	p := new(bucketed[T])
	for i := range p.pools {
		sz := sizes[i]
		p.pools[i].New = func() any {
			b := make([]T, sz)
			return &b
		}
	}
	return p
}

func (p *bucketed[T]) get(size int) []T {
	idx := bucketIndex(size)
	bp := p.pools[idx].Get().(*[]T)
	b := *bp
	if cap(b) < size {
		b = make([]T, size)
		*bp = b
		return b
	}
	return b[:size]
}

func (p *bucketed[T]) put(b []T) {
	c := cap(b)
	if c < Size256B {
		return
	}
	idx := bucketIndex(c)
	b = b[:c]
	p.pools[idx].Put(&b)
}

var (
	bytePools   = newBucketed[byte]()
	uint16Pools = newBucketed[uint16]()
)

// Get returns a byte slice of at least the requested size from the pool.
// The returned slice has length == size and may have a larger capacity.
// Its contents are undefined. The caller must call Put when done.
func Get(size int) []byte {
	return bytePools.get(size)
}

// Put returns a byte slice to the pool. The slice must have been obtained
// from Get. Slices smaller than Size256B are not pooled.
func Put(b []byte) {
	bytePools.put(b)
}

// GetUint16 returns a uint16 slice of the requested length from the pool.
// Its contents are undefined. The caller must call PutUint16 when done.
func GetUint16(length int) []uint16 {
	return uint16Pools.get(length)
}

// PutUint16 returns a slice obtained from GetUint16 to the pool.
func PutUint16(s []uint16) {
	uint16Pools.put(s)
}
