// Package mempool pools the float32 plane buffers allocated on the
// preprocessing hot path, bucketed by size class to limit churn.
package mempool

import "sync"

var pools sync.Map // size class (int) -> *sync.Pool

// sizeClass rounds n up to the next 1 KiB multiple so nearby sizes share a pool.
func sizeClass(n int) int {
	const step = 1024
	if n <= step {
		return step
	}
	return (n + step - 1) / step * step
}

func classPool(cls int) *sync.Pool {
	pAny, _ := pools.LoadOrStore(cls, &sync.Pool{
		New: func() any { return make([]float32, cls) },
	})
	return pAny.(*sync.Pool) //nolint:forcetypeassert // pool values are always *sync.Pool
}

// GetFloat32 returns a buffer with length n from the pool. Contents are
// unspecified; callers overwrite every element. Return it with PutFloat32.
func GetFloat32(n int) []float32 {
	cls := sizeClass(n)
	buf, ok := classPool(cls).Get().([]float32)
	if !ok || cap(buf) < n {
		buf = make([]float32, cls)
	}
	return buf[:n]
}

// PutFloat32 hands a buffer back to its size-class pool. Nil is ignored.
func PutFloat32(buf []float32) {
	if buf == nil {
		return
	}
	cls := sizeClass(cap(buf))
	classPool(cls).Put(buf[:cap(buf)]) //nolint:staticcheck // slices are reference-sized
}
