package sim

import "sync"

// scratchPool hands out neighbour buffers to force workers so parallel
// evaluation does not allocate per tick.
type scratchPool struct {
	pool sync.Pool
}

func newScratchPool(size int) *scratchPool {
	return &scratchPool{
		pool: sync.Pool{
			New: func() any {
				buf := make([]int32, 0, size)
				return &buf
			},
		},
	}
}

func (p *scratchPool) Get() *[]int32 {
	return p.pool.Get().(*[]int32)
}

func (p *scratchPool) Put(buf *[]int32) {
	*buf = (*buf)[:0]
	p.pool.Put(buf)
}
