// gdal_pool.go
package SpectralEnhance

import (
	"runtime"
	"sync"
)

// GDALWorkerPool GDAL工作池 - 控制并发波段读取数量
type GDALWorkerPool struct {
	semaphore chan struct{}
	size      int
}

var (
	gdalPool     *GDALWorkerPool
	gdalPoolOnce sync.Once
)

// GetGDALPool 获取全局GDAL工作池（单例）
func GetGDALPool() *GDALWorkerPool {
	gdalPoolOnce.Do(func() {
		// 根据CPU核心数设置工作池大小，GDAL操作密集型建议 CPU核心数 * 2
		poolSize := runtime.NumCPU() * 2
		if poolSize < 4 {
			poolSize = 4
		}
		if poolSize > 16 {
			poolSize = 16 // 上限，避免GDAL资源竞争
		}

		gdalPool = NewGDALWorkerPool(poolSize)
	})
	return gdalPool
}

// NewGDALWorkerPool 创建指定容量的工作池
func NewGDALWorkerPool(size int) *GDALWorkerPool {
	if size < 1 {
		size = 1
	}
	return &GDALWorkerPool{
		semaphore: make(chan struct{}, size),
		size:      size,
	}
}

// Size 工作池容量
func (p *GDALWorkerPool) Size() int {
	return p.size
}

// Acquire 获取工作槽
func (p *GDALWorkerPool) Acquire() {
	p.semaphore <- struct{}{}
}

// Release 释放工作槽
func (p *GDALWorkerPool) Release() {
	<-p.semaphore
}

// Execute 在工作池中执行GDAL操作
func (p *GDALWorkerPool) Execute(fn func() error) error {
	p.Acquire()
	defer p.Release()
	return fn()
}
