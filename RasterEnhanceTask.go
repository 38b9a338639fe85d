// RasterEnhanceTask.go
package SpectralEnhance

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrorKind 错误类别
type ErrorKind int

const (
	KindInvalidInput     ErrorKind = iota + 1 // 输入缺失或无法打开
	KindEmptyRaster                           // 栅格没有波段
	KindInvalidParameter                      // 参数越界
	KindIO                                    // 读写失败
)

// EnhanceError 带类别的任务错误
// Band为0表示错误与具体波段无关
type EnhanceError struct {
	Kind    ErrorKind
	Band    int
	Message string
	Err     error
}

func (e *EnhanceError) Error() string {
	if e.Band > 0 {
		if e.Err != nil {
			return fmt.Sprintf("band %d: %s: %v", e.Band, e.Message, e.Err)
		}
		return fmt.Sprintf("band %d: %s", e.Band, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *EnhanceError) Unwrap() error {
	return e.Err
}

// IsKind 判断错误是否属于指定类别
func IsKind(err error, kind ErrorKind) bool {
	var ee *EnhanceError
	if errors.As(err, &ee) {
		return ee.Kind == kind
	}
	return false
}

// ProgressCallback 进度回调函数类型
// 返回值：true继续执行，false取消执行
type ProgressCallback func(complete float64, message string) bool

// EnhanceTaskParams 增强任务参数
type EnhanceTaskParams struct {
	InputPath  string
	OutputPath string
	EnhanceParams
}

// EnhanceResult 增强任务结果
// 取消的任务Cancelled为true，输出文件结构完整，未处理的波段为GTiff默认零填充
type EnhanceResult struct {
	TaskID         string
	InputPath      string
	OutputPath     string
	Method         EnhanceMethod
	BandCount      int
	ProcessedBands int
	SkippedBands   []int // 全部为NoData而被跳过的波段，输出中为全零
	Cancelled      bool
	Elapsed        time.Duration
}

// EnhanceRaster 执行逐波段增强任务
// 顺序处理波段，每个波段开始前调用progress检查取消信号
// progress可以为nil，表示不报告进度也不取消
func EnhanceRaster(params EnhanceTaskParams, progress ProgressCallback) (*EnhanceResult, error) {
	startTime := time.Now()

	// 参数校验必须发生在任何I/O副作用之前
	if params.InputPath == "" {
		return nil, &EnhanceError{Kind: KindInvalidInput, Message: "no input raster supplied"}
	}
	if params.OutputPath == "" {
		return nil, &EnhanceError{Kind: KindInvalidInput, Message: "no output path supplied"}
	}
	if err := params.EnhanceParams.Validate(); err != nil {
		return nil, err
	}

	rd, err := OpenRasterDataset(params.InputPath)
	if err != nil {
		return nil, &EnhanceError{Kind: KindInvalidInput, Message: "failed to open input raster", Err: err}
	}
	defer rd.Close()

	bandCount := rd.GetBandCount()
	if bandCount == 0 {
		return nil, &EnhanceError{Kind: KindEmptyRaster, Message: "raster has no bands"}
	}

	result := &EnhanceResult{
		TaskID:     uuid.New().String(),
		InputPath:  params.InputPath,
		OutputPath: params.OutputPath,
		Method:     params.Method,
		BandCount:  bandCount,
	}

	log.Printf("Processing %d band(s) with method: %s...", bandCount, params.Method)

	width, height := rd.GetSize()
	writer, err := NewGeoTiffWriter(params.OutputPath, width, height, bandCount,
		rd.GetGeoTransform(), rd.GetProjection())
	if err != nil {
		return nil, &EnhanceError{Kind: KindIO, Message: "failed to create output raster", Err: err}
	}
	defer writer.Close()

	for i := 1; i <= bandCount; i++ {
		// 每个波段开始前为唯一的取消点
		if progress != nil {
			msg := fmt.Sprintf("Processing band %d/%d...", i, bandCount)
			if !progress(float64(i-1)/float64(bandCount), msg) {
				result.Cancelled = true
				break
			}
		}

		output, skipped, err := enhanceOneBand(rd, i, params.EnhanceParams)
		if err != nil {
			return nil, err
		}
		if skipped {
			log.Printf("Band %d is empty or fully NoData. Skipping.", i)
			result.SkippedBands = append(result.SkippedBands, i)
			continue
		}

		if err := writer.WriteBand(i, output); err != nil {
			return nil, &EnhanceError{Kind: KindIO, Band: i, Message: "failed to write band", Err: err}
		}
		if err := writer.SetBandNoDataValue(i, 0); err != nil {
			return nil, &EnhanceError{Kind: KindIO, Band: i, Message: "failed to set nodata value", Err: err}
		}

		result.ProcessedBands++
	}

	if progress != nil && !result.Cancelled {
		progress(1.0, "Complete")
	}

	result.Elapsed = time.Since(startTime)
	return result, nil
}

// enhanceOneBand 读取、掩膜并增强单个波段
// skipped为true表示波段内没有有效像元
func enhanceOneBand(rd *RasterDataset, bandIndex int, params EnhanceParams) (output []uint8, skipped bool, err error) {
	data, err := rd.ReadBandData(bandIndex)
	if err != nil {
		return nil, false, &EnhanceError{Kind: KindIO, Band: bandIndex, Message: "failed to read band", Err: err}
	}

	nodata, hasNoData, err := rd.GetBandNoData(bandIndex)
	if err != nil {
		return nil, false, &EnhanceError{Kind: KindIO, Band: bandIndex, Message: "failed to get nodata value", Err: err}
	}

	mask := BuildNoDataMask(data, nodata, hasNoData)

	output, err = EnhanceBand(data, mask, params)
	if err != nil {
		if errors.Is(err, ErrEmptyBand) {
			return nil, true, nil
		}
		return nil, false, err
	}
	return output, false, nil
}

// EnhanceRasterConcurrent 并发读取与增强波段，写入串行
// 每个worker使用独立的数据集副本读取，maxWorkers<=0时使用全局GDAL工作池的容量
// 各波段相互独立，取消信号在派发每个波段前检查
func EnhanceRasterConcurrent(params EnhanceTaskParams, maxWorkers int, progress ProgressCallback) (*EnhanceResult, error) {
	startTime := time.Now()

	if params.InputPath == "" {
		return nil, &EnhanceError{Kind: KindInvalidInput, Message: "no input raster supplied"}
	}
	if params.OutputPath == "" {
		return nil, &EnhanceError{Kind: KindInvalidInput, Message: "no output path supplied"}
	}
	if err := params.EnhanceParams.Validate(); err != nil {
		return nil, err
	}

	rd, err := OpenRasterDataset(params.InputPath)
	if err != nil {
		return nil, &EnhanceError{Kind: KindInvalidInput, Message: "failed to open input raster", Err: err}
	}
	defer rd.Close()

	bandCount := rd.GetBandCount()
	if bandCount == 0 {
		return nil, &EnhanceError{Kind: KindEmptyRaster, Message: "raster has no bands"}
	}

	result := &EnhanceResult{
		TaskID:     uuid.New().String(),
		InputPath:  params.InputPath,
		OutputPath: params.OutputPath,
		Method:     params.Method,
		BandCount:  bandCount,
	}

	log.Printf("Processing %d band(s) with method: %s...", bandCount, params.Method)

	width, height := rd.GetSize()
	writer, err := NewGeoTiffWriter(params.OutputPath, width, height, bandCount,
		rd.GetGeoTransform(), rd.GetProjection())
	if err != nil {
		return nil, &EnhanceError{Kind: KindIO, Message: "failed to create output raster", Err: err}
	}
	defer writer.Close()

	pool := GetGDALPool()
	if maxWorkers > 0 && maxWorkers < pool.Size() {
		pool = NewGDALWorkerPool(maxWorkers)
	}

	var (
		wg       sync.WaitGroup
		writeMu  sync.Mutex
		firstErr error
		errMu    sync.Mutex
	)

	setErr := func(err error) {
		errMu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		errMu.Unlock()
	}

	for i := 1; i <= bandCount; i++ {
		if progress != nil {
			msg := fmt.Sprintf("Processing band %d/%d...", i, bandCount)
			if !progress(float64(i-1)/float64(bandCount), msg) {
				result.Cancelled = true
				break
			}
		}

		errMu.Lock()
		failed := firstErr != nil
		errMu.Unlock()
		if failed {
			break
		}

		wg.Add(1)
		go func(bandIndex int) {
			defer wg.Done()
			err := pool.Execute(func() error {
				// GDAL数据集句柄不支持多线程并发访问，每个worker打开自己的数据集副本
				workerRD, err := OpenRasterDataset(params.InputPath)
				if err != nil {
					return &EnhanceError{Kind: KindIO, Band: bandIndex, Message: "failed to open dataset copy", Err: err}
				}
				defer workerRD.Close()

				output, skipped, err := enhanceOneBand(workerRD, bandIndex, params.EnhanceParams)
				if err != nil {
					return err
				}

				// GTiff不支持并行写，写入必须串行
				writeMu.Lock()
				defer writeMu.Unlock()

				if skipped {
					log.Printf("Band %d is empty or fully NoData. Skipping.", bandIndex)
					result.SkippedBands = append(result.SkippedBands, bandIndex)
					return nil
				}
				if err := writer.WriteBand(bandIndex, output); err != nil {
					return &EnhanceError{Kind: KindIO, Band: bandIndex, Message: "failed to write band", Err: err}
				}
				if err := writer.SetBandNoDataValue(bandIndex, 0); err != nil {
					return &EnhanceError{Kind: KindIO, Band: bandIndex, Message: "failed to set nodata value", Err: err}
				}
				result.ProcessedBands++
				return nil
			})
			if err != nil {
				setErr(err)
			}
		}(i)
	}

	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	if progress != nil && !result.Cancelled {
		progress(1.0, "Complete")
	}

	result.Elapsed = time.Since(startTime)
	return result, nil
}
