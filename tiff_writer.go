// tiff_writer.go
package SpectralEnhance

/*
#include "gdal.h"
#include "cpl_string.h"
#include <stdio.h>
#include <stdlib.h>

// 创建8位GeoTIFF输出数据集，地理变换与投影从输入复制
GDALDatasetH createEnhanceOutputDataset(const char* filename, int width, int height, int bands,
                                        double* geoTransform, const char* projection,
                                        const char* compress, int tiled, int blockSize) {
    GDALDriverH hDriver = GDALGetDriverByName("GTiff");
    if (hDriver == NULL) {
        return NULL;
    }

    char **papszOptions = NULL;
    if (compress != NULL && compress[0] != '\0') {
        papszOptions = CSLSetNameValue(papszOptions, "COMPRESS", compress);
    }
    if (tiled) {
        char blockStr[32];
        snprintf(blockStr, sizeof(blockStr), "%d", blockSize);
        papszOptions = CSLSetNameValue(papszOptions, "TILED", "YES");
        papszOptions = CSLSetNameValue(papszOptions, "BLOCKXSIZE", blockStr);
        papszOptions = CSLSetNameValue(papszOptions, "BLOCKYSIZE", blockStr);
    }

    GDALDatasetH hDS = GDALCreate(hDriver, filename, width, height, bands, GDT_Byte, papszOptions);
    CSLDestroy(papszOptions);

    if (hDS == NULL) {
        return NULL;
    }

    if (geoTransform != NULL) {
        GDALSetGeoTransform(hDS, geoTransform);
    }
    if (projection != NULL && projection[0] != '\0') {
        GDALSetProjection(hDS, projection);
    }

    return hDS;
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"
)

// GeoTiffWriter 8位GeoTIFF输出
// 同一时刻只保留一个波段的数据在内存中，写完即刷盘
type GeoTiffWriter struct {
	dataset   C.GDALDatasetH
	filePath  string
	width     int
	height    int
	bandCount int
}

// NewGeoTiffWriter 创建输出数据集
// geoTransform/projection 应从输入数据集原样复制
func NewGeoTiffWriter(outputPath string, width, height, bandCount int,
	geoTransform [6]float64, projection string) (*GeoTiffWriter, error) {
	InitializeGDAL()

	if width <= 0 || height <= 0 || bandCount <= 0 {
		return nil, fmt.Errorf("invalid output size: %dx%d, %d bands", width, height, bandCount)
	}

	cPath := C.CString(outputPath)
	defer C.free(unsafe.Pointer(cPath))

	cProj := C.CString(projection)
	defer C.free(unsafe.Pointer(cProj))

	cCompress := C.CString(MainConfig.Compress)
	defer C.free(unsafe.Pointer(cCompress))

	var cGeoTransform [6]C.double
	for i := 0; i < 6; i++ {
		cGeoTransform[i] = C.double(geoTransform[i])
	}

	tiled := C.int(0)
	if MainConfig.Tiled {
		tiled = 1
	}

	dataset := C.createEnhanceOutputDataset(cPath,
		C.int(width), C.int(height), C.int(bandCount),
		&cGeoTransform[0], cProj,
		cCompress, tiled, C.int(MainConfig.BlockSize))
	if dataset == nil {
		return nil, fmt.Errorf("failed to create output dataset: %s", outputPath)
	}

	w := &GeoTiffWriter{
		dataset:   dataset,
		filePath:  outputPath,
		width:     width,
		height:    height,
		bandCount: bandCount,
	}

	runtime.SetFinalizer(w, (*GeoTiffWriter).Close)

	return w, nil
}

// WriteBand 写入单个波段并立即刷盘
func (w *GeoTiffWriter) WriteBand(bandIndex int, data []uint8) error {
	if w.dataset == nil {
		return fmt.Errorf("dataset is nil")
	}
	if bandIndex < 1 || bandIndex > w.bandCount {
		return fmt.Errorf("invalid band index: %d", bandIndex)
	}
	expectedSize := w.width * w.height
	if len(data) != expectedSize {
		return fmt.Errorf("data size mismatch: expected %d, got %d", expectedSize, len(data))
	}

	band := C.GDALGetRasterBand(w.dataset, C.int(bandIndex))
	if band == nil {
		return fmt.Errorf("failed to get band %d", bandIndex)
	}

	// 使用C分配的内存，避免GDALRasterIO持有Go指针
	cData := C.malloc(C.size_t(len(data)))
	if cData == nil {
		return fmt.Errorf("failed to allocate memory")
	}
	defer C.free(cData)

	cSlice := unsafe.Slice((*byte)(cData), len(data))
	copy(cSlice, data)

	err := C.GDALRasterIO(band, C.GF_Write,
		0, 0, C.int(w.width), C.int(w.height),
		cData,
		C.int(w.width), C.int(w.height),
		C.GDT_Byte, 0, 0)

	if err != C.CE_None {
		return fmt.Errorf("failed to write band %d data", bandIndex)
	}

	C.GDALFlushRasterCache(band)
	return nil
}

// SetBandNoDataValue 设置波段NoData值
func (w *GeoTiffWriter) SetBandNoDataValue(bandIndex int, nodata float64) error {
	if w.dataset == nil {
		return fmt.Errorf("dataset is nil")
	}
	if bandIndex < 1 || bandIndex > w.bandCount {
		return fmt.Errorf("invalid band index: %d", bandIndex)
	}

	band := C.GDALGetRasterBand(w.dataset, C.int(bandIndex))
	if band == nil {
		return fmt.Errorf("failed to get band %d", bandIndex)
	}

	if C.GDALSetRasterNoDataValue(band, C.double(nodata)) != C.CE_None {
		return fmt.Errorf("failed to set nodata value for band %d", bandIndex)
	}
	return nil
}

// Close 关闭数据集并落盘，取消的任务也必须调用以保证文件结构完整
func (w *GeoTiffWriter) Close() {
	if w.dataset != nil {
		C.GDALClose(w.dataset)
		w.dataset = nil
	}
}
