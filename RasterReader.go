// RasterReader.go
package SpectralEnhance

/*
#include "gdal.h"
#include <stdlib.h>
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"
)

// RasterDataset 栅格数据集
type RasterDataset struct {
	dataset      C.GDALDatasetH
	filePath     string
	width        int
	height       int
	bandCount    int
	geoTransform [6]float64
	projection   string
	hasGeoInfo   bool
}

// DatasetInfo 数据集信息
type DatasetInfo struct {
	Width        int
	Height       int
	BandCount    int
	GeoTransform [6]float64
	Projection   string
	HasGeoInfo   bool
}

// BandInfo 波段信息
type BandInfo struct {
	BandIndex   int
	DataType    string
	NoDataValue float64
	HasNoData   bool
	MinValue    float64
	MaxValue    float64
	HasStats    bool
}

// OpenRasterDataset 打开栅格数据集（只读）
// imagePath: 影像文件路径
func OpenRasterDataset(imagePath string) (*RasterDataset, error) {
	InitializeGDAL()

	cPath := C.CString(imagePath)
	defer C.free(unsafe.Pointer(cPath))

	dataset := C.GDALOpen(cPath, C.GA_ReadOnly)
	if dataset == nil {
		return nil, fmt.Errorf("failed to open image: %s", imagePath)
	}

	width := int(C.GDALGetRasterXSize(dataset))
	height := int(C.GDALGetRasterYSize(dataset))
	bandCount := int(C.GDALGetRasterCount(dataset))

	// 检查是否有地理信息
	var cGeoTransform [6]C.double
	hasGeoInfo := C.GDALGetGeoTransform(dataset, &cGeoTransform[0]) == C.CE_None

	projection := C.GoString(C.GDALGetProjectionRef(dataset))

	var geoTransform [6]float64
	if hasGeoInfo {
		for i := 0; i < 6; i++ {
			geoTransform[i] = float64(cGeoTransform[i])
		}
	} else {
		// 如果没有地理信息，创建像素坐标系的默认地理变换
		geoTransform = [6]float64{0.0, 1.0, 0.0, 0.0, 0.0, 1.0}
	}

	rd := &RasterDataset{
		dataset:      dataset,
		filePath:     imagePath,
		width:        width,
		height:       height,
		bandCount:    bandCount,
		geoTransform: geoTransform,
		projection:   projection,
		hasGeoInfo:   hasGeoInfo,
	}

	runtime.SetFinalizer(rd, (*RasterDataset).Close)

	return rd, nil
}

// Close 关闭数据集
func (rd *RasterDataset) Close() {
	if rd.dataset != nil {
		C.GDALClose(rd.dataset)
		rd.dataset = nil
	}
}

// GetInfo 获取数据集信息
func (rd *RasterDataset) GetInfo() DatasetInfo {
	return DatasetInfo{
		Width:        rd.width,
		Height:       rd.height,
		BandCount:    rd.bandCount,
		GeoTransform: rd.geoTransform,
		Projection:   rd.projection,
		HasGeoInfo:   rd.hasGeoInfo,
	}
}

// GetSize 获取影像尺寸（列数、行数）
func (rd *RasterDataset) GetSize() (width, height int) {
	return rd.width, rd.height
}

// GetBandCount 获取波段数量
func (rd *RasterDataset) GetBandCount() int {
	return rd.bandCount
}

// GetGeoTransform 获取地理变换参数
func (rd *RasterDataset) GetGeoTransform() [6]float64 {
	return rd.geoTransform
}

// GetProjection 获取投影WKT
func (rd *RasterDataset) GetProjection() string {
	return rd.projection
}

// GetFilePath 获取文件路径
func (rd *RasterDataset) GetFilePath() string {
	return rd.filePath
}

// ReadBandData 读取波段数据为float64数组（行优先）
func (rd *RasterDataset) ReadBandData(bandIndex int) ([]float64, error) {
	if rd.dataset == nil {
		return nil, fmt.Errorf("dataset is nil")
	}

	if bandIndex < 1 || bandIndex > rd.bandCount {
		return nil, fmt.Errorf("invalid band index: %d", bandIndex)
	}

	band := C.GDALGetRasterBand(rd.dataset, C.int(bandIndex))
	if band == nil {
		return nil, fmt.Errorf("failed to get band %d", bandIndex)
	}

	size := rd.width * rd.height
	if size <= 0 {
		return nil, fmt.Errorf("invalid raster size: %dx%d", rd.width, rd.height)
	}
	buffer := make([]float64, size)

	err := C.GDALRasterIO(band, C.GF_Read,
		0, 0, C.int(rd.width), C.int(rd.height),
		unsafe.Pointer(&buffer[0]),
		C.int(rd.width), C.int(rd.height),
		C.GDT_Float64, 0, 0)

	if err != C.CE_None {
		return nil, fmt.Errorf("failed to read band %d data", bandIndex)
	}

	return buffer, nil
}

// GetBandNoData 获取波段NoData值
// 返回值: (NoData值, 是否设置了NoData, 错误)
func (rd *RasterDataset) GetBandNoData(bandIndex int) (float64, bool, error) {
	if rd.dataset == nil {
		return 0, false, fmt.Errorf("dataset is nil")
	}

	if bandIndex < 1 || bandIndex > rd.bandCount {
		return 0, false, fmt.Errorf("invalid band index: %d", bandIndex)
	}

	band := C.GDALGetRasterBand(rd.dataset, C.int(bandIndex))
	if band == nil {
		return 0, false, fmt.Errorf("failed to get band %d", bandIndex)
	}

	var hasNoData C.int
	nodata := float64(C.GDALGetRasterNoDataValue(band, &hasNoData))

	return nodata, hasNoData != 0, nil
}

// GetBandInfo 获取指定波段信息
func (rd *RasterDataset) GetBandInfo(bandIndex int) (*BandInfo, error) {
	if rd.dataset == nil {
		return nil, fmt.Errorf("dataset is nil")
	}

	if bandIndex < 1 || bandIndex > rd.bandCount {
		return nil, fmt.Errorf("invalid band index: %d", bandIndex)
	}

	band := C.GDALGetRasterBand(rd.dataset, C.int(bandIndex))
	if band == nil {
		return nil, fmt.Errorf("failed to get band %d", bandIndex)
	}

	info := &BandInfo{
		BandIndex: bandIndex,
		DataType:  C.GoString(C.GDALGetDataTypeName(C.GDALGetRasterDataType(band))),
	}

	var hasNoData C.int
	info.NoDataValue = float64(C.GDALGetRasterNoDataValue(band, &hasNoData))
	info.HasNoData = hasNoData != 0

	// 统计信息可能未预计算，计算失败不视为错误
	var minVal, maxVal, meanVal, stdVal C.double
	cErr := C.GDALGetRasterStatistics(band, C.int(1), C.int(1),
		&minVal, &maxVal, &meanVal, &stdVal)
	if cErr == C.CE_None {
		info.MinValue = float64(minVal)
		info.MaxValue = float64(maxVal)
		info.HasStats = true
	}

	return info, nil
}

// GetAllBandsInfo 获取所有波段信息
func (rd *RasterDataset) GetAllBandsInfo() ([]BandInfo, error) {
	infos := make([]BandInfo, 0, rd.bandCount)
	for i := 1; i <= rd.bandCount; i++ {
		info, err := rd.GetBandInfo(i)
		if err != nil {
			return nil, err
		}
		infos = append(infos, *info)
	}
	return infos, nil
}
