// RasterFootprint.go
package SpectralEnhance

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// PixelToGeo 像素坐标转地理坐标（含旋转项）
func PixelToGeo(geoTransform [6]float64, px, py float64) (x, y float64) {
	x = geoTransform[0] + px*geoTransform[1] + py*geoTransform[2]
	y = geoTransform[3] + px*geoTransform[4] + py*geoTransform[5]
	return
}

// ComputeFootprint 由地理变换计算影像范围多边形
// 角点顺序：左上、右上、右下、左下，闭合
func ComputeFootprint(geoTransform [6]float64, width, height int) orb.Polygon {
	w := float64(width)
	h := float64(height)

	corners := [][2]float64{
		{0, 0}, {w, 0}, {w, h}, {0, h}, {0, 0},
	}

	ring := make(orb.Ring, 0, len(corners))
	for _, c := range corners {
		x, y := PixelToGeo(geoTransform, c[0], c[1])
		ring = append(ring, orb.Point{x, y})
	}

	return orb.Polygon{ring}
}

// Footprint 数据集的范围多边形
func (rd *RasterDataset) Footprint() orb.Polygon {
	return ComputeFootprint(rd.geoTransform, rd.width, rd.height)
}

// FootprintFeature 数据集范围的GeoJSON要素，属性中带基本元数据
func FootprintFeature(rd *RasterDataset) *geojson.Feature {
	feature := geojson.NewFeature(rd.Footprint())
	feature.Properties = geojson.Properties{
		"path":       rd.filePath,
		"width":      rd.width,
		"height":     rd.height,
		"band_count": rd.bandCount,
		"projection": rd.projection,
	}
	return feature
}

// FootprintGeoJSON 数据集范围的GeoJSON序列化结果
func FootprintGeoJSON(rd *RasterDataset) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	fc.Append(FootprintFeature(rd))
	return json.Marshal(fc)
}
