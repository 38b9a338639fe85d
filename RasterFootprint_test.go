package SpectralEnhance

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
)

func TestComputeFootprint(t *testing.T) {
	// 左上角(100,200)，像元1x1，北向上
	geoTransform := [6]float64{100, 1, 0, 200, 0, -1}

	poly := ComputeFootprint(geoTransform, 10, 5)
	if len(poly) != 1 {
		t.Fatalf("ring count: got %d, want 1", len(poly))
	}
	ring := poly[0]
	if len(ring) != 5 {
		t.Fatalf("ring length: got %d, want 5 (closed)", len(ring))
	}

	want := []orb.Point{
		{100, 200}, {110, 200}, {110, 195}, {100, 195}, {100, 200},
	}
	for i, p := range want {
		if ring[i] != p {
			t.Errorf("corner %d: got %v, want %v", i, ring[i], p)
		}
	}
}

func TestComputeFootprintWithRotation(t *testing.T) {
	// 带旋转项的地理变换也必须走完整仿射映射
	geoTransform := [6]float64{0, 1, 0.5, 0, 0.5, -1}

	poly := ComputeFootprint(geoTransform, 2, 2)
	ring := poly[0]

	// 右下角像素(2,2) -> (2*1 + 2*0.5, 2*0.5 + 2*-1) = (3, -1)
	if ring[2] != (orb.Point{3, -1}) {
		t.Errorf("rotated corner: got %v, want (3,-1)", ring[2])
	}
}

func TestFootprintGeoJSON(t *testing.T) {
	dir := t.TempDir()
	inputPath := dir + "/input.tif"
	writeTestRaster(t, inputPath, 4, 4, [][]uint8{gradientBand(16)},
		[6]float64{100, 1, 0, 200, 0, -1}, "", nil)

	rd, err := OpenRasterDataset(inputPath)
	if err != nil {
		t.Fatalf("failed to open raster: %v", err)
	}
	defer rd.Close()

	raw, err := FootprintGeoJSON(rd)
	if err != nil {
		t.Fatalf("FootprintGeoJSON failed: %v", err)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	if err := json.Unmarshal(raw, &fc); err != nil {
		t.Fatalf("invalid GeoJSON: %v", err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 1 {
		t.Fatalf("unexpected collection: %s", string(raw))
	}
	if fc.Features[0].Geometry.Type != "Polygon" {
		t.Errorf("geometry type: got %s, want Polygon", fc.Features[0].Geometry.Type)
	}
	if fc.Features[0].Properties["band_count"].(float64) != 1 {
		t.Errorf("band_count property missing or wrong: %v", fc.Features[0].Properties)
	}
}
