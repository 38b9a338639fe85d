package SpectralEnhance

import (
	"errors"
	"math"
	"sort"
	"testing"
)

func allZero(out []uint8) bool {
	for _, v := range out {
		if v != 0 {
			return false
		}
	}
	return true
}

func noMask(n int) []bool {
	return make([]bool, n)
}

func TestEnhanceParamsValidate(t *testing.T) {
	cases := []struct {
		name   string
		params EnhanceParams
		wantOK bool
	}{
		{"default", DefaultEnhanceParams(), true},
		{"cut lower bound", EnhanceParams{Method: MethodLinearStretch, CutPercent: 0, Gamma: 1}, true},
		{"cut upper bound", EnhanceParams{Method: MethodLinearStretch, CutPercent: 50, Gamma: 1}, true},
		{"cut negative", EnhanceParams{Method: MethodLinearStretch, CutPercent: -1, Gamma: 1}, false},
		{"cut too large", EnhanceParams{Method: MethodLinearStretch, CutPercent: 51, Gamma: 1}, false},
		{"gamma zero", EnhanceParams{Method: MethodGammaCorrection, CutPercent: 2, Gamma: 0}, false},
		{"gamma negative", EnhanceParams{Method: MethodGammaCorrection, CutPercent: 2, Gamma: -2}, false},
		{"gamma too large", EnhanceParams{Method: MethodGammaCorrection, CutPercent: 2, Gamma: 11}, false},
		{"gamma bounds", EnhanceParams{Method: MethodGammaCorrection, CutPercent: 2, Gamma: 10}, true},
		{"bad method", EnhanceParams{Method: EnhanceMethod(7), CutPercent: 2, Gamma: 1}, false},
	}

	for _, tc := range cases {
		err := tc.params.Validate()
		if tc.wantOK && err != nil {
			t.Errorf("%s: unexpected error: %v", tc.name, err)
		}
		if !tc.wantOK {
			if err == nil {
				t.Errorf("%s: expected validation error", tc.name)
			} else if !IsKind(err, KindInvalidParameter) {
				t.Errorf("%s: expected KindInvalidParameter, got %v", tc.name, err)
			}
		}
	}
}

func TestLinearStretchExactRescale(t *testing.T) {
	// 有效值覆盖[0,100]，截断0% -> 精确线性映射到[0,255]
	data := make([]float64, 101)
	for i := range data {
		data[i] = float64(i)
	}

	out, err := EnhanceBand(data, noMask(len(data)), EnhanceParams{Method: MethodLinearStretch, CutPercent: 0, Gamma: 1})
	if err != nil {
		t.Fatalf("EnhanceBand failed: %v", err)
	}

	for i, v := range data {
		want := uint8(math.Round(v / 100 * 255))
		if out[i] != want {
			t.Fatalf("pixel %d: got %d, want %d", i, out[i], want)
		}
	}
}

func TestLinearStretchClipsOutliers(t *testing.T) {
	data := make([]float64, 100)
	for i := range data {
		data[i] = 50 + float64(i%10)
	}
	data[0] = -1e6
	data[99] = 1e6

	out, err := EnhanceBand(data, noMask(len(data)), EnhanceParams{Method: MethodLinearStretch, CutPercent: 10, Gamma: 1})
	if err != nil {
		t.Fatalf("EnhanceBand failed: %v", err)
	}

	// 离群值被截断到端点而不是环绕
	if out[0] != 0 {
		t.Errorf("low outlier: got %d, want 0", out[0])
	}
	if out[99] != 255 {
		t.Errorf("high outlier: got %d, want 255", out[99])
	}
}

func TestConstantBandAllMethods(t *testing.T) {
	// 常值波段在三种方法下都不能产生除零，输出全为0
	data := []float64{7, 7, 7, 7, 7, 7}

	for _, params := range []EnhanceParams{
		{Method: MethodLinearStretch, CutPercent: 2, Gamma: 1},
		{Method: MethodEqualization, CutPercent: 2, Gamma: 1},
		{Method: MethodGammaCorrection, CutPercent: 2, Gamma: 2},
	} {
		out, err := EnhanceBand(data, noMask(len(data)), params)
		if err != nil {
			t.Fatalf("%s: EnhanceBand failed: %v", params.Method, err)
		}
		if !allZero(out) {
			t.Errorf("%s: constant band must map to all-zero output, got %v", params.Method, out)
		}
	}
}

func TestNodataPixelsAlwaysZero(t *testing.T) {
	data := []float64{-9999, 10, 20, -9999, 30, 40, 50, -9999}
	mask := BuildNoDataMask(data, -9999, true)

	for _, params := range []EnhanceParams{
		{Method: MethodLinearStretch, CutPercent: 0, Gamma: 1},
		{Method: MethodEqualization, CutPercent: 0, Gamma: 1},
		{Method: MethodGammaCorrection, CutPercent: 0, Gamma: 0.5},
	} {
		out, err := EnhanceBand(data, mask, params)
		if err != nil {
			t.Fatalf("%s: EnhanceBand failed: %v", params.Method, err)
		}
		for i := range data {
			if mask[i] && out[i] != 0 {
				t.Errorf("%s: nodata pixel %d got %d, want 0", params.Method, i, out[i])
			}
		}
	}
}

func TestEmptyBandReturnsSentinel(t *testing.T) {
	data := []float64{-1, -1, -1, -1}
	mask := BuildNoDataMask(data, -1, true)

	_, err := EnhanceBand(data, mask, DefaultEnhanceParams())
	if !errors.Is(err, ErrEmptyBand) {
		t.Fatalf("expected ErrEmptyBand, got %v", err)
	}
}

func TestEqualizationMonotonic(t *testing.T) {
	// 确定性伪随机输入，均衡化映射必须保序
	data := make([]float64, 500)
	seed := uint32(12345)
	for i := range data {
		seed = seed*1664525 + 1013904223
		data[i] = float64(seed%10000) / 7
	}

	out, err := EnhanceBand(data, noMask(len(data)), EnhanceParams{Method: MethodEqualization, CutPercent: 2, Gamma: 1})
	if err != nil {
		t.Fatalf("EnhanceBand failed: %v", err)
	}

	type pair struct {
		in  float64
		out uint8
	}
	pairs := make([]pair, len(data))
	for i := range data {
		pairs[i] = pair{data[i], out[i]}
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].in < pairs[j].in })

	for i := 1; i < len(pairs); i++ {
		if pairs[i].out < pairs[i-1].out {
			t.Fatalf("monotonicity violated: input %g->%d but %g->%d",
				pairs[i-1].in, pairs[i-1].out, pairs[i].in, pairs[i].out)
		}
	}
}

func TestGammaOneIsMinMaxNormalization(t *testing.T) {
	data := []float64{3, 10, 50, 100, 250, 500}

	out, err := EnhanceBand(data, noMask(len(data)), EnhanceParams{Method: MethodGammaCorrection, CutPercent: 2, Gamma: 1})
	if err != nil {
		t.Fatalf("EnhanceBand failed: %v", err)
	}

	minV, maxV := 3.0, 500.0
	for i, v := range data {
		want := uint8(math.Round((v - minV) / (maxV - minV) * 255))
		if out[i] != want {
			t.Errorf("pixel %d: got %d, want %d", i, out[i], want)
		}
	}
}

func TestGammaTwoIsSquareRoot(t *testing.T) {
	// gamma=2, 输入范围[0,1] -> out = round(255*sqrt(x))
	data := []float64{0, 0.04, 0.16, 0.25, 0.5, 0.81, 1}

	out, err := EnhanceBand(data, noMask(len(data)), EnhanceParams{Method: MethodGammaCorrection, CutPercent: 2, Gamma: 2})
	if err != nil {
		t.Fatalf("EnhanceBand failed: %v", err)
	}

	for i, v := range data {
		want := uint8(math.Round(255 * math.Sqrt(v)))
		if out[i] != want {
			t.Errorf("pixel %d (x=%g): got %d, want %d", i, v, out[i], want)
		}
	}
}

func TestPercentile(t *testing.T) {
	values := []float64{1, 2, 3, 4}

	cases := []struct {
		p    float64
		want float64
	}{
		{0, 1},
		{25, 1.75},
		{50, 2.5},
		{75, 3.25},
		{100, 4},
	}
	for _, tc := range cases {
		got := percentile(values, tc.p)
		if math.Abs(got-tc.want) > 1e-12 {
			t.Errorf("percentile(%g): got %g, want %g", tc.p, got, tc.want)
		}
	}
}

func TestBuildNoDataMask(t *testing.T) {
	data := []float64{0, 1, 0, 2}

	mask := BuildNoDataMask(data, 0, true)
	if !mask[0] || mask[1] || !mask[2] || mask[3] {
		t.Errorf("unexpected mask: %v", mask)
	}

	// 未设置NoData时掩膜全为false
	mask = BuildNoDataMask(data, 0, false)
	for i, m := range mask {
		if m {
			t.Errorf("pixel %d masked without nodata", i)
		}
	}
}
