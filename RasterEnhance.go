// RasterEnhance.go
package SpectralEnhance

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// EnhanceMethod 增强方法
type EnhanceMethod int

const (
	MethodLinearStretch   EnhanceMethod = iota // 线性拉伸（百分比截断）
	MethodEqualization                         // 直方图均衡化
	MethodGammaCorrection                      // Gamma校正
)

// String 方法显示名称
func (m EnhanceMethod) String() string {
	switch m {
	case MethodLinearStretch:
		return "Linear Stretch (Percentile)"
	case MethodEqualization:
		return "Equalization"
	case MethodGammaCorrection:
		return "Gamma Correction"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// EnhanceParams 增强参数
type EnhanceParams struct {
	Method     EnhanceMethod
	CutPercent float64 // 截断百分比 [0, 50]，仅线性拉伸使用
	Gamma      float64 // Gamma值 [0.1, 10]，仅Gamma校正使用
}

// DefaultEnhanceParams 默认增强参数
func DefaultEnhanceParams() EnhanceParams {
	return EnhanceParams{
		Method:     MethodLinearStretch,
		CutPercent: 2.0,
		Gamma:      1.0,
	}
}

// Validate 校验增强参数，必须在任何I/O之前调用
func (p EnhanceParams) Validate() error {
	switch p.Method {
	case MethodLinearStretch, MethodEqualization, MethodGammaCorrection:
	default:
		return &EnhanceError{Kind: KindInvalidParameter,
			Message: fmt.Sprintf("invalid method index: %d", int(p.Method))}
	}
	if p.Method == MethodLinearStretch {
		if p.CutPercent < 0 || p.CutPercent > 50 {
			return &EnhanceError{Kind: KindInvalidParameter,
				Message: fmt.Sprintf("cut percent out of range [0,50]: %g", p.CutPercent)}
		}
	}
	if p.Method == MethodGammaCorrection {
		if p.Gamma < 0.1 || p.Gamma > 10 {
			return &EnhanceError{Kind: KindInvalidParameter,
				Message: fmt.Sprintf("gamma out of range [0.1,10]: %g", p.Gamma)}
		}
	}
	return nil
}

// ErrEmptyBand 波段内没有有效像元，非致命，调用方跳过该波段
var ErrEmptyBand = errors.New("band has no valid samples")

// BuildNoDataMask 根据NoData值生成掩膜，true表示无效像元
func BuildNoDataMask(data []float64, nodata float64, hasNoData bool) []bool {
	mask := make([]bool, len(data))
	if !hasNoData {
		return mask
	}
	for i, v := range data {
		if v == nodata {
			mask[i] = true
		}
	}
	return mask
}

// EnhanceBand 对单个波段执行增强
// data: 波段原始数据, mask: NoData掩膜(true为无效), 输出为同形状的8位数组
// 无效像元固定输出0; 波段全部为NoData时返回ErrEmptyBand
func EnhanceBand(data []float64, mask []bool, params EnhanceParams) ([]uint8, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if len(mask) != len(data) {
		return nil, fmt.Errorf("mask size mismatch: expected %d, got %d", len(data), len(mask))
	}

	valid := make([]float64, 0, len(data))
	for i, v := range data {
		if !mask[i] {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return nil, ErrEmptyBand
	}

	output := make([]uint8, len(data))

	switch params.Method {
	case MethodLinearStretch:
		linearStretchBand(data, mask, valid, params.CutPercent, output)
	case MethodEqualization:
		equalizeBand(data, mask, valid, output)
	case MethodGammaCorrection:
		gammaBand(data, mask, valid, params.Gamma, output)
	}

	return output, nil
}

// linearStretchBand 百分比截断线性拉伸
func linearStretchBand(data []float64, mask []bool, valid []float64, cutPercent float64, output []uint8) {
	pMin := percentile(valid, cutPercent)
	pMax := percentile(valid, 100-cutPercent)

	// 常值波段会导致除零，这里显式输出0
	if pMax <= pMin {
		return
	}

	scale := 255 / (pMax - pMin)
	for i, v := range data {
		if mask[i] {
			continue
		}
		if v < pMin {
			v = pMin
		} else if v > pMax {
			v = pMax
		}
		output[i] = uint8(math.Round((v - pMin) * scale))
	}
}

// equalizeBand 直方图均衡化
// 在[min,max]上建立256桶直方图，累积分布缩放到[0,255]后按桶中心线性插值
func equalizeBand(data []float64, mask []bool, valid []float64, output []uint8) {
	minV, maxV := minMax(valid)
	if maxV <= minV {
		// 常值波段，直方图退化，输出0
		return
	}

	const bins = 256
	binWidth := (maxV - minV) / bins

	var hist [bins]int
	for _, v := range valid {
		b := int((v - minV) / binWidth)
		if b >= bins {
			b = bins - 1 // 最大值落入末桶
		}
		hist[b]++
	}

	// 累积分布并缩放到[0,255]
	var cdf [bins]float64
	sum := 0
	for i := 0; i < bins; i++ {
		sum += hist[i]
		cdf[i] = float64(sum)
	}
	cdfMin, cdfMax := cdf[0], cdf[bins-1]
	var scaled [bins]float64
	if cdfMax > cdfMin {
		for i := 0; i < bins; i++ {
			scaled[i] = math.Floor((cdf[i] - cdfMin) * 255 / (cdfMax - cdfMin))
		}
	}

	// 桶中心查找表
	var centers [bins]float64
	for i := 0; i < bins; i++ {
		centers[i] = minV + (float64(i)+0.5)*binWidth
	}

	for i, v := range data {
		if mask[i] {
			continue
		}
		output[i] = uint8(math.Round(interpCenters(v, centers[:], scaled[:])))
	}
}

// interpCenters 按桶中心的分段线性插值，端点外钳制
func interpCenters(v float64, centers, values []float64) float64 {
	n := len(centers)
	if v <= centers[0] {
		return values[0]
	}
	if v >= centers[n-1] {
		return values[n-1]
	}
	j := sort.SearchFloat64s(centers, v)
	// SearchFloat64s返回第一个 >= v 的位置，此处 1 <= j <= n-1
	if centers[j] == v {
		return values[j]
	}
	t := (v - centers[j-1]) / (centers[j] - centers[j-1])
	return values[j-1] + t*(values[j]-values[j-1])
}

// gammaBand Gamma校正：归一化到[0,1]后做幂变换
func gammaBand(data []float64, mask []bool, valid []float64, gamma float64, output []uint8) {
	minV, maxV := minMax(valid)
	rangeV := maxV - minV
	if rangeV == 0 {
		return
	}

	exp := 1.0 / gamma
	for i, v := range data {
		if mask[i] {
			continue
		}
		norm := (v - minV) / rangeV
		output[i] = uint8(math.Round(math.Pow(norm, exp) * 255))
	}
}

// percentile 线性插值百分位数（与numpy.percentile一致）
func percentile(values []float64, p float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}

	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	frac := rank - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

func minMax(values []float64) (minV, maxV float64) {
	minV, maxV = values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	return
}
