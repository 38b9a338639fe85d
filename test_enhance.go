/*
Copyright (C) 2025 [GrainArc]

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published
by the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package SpectralEnhance

import (
	"fmt"
	"log"
	"path/filepath"
	"time"
)

// PerformSpectralEnhancementTest 完整增强流程演示
// 打开影像 -> 增强 -> 输出范围GeoJSON -> 写入历史记录
func PerformSpectralEnhancementTest(inputFile, outputFile string, method EnhanceMethod) error {
	startTime := time.Now()

	// 1. 读取输入影像信息
	fmt.Println("正在读取输入影像...")
	rd, err := OpenRasterDataset(inputFile)
	if err != nil {
		return fmt.Errorf("打开影像失败: %v", err)
	}
	info := rd.GetInfo()
	fmt.Printf("影像尺寸: %dx%d, 波段数: %d\n", info.Width, info.Height, info.BandCount)

	fpJSON, err := FootprintGeoJSON(rd)
	if err != nil {
		log.Printf("生成范围GeoJSON失败: %v", err)
	} else {
		fmt.Printf("影像范围: %s\n", string(fpJSON))
	}
	rd.Close()

	// 2. 执行增强
	params := EnhanceTaskParams{
		InputPath:     inputFile,
		OutputPath:    outputFile,
		EnhanceParams: DefaultEnhanceParams(),
	}
	params.Method = method

	result, err := EnhanceRaster(params, func(complete float64, message string) bool {
		fmt.Printf("[%.0f%%] %s\n", complete*100, message)
		return true
	})
	if err != nil {
		return fmt.Errorf("增强失败: %v", err)
	}
	fmt.Printf("处理完成: %d/%d 波段, 跳过 %d 个空波段\n",
		result.ProcessedBands, result.BandCount, len(result.SkippedBands))

	// 3. 写入历史记录
	historyPath := filepath.Join(filepath.Dir(outputFile), "enhance_history.db")
	db, err := CreateEnhanceHistoryDB(historyPath)
	if err != nil {
		log.Printf("创建历史记录库失败: %v", err)
	} else {
		defer db.Close()
		rec := NewEnhanceRecord(params, result)
		if err := InsertEnhanceRecord(db, &rec); err != nil {
			log.Printf("写入历史记录失败: %v", err)
		}
	}

	fmt.Printf("总耗时: %v\n", time.Since(startTime))
	return nil
}
