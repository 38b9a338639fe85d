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
	"encoding/xml"
	"os"
	"path/filepath"
)

var MainConfig EnhanceConfig

// EnhanceConfig 输出GeoTIFF创建选项
type EnhanceConfig struct {
	XMLName   xml.Name `xml:"config"`
	Compress  string   `xml:"compress"`
	Tiled     bool     `xml:"tiled"`
	BlockSize int      `xml:"blocksize"`
}

func init() {
	// 默认选项，配置文件缺失时直接使用
	MainConfig = EnhanceConfig{
		Compress:  "LZW",
		Tiled:     true,
		BlockSize: 256,
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return
	}
	configdata := filepath.Join(configDir, "BoundlessMap", "enhance.xml")
	xmlFile, err := os.Open(configdata)
	if err != nil {
		return
	}
	defer xmlFile.Close()

	xmlDecoder := xml.NewDecoder(xmlFile)
	cfg := MainConfig
	if err := xmlDecoder.Decode(&cfg); err != nil {
		return
	}
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = 256
	}
	MainConfig = cfg
}
