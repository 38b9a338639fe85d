// gdal_init.go
package SpectralEnhance

/*
#include "gdal.h"
#include <stdlib.h>

#cgo pkg-config: gdal
#cgo LDFLAGS: -ldl
*/
import "C"

import (
	"sync"
	"unsafe"
)

var gdalInitOnce sync.Once

// InitializeGDAL 初始化GDAL驱动，多次调用安全
func InitializeGDAL() {
	gdalInitOnce.Do(func() {
		C.GDALAllRegister()
	})
}

// GDALVersion 获取GDAL运行时版本号
func GDALVersion() string {
	req := C.CString("RELEASE_NAME")
	defer C.free(unsafe.Pointer(req))
	return C.GoString(C.GDALVersionInfo(req))
}
