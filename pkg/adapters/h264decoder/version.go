package h264decoder

/*
#cgo pkg-config: libavcodec libavutil
#include <libavcodec/avcodec.h>
#include <libavutil/avutil.h>
*/
import "C"

import "fmt"

// EngineVersion describes the linked libavcodec build.
func EngineVersion() string {
	v := uint(C.avcodec_version())
	return fmt.Sprintf("libavcodec %d.%d.%d (%s)", v>>16, (v>>8)&0xff, v&0xff, C.GoString(C.av_version_info()))
}
