//go:build darwin && cgo

package capture

/*
#cgo LDFLAGS: -framework CoreGraphics -framework CoreFoundation
#include <CoreGraphics/CoreGraphics.h>
#include <dlfcn.h>
#include <stdlib.h>

typedef struct {
    void*  pix;
    size_t len;
    int    width;
    int    height;
} grabbed;

// CGWindowListCreateImage is missing from the macOS 15 SDK headers but is
// still exported by the CoreGraphics dylib.
typedef CGImageRef (*listCreateImageFn)(CGRect, uint32_t, uint32_t, uint32_t);

static listCreateImageFn resolveListCreateImage(void) {
    static listCreateImageFn fn = NULL;
    if (!fn) {
        fn = (listCreateImageFn)dlsym(RTLD_DEFAULT, "CGWindowListCreateImage");
    }
    return fn;
}

static grabbed grabDisplay(CGDirectDisplayID id) {
    grabbed g = {0};
    listCreateImageFn fn = resolveListCreateImage();
    if (!fn) {
        return g;
    }
    // kCGWindowListOptionOnScreenOnly, kCGNullWindowID, kCGWindowImageDefault
    CGImageRef image = fn(CGDisplayBounds(id), 1, 0, 0);
    if (!image) {
        return g;
    }
    g.width = (int)CGImageGetWidth(image);
    g.height = (int)CGImageGetHeight(image);
    g.len = (size_t)g.width * 4 * g.height;
    g.pix = malloc(g.len);
    if (!g.pix) {
        CGImageRelease(image);
        g.len = 0;
        return g;
    }
    CGColorSpaceRef cs = CGColorSpaceCreateDeviceRGB();
    CGContextRef ctx = CGBitmapContextCreate(g.pix, g.width, g.height, 8, g.width * 4,
        cs, kCGImageAlphaPremultipliedLast);
    CGContextDrawImage(ctx, CGRectMake(0, 0, g.width, g.height), image);
    CGContextRelease(ctx);
    CGColorSpaceRelease(cs);
    CGImageRelease(image);
    return g;
}
*/
import "C"

import (
	"errors"
	"fmt"
	"image"
	"unsafe"
)

// CGSource captures a display with CoreGraphics.
type CGSource struct {
	displayIndex int
	displayID    C.CGDirectDisplayID
}

// NewCGSource creates a CoreGraphics source for the given display index
// (0 is the main display).
func NewCGSource(displayIndex int) *CGSource {
	return &CGSource{displayIndex: displayIndex}
}

func (s *CGSource) Open() error {
	if s.displayIndex == 0 {
		s.displayID = C.CGMainDisplayID()
		return nil
	}
	var displays [16]C.CGDirectDisplayID
	var count C.uint32_t
	C.CGGetActiveDisplayList(16, &displays[0], &count)
	if s.displayIndex >= int(count) {
		return fmt.Errorf("display index %d out of range (have %d displays)", s.displayIndex, count)
	}
	s.displayID = displays[s.displayIndex]
	return nil
}

// Grab copies the current display contents into a new image.
func (s *CGSource) Grab() (*image.RGBA, error) {
	g := C.grabDisplay(s.displayID)
	if g.pix == nil {
		return nil, errors.New("CGWindowListCreateImage returned no image")
	}
	defer C.free(g.pix)

	w, h := int(g.width), int(g.height)
	pix := make([]byte, int(g.len))
	copy(pix, unsafe.Slice((*byte)(g.pix), int(g.len)))
	return &image.RGBA{Pix: pix, Stride: w * 4, Rect: image.Rect(0, 0, w, h)}, nil
}

func (s *CGSource) Close() error { return nil }

func init() {
	registeredSources["coregraphics"] = func(opts Options) (Source, error) {
		return NewCGSource(opts.DisplayIndex), nil
	}
}
