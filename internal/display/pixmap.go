package display

import (
	"fmt"
	"image"

	"github.com/BurntSushi/xgb/xproto"
)

// putImageHeader is the fixed size of a PutImage request in bytes
const putImageHeader = 24

// pixmapFormat describes how the server lays out ZPixmap data at a depth
type pixmapFormat struct {
	depth         byte
	bytesPerPixel int
	scanlinePad   int
}

func formatForDepth(setup *xproto.SetupInfo, depth byte) (pixmapFormat, error) {
	for _, format := range setup.PixmapFormats {
		if format.Depth != depth {
			continue
		}
		f := pixmapFormat{
			depth:         depth,
			bytesPerPixel: int(format.BitsPerPixel) / 8,
			scanlinePad:   int(format.ScanlinePad) / 8,
		}
		if f.bytesPerPixel != 3 && f.bytesPerPixel != 4 {
			return pixmapFormat{}, fmt.Errorf("unsupported bits per pixel %d at depth %d", format.BitsPerPixel, depth)
		}
		return f, nil
	}
	return pixmapFormat{}, fmt.Errorf("no format found for depth %d", depth)
}

// stride is the padded scanline length in bytes
func (f pixmapFormat) stride(width int) int {
	unpadded := width * f.bytesPerPixel
	if f.scanlinePad <= 1 {
		return unpadded
	}
	return ((unpadded + f.scanlinePad - 1) / f.scanlinePad) * f.scanlinePad
}

// encode converts rows [y0, y1) of img to the server's BGR(x) layout
func (f pixmapFormat) encode(img *image.RGBA, y0, y1 int) []byte {
	b := img.Bounds()
	width := b.Dx()
	stride := f.stride(width)
	data := make([]byte, stride*(y1-y0))

	for y := y0; y < y1; y++ {
		row := (y - y0) * stride
		src := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < width; x++ {
			s := src + x*4
			d := row + x*f.bytesPerPixel
			data[d] = img.Pix[s+2]
			data[d+1] = img.Pix[s+1]
			data[d+2] = img.Pix[s]
			if f.bytesPerPixel == 4 && f.depth == 32 {
				data[d+3] = img.Pix[s+3]
			}
		}
	}
	return data
}

// stripRows returns how many scanlines fit in one PutImage request
func stripRows(maxRequestBytes, stride int) int {
	if stride <= 0 {
		return 0
	}
	return max((maxRequestBytes-putImageHeader)/stride, 1)
}
