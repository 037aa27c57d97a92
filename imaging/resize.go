package imaging

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"

	"github.com/framewright/scenedetect/frame"
)

// ResizeOptions configures how ResizeForSave transforms a sample frame
// before handing it to a Writer. Precedence mirrors save_images: Height+
// Width together forces an exact size; either alone preserves aspect
// ratio; Scale applies only when neither Height nor Width is set.
type ResizeOptions struct {
	Height *int
	Width  *int
	Scale  *float64
}

// bgrImage adapts a *frame.Image to image.Image so it can be fed to
// golang.org/x/image/draw scalers.
type bgrImage struct{ im *frame.Image }

func (b bgrImage) ColorModel() color.Model { return color.RGBAModel }
func (b bgrImage) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.im.Width, b.im.Height)
}
func (b bgrImage) At(x, y int) color.Color {
	bl, g, r := b.im.At(x, y)
	return color.RGBA{R: r, G: g, B: bl, A: 255}
}

// rgbaToImage converts an *image.RGBA produced by draw.Scale back into a
// *frame.Image.
func rgbaToImage(src *image.RGBA) *frame.Image {
	bounds := src.Bounds()
	out := frame.NewImage(bounds.Dx(), bounds.Dy())
	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			c := src.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)
			out.Set(x, y, c.B, c.G, c.R)
		}
	}
	return out
}

// scaleTo resizes img to exactly (w, h) using Catmull-Rom interpolation,
// grounded on zapdos-labs-unblink's frame_preprocess.go use of
// draw.CatmullRom.Scale. If scratch is non-nil and already sized w×h, it
// is reused as the scale destination instead of allocating a new buffer.
func scaleTo(img *frame.Image, w, h int, scratch *image.RGBA) *frame.Image {
	if w == img.Width && h == img.Height {
		return img
	}
	dst := scratch
	if dst == nil || dst.Bounds().Dx() != w || dst.Bounds().Dy() != h {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	draw.CatmullRom.Scale(dst, dst.Bounds(), bgrImage{img}, bgrImage{img}.Bounds(), draw.Over, nil)
	return rgbaToImage(dst)
}

// correctAspectRatio rescales img horizontally by aspectRatio (the
// source's sample/pixel aspect ratio) so that non-square pixels display
// correctly once saved, matching save_images's cv2.resize(fx=aspect_ratio,
// fy=1.0) step. aspectRatio within 0.01 of 1.0 is treated as square and
// left untouched, matching save_images's `abs(aspect_ratio - 1.0) < 0.01`
// check.
func correctAspectRatio(img *frame.Image, aspectRatio float64) *frame.Image {
	if math.Abs(aspectRatio-1.0) < 0.01 {
		return img
	}
	newWidth := int(math.Round(float64(img.Width) * aspectRatio))
	if newWidth < 1 {
		newWidth = 1
	}
	return scaleTo(img, newWidth, img.Height, nil)
}

// OutputDims computes the final (width, height) ResizeForSave will
// produce for a source frame of size (srcW, srcH) given aspectRatio and
// opts, without actually resizing anything. Extractor uses this to
// size a BlockingPool of reusable scale buffers up front, since every
// sample frame from one source shares the same input and output
// dimensions.
func OutputDims(srcW, srcH int, aspectRatio float64, opts ResizeOptions) (w, h int) {
	w, h = srcW, srcH
	if math.Abs(aspectRatio-1.0) >= 0.01 {
		w = int(math.Round(float64(w) * aspectRatio))
		if w < 1 {
			w = 1
		}
	}

	switch {
	case opts.Height != nil && opts.Width != nil:
		return *opts.Width, *opts.Height
	case opts.Height != nil:
		factor := float64(*opts.Height) / float64(h)
		return int(factor * float64(w)), *opts.Height
	case opts.Width != nil:
		factor := float64(*opts.Width) / float64(w)
		return *opts.Width, int(factor * float64(h))
	case opts.Scale != nil:
		return int(*opts.Scale * float64(w)), int(*opts.Scale * float64(h))
	default:
		return w, h
	}
}

// ResizeForSave applies aspect-ratio correction (if aspectRatio is
// non-square) followed by the configured resize, mirroring save_images's
// per-image resize block. scratch, if non-nil, is reused as the scale
// destination buffer (see OutputDims and BlockingPool).
func ResizeForSave(img *frame.Image, aspectRatio float64, opts ResizeOptions, scratch *image.RGBA) *frame.Image {
	img = correctAspectRatio(img, aspectRatio)

	switch {
	case opts.Height != nil && opts.Width != nil:
		return scaleTo(img, *opts.Width, *opts.Height, scratch)
	case opts.Height != nil:
		factor := float64(*opts.Height) / float64(img.Height)
		w := int(factor * float64(img.Width))
		return scaleTo(img, w, *opts.Height, scratch)
	case opts.Width != nil:
		factor := float64(*opts.Width) / float64(img.Width)
		h := int(factor * float64(img.Height))
		return scaleTo(img, *opts.Width, h, scratch)
	case opts.Scale != nil:
		w := int(*opts.Scale * float64(img.Width))
		h := int(*opts.Scale * float64(img.Height))
		return scaleTo(img, w, h, scratch)
	default:
		return img
	}
}
