package tagger

import (
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/taggo/internal/mempool"
)

// InputSize is the square edge length the classifier expects.
const InputSize = 384

// Channels is the number of input channels (RGB after alpha compositing).
const Channels = 3

// fitDims computes the scaled dimensions that fit (w, h) into the model input
// square while preserving aspect ratio. Images smaller than the input are
// scaled up.
func fitDims(w, h int) (int, int) {
	scale := math.Min(float64(InputSize)/float64(w), float64(InputSize)/float64(h))
	nw := int(math.Round(float64(w) * scale))
	nh := int(math.Round(float64(h) * scale))
	if nw > InputSize {
		nw = InputSize
	}
	if nh > InputSize {
		nh = InputSize
	}
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}

// Preprocess converts an image to the normalized NCHW float32 input the
// classifier was trained on: Lanczos fit into a 384x384 canvas, alpha
// composited over mid gray, then normalized with mean and std 0.5 per channel.
// The returned buffer comes from a shared pool; callers on the batch hot path
// return it via mempool.PutFloat32 once its contents are copied out.
func Preprocess(img image.Image) []float32 {
	b := img.Bounds()
	nw, nh := fitDims(b.Dx(), b.Dy())

	resized := imaging.Resize(img, nw, nh, imaging.Lanczos)

	// Mid gray background doubles as the alpha-composite color and as neutral
	// padding: it normalizes to zero.
	canvas := imaging.New(InputSize, InputSize, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
	composed := imaging.OverlayCenter(canvas, resized, 1.0)

	data := mempool.GetFloat32(Channels * InputSize * InputSize)
	plane := InputSize * InputSize
	for y := 0; y < InputSize; y++ {
		for x := 0; x < InputSize; x++ {
			i := composed.PixOffset(x, y)
			// NRGBA pixel layout: R, G, B, A.
			for c := 0; c < Channels; c++ {
				v := float32(composed.Pix[i+c]) / 255.0
				data[c*plane+y*InputSize+x] = (v - 0.5) / 0.5
			}
		}
	}
	return data
}
