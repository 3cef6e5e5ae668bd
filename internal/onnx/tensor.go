package onnx

import (
	"errors"
	"fmt"
)

// Tensor is a float32 tensor prepared for ONNX input. Data layout is
// row-major NCHW.
type Tensor struct {
	Data  []float32
	Shape []int64 // [N, C, H, W]
}

// NewImageTensor builds a single-image tensor with shape [1, C, H, W].
// data must be length C*H*W in NCHW order.
func NewImageTensor(data []float32, c, h, w int) (Tensor, error) {
	if data == nil {
		return Tensor{}, errors.New("nil data")
	}
	if expected := c * h * w; len(data) != expected {
		return Tensor{}, fmt.Errorf("unexpected data length: got %d, want %d", len(data), expected)
	}
	return Tensor{Data: data, Shape: []int64{1, int64(c), int64(h), int64(w)}}, nil
}

// NewBatchImageTensor stacks multiple images into [N, C, H, W]. All images
// must share the same (C, H, W) and be in NCHW order.
func NewBatchImageTensor(images [][]float32, c, h, w int) (Tensor, error) {
	if len(images) == 0 {
		return Tensor{}, errors.New("empty batch")
	}
	per := c * h * w
	out := make([]float32, per*len(images))
	for i, d := range images {
		if len(d) != per {
			return Tensor{}, fmt.Errorf("image %d has length %d, want %d", i, len(d), per)
		}
		copy(out[i*per:(i+1)*per], d)
	}
	return Tensor{Data: out, Shape: []int64{int64(len(images)), int64(c), int64(h), int64(w)}}, nil
}

// ValidateNCHW ensures a shape is [N, C, H, W] with positive dimensions.
func ValidateNCHW(shape []int64) error {
	if len(shape) != 4 {
		return fmt.Errorf("shape rank %d != 4", len(shape))
	}
	for i, v := range shape {
		if v <= 0 {
			return fmt.Errorf("dimension %d must be > 0, got %d", i, v)
		}
	}
	return nil
}
