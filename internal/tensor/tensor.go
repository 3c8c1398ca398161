package tensor

import (
	"fmt"
	"math/rand"
)

// Tensor is a dense float32 tensor in NCTHW layout (batch, channel, time,
// height, width). The pipeline only ever manipulates 4-D pixel frames and
// 5-D clips, so the axis helpers below assume those layouts.
type Tensor struct {
	shape []int
	data  []float32
}

// New allocates a zero-filled tensor with the given shape.
func New(shape ...int) *Tensor {
	size := 1
	for _, dim := range shape {
		if dim <= 0 {
			panic(fmt.Sprintf("tensor: non-positive dimension %d in shape %v", dim, shape))
		}
		size *= dim
	}
	return &Tensor{shape: append([]int(nil), shape...), data: make([]float32, size)}
}

// FromData wraps existing values in a tensor. The data length must match the
// shape product.
func FromData(data []float32, shape ...int) (*Tensor, error) {
	size := 1
	for _, dim := range shape {
		size *= dim
	}
	if len(data) != size {
		return nil, fmt.Errorf("tensor: data length %d does not match shape %v", len(data), shape)
	}
	return &Tensor{shape: append([]int(nil), shape...), data: data}, nil
}

// Ones allocates a tensor filled with 1.0.
func Ones(shape ...int) *Tensor {
	t := New(shape...)
	for i := range t.data {
		t.data[i] = 1
	}
	return t
}

// OnesLike allocates a tensor of ones with the same shape as t.
func OnesLike(t *Tensor) *Tensor {
	return Ones(t.shape...)
}

// Shape returns a copy of the tensor's dimensions.
func (t *Tensor) Shape() []int {
	return append([]int(nil), t.shape...)
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int { return len(t.shape) }

// Dim returns the size of axis i.
func (t *Tensor) Dim(i int) int { return t.shape[i] }

// Data exposes the backing slice. Callers must not resize it.
func (t *Tensor) Data() []float32 { return t.data }

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	data := make([]float32, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: append([]int(nil), t.shape...), data: data}
}

// Scale multiplies every element by factor in place and returns t.
func (t *Tensor) Scale(factor float32) *Tensor {
	for i := range t.data {
		t.data[i] *= factor
	}
	return t
}

// RescaleToSigned maps values from [0,1] to [-1,1] in place: x*2 - 1.
func (t *Tensor) RescaleToSigned() *Tensor {
	for i := range t.data {
		t.data[i] = t.data[i]*2 - 1
	}
	return t
}

// RescaleToUnit maps values from [-1,1] back to [0,1] in place: (x+1)/2.
// Inverse of RescaleToSigned.
func (t *Tensor) RescaleToUnit() *Tensor {
	for i := range t.data {
		t.data[i] = (t.data[i] + 1) / 2
	}
	return t
}

// UnsqueezeTime inserts a temporal axis of size 1 into a 4-D frame tensor,
// turning [B,C,H,W] into [B,C,1,H,W]. The data layout is unchanged.
func (t *Tensor) UnsqueezeTime() (*Tensor, error) {
	if len(t.shape) != 4 {
		return nil, fmt.Errorf("tensor: unsqueeze expects a 4-D frame, got rank %d", len(t.shape))
	}
	shape := []int{t.shape[0], t.shape[1], 1, t.shape[2], t.shape[3]}
	return &Tensor{shape: shape, data: t.data}, nil
}

// ConcatChannels concatenates two 5-D clip tensors along the channel axis.
// All non-channel dimensions must match exactly.
func ConcatChannels(a, b *Tensor) (*Tensor, error) {
	if a.Rank() != 5 || b.Rank() != 5 {
		return nil, fmt.Errorf("tensor: channel concat expects 5-D clips, got ranks %d and %d", a.Rank(), b.Rank())
	}
	for _, axis := range []int{0, 2, 3, 4} {
		if a.shape[axis] != b.shape[axis] {
			return nil, fmt.Errorf("tensor: channel concat shape mismatch on axis %d: %v vs %v", axis, a.shape, b.shape)
		}
	}

	batch, time, height, width := a.shape[0], a.shape[2], a.shape[3], a.shape[4]
	outChannels := a.shape[1] + b.shape[1]
	out := New(batch, outChannels, time, height, width)

	frame := time * height * width
	for n := 0; n < batch; n++ {
		dst := out.data[n*outChannels*frame:]
		srcA := a.data[n*a.shape[1]*frame : (n+1)*a.shape[1]*frame]
		srcB := b.data[n*b.shape[1]*frame : (n+1)*b.shape[1]*frame]
		copy(dst[:len(srcA)], srcA)
		copy(dst[len(srcA):len(srcA)+len(srcB)], srcB)
	}
	return out, nil
}

// RandN fills a new tensor of the given shape with pseudo-normal noise from
// rng. Used by codec fakes and the stochastic latent sample path.
func RandN(rng *rand.Rand, shape ...int) *Tensor {
	t := New(shape...)
	for i := range t.data {
		t.data[i] = float32(rng.NormFloat64())
	}
	return t
}
