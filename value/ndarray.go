package value

import "fmt"

// NDArray is an n-dimensional array whose elements are stored flattened
// in row-major order. Strides are in bytes, one per dimension, as
// reported to and by the execution engine.
type NDArray struct {
	Shape   []int64
	Strides []int64
	Data    []any
}

// NewNDArray returns a C-contiguous array of the given shape. elemSize is
// the width of one element in bytes.
func NewNDArray(shape []int64, elemSize int64, data []any) (*NDArray, error) {
	n := int64(1)
	for _, d := range shape {
		if d < 0 {
			return nil, fmt.Errorf("negative dimension %d in shape %v", d, shape)
		}
		n *= d
	}
	if int64(len(data)) != n {
		return nil, fmt.Errorf("shape %v holds %d elements, got %d", shape, n, len(data))
	}
	strides := make([]int64, len(shape))
	stride := elemSize
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}
	return &NDArray{
		Shape:   append([]int64(nil), shape...),
		Strides: strides,
		Data:    data,
	}, nil
}

// Size returns the number of elements implied by the shape.
func (a *NDArray) Size() int64 {
	n := int64(1)
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

func (a *NDArray) Ndim() int { return len(a.Shape) }
