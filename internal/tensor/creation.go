package tensor

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 0, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with a specific value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	var dummy T
	raw, err := NewRaw(shape, inferDataType(any(dummy)), b.Device())
	if err != nil {
		panic(err)
	}

	t := New[T, B](raw, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}
