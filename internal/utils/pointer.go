package utils

// Ptr returns a pointer to a copy of v. Optional request fields use it so
// that a zero value can still be sent explicitly.
//
//	config := ai.GenerationConfig{Temperature: utils.Ptr(float32(0))}
func Ptr[T any](v T) *T {
	return &v
}
