package cairo

// Result mirrors core::result::Result. Exactly one of Ok and Err is
// meaningful, selected by IsErr.
type Result[T, E any] struct {
	Ok    T
	Err   E
	IsErr bool
}

// Ok returns a successful result.
func Ok[T, E any](v T) Result[T, E] {
	return Result[T, E]{Ok: v}
}

// Err returns a failed result.
func Err[T, E any](e E) Result[T, E] {
	return Result[T, E]{Err: e, IsErr: true}
}
