package client

// Result is the uniform envelope every client operation resolves to: exactly
// one of Data/Error is populated, and Status always carries the HTTP status
// code (500 for transport-level failures). Operations never return Go errors
// across the client boundary.
type Result[T any] struct {
	Status int
	Data   *T
	Error  string
}

// OK reports whether the operation succeeded. A successful Result may still
// carry nil Data for operations whose value is legitimately absent
// (e.g. no attendance record today).
func (r Result[T]) OK() bool { return r.Error == "" }

func okResult[T any](status int, v T) Result[T] {
	return Result[T]{Status: status, Data: &v}
}

func errResult[T any](status int, msg string) Result[T] {
	return Result[T]{Status: status, Error: msg}
}
