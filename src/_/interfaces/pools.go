// Package interfaces holds the tiny cross-cutting interfaces shared by the
// pooling and iteration helpers. Kept dependency-free so every other layer
// can import it without creating cycles.
package interfaces

// FuncRepool returns a pooled value to its pool. Each call puts the value
// back again, since sync.Pool does not track double-puts, so calling it more
// than once can hand the same value to two later checkouts.
type FuncRepool func()

// Pool hands out values of T and a matching FuncRepool to return them.
type Pool[T any] interface {
	GetWithRepool() (T, FuncRepool)
}

// Ptr constrains SWIMMER_PTR to be a pointer to SWIMMER.
type Ptr[T any] interface {
	*T
}

// ResetablePtr constrains SWIMMER_PTR to a pointer to SWIMMER that also
// knows how to reset itself between pool checkouts.
type ResetablePtr[T any] interface {
	Ptr[T]
	Reset()
}

// PoolPtr is a Pool specialized for pointer-typed swimmers.
type PoolPtr[T any, TPtr Ptr[T]] interface {
	Pool[TPtr]
}

// SeqError is the iterator shape used for enumerating a possibly-large,
// possibly-failing sequence (e.g. every object id in a store) without
// materializing it as a slice up front.
type SeqError[T any] func(yield func(T, error) bool)
