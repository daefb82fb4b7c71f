package pulse

// Reactive is the type-erased read contract every producer satisfies:
// a stable identity, a type-erased read, and change subscription. Adapters
// use it to handle signals and computeds generically, including wrapped or
// read-only views from other packages — satisfaction is structural, never
// tied to the concrete types in this package.
type Reactive interface {
	ID() uint64
	GetAny() any
	Subscribe(fn func()) (unsubscribe func())
}

// WritableReactive extends Reactive with a type-erased write.
type WritableReactive interface {
	Reactive
	SetAny(value any) error
}

// IsSignal reports whether x is a reactive value: anything exposing the
// Reactive read/subscribe contract.
func IsSignal(x any) bool {
	_, ok := x.(Reactive)
	return ok
}

// IsWritableSignal reports whether x is a mutable reactive value.
func IsWritableSignal(x any) bool {
	_, ok := x.(WritableReactive)
	return ok
}

var (
	_ WritableReactive = (*Signal[int])(nil)
	_ Reactive         = (*Computed[int])(nil)
)
