package pulse

import (
	"sync"
	"sync/atomic"
)

// Owner is a disposal scope that owns reactive primitives. Disposing an
// Owner disposes every effect and child owner it adopted and runs its
// registered cleanups. Owners form a hierarchy so nested scopes tear down
// with their parent.
//
// Owners are optional: signals and computeds created outside any owner
// live until their handles are dropped, and effects can be disposed
// directly through their handle.
type Owner struct {
	id uint64

	// parent is nil for a root owner.
	parent *Owner

	children   []*Owner
	childrenMu sync.Mutex

	effects   []*Effect
	effectsMu sync.Mutex

	cleanups   []func()
	cleanupsMu sync.Mutex

	// values stores context values visible to this scope and its
	// descendants.
	values   map[any]any
	valuesMu sync.RWMutex

	disposed atomic.Bool
}

// NewOwner creates an owner with the given parent, registering it as a
// child. A nil parent creates a root owner.
func NewOwner(parent *Owner) *Owner {
	o := &Owner{
		id:     nextID(),
		parent: parent,
	}

	if parent != nil {
		parent.addChild(o)
	}

	return o
}

// ID returns the unique identifier for this owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Parent returns the parent owner, or nil for a root owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed reports whether this owner has been disposed.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

func (o *Owner) addChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	o.children = append(o.children, child)
}

func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()

	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// registerEffect adopts an effect; it is disposed with this owner.
func (o *Owner) registerEffect(e *Effect) {
	if o.disposed.Load() {
		return
	}

	o.effectsMu.Lock()
	defer o.effectsMu.Unlock()
	o.effects = append(o.effects, e)
}

// OnCleanup registers fn to run when this owner is disposed. If the owner
// is already disposed, fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		fn()
		return
	}

	o.cleanupsMu.Lock()
	defer o.cleanupsMu.Unlock()
	o.cleanups = append(o.cleanups, fn)
}

// SetValue stores a context value on this owner.
func (o *Owner) SetValue(key, value any) {
	o.valuesMu.Lock()
	defer o.valuesMu.Unlock()

	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
}

// GetValue looks up a context value on this owner or the nearest ancestor
// that provides it. Returns nil when not found.
func (o *Owner) GetValue(key any) any {
	o.valuesMu.RLock()
	if o.values != nil {
		if val, ok := o.values[key]; ok {
			o.valuesMu.RUnlock()
			return val
		}
	}
	o.valuesMu.RUnlock()

	if o.parent != nil {
		return o.parent.GetValue(key)
	}

	return nil
}

// Dispose tears down this owner: children first (in reverse creation
// order), then effects, then cleanups (also in reverse order). Idempotent.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.childrenMu.Lock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	o.children = nil
	o.childrenMu.Unlock()

	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	o.effectsMu.Lock()
	effects := o.effects
	o.effects = nil
	o.effectsMu.Unlock()

	for _, e := range effects {
		e.Dispose()
	}

	o.cleanupsMu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	o.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}

// SetContext stores a context value on the current owner scope, visible
// to descendants via GetContext. No-op outside an owner scope.
func SetContext(key, value any) {
	if owner := getCurrentOwner(); owner != nil {
		owner.SetValue(key, value)
	}
}

// GetContext retrieves a context value from the nearest provider in the
// current owner hierarchy. Returns nil when no owner is active or no
// provider is found.
func GetContext(key any) any {
	if owner := getCurrentOwner(); owner != nil {
		return owner.GetValue(key)
	}
	return nil
}
