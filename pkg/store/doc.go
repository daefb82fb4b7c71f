// Package store provides global and scope-local signal declarations on
// top of the pulse engine.
//
// A Global is a process-wide signal. A Shared is a definition whose
// backing signal is materialized per Store, looked up through the owner
// context, so several scopes can use one declaration without sharing
// state:
//
//	var counter = store.NewShared(0)
//
//	scope := pulse.NewOwner(nil)
//	store.Attach(scope, store.New())
//	pulse.WithOwner(scope, func() {
//	    counter.Set(5) // only this scope sees 5
//	})
package store
