// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package docstore provides an in-process document store used by the "memory"
storage driver and by service-level tests.

It implements the collaborator contract the domain stores rely on:

  - create (Insert), find-by-key (Get), find-by-compound-key (Get with a struct key),
  - atomic update-by-key (Update / Upsert), delete-by-key (Delete),
  - count-by-filter (Count) and scan-by-filter (Find).

Documents are cloned on the way in and out, so callers can never mutate stored
state outside of an Update callback.
*/
package docstore

import (
	"errors"
	"sync"
)

var (
	// ErrDuplicateKey is returned by Insert when the key already exists.
	ErrDuplicateKey = errors.New("docstore: duplicate key")

	// ErrNotFound is returned by Update when the key does not exist.
	ErrNotFound = errors.New("docstore: document not found")
)

// # Collection

// Collection is a concurrency-safe keyed set of documents.
type Collection[K comparable, V any] struct {
	mu    sync.RWMutex
	docs  map[K]V
	clone func(V) V
}

// NewCollection creates an empty collection. clone deep-copies a document; pass
// nil for value types that need no copying.
func NewCollection[K comparable, V any](clone func(V) V) *Collection[K, V] {
	if clone == nil {
		clone = func(v V) V { return v }
	}
	return &Collection[K, V]{
		docs:  make(map[K]V),
		clone: clone,
	}
}

// Insert stores doc under key, failing with [ErrDuplicateKey] if it exists.
func (c *Collection[K, V]) Insert(key K, doc V) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.docs[key]; exists {
		return ErrDuplicateKey
	}
	c.docs[key] = c.clone(doc)
	return nil
}

// Get returns a copy of the document stored under key.
func (c *Collection[K, V]) Get(key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	doc, ok := c.docs[key]
	if !ok {
		var zero V
		return zero, false
	}
	return c.clone(doc), true
}

// Update atomically replaces the document under key with mutate's result.
//
// mutate receives a private copy; returning an error leaves the stored
// document untouched.
func (c *Collection[K, V]) Update(key K, mutate func(V) (V, error)) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	current, ok := c.docs[key]
	if !ok {
		return zero, ErrNotFound
	}

	next, err := mutate(c.clone(current))
	if err != nil {
		return zero, err
	}

	c.docs[key] = c.clone(next)
	return c.clone(next), nil
}

// Upsert atomically inserts or replaces the document under key and reports the
// previous version.
func (c *Collection[K, V]) Upsert(key K, mutate func(current V, exists bool) (V, error)) (previous V, existed bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	current, existed := c.docs[key]
	if existed {
		previous = c.clone(current)
	}

	next, err := mutate(c.clone(current), existed)
	if err != nil {
		return zero, existed, err
	}

	c.docs[key] = c.clone(next)
	return previous, existed, nil
}

// Delete removes the document under key and returns it.
func (c *Collection[K, V]) Delete(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	doc, ok := c.docs[key]
	if !ok {
		var zero V
		return zero, false
	}
	delete(c.docs, key)
	return doc, true
}

// Find returns copies of every document that satisfies match (nil matches all).
// Order is unspecified.
func (c *Collection[K, V]) Find(match func(V) bool) []V {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]V, 0)
	for _, doc := range c.docs {
		if match == nil || match(doc) {
			result = append(result, c.clone(doc))
		}
	}
	return result
}

// Count returns the number of documents that satisfy match (nil matches all).
func (c *Collection[K, V]) Count(match func(V) bool) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if match == nil {
		return len(c.docs)
	}

	count := 0
	for _, doc := range c.docs {
		if match(doc) {
			count++
		}
	}
	return count
}

// # Keyed Locking

// KeyedMutex serializes work per key while letting different keys run in
// parallel. Entries are reference counted and dropped once unused.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	sync.Mutex
	refs int
}

// NewKeyedMutex creates an empty [KeyedMutex].
func NewKeyedMutex() *KeyedMutex {
	return &KeyedMutex{locks: make(map[string]*keyedLock)}
}

// Lock blocks until key is free and returns the matching unlock function.
func (k *KeyedMutex) Lock(key string) (unlock func()) {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &keyedLock{}
		k.locks[key] = lock
	}
	lock.refs++
	k.mu.Unlock()

	lock.Lock()

	return func() {
		lock.Unlock()

		k.mu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

// Len returns the number of keys currently held or waited on.
func (k *KeyedMutex) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
