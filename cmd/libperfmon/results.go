package main

import (
	"errors"

	"github.com/dylandreimerink/perfmon"
)

var errOutOfMemory = errors.New("out of memory for results")

// resultArray mirrors the accumulated session results into caller visible storage. Entries are only written once,
// the storage is grown by doubling so earlier entries survive reallocation.
type resultArray[N any] struct {
	// names holds one name per event, result i belongs to event i % len(names)
	names    []N
	written  int
	capacity int

	// realloc grows the storage to hold n entries, keeping existing entries. It returns false if out of memory.
	realloc func(n int) bool
	// set writes entry i of the storage
	set func(i int, name N, value uint64)
}

// sync writes the entries of res which have not been written yet and returns the size of the array.
func (a *resultArray[N]) sync(res []perfmon.Result) (int, error) {
	if err := a.grow(len(res)); err != nil {
		return 0, err
	}

	for i := a.written; i < len(res); i++ {
		a.set(i, a.names[i%len(a.names)], res[i].Value)
	}
	a.written = len(res)

	return len(res), nil
}

func (a *resultArray[N]) grow(n int) error {
	if n <= a.capacity {
		return nil
	}

	newCap := a.capacity * 2
	if newCap < n {
		newCap = n
	}

	if !a.realloc(newCap) {
		return errOutOfMemory
	}
	a.capacity = newCap

	return nil
}

// reset forgets the written entries, the storage is kept for reuse.
func (a *resultArray[N]) reset() {
	a.written = 0
}
