package cfix

import (
	"fmt"
	"os"
	"strings"
	"sync"
)

// handle names for the allocator's three counted pools: the table
// structure, the bin array, and the iterator.
const (
	handleTable    = "table"
	handleBin      = "bin"
	handleIterator = "iterator"
)

// handleStats tracks reuse/recycle counters for a single named handle -
// counted make/drop of slices rather than a hand-rolled free list, since
// Go's garbage collector already does the bulk free.
type handleStats struct {
	reused, recycled uint64
	curusage, maxusage uint64
}

// allocator is a process-wide-by-default, but injectable, bookkeeper of
// allocate/free calls per named handle. It exists so that a leaked bin
// array or a double-recycled iterator is caught deterministically instead
// of silently relying on the garbage collector to paper over a bug.
type allocator struct {
	mu      sync.Mutex
	errorFn func(string)
	stats   map[string]*handleStats
}

func newAllocator(errorFn func(string)) *allocator {
	if errorFn == nil {
		errorFn = defaultAllocatorError
	}
	return &allocator{
		errorFn: errorFn,
		stats:   make(map[string]*handleStats, 3),
	}
}

func defaultAllocatorError(msg string) {
	fmt.Fprintf(os.Stderr, "\n\ncfix: %s\n", msg)
}

func (a *allocator) handle(name string) *handleStats {
	a.mu.Lock()
	defer a.mu.Unlock()
	h, ok := a.stats[name]
	if !ok {
		h = &handleStats{}
		a.stats[name] = h
	}
	return h
}

// alloc accounts for n units being taken from handle name. It never
// allocates memory itself - Go slices/structs are allocated by their
// callers with make/new - it only tracks that an allocation of size n
// happened so checkClean can verify every allocation was later freed.
func (a *allocator) alloc(name string, n uint64) {
	if n == 0 {
		a.fatal(fmt.Sprintf("zero-sized allocation requested on handle %q", name))
	}
	h := a.handle(name)
	a.mu.Lock()
	h.reused++
	h.curusage += n
	if h.curusage > h.maxusage {
		h.maxusage = h.curusage
	}
	a.mu.Unlock()
}

// free accounts for n units being returned to handle name.
func (a *allocator) free(name string, n uint64) {
	if n == 0 {
		a.fatal(fmt.Sprintf("zero-sized free requested on handle %q", name))
	}
	h := a.handle(name)
	a.mu.Lock()
	if h.curusage < n {
		a.mu.Unlock()
		a.fatal(fmt.Sprintf("handle %q freed more than was allocated", name))
		return
	}
	h.recycled++
	h.curusage -= n
	a.mu.Unlock()
}

// fatal reports a contract violation through the installed error callback
// and aborts the process. Contract violations are programming errors, never
// user-data errors, and never cross the public API boundary recoverably.
func (a *allocator) fatal(msg string) {
	a.errorFn(msg)
	os.Exit(1)
}

// Report renders a human-readable usage summary across every handle.
func (a *allocator) Report() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	var b strings.Builder
	for _, name := range []string{handleTable, handleBin, handleIterator} {
		h, ok := a.stats[name]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%-10s reused=%d recycled=%d maxusage=%d\n", name, h.reused, h.recycled, h.maxusage)
	}
	return b.String()
}

// checkClean verifies every handle's reused count matches its recycled
// count and aborts the process if any handle still has outstanding
// allocations.
func (a *allocator) checkClean() {
	a.mu.Lock()
	var leaked []string
	for name, h := range a.stats {
		if h.reused != h.recycled {
			leaked = append(leaked, fmt.Sprintf("%s: reused=%d recycled=%d", name, h.reused, h.recycled))
		}
	}
	a.mu.Unlock()
	if len(leaked) > 0 {
		a.fatal("allocations leaked at shutdown: " + strings.Join(leaked, "; "))
	}
}

var (
	defaultAllocatorMu sync.Mutex
	defaultAllocatorV  *allocator
)

// defaultAllocator lazily creates the process-wide allocator singleton that
// New uses when no allocator override is supplied, while letting tests
// reach past it.
func defaultAllocator() *allocator {
	defaultAllocatorMu.Lock()
	defer defaultAllocatorMu.Unlock()
	if defaultAllocatorV == nil {
		defaultAllocatorV = newAllocator(nil)
	}
	return defaultAllocatorV
}

// ResetDefaultAllocator replaces the package-wide default allocator with a
// fresh instance. It exists purely for test isolation - so one test's
// leaked allocations don't fail an unrelated later test's leak check.
func ResetDefaultAllocator() {
	defaultAllocatorMu.Lock()
	defer defaultAllocatorMu.Unlock()
	defaultAllocatorV = newAllocator(nil)
}
