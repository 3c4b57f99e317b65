// Package cfix implements a cache-dense cuckoo hash table for 32-bit keys
// carrying an optional fixed-width uint32 payload.
//
// Keys and, when configured, payload data are stored column-major in groups
// of cache-line-sized bins: a bin holds BinCapacity sorted keys in one cache
// line, with any data rows following in the next lines, so that a lookup
// reads at most two key lines (the key's primary and secondary bin) plus,
// on a hit, the Data lines that follow the matching key line.
// Insertion uses two independent hash functions (a primary and a secondary
// candidate bin per key) and bounded-depth cuckoo displacement to keep the
// table dense without chaining.
//
// The table is not safe for concurrent use; callers sharing a *Table across
// goroutines must provide their own mutual exclusion.
package cfix
