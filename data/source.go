package data

// Source yields batches one at a time. Sources are finite and restartable:
// Reset rewinds to the beginning, re-opening whatever backs the source, and
// the Scan/Batch pair walks it until Scan reports false. Batch is nil until
// the first successful Scan. Err returns the first error hit while scanning.
//
// Usage follows the bufio.Scanner shape:
//
//	if err := src.Reset(); err != nil { ... }
//	for src.Scan() {
//		b := src.Batch()
//		...
//	}
//	if err := src.Err(); err != nil { ... }
type Source interface {
	Reset() error
	Scan() bool
	Batch() Batch
	Err() error
}
