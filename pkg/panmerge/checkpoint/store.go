// Package checkpoint provides durable completion tracking for resumable
// merge runs.
//
// A Store holds the set of sample names whose genomes have been fully
// merged. The orchestrator loads the set once at run start, skips every
// member, and appends each sample immediately after its output is
// durable. A run that is interrupted and restarted therefore repeats
// only unfinished work.
package checkpoint

import "errors"

// Store persists the set of completed sample names.
// Implementations must be safe for concurrent use.
type Store interface {
	// Load returns the completed set. A store with no backing data
	// yet returns an empty set, not an error.
	Load() (map[string]struct{}, error)

	// Append durably records that a sample has completed. The caller
	// guarantees at most one Append per sample per run; the store
	// does not deduplicate.
	Append(sample string) error

	// Reset discards the backing data. A store that has nothing to
	// discard returns nil.
	Reset() error

	// Close releases any resources. Operations after Close return
	// ErrStoreClosed.
	Close() error
}

// ErrStoreClosed indicates the store has been closed.
var ErrStoreClosed = errors.New("checkpoint store closed")
