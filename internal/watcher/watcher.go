package watcher

import (
	"context"
	"time"
)

// Operation classifies a change observed in the watch directory.
type Operation int

const (
	// OpCreate indicates a new bundle file appeared, including files moved
	// into the watch directory.
	OpCreate Operation = iota
	// OpModify indicates an existing bundle's content changed.
	OpModify
	// OpDelete indicates a bundle file was deleted.
	OpDelete
	// OpRename indicates a bundle file was moved away from its path.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	case OpRename:
		return "RENAME"
	default:
		return "UNKNOWN"
	}
}

// FileEvent is one observed change to a bundle file.
type FileEvent struct {
	// Path is the absolute path of the affected bundle file.
	Path string

	// Operation is the kind of change.
	Operation Operation

	// Timestamp is when the change was observed.
	Timestamp time.Time
}

// Watcher is an event source for bundle changes. Events arrive as debounced
// batches; each batch holds at most one coalesced event per path.
type Watcher interface {
	// Start begins watching the given directory (flat, bundles only) and
	// blocks until Stop is called or the context is cancelled.
	Start(ctx context.Context, dir string) error

	// Stop stops the watcher and releases resources.
	// Safe to call multiple times.
	Stop() error

	// Events returns the channel of debounced event batches.
	// The channel is closed when the watcher stops.
	Events() <-chan []FileEvent

	// Errors returns the channel of non-fatal watch errors.
	// The channel is closed when the watcher stops.
	Errors() <-chan error
}

// Options configures watcher behavior.
type Options struct {
	// DebounceWindow is the quiet period before a coalesced batch is emitted.
	// Default: 200ms
	DebounceWindow time.Duration

	// EventBufferSize is the capacity of the batch channel.
	// Default: 64
	EventBufferSize int
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  200 * time.Millisecond,
		EventBufferSize: 64,
	}
}

// WithDefaults returns options with defaults applied for zero values.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow == 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	return o
}
