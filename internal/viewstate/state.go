// Package viewstate derives display-ready state from raw record snapshots.
// A Holder owns the latest snapshot and filter parameters and recomputes its
// derived value through a pure function whenever either input changes, so
// consumers can never observe stale aggregates.
package viewstate

// Kind discriminates the three possible view states.
type Kind int

const (
	KindLoading Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindLoading:
		return "loading"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	}
	return "unknown"
}

// State is a tagged union over exactly three outcomes: Loading (no data
// yet), Success (derived data), or Error (message). There is no partial
// success; Data is meaningful only when Kind is KindSuccess.
type State[T any] struct {
	Kind Kind
	Data T
	Err  string
}

// Loading returns the initial no-data-yet state.
func Loading[T any]() State[T] {
	return State[T]{Kind: KindLoading}
}

// Success wraps derived data.
func Success[T any](data T) State[T] {
	return State[T]{Kind: KindSuccess, Data: data}
}

// Error wraps a failure message.
func Error[T any](msg string) State[T] {
	return State[T]{Kind: KindError, Err: msg}
}
