package usefetch

// Snapshot is the observable state of the current logical request.
//
// Loading is true from Start until the request settles. On settlement exactly
// one of Data and Err is set. A cancelled request settles nothing: its
// snapshot stays frozen at whatever it last was.
type Snapshot struct {
	// Decoded response body, set on success.
	Data any
	// Terminal failure, set when the retry budget is exhausted.
	Err *Error
	// True while the request is being checked against the cache,
	// attempted, or waiting for a retry.
	Loading bool
}
