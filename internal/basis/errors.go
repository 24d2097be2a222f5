package basis

import (
	"fmt"
	"time"
)

// ErrorKind classifies a per-date fetch failure.
type ErrorKind string

const (
	// KindNetwork covers transport-level failures: DNS, refused connections,
	// timeouts before a response arrives.
	KindNetwork ErrorKind = "network"
	// KindRemote covers non-success HTTP responses from BASIS.
	KindRemote ErrorKind = "remote"
	// KindParse covers undecodable bodies and unexpected envelope shapes.
	KindParse ErrorKind = "parse"
)

// FetchError is a recoverable per-date failure. A failed date never aborts
// the rest of a range fetch.
type FetchError struct {
	Kind   ErrorKind
	Date   time.Time
	Status int // HTTP status when Kind == KindRemote
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s error fetching meetings for %s: %v",
		e.Kind, e.Date.Format("2006-01-02"), e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
