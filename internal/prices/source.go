// Package prices aggregates token pricing from ordered upstream sources into
// a single cached snapshot.
package prices

import "context"

// Quote is the normalized result every price source maps its own response
// shape into. Fields are nil when the source did not report them.
type Quote struct {
	SolUSD   *float64
	TokenUSD *float64
}

// Source is one upstream price provider in the fallback chain.
type Source interface {
	Name() string
	Quote(ctx context.Context) (*Quote, error)
}

// Status classifies a single source attempt.
type Status int

const (
	// StatusPrice means the source returned a usable tracked-token price.
	StatusPrice Status = iota
	// StatusNoPrice means the source answered but had no tracked-token price.
	StatusNoPrice
	// StatusError means the call failed (timeout, non-2xx, malformed body).
	StatusError
)

// String is the metric label for the status.
func (s Status) String() string {
	switch s {
	case StatusPrice:
		return "price"
	case StatusNoPrice:
		return "no_price"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Outcome records one source attempt for logging and tests.
type Outcome struct {
	Source string
	Status Status
	Quote  *Quote
	Err    error
}

func classify(name string, q *Quote, err error) Outcome {
	switch {
	case err != nil:
		return Outcome{Source: name, Status: StatusError, Err: err}
	case q == nil || q.TokenUSD == nil:
		return Outcome{Source: name, Status: StatusNoPrice, Quote: q}
	default:
		return Outcome{Source: name, Status: StatusPrice, Quote: q}
	}
}
