package pileup

import (
	"errors"
	"time"
)

// fiveSeconds is the poll interval used while waiting for an upstream
// pileup producer to start emitting data.
const fiveSeconds = 5 * time.Second

// PollInterval and MaxPollAttempts bound the single-stream readiness wait
// (driver single-file mode): up to MaxPollAttempts sleeps of PollInterval,
// around 500 seconds total.
const (
	PollInterval    = fiveSeconds
	MaxPollAttempts = 100
)

// ErrInputNotReady signals the bounded readiness wait expired; the driver
// maps this to exit code 10.
var ErrInputNotReady = errors.New("pileup: input stream never became ready")
