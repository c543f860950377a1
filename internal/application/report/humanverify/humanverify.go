// Package humanverify is the port for the challenge that proves a submitter is human.
package humanverify

import (
	"context"
	"errors"
)

// ErrVerificationFailed is returned for anything short of an explicit success.
var ErrVerificationFailed = errors.New("human verification failed")

type Verifier interface {
	Verify(ctx context.Context, token, remoteIP string) error
}
