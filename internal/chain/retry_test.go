package chain

import (
	"context"
	"errors"
	"testing"
	"time"
)

type codedError struct {
	code int
	msg  string
}

func (e codedError) Error() string  { return e.msg }
func (e codedError) ErrorCode() int { return e.code }

func TestRetryPolicyEventuallySucceeds(t *testing.T) {
	calls := 0
	attempts, err := retryPolicy{maxRetries: 3, baseDelay: time.Millisecond}.do(context.Background(), func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 || attempts != 3 {
		t.Fatalf("calls=%d attempts=%d", calls, attempts)
	}
}

func TestRetryPolicyGivesUp(t *testing.T) {
	calls := 0
	sentinel := errors.New("down")
	_, err := retryPolicy{maxRetries: 2, baseDelay: time.Millisecond}.do(context.Background(), func(context.Context) error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected sentinel, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls: %d", calls)
	}
}

func TestRetryPolicyStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := retryPolicy{maxRetries: 5, baseDelay: time.Hour}.do(ctx, func(context.Context) error {
		return errors.New("fail")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestReadPolicySkipsReverts(t *testing.T) {
	policy := newReadPolicy(Options{MaxRetries: 5, RetryBackoff: time.Millisecond})

	for _, revert := range []error{
		codedError{code: revertCode, msg: "execution reverted"},
		errors.New("call failed: execution reverted: BAL#401"),
	} {
		calls := 0
		attempts, err := policy.do(context.Background(), func(context.Context) error {
			calls++
			return revert
		})
		if err != revert {
			t.Fatalf("revert should surface unchanged, got %v", err)
		}
		if calls != 1 || attempts != 1 {
			t.Fatalf("revert %q retried: calls=%d", revert, calls)
		}
	}

	calls := 0
	_, err := policy.do(context.Background(), func(context.Context) error {
		calls++
		if calls == 1 {
			return codedError{code: -32000, msg: "header not found"}
		}
		return nil
	})
	if err != nil || calls != 2 {
		t.Fatalf("transient rpc error not retried: calls=%d err=%v", calls, err)
	}
}
