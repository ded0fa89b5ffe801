package chain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/rpc"
)

// revertCode is the JSON-RPC error code nodes return for a reverted eth_call or eth_estimateGas.
const revertCode = 3

// retryPolicy retries read calls with exponential backoff.
type retryPolicy struct {
	maxRetries int
	baseDelay  time.Duration
	// retryable reports whether err may succeed on a later attempt. Nil retries everything.
	retryable func(error) bool
}

func newReadPolicy(opts Options) retryPolicy {
	return retryPolicy{
		maxRetries: opts.MaxRetries,
		baseDelay:  opts.RetryBackoff,
		retryable:  isTransient,
	}
}

func (p retryPolicy) do(ctx context.Context, fn func(context.Context) error) (attempts int, err error) {
	maxRetries := p.maxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	delay := p.baseDelay
	if delay <= 0 {
		delay = 100 * time.Millisecond
	}

	for {
		attempts++
		err = fn(ctx)
		if err == nil {
			return attempts, nil
		}
		if attempts > maxRetries || (p.retryable != nil && !p.retryable(err)) {
			return attempts, err
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempts, ctx.Err()
		case <-timer.C:
		}
		delay *= 2
	}
}

// isRevert reports a deterministic execution failure: the same call reverts again.
func isRevert(err error) bool {
	var rpcErr rpc.Error
	if errors.As(err, &rpcErr) && rpcErr.ErrorCode() == revertCode {
		return true
	}
	return strings.Contains(err.Error(), "execution reverted")
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return !isRevert(err)
}
