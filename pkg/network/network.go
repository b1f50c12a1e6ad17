// Package network specifies the reliable-sender façade the Breeze actors,
// Init-BFT, and the coordinator treat as a black box: broadcast(addrs,
// bytes) -> cancellable handle, send(addr, bytes) -> cancellable handle.
// The underlying reliable transport itself is out of scope for this
// module; callers only see this contract.
package network

import "context"

// Cancel aborts an outstanding send/broadcast retry. Calling it more than
// once is a no-op.
type Cancel func()

// Sender is the façade every protocol actor sends frames through. A real
// implementation retries on transient failures and only surfaces errors to
// the caller via an explicit Cancel.
type Sender interface {
	// Send delivers bytes to a single address.
	Send(ctx context.Context, addr string, payload []byte) Cancel
	// Broadcast delivers bytes to every address in addrs.
	Broadcast(ctx context.Context, addrs []string, payload []byte) Cancel
}

// CancelBucket collects cancel handles for one epoch so the coordinator
// can abort every outstanding retry on garbage collection in one call.
type CancelBucket struct {
	cancels []Cancel
}

// Add registers a cancel handle in the bucket.
func (b *CancelBucket) Add(c Cancel) {
	if c != nil {
		b.cancels = append(b.cancels, c)
	}
}

// CancelAll invokes and clears every handle in the bucket.
func (b *CancelBucket) CancelAll() {
	for _, c := range b.cancels {
		c()
	}
	b.cancels = nil
}
