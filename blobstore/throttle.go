package blobstore

import (
	"context"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// ThrottleConfig holds the limits applied by a Throttled store.
type ThrottleConfig struct {
	// MaxConcurrent bounds the number of in-flight Open/Create/Put calls.
	// If 0, defaults to 1.
	MaxConcurrent int64

	// ReadLimitBytesPerSec bounds blob read throughput. If 0, unlimited.
	ReadLimitBytesPerSec int64
}

// Throttled wraps a BlobStore and bounds its concurrency and read
// bandwidth, keeping background snapshot traffic from starving the rest of
// the process.
type Throttled struct {
	inner   BlobStore
	sem     *semaphore.Weighted
	limiter *rate.Limiter // nil if unlimited
}

// NewThrottled wraps inner with the given limits.
func NewThrottled(inner BlobStore, cfg ThrottleConfig) *Throttled {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}

	t := &Throttled{
		inner: inner,
		sem:   semaphore.NewWeighted(cfg.MaxConcurrent),
	}
	if cfg.ReadLimitBytesPerSec > 0 {
		t.limiter = rate.NewLimiter(rate.Limit(cfg.ReadLimitBytesPerSec), int(cfg.ReadLimitBytesPerSec))
	}
	return t
}

// Open opens a blob for reading. Reads on the returned blob count against
// the read bandwidth limit.
func (t *Throttled) Open(ctx context.Context, name string) (Blob, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	defer t.sem.Release(1)

	b, err := t.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &throttledBlob{Blob: b, t: t, ctx: ctx}, nil
}

// Create creates a new blob for streaming writes.
func (t *Throttled) Create(ctx context.Context, name string) (WritableBlob, error) {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	w, err := t.inner.Create(ctx, name)
	if err != nil {
		t.sem.Release(1)
		return nil, err
	}
	return &throttledWritableBlob{WritableBlob: w, t: t}, nil
}

// Put writes a blob atomically.
func (t *Throttled) Put(ctx context.Context, name string, data []byte) error {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer t.sem.Release(1)

	return t.inner.Put(ctx, name, data)
}

// Delete removes a blob.
func (t *Throttled) Delete(ctx context.Context, name string) error {
	return t.inner.Delete(ctx, name)
}

// List returns the names of all blobs with the given prefix, sorted.
func (t *Throttled) List(ctx context.Context, prefix string) ([]string, error) {
	return t.inner.List(ctx, prefix)
}

// waitRead blocks until the bandwidth limit allows n bytes.
func (t *Throttled) waitRead(ctx context.Context, n int) error {
	if t.limiter == nil || n <= 0 {
		return nil
	}
	burst := t.limiter.Burst()
	for n > burst {
		if err := t.limiter.WaitN(ctx, burst); err != nil {
			return err
		}
		n -= burst
	}
	return t.limiter.WaitN(ctx, n)
}

type throttledBlob struct {
	Blob
	t   *Throttled
	ctx context.Context
}

func (b *throttledBlob) ReadAt(p []byte, off int64) (int, error) {
	if err := b.t.waitRead(b.ctx, len(p)); err != nil {
		return 0, err
	}
	return b.Blob.ReadAt(p, off)
}

type throttledWritableBlob struct {
	WritableBlob
	t    *Throttled
	done bool
}

func (w *throttledWritableBlob) Close() error {
	if !w.done {
		w.done = true
		defer w.t.sem.Release(1)
	}
	return w.WritableBlob.Close()
}
