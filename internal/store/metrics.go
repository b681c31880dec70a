package store

import (
	"context"
	"time"
)

// OperationObserver receives one timing sample per snapshot operation.
type OperationObserver interface {
	ObserveStoreOperation(op, slot string, duration time.Duration)
}

// WithMetrics decorates a KV so every Get, Set and Delete is timed.
// A nil observer returns the store unwrapped.
func WithMetrics(next KV, observer OperationObserver) KV {
	if observer == nil {
		return next
	}
	return &instrumentedKV{next: next, observer: observer}
}

type instrumentedKV struct {
	next     KV
	observer OperationObserver
}

func (kv *instrumentedKV) Get(ctx context.Context, key Slot) ([]byte, bool, error) {
	start := time.Now()
	raw, ok, err := kv.next.Get(ctx, key)
	kv.observer.ObserveStoreOperation("get", string(key), time.Since(start))
	return raw, ok, err
}

func (kv *instrumentedKV) Set(ctx context.Context, key Slot, value []byte) error {
	start := time.Now()
	err := kv.next.Set(ctx, key, value)
	kv.observer.ObserveStoreOperation("set", string(key), time.Since(start))
	return err
}

func (kv *instrumentedKV) Delete(ctx context.Context, key Slot) error {
	start := time.Now()
	err := kv.next.Delete(ctx, key)
	kv.observer.ObserveStoreOperation("delete", string(key), time.Since(start))
	return err
}
