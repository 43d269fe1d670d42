package propertystorage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Reconciler defaults.
const (
	defaultReconcileAttempts = 3
	defaultReconcileDelay    = 500 * time.Millisecond
	defaultReconcileTimeout  = 10 * time.Second
	defaultReconcileQueue    = 128
)

type reconcileTask struct {
	bucket    string
	objectKey string
	ownerID   uuid.UUID
}

// OwnershipReconciler corrects object ownership metadata after uploads
// performed under the privileged service identity. The store's catalog
// records the service credential as owner; this component reassigns it to the
// real end user.
//
// Reconciliation runs as a detached background task with a bounded retry
// policy. Failures are logged with full context and otherwise swallowed: the
// caller-visible success of the upload is never affected. If reconciliation
// never succeeds the object stays attributed to the service identity; the
// Pending gauge and the final error log make that window observable.
type OwnershipReconciler struct {
	catalog     ObjectCatalog
	logger      *slog.Logger
	maxAttempts int
	retryDelay  time.Duration
	timeout     time.Duration

	tasks     chan reconcileTask
	pending   atomic.Int64
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// ReconcilerOption configures an OwnershipReconciler.
type ReconcilerOption func(*OwnershipReconciler)

// WithReconcilerLogger sets the logger.
func WithReconcilerLogger(logger *slog.Logger) ReconcilerOption {
	return func(r *OwnershipReconciler) {
		r.logger = logger
	}
}

// WithReconcilerAttempts bounds the retry policy.
func WithReconcilerAttempts(n int) ReconcilerOption {
	return func(r *OwnershipReconciler) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithReconcilerRetryDelay sets the delay between attempts.
func WithReconcilerRetryDelay(d time.Duration) ReconcilerOption {
	return func(r *OwnershipReconciler) {
		if d > 0 {
			r.retryDelay = d
		}
	}
}

// WithReconcilerTimeout bounds each catalog round trip.
func WithReconcilerTimeout(d time.Duration) ReconcilerOption {
	return func(r *OwnershipReconciler) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewOwnershipReconciler starts a reconciler over the given catalog. Call
// Close to drain in-flight work.
func NewOwnershipReconciler(catalog ObjectCatalog, opts ...ReconcilerOption) *OwnershipReconciler {
	r := &OwnershipReconciler{
		catalog:     catalog,
		logger:      slog.Default(),
		maxAttempts: defaultReconcileAttempts,
		retryDelay:  defaultReconcileDelay,
		timeout:     defaultReconcileTimeout,
		tasks:       make(chan reconcileTask, defaultReconcileQueue),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.wg.Add(1)
	go r.run()
	return r
}

// Enqueue schedules ownership reconciliation for an uploaded object. It never
// blocks: when the queue is full or the owner id is not a UUID, the task is
// dropped with an error log.
func (r *OwnershipReconciler) Enqueue(bucket, objectKey, ownerID string) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		r.logger.Error("Ownership reconciliation skipped: owner id is not a UUID",
			"bucket", bucket, "path", objectKey, "owner_id", ownerID)
		return
	}

	select {
	case r.tasks <- reconcileTask{bucket: bucket, objectKey: objectKey, ownerID: owner}:
		r.pending.Add(1)
	default:
		r.logger.Error("Ownership reconciliation queue full, dropping task",
			"bucket", bucket, "path", objectKey, "owner_id", ownerID)
	}
}

// Pending returns the number of tasks not yet reconciled.
func (r *OwnershipReconciler) Pending() int {
	return int(r.pending.Load())
}

// Close stops accepting work and waits for queued tasks to finish.
func (r *OwnershipReconciler) Close() {
	r.closeOnce.Do(func() {
		close(r.tasks)
	})
	r.wg.Wait()
}

func (r *OwnershipReconciler) run() {
	defer r.wg.Done()
	for task := range r.tasks {
		r.reconcile(task)
		r.pending.Add(-1)
	}
}

func (r *OwnershipReconciler) reconcile(task reconcileTask) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if attempt > 1 {
			time.Sleep(r.retryDelay)
		}

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		err := r.attempt(ctx, task)
		cancel()
		if err == nil {
			return
		}
		lastErr = err
		r.logger.Warn("Ownership reconciliation attempt failed",
			"attempt", attempt, "bucket", task.bucket, "path", task.objectKey,
			"owner_id", task.ownerID, "error", err)
	}

	r.logger.Error("Ownership reconciliation gave up, object remains attributed to the service identity",
		"bucket", task.bucket, "path", task.objectKey, "owner_id", task.ownerID,
		"attempts", r.maxAttempts, "error", lastErr)
}

func (r *OwnershipReconciler) attempt(ctx context.Context, task reconcileTask) error {
	objectID, err := r.catalog.LookupObjectID(ctx, task.bucket, task.objectKey)
	if err != nil {
		return fmt.Errorf("lookup catalog object: %w", err)
	}
	if err := r.catalog.SetObjectOwner(ctx, objectID, task.ownerID); err != nil {
		return fmt.Errorf("set catalog owner: %w", err)
	}
	return nil
}
