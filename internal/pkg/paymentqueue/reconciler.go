package paymentqueue

import (
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/shopfox/ShopFox/app/models"
	"github.com/shopfox/ShopFox/app/repository"
)

// completedRetention is how long completed queue events are kept before the
// reconciliation sweep prunes them. Failed and dead-lettered rows are never
// pruned.
const completedRetention = 7 * 24 * time.Hour

// Reconciler is the scheduled driver of the pipeline: it runs a processing
// pass, prunes old completed events and persists a run record. Manual
// triggers reuse the same entry point.
type Reconciler struct {
	processor *Processor
	queue     repository.PaymentQueueRepository
	dlq       repository.DeadLetterRepository
	runs      repository.ReconciliationRepository
}

// NewReconciler creates a reconciler with explicitly injected collaborators.
func NewReconciler(
	processor *Processor,
	queue repository.PaymentQueueRepository,
	dlq repository.DeadLetterRepository,
	runs repository.ReconciliationRepository,
) *Reconciler {
	return &Reconciler{
		processor: processor,
		queue:     queue,
		dlq:       dlq,
		runs:      runs,
	}
}

// Run executes one reconciliation pass and returns its persisted run record.
// The run ends completed when every event succeeded, partial when some
// failed, failed when the pass itself could not run.
func (r *Reconciler) Run() (*models.ReconciliationRun, error) {
	run := &models.ReconciliationRun{
		JobID:     uuid.New().String(),
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	if err := r.runs.CreateRun(run); err != nil {
		return nil, err
	}
	log.Infof("[Reconciler] Run %s started", run.JobID)

	processed, failed, perr := r.processor.ProcessPendingEvents()
	run.Processed = processed
	run.Failed = failed

	if perr == nil {
		pruned, err := r.queue.PruneCompleted(time.Now().Add(-completedRetention))
		if err != nil {
			log.Errorf("[Reconciler] Prune failed: %v", err)
		} else {
			run.Pruned = pruned
		}
	}

	if stats, err := ComputeStats(r.queue, r.dlq); err != nil {
		log.Errorf("[Reconciler] Stats collection failed: %v", err)
	} else {
		log.Infof("[Reconciler] Run %s stats: queue=%v dead_letter=%v", run.JobID, stats.Queue, stats.DeadLetter)
	}

	now := time.Now()
	run.FinishedAt = &now
	switch {
	case perr != nil:
		run.Status = models.RunStatusFailed
		run.ErrorMsg = perr.Error()
	case failed > 0:
		run.Status = models.RunStatusPartial
	default:
		run.Status = models.RunStatusCompleted
	}

	if err := r.runs.UpdateRun(run); err != nil {
		log.Errorf("[Reconciler] Failed to persist run %s: %v", run.JobID, err)
		return run, err
	}

	log.Infof("[Reconciler] Run %s finished: status=%s processed=%d failed=%d pruned=%d",
		run.JobID, run.Status, run.Processed, run.Failed, run.Pruned)
	return run, nil
}
