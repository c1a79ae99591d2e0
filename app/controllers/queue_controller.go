package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/shopfox/ShopFox/app/models"
	"github.com/shopfox/ShopFox/app/repository"
	"github.com/shopfox/ShopFox/internal/pkg/paymentqueue"
)

const recentRunsLimit = 20

// HandleProcessQueue synchronously runs one batch pass over the payment
// queue and returns before/after statistics plus the duration.
func HandleProcessQueue(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	before, err := paymentqueue.ComputeStats(repos.PaymentQueue, repos.DeadLetter)
	if err != nil {
		log.Errorf("[Queue] Stats collection failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_failed"})
	}

	start := time.Now()
	processed, failed, err := paymentqueue.NewDefaultProcessor().ProcessPendingEvents()
	if err != nil {
		log.Errorf("[Queue] Processing pass failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "processing_failed"})
	}
	duration := time.Since(start)

	after, err := paymentqueue.ComputeStats(repos.PaymentQueue, repos.DeadLetter)
	if err != nil {
		log.Errorf("[Queue] Stats collection failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_failed"})
	}

	return c.JSON(fiber.Map{
		"processed":   processed,
		"failed":      failed,
		"duration_ms": duration.Milliseconds(),
		"before":      before,
		"after":       after,
	})
}

// runReconciliation is swapped in tests.
var runReconciliation = func() (*models.ReconciliationRun, error) {
	return paymentqueue.NewDefaultReconciler().Run()
}

// HandleReconcile runs the full reconciliation job and returns its run
// record.
func HandleReconcile(c *fiber.Ctx) error {
	run, err := runReconciliation()
	if err != nil {
		log.Errorf("[Queue] Reconciliation failed: %v", err)
		if run == nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "reconciliation_failed"})
		}
		// The pass ran but its run record could not be persisted in its
		// final state; the caller must not mistake the record for durable.
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "run_persist_failed",
			"run":   run,
		})
	}
	return c.JSON(run)
}

// HandleQueueStatus returns current queue statistics, dead letter statistics
// and the most recent reconciliation runs.
func HandleQueueStatus(c *fiber.Ctx) error {
	repos := repository.GetGlobalRepositories()

	stats, err := paymentqueue.CachedStats(repos.PaymentQueue, repos.DeadLetter)
	if err != nil {
		log.Errorf("[Queue] Stats collection failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "stats_failed"})
	}

	runs, err := repos.Reconciliation.GetRecentRuns(recentRunsLimit)
	if err != nil {
		log.Errorf("[Queue] Run history lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "runs_failed"})
	}

	return c.JSON(fiber.Map{
		"stats":       stats,
		"recent_runs": runs,
	})
}

// HandleListDeadLetters lists dead letter entries for manual inspection.
func HandleListDeadLetters(c *fiber.Ctx) error {
	offset := c.QueryInt("offset", 0)
	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 200 {
		limit = 50
	}

	entries, err := repository.GetGlobalRepositories().DeadLetter.List(offset, limit)
	if err != nil {
		log.Errorf("[Queue] Dead letter listing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "dead_letter_list_failed"})
	}
	return c.JSON(fiber.Map{"entries": entries})
}

// HandleReviewDeadLetter marks a dead letter entry as reviewed.
func HandleReviewDeadLetter(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_id"})
	}

	dlq := repository.GetGlobalRepositories().DeadLetter
	if _, err := dlq.GetByID(uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not_found"})
		}
		log.Errorf("[Queue] Dead letter lookup failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "dead_letter_lookup_failed"})
	}

	if err := dlq.MarkReviewed(uint(id)); err != nil {
		log.Errorf("[Queue] Dead letter review failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "dead_letter_review_failed"})
	}
	return c.JSON(fiber.Map{"ok": true})
}
