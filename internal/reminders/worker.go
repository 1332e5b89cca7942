package reminders

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/ukonnect/ukonnect-api/internal/models"
)

const defaultBatchSize = 100

// Worker periodically marks due reminders as sent. At most one flush runs at
// a time; a tick arriving while a flush is in flight is dropped, not queued.
// Failures are logged and never propagate past the tick.
type Worker struct {
	db        *gorm.DB
	cron      *cron.Cron
	interval  time.Duration
	batchSize int
	inFlight  atomic.Bool
	now       func() time.Time
}

func NewWorker(db *gorm.DB, interval time.Duration) *Worker {
	return &Worker{
		db:        db,
		cron:      cron.New(),
		interval:  interval,
		batchSize: defaultBatchSize,
		now:       time.Now,
	}
}

// Start registers the interval job and starts the scheduler.
func (w *Worker) Start() error {
	if w.interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	seconds := int(w.interval.Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	spec := fmt.Sprintf("@every %ds", seconds)
	if _, err := w.cron.AddFunc(spec, w.tick); err != nil {
		return fmt.Errorf("schedule reminder flush: %w", err)
	}
	w.cron.Start()
	return nil
}

// Stop halts the scheduler and waits for a running flush to finish.
func (w *Worker) Stop() {
	ctx := w.cron.Stop()
	<-ctx.Done()
}

func (w *Worker) tick() {
	if !w.inFlight.CompareAndSwap(false, true) {
		log.Println("reminders: previous flush still running, skipping tick")
		return
	}
	defer w.inFlight.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := w.Flush(ctx)
	if err != nil {
		log.Printf("reminders: flush failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("reminders: flushed %d", n)
	}
}

// Flush marks one bounded batch of due, unsent reminders as sent and returns
// how many were updated. The batch update commits atomically at the store
// level; there is no partial-success tracking beyond that.
func (w *Worker) Flush(ctx context.Context) (int, error) {
	now := w.now()

	var due []models.Reminder
	if err := w.db.WithContext(ctx).
		Where("sent_at IS NULL AND remind_at <= ?", now).
		Limit(w.batchSize).
		Find(&due).Error; err != nil {
		return 0, fmt.Errorf("load due reminders: %w", err)
	}
	if len(due) == 0 {
		return 0, nil
	}

	ids := make([]string, len(due))
	for i, r := range due {
		ids[i] = r.ID
	}
	if err := w.db.WithContext(ctx).
		Model(&models.Reminder{}).
		Where("id IN ?", ids).
		Update("sent_at", now).Error; err != nil {
		return 0, fmt.Errorf("mark reminders sent: %w", err)
	}
	return len(due), nil
}
