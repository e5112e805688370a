package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"slotbook/internal/database"
	"slotbook/internal/domain"
	"slotbook/internal/metrics"
	"slotbook/internal/models"

	"github.com/redis/go-redis/v9"
)

// InviteWorker consumes invite_queue tasks and creates calendar events for
// booked appointments. Implements domain.InviteScheduler. Invite failures
// never surface to bookers; a booking stands whether or not its invite
// ever goes out.
type InviteWorker struct {
	db            *database.DB
	calendar      domain.CalendarClient
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan models.InviteTask
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *log.Logger
}

// NewInviteWorker builds a worker with sane defaults.
func NewInviteWorker(db *database.DB, calendarClient domain.CalendarClient, redisClient *redis.Client, retry RetryPolicy, logger *log.Logger) *InviteWorker {
	retry = retry.withDefaults()
	if logger == nil {
		logger = log.Default()
	}

	return &InviteWorker{
		db:            db,
		calendar:      calendarClient,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan models.InviteTask, 128),
		redisQueueKey: "invites:queue",
		deadLetterKey: "invites:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// EnqueueInvite persists the task to DB and schedules it via redis or the
// in-memory queue.
func (w *InviteWorker) EnqueueInvite(ctx context.Context, appointmentID string) error {
	if appointmentID == "" {
		return errors.New("appointment id is required")
	}

	task := models.InviteTask{
		AppointmentID: appointmentID,
		Status:        models.TaskStatusPending,
	}
	if err := w.db.CreateInviteTask(ctx, &task); err != nil {
		return fmt.Errorf("persist invite task: %w", err)
	}

	// Try redis first for durability.
	if w.redis != nil {
		if err := w.pushRedis(ctx, task); err != nil {
			w.logger.Printf("invite_worker: redis push failed, fallback to memory queue: %v", err)
		} else {
			return nil
		}
	}

	// Fallback to in-memory queue if redis missing or failed.
	select {
	case w.queue <- task:
	default:
		w.logger.Printf("invite_worker: in-memory queue full, task %d dropped to polling", task.ID)
	}

	return nil
}

// Start launches main loop; stops when ctx is done.
func (w *InviteWorker) Start(ctx context.Context) {
	w.logger.Printf("invite_worker: started")
	defer w.logger.Printf("invite_worker: stopped")

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if t, ok := w.tryLocalQueue(); ok {
			w.processTask(ctx, &t)
			continue
		}

		if t, ok := w.tryRedis(ctx); ok {
			w.processTask(ctx, &t)
			continue
		}

		tasks, err := w.db.GetPendingInviteTasks(ctx, w.batchSize)
		if err != nil {
			w.logger.Printf("invite_worker: fetch pending: %v", err)
			time.Sleep(w.pollInterval)
			continue
		}
		if len(tasks) == 0 {
			time.Sleep(w.pollInterval)
			continue
		}

		for i := range tasks {
			w.processTask(ctx, &tasks[i])
		}
	}
}

func (w *InviteWorker) tryLocalQueue() (models.InviteTask, bool) {
	select {
	case t := <-w.queue:
		return t, true
	default:
		return models.InviteTask{}, false
	}
}

func (w *InviteWorker) tryRedis(ctx context.Context) (models.InviteTask, bool) {
	if w.redis == nil {
		return models.InviteTask{}, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, redis.Nil) {
			return models.InviteTask{}, false
		}
		w.logger.Printf("invite_worker: redis BRPOP error: %v", err)
		return models.InviteTask{}, false
	}
	if len(res) != 2 {
		return models.InviteTask{}, false
	}
	var task models.InviteTask
	if err := json.Unmarshal([]byte(res[1]), &task); err != nil {
		w.logger.Printf("invite_worker: decode redis task: %v", err)
		return models.InviteTask{}, false
	}
	return task, true
}

func (w *InviteWorker) processTask(ctx context.Context, task *models.InviteTask) {
	appt, err := w.db.GetAppointment(ctx, task.AppointmentID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			w.failTask(ctx, task, fmt.Errorf("appointment %s not found", task.AppointmentID))
			return
		}
		w.retryOrFail(ctx, task, err)
		return
	}

	// Already has an event: an earlier attempt succeeded past the
	// writeback, or the task was queued twice. Do not invite again.
	if appt.EventID != "" {
		if err := w.db.MarkInviteTaskDone(ctx, task.ID); err != nil {
			w.logger.Printf("invite_worker: mark done %d: %v", task.ID, err)
		}
		metrics.IncInvite("skipped")
		return
	}

	result, err := w.calendar.CreateEvent(ctx, domain.CalendarEvent{
		Summary:     appt.Title,
		Description: fmt.Sprintf("Booked appointment with %s", appt.SellerName),
		Start:       appt.StartTime,
		End:         appt.EndTime,
		Attendees:   []string{appt.SellerEmail, appt.BuyerEmail},
	})
	if err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	if err := w.db.SetAppointmentEvent(ctx, appt.ID, result.EventID, result.MeetingLink); err != nil {
		w.logger.Printf("invite_worker: event writeback %s: %v", appt.ID, err)
	}

	if err := w.db.MarkInviteTaskDone(ctx, task.ID); err != nil {
		w.logger.Printf("invite_worker: mark done %d: %v", task.ID, err)
	}
	metrics.IncInvite("sent")
}

func (w *InviteWorker) retryOrFail(ctx context.Context, task *models.InviteTask, cause error) {
	attempt := task.RetryCount + 1
	if attempt >= w.retryPolicy.MaxRetries {
		if err := w.db.MarkInviteTaskFailed(ctx, task.ID, cause.Error()); err != nil {
			w.logger.Printf("invite_worker: mark failed %d: %v", task.ID, err)
		}
		w.pushDeadLetter(ctx, task)
		metrics.IncInvite("failed")
		return
	}

	nextDelay := w.retryPolicy.NextDelay(attempt)
	nextTime := time.Now().Add(nextDelay)
	if err := w.db.MarkInviteTaskRetry(ctx, task.ID, attempt, cause.Error(), nextTime); err != nil {
		w.logger.Printf("invite_worker: mark retry %d: %v", task.ID, err)
	}
	metrics.IncInvite("retried")
}

func (w *InviteWorker) failTask(ctx context.Context, task *models.InviteTask, err error) {
	if markErr := w.db.MarkInviteTaskFailed(ctx, task.ID, err.Error()); markErr != nil {
		w.logger.Printf("invite_worker: mark failed %d: %v", task.ID, markErr)
	}
	w.pushDeadLetter(ctx, task)
	metrics.IncInvite("failed")
}

func (w *InviteWorker) pushRedis(ctx context.Context, task models.InviteTask) error {
	if w.redis == nil {
		return errors.New("redis client is nil")
	}
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return w.redis.LPush(ctx, w.redisQueueKey, data).Err()
}

func (w *InviteWorker) pushDeadLetter(ctx context.Context, task *models.InviteTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Printf("invite_worker: encode deadletter %d: %v", task.ID, err)
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Printf("invite_worker: deadletter push %d: %v", task.ID, err)
	}
}
