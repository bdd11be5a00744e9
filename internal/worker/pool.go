package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard-api/internal/model"
)

// ReminderWindow - за сколько до дедлайна создается напоминание
const ReminderWindow = 24 * time.Hour

// Pool периодически находит задачи с приближающимся дедлайном
// и создает для них записи-уведомления. Сама доставка уведомлений
// за пределами этого сервиса.
type Pool struct {
	pool     *pgxpool.Pool
	logger   *zap.Logger
	count    int
	interval time.Duration
	wg       sync.WaitGroup
	stop     chan struct{}
}

func NewPool(pool *pgxpool.Pool, logger *zap.Logger, count int) *Pool {
	return &Pool{
		pool:     pool,
		logger:   logger,
		count:    count,
		interval: 1 * time.Second,
		stop:     make(chan struct{}),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.logger.Info("Starting reminder pool", zap.Int("workers", p.count))

	for i := 0; i < p.count; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) Stop() {
	p.logger.Info("Stopping reminder pool...")
	close(p.stop)
	p.wg.Wait()
	p.logger.Info("Reminder pool stopped")
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.remindNext(ctx, id); err != nil && err != pgx.ErrNoRows {
				p.logger.Error("worker error", zap.Int("worker", id), zap.Error(err))
			}
		}
	}
}

// remindNext забирает одну задачу с близким дедлайном и создает уведомление.
// FOR UPDATE SKIP LOCKED не дает воркерам взять одну и ту же задачу.
func (p *Pool) remindNext(ctx context.Context, workerID int) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	task, err := p.claimDueTask(ctx, tx)
	if err != nil {
		return err
	}

	recipient := task.CreatedBy
	if task.AssignedTo != nil {
		recipient = *task.AssignedTo
	}

	message := fmt.Sprintf("Task %q is due at %s", task.Title, task.DueDate.Format(time.RFC3339))
	_, err = tx.Exec(ctx, `
		INSERT INTO notifications (user_id, task_id, message)
		VALUES ($1, $2, $3)
	`, recipient, task.ID, message)
	if err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	p.logger.Info("Reminder created",
		zap.Int("worker", workerID),
		zap.Int64("task_id", task.ID),
		zap.Int64("user_id", recipient),
	)
	return nil
}

func (p *Pool) claimDueTask(ctx context.Context, tx pgx.Tx) (model.Task, error) {
	var t model.Task

	err := tx.QueryRow(ctx, `
		WITH claimed AS (
			SELECT id
			FROM tasks
			WHERE due_date IS NOT NULL
			  AND due_date <= now() + interval '24 hours'
			  AND NOT reminder_sent
			  AND status <> 'done'
			ORDER BY due_date
			FOR UPDATE SKIP LOCKED
			LIMIT 1
		)
		UPDATE tasks
		SET reminder_sent = true
		FROM claimed
		WHERE tasks.id = claimed.id
		RETURNING tasks.id, tasks.title, tasks.assigned_to, tasks.created_by, tasks.due_date
	`).Scan(&t.ID, &t.Title, &t.AssignedTo, &t.CreatedBy, &t.DueDate)

	return t, err
}
