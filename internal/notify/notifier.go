package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Имена событий, которые ядро отправляет внешнему диспетчеру уведомлений
const (
	EventReviewAssigned     = "review.assigned"
	EventReviewReassigned   = "review.reassigned"
	EventReviewUnassigned   = "review.unassigned"
	EventReviewCompleted    = "review.completed"
	EventInterviewScheduled = "interview.scheduled"
	EventStatusChanged      = "application.status_changed"
	EventStudentActivated   = "student.activated"
)

type Event struct {
	Name          string    `json:"event"`
	ApplicationId string    `json:"application_id,omitempty"`
	ReviewId      string    `json:"review_id,omitempty"`
	InterviewId   string    `json:"interview_id,omitempty"`
	RecipientRole string    `json:"recipient_role,omitempty"`
	RecipientId   string    `json:"recipient_id,omitempty"`
	Detail        string    `json:"detail,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// Dispatcher fire-and-forget: ошибка доставки никогда не возвращается
// вызывающему и не откатывает вызвавшую операцию
type Dispatcher interface {
	Dispatch(ctx context.Context, e Event)
}

type RedisDispatcher struct {
	client *redis.Client
	queue  string
	log    *zap.Logger
}

func NewRedisDispatcher(addr, password string, db int, queue string, log *zap.Logger) (*RedisDispatcher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &RedisDispatcher{
		client: rdb,
		queue:  queue,
		log:    log,
	}, nil
}

func (d *RedisDispatcher) Dispatch(ctx context.Context, e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}

	data, err := json.Marshal(e)
	if err != nil {
		d.log.Warn("failed to marshal notification event",
			zap.String("event", e.Name),
			zap.Error(err),
		)
		return
	}

	// Ошибки доставки логируем и глотаем
	if err := d.client.LPush(ctx, d.queue, data).Err(); err != nil {
		d.log.Warn("failed to dispatch notification event",
			zap.String("event", e.Name),
			zap.String("recipient_id", e.RecipientId),
			zap.Error(err),
		)
	}
}

func (d *RedisDispatcher) Close() error {
	return d.client.Close()
}

// NopDispatcher используется, когда redis не сконфигурирован
type NopDispatcher struct{}

func (NopDispatcher) Dispatch(ctx context.Context, e Event) {}
