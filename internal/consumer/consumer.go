package consumer

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"cargo-rewards/internal/domain"
	"cargo-rewards/internal/metrics"
)

// HandlerFunc обрабатывает одно сообщение. nil — ack; drop-ошибки (см.
// domain.IsDrop) — лог + ack; всё остальное — nack с возвратом в очередь.
type HandlerFunc func(ctx context.Context, body []byte) error

// Broker — то, что нужно циклу от rabbitmq.Client.
type Broker interface {
	DeclareQueue(name string) error
	Consume(queue, consumer string, prefetch int) (<-chan amqp.Delivery, error)
	Cancel(consumer string) error
}

// Runner — общий цикл консюмера: prefetch 1, ручной ack строго после
// успешной обработки, graceful shutdown с дожиданием in-flight сообщения.
type Runner struct {
	client  Broker
	queue   string
	name    string
	handler HandlerFunc
	logg    zerolog.Logger
}

func New(client Broker, queue, name string, handler HandlerFunc, logg zerolog.Logger) *Runner {
	return &Runner{
		client:  client,
		queue:   queue,
		name:    name,
		handler: handler,
		logg:    logg,
	}
}

func (r *Runner) Run(ctx context.Context) error {
	if err := r.client.DeclareQueue(r.queue); err != nil {
		return err
	}

	// Одно неподтверждённое сообщение на консюмера: внутри очереди
	// обработка строго последовательная.
	msgs, err := r.client.Consume(r.queue, r.name, 1)
	if err != nil {
		return err
	}
	r.logg.Info().Str("queue", r.queue).Msg("consumer_started")

	done := make(chan struct{})
	go func() {
		defer close(done)
		for d := range msgs {
			r.handleOne(ctx, d)
		}
	}()

	select {
	case <-ctx.Done():
		r.logg.Info().Str("queue", r.queue).Msg("graceful_shutdown")
		// Перестаём принимать новые сообщения и дожидаемся дренажа.
		_ = r.client.Cancel(r.name)
		<-done
		return nil
	case <-done:
		// Канал доставок закрылся без нашей отмены: соединение упало.
		// Возвращаем ошибку, чтобы процесс перезапустили.
		return fmt.Errorf("delivery channel for %s closed unexpectedly", r.queue)
	}
}

func (r *Runner) handleOne(ctx context.Context, d amqp.Delivery) {
	// In-flight сообщение дорабатывает до конца даже при остановке:
	// ack не должен случиться раньше коммита, а коммит не обрываем.
	err := r.handler(context.WithoutCancel(ctx), d.Body)
	switch {
	case err == nil:
		_ = d.Ack(false)
		metrics.EventsTotal.WithLabelValues(r.queue, metrics.OutcomeProcessed).Inc()
	case domain.IsDrop(err):
		ev := r.logg.Warn()
		if domain.IsLoud(err) {
			ev = r.logg.Error()
		}
		ev.Err(err).Str("queue", r.queue).Msg("event_dropped")
		_ = d.Ack(false)
		metrics.EventsTotal.WithLabelValues(r.queue, metrics.OutcomeDropped).Inc()
	default:
		// временная ошибка (БД, сеть): не подтверждаем, брокер перешлёт
		r.logg.Error().Err(err).Str("queue", r.queue).Msg("event_requeued")
		_ = d.Nack(false, true)
		metrics.EventsTotal.WithLabelValues(r.queue, metrics.OutcomeRequeued).Inc()
	}
}
