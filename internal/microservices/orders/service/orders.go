package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"cargo-rewards/internal/config"
	"cargo-rewards/internal/domain"
	"cargo-rewards/internal/metrics"
	"cargo-rewards/internal/microservices/orders/repository"
	"cargo-rewards/internal/scoring"
)

const publishTimeout = 5 * time.Second

type OrdersServiceInterface interface {
	Handle(ctx context.Context, body []byte) error
}

// Publisher — исходящая публикация уведомлений (см. rabbitmq.Client).
type Publisher interface {
	PublishJSON(ctx context.Context, queue, correlationID string, body []byte) error
}

type OrdersService struct {
	db          repository.OrdersRepositoryInterface
	pub         Publisher
	notifyQueue string
	rewards     config.RewardsConfig
	logg        zerolog.Logger
}

func NewOrdersService(db repository.OrdersRepositoryInterface, pub Publisher, notifyQueue string, rewards config.RewardsConfig, logg zerolog.Logger) OrdersServiceInterface {
	return &OrdersService{db: db, pub: pub, notifyQueue: notifyQueue, rewards: rewards, logg: logg}
}

// Handle — жизненный цикл заказа по снимку: upsert состояния и истории,
// затем разовое начисление за первый увиденный COMPLETED с известным
// актором (фиксированный балл + раздача цепочке подготовки) и уведомление.
func (s *OrdersService) Handle(ctx context.Context, body []byte) error {
	snap, err := domain.DecodeEvent[domain.OrderSnapshotPayload](body)
	if err != nil {
		return err
	}

	order, candidates, err := s.db.UpsertSnapshotTx(ctx, snap, body)
	if err != nil {
		return err
	}

	if order.CompletionGrantedAt != nil {
		s.logg.Debug().Str("order", order.OrderCode).Msg("completion_already_scored")
		return nil
	}
	if len(candidates) == 0 {
		return nil
	}
	actor := candidates[0]

	grants, err := s.db.CompleteOrderTx(ctx, order.ID, order.OrderCode,
		func(execs map[domain.PreparationType][]int64) []scoring.Grant {
			return s.buildCompletionGrants(order.ID, actor.ID, execs)
		})
	if err != nil {
		return err
	}
	if len(grants) == 0 {
		// конкурирующая доставка успела раньше — штатно
		s.logg.Debug().Str("order", order.OrderCode).Msg("completion_already_scored")
		return nil
	}

	for _, g := range grants {
		metrics.ScoresGranted.WithLabelValues(g.Source).Inc()
	}
	s.logg.Info().
		Str("order", order.OrderCode).
		Int64("worker", actor.ID).
		Int("grants", len(grants)).
		Msg("completion_scored")

	// Публикация — побочный эффект после коммита: её провал не откатывает
	// начисление, но требует ручного вмешательства, поэтому логи громкие.
	s.publishNotification(ctx, order, actor, snap)
	return nil
}

// buildCompletionGrants: фиксированный балл актору завершения плюс раздача
// балла подготовки поровну уникальным исполнителям каждого вида работы.
func (s *OrdersService) buildCompletionGrants(orderID, actorID int64, execs map[domain.PreparationType][]int64) []scoring.Grant {
	grants := []scoring.Grant{{
		WorkerID: actorID,
		OrderID:  orderID,
		Points:   s.rewards.CompletionPoints,
		Source:   scoring.SourceCompleted,
	}}
	for _, kind := range []domain.PreparationType{domain.PreparationShipment, domain.PreparationPacking} {
		ids := execs[kind]
		if len(ids) == 0 {
			continue
		}
		shares := scoring.SplitEvenly(s.rewards.PreparationPoints, len(ids))
		for i, workerID := range ids {
			grants = append(grants, scoring.Grant{
				WorkerID: workerID,
				OrderID:  orderID,
				Points:   shares[i],
				Source:   scoring.PreparationSource(kind),
			})
		}
	}
	return grants
}

func (s *OrdersService) publishNotification(ctx context.Context, order domain.Order, actor domain.Worker, snap domain.OrderSnapshotPayload) {
	payload := domain.CourierNotification{
		OrderCode:     order.OrderCode,
		OrderID:       order.ID,
		CourierName:   actor.Username,
		CourierEmail:  actor.Email,
		CourierID:     actor.ID,
		ChatID:        actor.ChatID,
		CourierPhone:  actor.PhoneNumber,
		CustomerName:  fmt.Sprintf("%s %s", snap.Customer.Firstname, snap.Customer.Lastname),
		CustomerPhone: snap.Customer.PhoneNumber,
		Entries:       snap.Entries,
		DeliveryInfo:  snap.Delivery,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		s.logg.Error().Err(err).Str("order", order.OrderCode).Msg("notification_marshal_failed")
		return
	}

	pctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()
	if err := s.pub.PublishJSON(pctx, s.notifyQueue, order.OrderCode, body); err != nil {
		s.logg.Error().Err(err).Str("order", order.OrderCode).Msg("notification_publish_failed")
		return
	}
	s.logg.Info().Str("order", order.OrderCode).Str("queue", s.notifyQueue).Msg("notification_published")
}
