package application

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/prorideparts/checkout-gateway/internal/domain"
	"github.com/prorideparts/checkout-gateway/internal/logger"
	"github.com/prorideparts/checkout-gateway/internal/repository"
	"github.com/prorideparts/checkout-gateway/internal/toyyib"
)

type PaymentGateway interface {
	CreateBill(ctx context.Context, o *domain.Order, ref string) domain.BillResult
}

type ShippingProvider interface {
	CheckRate(ctx context.Context, o *domain.Order) domain.ShipmentResult
	CreateShipment(ctx context.Context, o *domain.Order) domain.ShipmentResult
}

// EventPublisher fans order lifecycle events out to downstream consumers
// (fulfillment dashboard, notifications). Optional collaborator.
type EventPublisher interface {
	Publish(ctx context.Context, e Event) error
}

type Event struct {
	Kind     string `json:"kind"`
	OrderID  string `json:"order_id"`
	BillCode string `json:"bill_code,omitempty"`
}

const (
	EventPaymentSettled  = "payment.settled"
	EventShipmentCreated = "shipment.created"
)

// CheckoutService holds no per-request state; every dependency is injected
// once at startup.
type CheckoutService struct {
	repo     repository.OrderRepo
	payments PaymentGateway
	shipping ShippingProvider
	events   EventPublisher // nil disables publishing
}

func NewCheckoutService(repo repository.OrderRepo, payments PaymentGateway, shipping ShippingProvider, events EventPublisher) *CheckoutService {
	return &CheckoutService{
		repo:     repo,
		payments: payments,
		shipping: shipping,
		events:   events,
	}
}

// CreateBill persists the order under a fresh reference, then asks the
// gateway for a bill. The reference travels to the provider and comes back
// in the payment callback, which is what makes the later lookup possible.
// The returned error covers store failures only; gateway failures are a
// non-success BillResult.
func (s *CheckoutService) CreateBill(ctx context.Context, o *domain.Order) (uuid.UUID, domain.BillResult, error) {
	id := uuid.New()
	if err := s.repo.SaveOrder(ctx, id, o); err != nil {
		return uuid.Nil, domain.BillResult{}, fmt.Errorf("save order: %w", err)
	}

	res := s.payments.CreateBill(ctx, o, id.String())
	if res.Success {
		if err := s.repo.SetStatus(ctx, id, domain.StatusPending, res.BillCode); err != nil {
			logger.Warn("record bill code failed", "order_id", id, "err", err)
		}
		logger.Info("bill created", "order_id", id, "billcode", res.BillCode)
	} else {
		logger.Warn("bill creation rejected", "order_id", id)
	}
	return id, res, nil
}

// HandlePaymentCallback processes a settlement notice. It never fails:
// whatever goes wrong downstream is logged and swallowed, so the handler can
// always acknowledge and the provider never enters a redelivery storm.
func (s *CheckoutService) HandlePaymentCallback(ctx context.Context, n toyyib.PaymentNotice) {
	if !n.Paid() {
		logger.Info("payment callback ignored", "order_id", n.OrderID, "status", n.Status)
		return
	}

	id, err := uuid.Parse(n.OrderID)
	if err != nil {
		logger.Warn("payment callback with unparseable order reference", "order_id", n.OrderID)
		return
	}

	if err := s.repo.SetStatus(ctx, id, domain.StatusPaid, n.BillCode); err != nil {
		logger.Warn("mark order paid failed", "order_id", id, "err", err)
	}
	s.publish(ctx, Event{Kind: EventPaymentSettled, OrderID: id.String(), BillCode: n.BillCode})

	o, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		logger.Warn("order lookup for shipment failed", "order_id", id, "err", err)
		return
	}

	res := s.shipping.CreateShipment(ctx, o)
	if !res.Success {
		logger.Warn("shipment creation failed", "order_id", id, "err", res.Error)
		return
	}
	logger.Info("shipment created", "order_id", id)

	if err := s.repo.SetStatus(ctx, id, domain.StatusShipped, ""); err != nil {
		logger.Warn("mark order shipped failed", "order_id", id, "err", err)
	}
	s.publish(ctx, Event{Kind: EventShipmentCreated, OrderID: id.String()})
}

func (s *CheckoutService) CheckRate(ctx context.Context, o *domain.Order) domain.ShipmentResult {
	return s.shipping.CheckRate(ctx, o)
}

func (s *CheckoutService) CreateShipment(ctx context.Context, o *domain.Order) domain.ShipmentResult {
	return s.shipping.CreateShipment(ctx, o)
}

func (s *CheckoutService) publish(ctx context.Context, e Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		logger.Warn("event publish failed", "kind", e.Kind, "order_id", e.OrderID, "err", err)
	}
}
