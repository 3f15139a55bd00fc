package application

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prorideparts/checkout-gateway/internal/domain"
	"github.com/prorideparts/checkout-gateway/internal/repository"
	"github.com/prorideparts/checkout-gateway/internal/toyyib"
)

type fakeRepo struct {
	orders   map[uuid.UUID]*domain.Order
	statuses map[uuid.UUID]string
	saveErr  error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orders:   make(map[uuid.UUID]*domain.Order),
		statuses: make(map[uuid.UUID]string),
	}
}

func (f *fakeRepo) SaveOrder(_ context.Context, id uuid.UUID, o *domain.Order) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.orders[id] = o
	f.statuses[id] = domain.StatusPending
	return nil
}

func (f *fakeRepo) GetOrderByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeRepo) SetStatus(_ context.Context, id uuid.UUID, status string, _ string) error {
	if _, ok := f.orders[id]; !ok {
		return repository.ErrOrderNotFound
	}
	f.statuses[id] = status
	return nil
}

type fakePayments struct {
	lastRef string
	result  domain.BillResult
}

func (f *fakePayments) CreateBill(_ context.Context, _ *domain.Order, ref string) domain.BillResult {
	f.lastRef = ref
	return f.result
}

type fakeShipping struct {
	rateResult     domain.ShipmentResult
	shipmentResult domain.ShipmentResult
	shipmentCalls  int
}

func (f *fakeShipping) CheckRate(_ context.Context, _ *domain.Order) domain.ShipmentResult {
	return f.rateResult
}

func (f *fakeShipping) CreateShipment(_ context.Context, _ *domain.Order) domain.ShipmentResult {
	f.shipmentCalls++
	return f.shipmentResult
}

type fakeEvents struct {
	published []Event
}

func (f *fakeEvents) Publish(_ context.Context, e Event) error {
	f.published = append(f.published, e)
	return nil
}

func testOrder() *domain.Order {
	return &domain.Order{
		Customer: domain.Customer{
			Name:     "Ali Hassan",
			Email:    "ali@example.com",
			Phone:    "0123456789",
			Address:  "12 Jalan Besar",
			Postcode: "50000",
		},
		Items: []domain.LineItem{{Position: "1SET", Quantity: 1}},
		Total: 1250,
	}
}

func paidNotice(orderID string) toyyib.PaymentNotice {
	form := url.Values{}
	form.Set("status", "1")
	form.Set("billcode", "BC1")
	form.Set("order_id", orderID)
	return toyyib.ParsePaymentNotice(form)
}

func TestCreateBillPersistsBeforeCallingGateway(t *testing.T) {
	repo := newFakeRepo()
	payments := &fakePayments{result: domain.BillResult{Success: true, BillCode: "BC1", PaymentURL: "https://toyyibpay.com/BC1"}}
	svc := NewCheckoutService(repo, payments, &fakeShipping{}, nil)

	id, res, err := svc.CreateBill(context.Background(), testOrder())

	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, id.String(), payments.lastRef)
	assert.Contains(t, repo.orders, id)
}

func TestCreateBillStoreFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = errors.New("db down")
	svc := NewCheckoutService(repo, &fakePayments{}, &fakeShipping{}, nil)

	_, _, err := svc.CreateBill(context.Background(), testOrder())
	assert.Error(t, err)
}

func TestCreateBillGatewayRejection(t *testing.T) {
	repo := newFakeRepo()
	payments := &fakePayments{result: domain.BillResult{Success: false, Error: json.RawMessage(`[]`)}}
	svc := NewCheckoutService(repo, payments, &fakeShipping{}, nil)

	_, res, err := svc.CreateBill(context.Background(), testOrder())

	require.NoError(t, err)
	assert.False(t, res.Success)
}

func TestPaymentCallbackCreatesShipment(t *testing.T) {
	repo := newFakeRepo()
	shipping := &fakeShipping{shipmentResult: domain.ShipmentResult{Success: true, Data: json.RawMessage(`{}`)}}
	events := &fakeEvents{}
	svc := NewCheckoutService(repo, &fakePayments{result: domain.BillResult{Success: true}}, shipping, events)

	id, _, err := svc.CreateBill(context.Background(), testOrder())
	require.NoError(t, err)

	svc.HandlePaymentCallback(context.Background(), paidNotice(id.String()))

	assert.Equal(t, 1, shipping.shipmentCalls)
	assert.Equal(t, domain.StatusShipped, repo.statuses[id])
	require.Len(t, events.published, 2)
	assert.Equal(t, EventPaymentSettled, events.published[0].Kind)
	assert.Equal(t, EventShipmentCreated, events.published[1].Kind)
}

func TestPaymentCallbackShipmentFailureIsSwallowed(t *testing.T) {
	repo := newFakeRepo()
	shipping := &fakeShipping{shipmentResult: domain.FailedShipment("courier api down")}
	svc := NewCheckoutService(repo, &fakePayments{result: domain.BillResult{Success: true}}, shipping, nil)

	id, _, err := svc.CreateBill(context.Background(), testOrder())
	require.NoError(t, err)

	// must not panic or propagate anything
	svc.HandlePaymentCallback(context.Background(), paidNotice(id.String()))

	assert.Equal(t, 1, shipping.shipmentCalls)
	assert.Equal(t, domain.StatusPaid, repo.statuses[id])
}

func TestPaymentCallbackIgnoresUnpaidStatus(t *testing.T) {
	shipping := &fakeShipping{}
	svc := NewCheckoutService(newFakeRepo(), &fakePayments{}, shipping, nil)

	n := paidNotice(uuid.NewString())
	n.Status = "3" // failed payment

	svc.HandlePaymentCallback(context.Background(), n)
	assert.Zero(t, shipping.shipmentCalls)
}

func TestPaymentCallbackUnknownOrder(t *testing.T) {
	shipping := &fakeShipping{shipmentResult: domain.ShipmentResult{Success: true}}
	svc := NewCheckoutService(newFakeRepo(), &fakePayments{}, shipping, nil)

	svc.HandlePaymentCallback(context.Background(), paidNotice(uuid.NewString()))
	assert.Zero(t, shipping.shipmentCalls)

	svc.HandlePaymentCallback(context.Background(), paidNotice("not-a-uuid"))
	assert.Zero(t, shipping.shipmentCalls)
}
