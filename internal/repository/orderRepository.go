package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prorideparts/checkout-gateway/internal/domain"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepo is the lookup collaborator the payment callback depends on:
// create-bill saves the order under its reference, the callback reads it
// back before booking the shipment.
type OrderRepo interface {
	SaveOrder(ctx context.Context, id uuid.UUID, o *domain.Order) error
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	SetStatus(ctx context.Context, id uuid.UUID, status string, billCode string) error
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(p *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: p}
}

func (r *OrderRepository) SaveOrder(ctx context.Context, id uuid.UUID, o *domain.Order) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	_, err = r.pool.Exec(ctx,
		`INSERT INTO checkout.orders (id, customer_name, customer_postcode, total, status, payload)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		id,
		o.Customer.Name,
		o.Customer.Postcode,
		o.Total,
		domain.StatusPending,
		payload,
	)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

func (r *OrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var payload []byte
	err := r.pool.QueryRow(ctx,
		`SELECT payload FROM checkout.orders WHERE id = $1`, id,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}

	var o domain.Order
	if err := json.Unmarshal(payload, &o); err != nil {
		return nil, fmt.Errorf("unmarshal order payload: %w", err)
	}
	return &o, nil
}

// SetStatus records the lifecycle transition; billCode may be empty when the
// transition has no provider code attached.
func (r *OrderRepository) SetStatus(ctx context.Context, id uuid.UUID, status string, billCode string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE checkout.orders
		 SET status = $2, bill_code = COALESCE(NULLIF($3, ''), bill_code), updated_at = now()
		 WHERE id = $1`,
		id, status, billCode,
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}
