package easyparcel

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/prorideparts/checkout-gateway/internal/domain"
	"github.com/prorideparts/checkout-gateway/internal/logger"
)

const (
	rateCheckAction   = "EPOrderPriceChecking"
	submitOrderAction = "EPSubmitOrder"

	// Every parcel ships under the same customs/content label.
	contentDescription = "Car parts"
)

type Config struct {
	BaseURL        string
	APIKey         string
	SenderName     string
	SenderPhone    string
	SenderAddress  string
	PickupPostcode string
}

// Client talks to the EasyParcel bulk API. Responses are relayed raw with a
// success flag attached; transport and decode failures become failure
// results, never errors.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// RateRequest asks for a price quote without committing to a shipment.
type RateRequest struct {
	APIKey string      `json:"api_key"`
	Bulk   []RateEntry `json:"bulk"`
}

type RateEntry struct {
	PickCode string  `json:"pick_code"`
	SendCode string  `json:"send_code"`
	Weight   float64 `json:"weight"`
}

// ShipmentRequest books a shipment: full pickup identity from the sender
// config, full destination identity from the order's customer.
type ShipmentRequest struct {
	APIKey string          `json:"api_key"`
	Bulk   []ShipmentEntry `json:"bulk"`
}

type ShipmentEntry struct {
	PickName     string  `json:"pick_name"`
	PickContact  string  `json:"pick_contact"`
	PickAddr1    string  `json:"pick_addr1"`
	PickPostcode string  `json:"pick_postcode"`
	SendName     string  `json:"send_name"`
	SendContact  string  `json:"send_contact"`
	SendAddr1    string  `json:"send_addr1"`
	SendPostcode string  `json:"send_postcode"`
	Weight       float64 `json:"weight"`
	Content      string  `json:"content"`
	Value        float64 `json:"value"`
}

func (c *Client) BuildRateRequest(o *domain.Order) RateRequest {
	return RateRequest{
		APIKey: c.cfg.APIKey,
		Bulk: []RateEntry{{
			PickCode: c.cfg.PickupPostcode,
			SendCode: o.Customer.Postcode,
			Weight:   domain.EstimateWeight(o.Items),
		}},
	}
}

func (c *Client) BuildShipmentRequest(o *domain.Order) ShipmentRequest {
	return ShipmentRequest{
		APIKey: c.cfg.APIKey,
		Bulk: []ShipmentEntry{{
			PickName:     c.cfg.SenderName,
			PickContact:  c.cfg.SenderPhone,
			PickAddr1:    c.cfg.SenderAddress,
			PickPostcode: c.cfg.PickupPostcode,
			SendName:     o.Customer.Name,
			SendContact:  o.Customer.Phone,
			SendAddr1:    o.Customer.Address,
			SendPostcode: o.Customer.Postcode,
			Weight:       domain.EstimateWeight(o.Items),
			Content:      contentDescription,
			Value:        o.Total,
		}},
	}
}

func (c *Client) CheckRate(ctx context.Context, o *domain.Order) domain.ShipmentResult {
	return c.post(ctx, rateCheckAction, c.BuildRateRequest(o))
}

func (c *Client) CreateShipment(ctx context.Context, o *domain.Order) domain.ShipmentResult {
	return c.post(ctx, submitOrderAction, c.BuildShipmentRequest(o))
}

func (c *Client) post(ctx context.Context, action string, payload any) domain.ShipmentResult {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.FailedShipment(err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/?ac="+action, bytes.NewReader(body))
	if err != nil {
		return domain.FailedShipment(err.Error())
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("easyparcel request failed", "action", action, "err", err)
		return domain.FailedShipment(err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.FailedShipment(err.Error())
	}
	if !json.Valid(raw) {
		return domain.FailedShipment("invalid provider response: " + string(raw))
	}
	return domain.ShipmentResult{Success: true, Data: json.RawMessage(raw)}
}
