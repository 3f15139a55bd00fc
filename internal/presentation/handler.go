package presentation

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/prorideparts/checkout-gateway/internal/application"
	"github.com/prorideparts/checkout-gateway/internal/domain"
	"github.com/prorideparts/checkout-gateway/internal/logger"
	"github.com/prorideparts/checkout-gateway/internal/presentation/helpers"
	"github.com/prorideparts/checkout-gateway/internal/toyyib"
)

type CheckoutHandler struct {
	svc      *application.CheckoutService
	validate *validator.Validate
}

func NewCheckoutHandler(svc *application.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{
		svc:      svc,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *CheckoutHandler) Register(r chi.Router) {
	r.Route("/api/toyyib", func(r chi.Router) {
		r.Post("/create-bill", h.CreateBill)
		r.Post("/callback", h.PaymentCallback)
	})
	r.Route("/api/easyparcel", func(r chi.Router) {
		r.Post("/check-rate", h.CheckRate)
		r.Post("/create-shipment", h.CreateShipment)
		r.Post("/callback", h.ShipmentCallback)
	})
}

// CreateBill takes the order as the request body and relays the gateway's
// normalized result. Malformed or incomplete orders never reach the gateway.
func (h *CheckoutHandler) CreateBill(w http.ResponseWriter, r *http.Request) {
	var ord domain.Order
	if err := helpers.DecodeJSON(r.Body, &ord); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := h.validate.Struct(&ord); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid order: "+err.Error())
		return
	}

	id, res, err := h.svc.CreateBill(r.Context(), &ord)
	if err != nil {
		logger.Warn("create-bill store failure", "err", err)
		helpers.HttpError(w, http.StatusInternalServerError, "failed to create bill")
		return
	}
	logger.Info("create-bill handled", "order_id", id, "success", res.Success)
	helpers.WriteJSON(w, http.StatusOK, res)
}

// PaymentCallback acknowledges unconditionally. ToyyibPay redelivers
// non-2xx callbacks, so even a garbled notice gets {success:true}; anything
// useful in it is handled on a best-effort basis first.
func (h *CheckoutHandler) PaymentCallback(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		logger.Warn("payment callback with unparseable form", "err", err)
		helpers.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
		return
	}

	notice := toyyib.ParsePaymentNotice(r.PostForm)
	logger.Info("payment callback received",
		"order_id", notice.OrderID, "billcode", notice.BillCode, "status", notice.Status)

	h.svc.HandlePaymentCallback(r.Context(), notice)

	helpers.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// rateBody and shipmentBody mirror the storefront's request wrappers. The
// payment block on create-shipment is accepted but unused.
type rateBody struct {
	Order domain.Order `json:"order"`
}

type shipmentBody struct {
	Order   domain.Order    `json:"order"`
	Payment json.RawMessage `json:"payment"`
}

func (h *CheckoutHandler) CheckRate(w http.ResponseWriter, r *http.Request) {
	var body rateBody
	if err := helpers.DecodeJSON(r.Body, &body); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := h.validate.Struct(&body.Order); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid order: "+err.Error())
		return
	}

	res := h.svc.CheckRate(r.Context(), &body.Order)
	helpers.WriteJSON(w, http.StatusOK, res)
}

func (h *CheckoutHandler) CreateShipment(w http.ResponseWriter, r *http.Request) {
	var body shipmentBody
	if err := helpers.DecodeJSON(r.Body, &body); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := h.validate.Struct(&body.Order); err != nil {
		helpers.HttpError(w, http.StatusBadRequest, "invalid order: "+err.Error())
		return
	}

	res := h.svc.CreateShipment(r.Context(), &body.Order)
	helpers.WriteJSON(w, http.StatusOK, res)
}

func (h *CheckoutHandler) ShipmentCallback(w http.ResponseWriter, r *http.Request) {
	logger.Info("shipment callback received")
	helpers.WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}
