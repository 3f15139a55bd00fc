package toyyib

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/prorideparts/checkout-gateway/internal/domain"
	"github.com/prorideparts/checkout-gateway/internal/logger"
)

const createBillPath = "/index.php/api/createBill"

type Config struct {
	BaseURL      string
	SecretKey    string
	CategoryCode string
	ReturnURL    string
	CallbackURL  string
}

// Client talks to the ToyyibPay bill API. All failures come back as a
// BillResult with Success=false, never as an error.
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

// BuildBillRequest maps an order onto ToyyibPay's createBill form. The
// amount is sent in sen (provider contract); ref travels as the external
// reference and comes back as order_id in the payment callback.
func (c *Client) BuildBillRequest(o *domain.Order, ref string) url.Values {
	form := url.Values{}
	form.Set("userSecretKey", c.cfg.SecretKey)
	form.Set("categoryCode", c.cfg.CategoryCode)
	form.Set("billName", "Proride Parts Order")
	form.Set("billDescription", "Order payment")
	form.Set("billPriceSetting", "1")
	form.Set("billAmount", strconv.FormatInt(int64(math.Round(o.Total*100)), 10))
	form.Set("billReturnUrl", c.cfg.ReturnURL)
	form.Set("billCallbackUrl", c.cfg.CallbackURL)
	form.Set("billExternalReferenceNo", ref)
	form.Set("billTo", o.Customer.Name)
	form.Set("billEmail", o.Customer.Email)
	form.Set("billPhone", o.Customer.Phone)
	return form
}

func (c *Client) CreateBill(ctx context.Context, o *domain.Order, ref string) domain.BillResult {
	form := c.BuildBillRequest(o, ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+createBillPath, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.FailedBill(err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.Warn("toyyib createBill request failed", "ref", ref, "err", err)
		return domain.FailedBill(err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.FailedBill(err.Error())
	}
	return c.ParseBillResponse(raw)
}

// ParseBillResponse normalizes the provider reply. A successful createBill
// is a one-element JSON array carrying the BillCode; anything else (empty
// array, missing code, error object, non-JSON) is a failure and the raw
// payload rides along for diagnostics.
func (c *Client) ParseBillResponse(raw []byte) domain.BillResult {
	var bills []struct {
		BillCode string `json:"BillCode"`
	}
	if err := json.Unmarshal(raw, &bills); err == nil && len(bills) > 0 && bills[0].BillCode != "" {
		code := bills[0].BillCode
		return domain.BillResult{
			Success:    true,
			BillCode:   code,
			PaymentURL: c.cfg.BaseURL + "/" + code,
		}
	}
	if json.Valid(raw) {
		return domain.BillResult{Success: false, Error: json.RawMessage(raw)}
	}
	return domain.FailedBill(string(raw))
}

// PaymentNotice is the form ToyyibPay posts to our callback URL once a bill
// settles. OrderID echoes the billExternalReferenceNo we sent.
type PaymentNotice struct {
	RefNo    string
	Status   string
	Reason   string
	BillCode string
	OrderID  string
}

// StatusPaid is the callback status value for a settled bill.
const StatusPaid = "1"

func (n PaymentNotice) Paid() bool { return n.Status == StatusPaid }

// ParsePaymentNotice reads the callback form fields.
func ParsePaymentNotice(form url.Values) PaymentNotice {
	return PaymentNotice{
		RefNo:    form.Get("refno"),
		Status:   form.Get("status"),
		Reason:   form.Get("reason"),
		BillCode: form.Get("billcode"),
		OrderID:  form.Get("order_id"),
	}
}
