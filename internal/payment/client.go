// Package payment creates checkouts and reads payment statuses through the
// Mercado Pago SDK.
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
)

// ErrGateway marks failures reported by, or while reaching, the gateway.
var ErrGateway = errors.New("payment gateway error")

// Payment statuses. StatusPending is used until the gateway reports one.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Config struct {
	AccessToken string
	// NotificationURL receives the gateway's webhooks, optional.
	NotificationURL string
	Timeout         time.Duration
	// HTTPClient replaces the SDK's default requester when set.
	HTTPClient *http.Client
}

type Client struct {
	preferences preference.Client
	payments    mppayment.Client
	notifyURL   string
}

func NewClient(cfg Config) (*Client, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	mpConfig, err := config.New(cfg.AccessToken, config.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("error creating payment config: %w", err)
	}
	return &Client{
		preferences: preference.NewClient(mpConfig),
		payments:    mppayment.NewClient(mpConfig),
		notifyURL:   cfg.NotificationURL,
	}, nil
}

// Item is one purchasable line of a checkout.
type Item struct {
	Title     string
	Quantity  int
	UnitPrice float64
	Currency  string
}

// CheckoutRequest describes a checkout to create. Reference is our own id,
// echoed back by the gateway on every payment of the checkout.
type CheckoutRequest struct {
	Reference  string
	PayerEmail string
	Items      []Item
}

// Checkout is a created checkout preference.
type Checkout struct {
	ID        string
	InitPoint string
}

// CreateCheckout registers a checkout preference with the gateway.
func (c *Client) CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error) {
	if len(req.Items) == 0 {
		return Checkout{}, errors.New("at least one item is required")
	}
	items := make([]preference.ItemRequest, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, preference.ItemRequest{
			Title:      it.Title,
			Quantity:   it.Quantity,
			UnitPrice:  it.UnitPrice,
			CurrencyID: it.Currency,
		})
	}
	pref := preference.Request{
		Items:             items,
		ExternalReference: req.Reference,
		NotificationURL:   c.notifyURL,
	}
	if req.PayerEmail != "" {
		pref.Payer = &preference.PayerRequest{Email: req.PayerEmail}
	}

	res, err := c.preferences.Create(ctx, pref)
	if err != nil {
		return Checkout{}, fmt.Errorf("%w: create preference: %v", ErrGateway, err)
	}
	if res.ID == "" {
		return Checkout{}, fmt.Errorf("%w: checkout without id", ErrGateway)
	}
	return Checkout{ID: res.ID, InitPoint: res.InitPoint}, nil
}

// Status returns the status of the most recent payment made against
// reference, or StatusPending when none exists yet.
func (c *Client) Status(ctx context.Context, reference string) (string, error) {
	res, err := c.payments.Search(ctx, mppayment.SearchRequest{
		Filters: map[string]string{
			"external_reference": reference,
			"sort":               "date_created",
			"criteria":           "desc",
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: search payments: %v", ErrGateway, err)
	}
	if len(res.Results) == 0 || res.Results[0].Status == "" {
		return StatusPending, nil
	}
	return res.Results[0].Status, nil
}
