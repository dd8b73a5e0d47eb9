// Package stripe wraps the Stripe SDK calls the API needs: hosted checkout,
// charge listing, product sync and webhook verification.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"strings"

	stripesdk "github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/balancetransaction"
	"github.com/stripe/stripe-go/v83/charge"
	"github.com/stripe/stripe-go/v83/checkout/session"
	"github.com/stripe/stripe-go/v83/price"
	"github.com/stripe/stripe-go/v83/product"

	"github.com/civeni/civeni-api/internal/config"
	"github.com/civeni/civeni-api/internal/domain"
)

var (
	ErrNotConfigured = errors.New("stripe is not configured")
)

type Gateway struct {
	conf     *config.StripeConfig
	sessions *session.Client
	charges  *charge.Client
	products *product.Client
	prices   *price.Client
	balances *balancetransaction.Client
}

func NewGateway(conf *config.StripeConfig) *Gateway {
	backend := stripesdk.GetBackend(stripesdk.APIBackend)

	return &Gateway{
		conf:     conf,
		sessions: &session.Client{B: backend, Key: conf.SecretKey},
		charges:  &charge.Client{B: backend, Key: conf.SecretKey},
		products: &product.Client{B: backend, Key: conf.SecretKey},
		prices:   &price.Client{B: backend, Key: conf.SecretKey},
		balances: &balancetransaction.Client{B: backend, Key: conf.SecretKey},
	}
}

func (g *Gateway) Configured() bool {
	return g.conf.Configured()
}

// CreateCheckoutSession opens a one-item hosted checkout page. The metadata
// is copied to the payment intent so charges carry it too.
func (g *Gateway) CreateCheckoutSession(ctx context.Context, req domain.CheckoutRequest) (domain.CheckoutSession, error) {
	if !g.Configured() {
		return domain.CheckoutSession{}, ErrNotConfigured
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = g.conf.DefaultCurrency
	}

	params := &stripesdk.CheckoutSessionParams{
		Mode:          stripesdk.String(string(stripesdk.CheckoutSessionModePayment)),
		SuccessURL:    stripesdk.String(g.conf.SuccessURL),
		CancelURL:     stripesdk.String(g.conf.CancelURL),
		CustomerEmail: stripesdk.String(req.CustomerEmail),
		LineItems: []*stripesdk.CheckoutSessionLineItemParams{
			{
				PriceData: &stripesdk.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripesdk.String(currency),
					UnitAmount: stripesdk.Int64(req.UnitAmount),
					ProductData: &stripesdk.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripesdk.String(req.ProductName),
					},
				},
				Quantity: stripesdk.Int64(1),
			},
		},
		PaymentIntentData: &stripesdk.CheckoutSessionPaymentIntentDataParams{
			Metadata: req.Metadata,
		},
	}
	params.Context = ctx
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}

	s, err := g.sessions.New(params)
	if err != nil {
		return domain.CheckoutSession{}, fmt.Errorf("g.sessions.New -> %w", err)
	}

	return CheckoutSessionToDomain(s), nil
}

func (g *Gateway) GetCheckoutSession(ctx context.Context, id string) (domain.CheckoutSession, error) {
	if !g.Configured() {
		return domain.CheckoutSession{}, ErrNotConfigured
	}

	params := &stripesdk.CheckoutSessionParams{}
	params.Context = ctx

	s, err := g.sessions.Get(id, params)
	if err != nil {
		return domain.CheckoutSession{}, fmt.Errorf("g.sessions.Get -> %w", err)
	}

	return CheckoutSessionToDomain(s), nil
}

// ListRecentCharges returns up to limit charges, newest first, with their
// balance transaction expanded so fees are known.
func (g *Gateway) ListRecentCharges(ctx context.Context, limit int) ([]domain.Charge, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}

	params := &stripesdk.ChargeListParams{}
	params.Context = ctx
	params.Limit = stripesdk.Int64(100)
	params.AddExpand("data.balance_transaction")

	charges := make([]domain.Charge, 0, limit)
	iter := g.charges.List(params)
	for iter.Next() {
		charges = append(charges, ChargeToDomain(iter.Charge()))
		if len(charges) >= limit {
			break
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("g.charges.List -> %w", err)
	}

	return charges, nil
}

// ChargeFee looks up the processing fee of a balance transaction.
func (g *Gateway) ChargeFee(ctx context.Context, balanceTxID string) (int64, error) {
	if !g.Configured() {
		return 0, ErrNotConfigured
	}

	params := &stripesdk.BalanceTransactionParams{}
	params.Context = ctx

	bt, err := g.balances.Get(balanceTxID, params)
	if err != nil {
		return 0, fmt.Errorf("g.balances.Get -> %w", err)
	}

	return bt.Fee, nil
}

// SyncProduct mirrors a category as a Stripe product with one price. A new
// price is created whenever the amount changes since Stripe prices are
// immutable.
func (g *Gateway) SyncProduct(ctx context.Context, c domain.Category) (domain.ProductSync, error) {
	if !g.Configured() {
		return domain.ProductSync{}, ErrNotConfigured
	}

	productID := c.StripeProductID
	if productID == "" {
		params := &stripesdk.ProductParams{
			Name:        stripesdk.String(c.Title()),
			Description: optionalString(c.DescriptionPT),
		}
		params.Context = ctx
		params.AddMetadata("category_id", c.ID.String())
		params.AddMetadata("slug", c.Slug)

		p, err := g.products.New(params)
		if err != nil {
			return domain.ProductSync{}, fmt.Errorf("g.products.New -> %w", err)
		}
		productID = p.ID
	} else {
		params := &stripesdk.ProductParams{
			Name: stripesdk.String(c.Title()),
		}
		params.Context = ctx

		if _, err := g.products.Update(productID, params); err != nil {
			return domain.ProductSync{}, fmt.Errorf("g.products.Update -> %w", err)
		}
	}

	currency := c.Currency
	if currency == "" {
		currency = g.conf.DefaultCurrency
	}

	params := &stripesdk.PriceParams{
		Product:    stripesdk.String(productID),
		UnitAmount: stripesdk.Int64(c.PriceCents),
		Currency:   stripesdk.String(strings.ToLower(currency)),
	}
	params.Context = ctx

	p, err := g.prices.New(params)
	if err != nil {
		return domain.ProductSync{}, fmt.Errorf("g.prices.New -> %w", err)
	}

	return domain.ProductSync{ProductID: productID, PriceID: p.ID}, nil
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return stripesdk.String(s)
}
