package checkout

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgstripe "github.com/modawear/modawear-backend/pkg/stripe"
)

// SessionLineItem is one display entry sent to the payment provider.
type SessionLineItem struct {
	Name            string
	Image           string
	UnitAmountCents int64
	Quantity        int64
}

// SessionRequest carries everything needed to open a hosted payment session.
type SessionRequest struct {
	LineItems  []SessionLineItem
	SuccessURL string
	CancelURL  string
}

// PaymentClient exposes the subset of Stripe operations required by the
// checkout service.
type PaymentClient interface {
	CreateCheckoutSession(ctx context.Context, req SessionRequest) (string, error)
}

type stripeClientWrapper struct {
	api *stripe.Client
}

// NewPaymentClient wraps the provided Stripe client so the checkout service
// can be tested. All session calls go through the wrapped client rather than
// the package-level Stripe state.
func NewPaymentClient(api *pkgstripe.Client) PaymentClient {
	if api == nil || api.API() == nil {
		return nil
	}
	return &stripeClientWrapper{api: api.API()}
}

func (w *stripeClientWrapper) CreateCheckoutSession(ctx context.Context, req SessionRequest) (string, error) {
	items := make([]*stripe.CheckoutSessionCreateLineItemParams, 0, len(req.LineItems))
	for _, item := range req.LineItems {
		product := &stripe.CheckoutSessionCreateLineItemPriceDataProductDataParams{
			Name: stripe.String(item.Name),
		}
		if item.Image != "" {
			product.Images = stripe.StringSlice([]string{item.Image})
		}
		items = append(items, &stripe.CheckoutSessionCreateLineItemParams{
			PriceData: &stripe.CheckoutSessionCreateLineItemPriceDataParams{
				Currency:    stripe.String(string(stripe.CurrencyUSD)),
				ProductData: product,
				UnitAmount:  stripe.Int64(item.UnitAmountCents),
			},
			Quantity: stripe.Int64(item.Quantity),
		})
	}

	params := &stripe.CheckoutSessionCreateParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          items,
		SuccessURL:         stripe.String(req.SuccessURL),
		CancelURL:          stripe.String(req.CancelURL),
	}

	sess, err := w.api.V1CheckoutSessions.Create(ctx, params)
	if err != nil {
		return "", err
	}
	return sess.ID, nil
}
