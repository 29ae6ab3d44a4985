package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"
)

// MetadataProductSlug is the checkout session metadata key carrying the product slug.
const MetadataProductSlug = "product_slug"

// SessionCreator opens hosted checkout sessions.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
	Currency() string
}

// Input is the storefront checkout request.
type Input struct {
	ProductSlug   string
	CustomerEmail *string
}

// Result is returned to the storefront to redirect the buyer.
type Result struct {
	CheckoutURL string `json:"checkout_url"`
	SessionID   string `json:"session_id"`
}

// Service creates hosted checkout sessions for single-product purchases.
type Service interface {
	CreateSession(ctx context.Context, input Input) (*Result, error)
}

type ServiceParams struct {
	Products    products.Repository
	Stripe      SessionCreator
	FrontendURL string
	Logger      *logger.Logger
}

type service struct {
	products    products.Repository
	stripe      SessionCreator
	frontendURL string
	logg        *logger.Logger
}

func NewService(params ServiceParams) (Service, error) {
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repository required")
	}
	if params.Stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	frontend := strings.TrimRight(strings.TrimSpace(params.FrontendURL), "/")
	if frontend == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "frontend url required")
	}
	return &service{
		products:    params.Products,
		stripe:      params.Stripe,
		frontendURL: frontend,
		logg:        params.Logger,
	}, nil
}

func (s *service) CreateSession(ctx context.Context, input Input) (*Result, error) {
	product, err := s.products.FindBySlug(ctx, input.ProductSlug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if product.Status != enums.ProductStatusLive && product.Status != enums.ProductStatusTesting {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product is not available for purchase").
			WithDetails(map[string]any{"status": product.Status.String()})
	}

	productData := &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
		Name: stripe.String(product.Name),
	}
	if product.Description != nil && strings.TrimSpace(*product.Description) != "" {
		productData.Description = stripe.String(truncate(*product.Description, 500))
	}
	if product.MainImageURL != nil && *product.MainImageURL != "" {
		productData.Images = stripe.StringSlice([]string{*product.MainImageURL})
	}

	params := &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:    stripe.String(s.stripe.Currency()),
					ProductData: productData,
					UnitAmount:  stripe.Int64(product.PriceCents),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.frontendURL + "/checkout/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(fmt.Sprintf("%s/p/%s", s.frontendURL, product.Slug)),
	}
	if input.CustomerEmail != nil && strings.TrimSpace(*input.CustomerEmail) != "" {
		params.CustomerEmail = stripe.String(strings.TrimSpace(*input.CustomerEmail))
	}
	params.AddMetadata(MetadataProductSlug, product.Slug)

	sess, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(s.logg.WithField(ctx, "product_slug", product.Slug), "checkout.session_failed", err)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	return &Result{CheckoutURL: sess.URL, SessionID: sess.ID}, nil
}

func truncate(value string, max int) string {
	if len(value) <= max {
		return value
	}
	return value[:max]
}
