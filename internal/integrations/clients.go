package integrations

import (
	"context"
	"strconv"
	"strings"

	"github.com/angelmondragon/urgency-engine/internal/integrations/shopify"
	"github.com/angelmondragon/urgency-engine/internal/integrations/woocommerce"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/shopspring/decimal"
)

// ConnectionResult is a platform-neutral connection test outcome.
type ConnectionResult struct {
	Success   bool
	Message   string
	StoreName *string
}

// RemoteProduct is a store product mapped onto catalogue fields.
type RemoteProduct struct {
	ExternalID  string
	Title       string
	Description *string
	PriceCents  int64
	ImageURL    *string
	Inventory   *int
	Active      bool
}

// StoreClient is what sync needs from a platform API.
type StoreClient interface {
	TestConnection(ctx context.Context) ConnectionResult
	FetchProducts(ctx context.Context) ([]RemoteProduct, error)
	CountOrders(ctx context.Context) (int, error)
}

// ClientFactory builds a StoreClient from decrypted credentials.
type ClientFactory func(platform enums.IntegrationPlatform, storeURL string, creds map[string]string) (StoreClient, error)

// NewStoreClient is the production ClientFactory.
func NewStoreClient(platform enums.IntegrationPlatform, storeURL string, creds map[string]string) (StoreClient, error) {
	switch platform {
	case enums.IntegrationPlatformShopify:
		return shopifyStore{client: shopify.NewClient(storeURL, creds[CredAccessToken])}, nil
	case enums.IntegrationPlatformWoocommerce:
		return wooStore{client: woocommerce.NewClient(storeURL, creds[CredAPIKey], creds[CredAPISecret])}, nil
	default:
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "Platform '%s' is not available", platform)
	}
}

type shopifyStore struct {
	client *shopify.Client
}

func (s shopifyStore) TestConnection(ctx context.Context) ConnectionResult {
	res := s.client.TestConnection(ctx)
	return ConnectionResult{Success: res.Success, Message: res.Message, StoreName: res.ShopName}
}

// FetchProducts maps each product's first variant; inventory levels at the
// first location override the variant's cached quantity.
func (s shopifyStore) FetchProducts(ctx context.Context) ([]RemoteProduct, error) {
	products, err := s.client.Products(ctx, 0, 0)
	if err != nil {
		return nil, err
	}
	levels, err := s.client.InventoryLevels(ctx)
	if err != nil {
		return nil, err
	}
	available := make(map[int64]int, len(levels))
	for _, l := range levels {
		if l.Available != nil {
			available[l.InventoryItemID] = *l.Available
		}
	}

	out := make([]RemoteProduct, 0, len(products))
	for _, p := range products {
		rp := RemoteProduct{
			ExternalID:  strconv.FormatInt(p.ID, 10),
			Title:       p.Title,
			Description: nonEmpty(p.BodyHTML),
			Active:      p.Status == "active",
		}
		if len(p.Images) > 0 {
			rp.ImageURL = nonEmpty(p.Images[0].Src)
		}
		if len(p.Variants) > 0 {
			v := p.Variants[0]
			rp.PriceCents = priceCents(v.Price)
			qty := v.InventoryQuantity
			if level, ok := available[v.InventoryItemID]; ok {
				qty = level
			}
			rp.Inventory = &qty
		}
		out = append(out, rp)
	}
	return out, nil
}

func (s shopifyStore) CountOrders(ctx context.Context) (int, error) {
	orders, err := s.client.Orders(ctx, 0, nil)
	if err != nil {
		return 0, err
	}
	return len(orders), nil
}

type wooStore struct {
	client *woocommerce.Client
}

func (w wooStore) TestConnection(ctx context.Context) ConnectionResult {
	res := w.client.TestConnection(ctx)
	return ConnectionResult{Success: res.Success, Message: res.Message, StoreName: res.StoreName}
}

func (w wooStore) FetchProducts(ctx context.Context) ([]RemoteProduct, error) {
	products, err := w.client.Products(ctx, 0, 1)
	if err != nil {
		return nil, err
	}
	out := make([]RemoteProduct, 0, len(products))
	for _, p := range products {
		price := p.Price
		if price == "" {
			price = p.RegularPrice
		}
		desc := p.Description
		if desc == "" {
			desc = p.ShortDescription
		}
		rp := RemoteProduct{
			ExternalID:  strconv.FormatInt(p.ID, 10),
			Title:       p.Name,
			Description: nonEmpty(desc),
			PriceCents:  priceCents(price),
			Inventory:   p.StockQuantity,
			Active:      p.Status == "" || p.Status == "publish",
		}
		if len(p.Images) > 0 {
			rp.ImageURL = nonEmpty(p.Images[0].Src)
		}
		out = append(out, rp)
	}
	return out, nil
}

func (w wooStore) CountOrders(ctx context.Context) (int, error) {
	orders, err := w.client.Orders(ctx, 0, 1, nil)
	if err != nil {
		return 0, err
	}
	return len(orders), nil
}

// priceCents parses a decimal price string; unparseable prices count as zero.
func priceCents(raw string) int64 {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	return d.Shift(2).Round(0).IntPart()
}

func nonEmpty(v string) *string {
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}
