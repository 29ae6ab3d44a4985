// Package shopify is a small Admin REST API client covering the calls the
// store sync needs.
package shopify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const (
	// APIVersion is the pinned Admin API version.
	APIVersion = "2024-01"

	connectTimeout = 10 * time.Second
	requestTimeout = 30 * time.Second
	// Shopify's leaky bucket refills at two requests per second.
	requestsPerSecond = 2
	maxPageSize       = 250
)

// ConnectionResult reports a connection test.
type ConnectionResult struct {
	Success    bool    `json:"success"`
	Message    string  `json:"message"`
	ShopName   *string `json:"shop_name,omitempty"`
	ShopDomain *string `json:"shop_domain,omitempty"`
}

// Variant is a purchasable option of a product.
type Variant struct {
	ID                int64  `json:"id"`
	Price             string `json:"price"`
	SKU               string `json:"sku"`
	InventoryItemID   int64  `json:"inventory_item_id"`
	InventoryQuantity int    `json:"inventory_quantity"`
}

// Image is a product image.
type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

// Product is a Shopify product.
type Product struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	BodyHTML    string    `json:"body_html"`
	Vendor      string    `json:"vendor"`
	ProductType string    `json:"product_type"`
	Status      string    `json:"status"`
	Images      []Image   `json:"images"`
	Variants    []Variant `json:"variants"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}

// Order is a Shopify order.
type Order struct {
	ID                int64   `json:"id"`
	OrderNumber       int64   `json:"order_number"`
	Email             string  `json:"email"`
	TotalPrice        string  `json:"total_price"`
	Currency          string  `json:"currency"`
	FinancialStatus   string  `json:"financial_status"`
	FulfillmentStatus *string `json:"fulfillment_status"`
	CreatedAt         string  `json:"created_at"`
}

// InventoryLevel is stock for one inventory item at a location.
type InventoryLevel struct {
	InventoryItemID int64 `json:"inventory_item_id"`
	LocationID      int64 `json:"location_id"`
	Available       *int  `json:"available"`
}

// Client talks to one store.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

// NewClient builds a client for a store domain such as "my-store" or
// "https://my-store.myshopify.com/".
func NewClient(storeURL, accessToken string) *Client {
	return newClient(BaseURL(storeURL), accessToken)
}

func newClient(baseURL, accessToken string) *Client {
	http := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(requestTimeout).
		SetHeader("X-Shopify-Access-Token", accessToken).
		SetHeader("Content-Type", "application/json")
	return &Client{http: http, limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)}
}

// BaseURL normalizes a store URL into the Admin API root.
func BaseURL(storeURL string) string {
	host := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(storeURL), "https://"), "http://")
	host = strings.TrimRight(host, "/")
	if !strings.HasSuffix(host, ".myshopify.com") {
		host += ".myshopify.com"
	}
	return "https://" + host + "/admin/api/" + APIVersion
}

// TestConnection fetches shop.json. Transport failures become an unsuccessful result.
func (c *Client) TestConnection(ctx context.Context) ConnectionResult {
	var out struct {
		Shop struct {
			Name   string `json:"name"`
			Domain string `json:"domain"`
		} `json:"shop"`
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := c.limiter.Wait(ctx); err != nil {
		return ConnectionResult{Message: "Connection error: " + err.Error()}
	}
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).
		SetHeader("Accept", "application/json").
		Get("/shop.json")
	if err != nil {
		if isTimeout(err) {
			return ConnectionResult{Message: "Connection timed out. Check your store URL."}
		}
		return ConnectionResult{Message: "Connection error: " + err.Error()}
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		return ConnectionResult{
			Success:    true,
			Message:    "Successfully connected to Shopify",
			ShopName:   &out.Shop.Name,
			ShopDomain: &out.Shop.Domain,
		}
	case http.StatusUnauthorized:
		return ConnectionResult{Message: "Invalid access token"}
	case http.StatusNotFound:
		return ConnectionResult{Message: "Store not found. Check your store URL."}
	default:
		return ConnectionResult{Message: fmt.Sprintf("Connection failed: HTTP %d", resp.StatusCode())}
	}
}

// Products lists active products, newest ids after sinceID.
func (c *Client) Products(ctx context.Context, limit int, sinceID int64) ([]Product, error) {
	var out struct {
		Products []Product `json:"products"`
	}
	params := map[string]string{"limit": strconv.Itoa(pageSize(limit)), "status": "active"}
	if sinceID > 0 {
		params["since_id"] = strconv.FormatInt(sinceID, 10)
	}
	if err := c.get(ctx, "/products.json", params, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

// Orders lists orders of any status.
func (c *Client) Orders(ctx context.Context, limit int, createdAtMin *time.Time) ([]Order, error) {
	var out struct {
		Orders []Order `json:"orders"`
	}
	params := map[string]string{"limit": strconv.Itoa(pageSize(limit)), "status": "any"}
	if createdAtMin != nil {
		params["created_at_min"] = createdAtMin.UTC().Format(time.RFC3339)
	}
	if err := c.get(ctx, "/orders.json", params, &out); err != nil {
		return nil, err
	}
	return out.Orders, nil
}

// InventoryLevels returns stock at the store's first location.
func (c *Client) InventoryLevels(ctx context.Context) ([]InventoryLevel, error) {
	var locations struct {
		Locations []struct {
			ID int64 `json:"id"`
		} `json:"locations"`
	}
	if err := c.get(ctx, "/locations.json", nil, &locations); err != nil {
		return nil, err
	}
	if len(locations.Locations) == 0 {
		return nil, nil
	}
	var out struct {
		InventoryLevels []InventoryLevel `json:"inventory_levels"`
	}
	params := map[string]string{"location_ids": strconv.FormatInt(locations.Locations[0].ID, 10)}
	if err := c.get(ctx, "/inventory_levels.json", params, &out); err != nil {
		return nil, err
	}
	return out.InventoryLevels, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, dst any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(dst).
		Get(path)
	if err != nil {
		return fmt.Errorf("shopify %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("shopify %s: status %d", path, resp.StatusCode())
	}
	return nil
}

func pageSize(limit int) int {
	if limit <= 0 || limit > maxPageSize {
		return maxPageSize
	}
	return limit
}

func isTimeout(err error) bool {
	var te interface{ Timeout() bool }
	return errors.As(err, &te) && te.Timeout() || errors.Is(err, context.DeadlineExceeded)
}
