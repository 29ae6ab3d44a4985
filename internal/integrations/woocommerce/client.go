// Package woocommerce is a WooCommerce REST (wc/v3) client authenticated with
// a consumer key and secret.
package woocommerce

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
	apiPath = "/wp-json/wc/v3"

	connectTimeout    = 15 * time.Second
	requestTimeout    = 30 * time.Second
	requestsPerSecond = 5
	maxPageSize       = 100
)

// ConnectionResult reports a connection test.
type ConnectionResult struct {
	Success   bool    `json:"success"`
	Message   string  `json:"message"`
	StoreName *string `json:"store_name,omitempty"`
	WCVersion *string `json:"wc_version,omitempty"`
}

// Image is a product image.
type Image struct {
	ID  int64  `json:"id"`
	Src string `json:"src"`
}

// Category is a product category reference.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Product is a WooCommerce product.
type Product struct {
	ID               int64      `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	ShortDescription string     `json:"short_description"`
	SKU              string     `json:"sku"`
	Price            string     `json:"price"`
	RegularPrice     string     `json:"regular_price"`
	SalePrice        string     `json:"sale_price"`
	Status           string     `json:"status"`
	StockStatus      string     `json:"stock_status"`
	StockQuantity    *int       `json:"stock_quantity"`
	Images           []Image    `json:"images"`
	Categories       []Category `json:"categories"`
	DateCreated      string     `json:"date_created"`
	DateModified     string     `json:"date_modified"`
}

// Billing holds the order's billing contact.
type Billing struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// Order is a WooCommerce order.
type Order struct {
	ID          int64   `json:"id"`
	Number      string  `json:"number"`
	Status      string  `json:"status"`
	Total       string  `json:"total"`
	Currency    string  `json:"currency"`
	Billing     Billing `json:"billing"`
	DateCreated string  `json:"date_created"`
}

// CustomerName joins the billing first and last name.
func (o Order) CustomerName() string {
	return strings.TrimSpace(o.Billing.FirstName + " " + o.Billing.LastName)
}

// Client talks to one WooCommerce store.
type Client struct {
	http     *resty.Client
	storeURL string
	limiter  *rate.Limiter
}

// NewClient builds a client; a store URL without a scheme is treated as https.
func NewClient(storeURL, consumerKey, consumerSecret string) *Client {
	root := StoreURL(storeURL)
	http := resty.New().
		SetBaseURL(root+apiPath).
		SetTimeout(requestTimeout).
		SetBasicAuth(consumerKey, consumerSecret).
		SetHeader("Content-Type", "application/json")
	return &Client{http: http, storeURL: root, limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)}
}

// StoreURL trims the trailing slash and defaults the scheme to https.
func StoreURL(raw string) string {
	root := strings.TrimRight(strings.TrimSpace(raw), "/")
	if !strings.HasPrefix(root, "http://") && !strings.HasPrefix(root, "https://") {
		root = "https://" + root
	}
	return root
}

// TestConnection reads system_status, falling back to a one-item product
// listing when the status endpoint is hidden.
func (c *Client) TestConnection(ctx context.Context) ConnectionResult {
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	var out struct {
		Environment struct {
			SiteURL string `json:"site_url"`
			Version string `json:"version"`
		} `json:"environment"`
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return ConnectionResult{Message: "Connection error: " + err.Error()}
	}
	resp, err := c.http.R().SetContext(ctx).SetResult(&out).Get("/system_status")
	if err != nil {
		return transportFailure(err)
	}
	switch resp.StatusCode() {
	case http.StatusOK:
		name := out.Environment.SiteURL
		if name == "" {
			name = c.storeURL
		}
		version := out.Environment.Version
		if version == "" {
			version = "unknown"
		}
		return ConnectionResult{
			Success:   true,
			Message:   "Successfully connected to WooCommerce",
			StoreName: &name,
			WCVersion: &version,
		}
	case http.StatusUnauthorized:
		return ConnectionResult{Message: "Invalid consumer key or secret"}
	case http.StatusNotFound:
		alt, err := c.http.R().SetContext(ctx).SetQueryParam("per_page", "1").Get("/products")
		if err == nil && alt.StatusCode() == http.StatusOK {
			name := c.storeURL
			return ConnectionResult{Success: true, Message: "Connected to WooCommerce", StoreName: &name}
		}
		return ConnectionResult{Message: "WooCommerce API not found. Ensure REST API is enabled."}
	default:
		return ConnectionResult{Message: fmt.Sprintf("Connection failed: HTTP %d", resp.StatusCode())}
	}
}

// Products lists published products on one page.
func (c *Client) Products(ctx context.Context, perPage, page int) ([]Product, error) {
	var out []Product
	params := map[string]string{
		"per_page": strconv.Itoa(pageSize(perPage)),
		"page":     strconv.Itoa(max(page, 1)),
		"status":   "publish",
	}
	if err := c.get(ctx, "/products", params, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Orders lists orders on one page, optionally created after a time.
func (c *Client) Orders(ctx context.Context, perPage, page int, after *time.Time) ([]Order, error) {
	var out []Order
	params := map[string]string{
		"per_page": strconv.Itoa(pageSize(perPage)),
		"page":     strconv.Itoa(max(page, 1)),
	}
	if after != nil {
		params["after"] = after.UTC().Format(time.RFC3339)
	}
	if err := c.get(ctx, "/orders", params, &out); err != nil {
		return nil, err
	}
	return out, nil
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
		return fmt.Errorf("woocommerce %s: %w", path, err)
	}
	if resp.IsError() {
		return fmt.Errorf("woocommerce %s: status %d", path, resp.StatusCode())
	}
	return nil
}

func transportFailure(err error) ConnectionResult {
	var te interface{ Timeout() bool }
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &te) && te.Timeout()) {
		return ConnectionResult{Message: "Connection timed out. Check your store URL."}
	}
	return ConnectionResult{Message: "Connection error: " + err.Error()}
}

func pageSize(n int) int {
	if n <= 0 || n > maxPageSize {
		return maxPageSize
	}
	return n
}
