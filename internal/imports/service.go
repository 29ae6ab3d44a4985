package imports

import (
	"context"
	"strings"

	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/shopspring/decimal"
)

// ParseInput is the parse-url request.
type ParseInput struct {
	URL string `json:"url" validate:"required,max=2000"`
}

// ParseResult wraps a parse attempt. Bad URLs yield Success=false rather than an error.
type ParseResult struct {
	Success bool           `json:"success"`
	Data    *ParsedProduct `json:"data,omitempty"`
	Error   *string        `json:"error,omitempty"`
}

// CreateInput creates a catalogue product from parsed data.
type CreateInput struct {
	Title             string  `json:"title" validate:"required,min=2,max=255"`
	Description       string  `json:"description" validate:"max=10000"`
	PriceCents        int64   `json:"price_cents" validate:"gt=0,lte=1000000000"`
	SupplierCostCents int64   `json:"supplier_cost_cents" validate:"gte=0,lte=1000000000"`
	SupplierURL       string  `json:"supplier_url" validate:"required,httpurl"`
	SupplierName      string  `json:"supplier_name" validate:"required,max=255"`
	MainImageURL      *string `json:"main_image_url" validate:"omitempty,httpurl"`
}

// CreateResult reports the created product.
type CreateResult struct {
	Success   bool   `json:"success"`
	ProductID int64  `json:"product_id"`
	Slug      string `json:"slug"`
	Message   string `json:"message"`
}

// Service parses supplier URLs and turns them into catalogue products.
type Service interface {
	ParseURL(ctx context.Context, input ParseInput) ParseResult
	CreateProduct(ctx context.Context, input CreateInput) (*CreateResult, error)
	SupportedPlatforms() []Platform
}

type service struct {
	products products.Repository
}

// NewService wires the import service.
func NewService(productRepo products.Repository) (Service, error) {
	if productRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repository required")
	}
	return &service{products: productRepo}, nil
}

func (s *service) ParseURL(_ context.Context, input ParseInput) ParseResult {
	url := strings.TrimSpace(input.URL)
	if url == "" {
		return failure("URL is required")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return failure("Invalid URL format")
	}
	parsed := ParseURL(url)
	return ParseResult{Success: true, Data: &parsed}
}

func (s *service) CreateProduct(ctx context.Context, input CreateInput) (*CreateResult, error) {
	title := strings.TrimSpace(input.Title)
	if len(title) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title must be at least 2 characters").
			WithDetails(map[string]any{"field": "title"})
	}
	slug, err := products.UniqueSlug(ctx, products.Slugify(title, products.MaxGeneratedSlugLen), s.products.SlugExists)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}

	margin := Margin(input.PriceCents, input.SupplierCostCents)
	cost := input.SupplierCostCents
	supplierURL := strings.TrimSpace(input.SupplierURL)
	supplierName := strings.TrimSpace(input.SupplierName)
	product := &models.Product{
		Slug:              slug,
		Name:              title,
		PriceCents:        input.PriceCents,
		CostCents:         &cost,
		MainImageURL:      input.MainImageURL,
		Status:            enums.ProductStatusTesting,
		SupplierURL:       &supplierURL,
		SupplierName:      &supplierName,
		SupplierCostCents: &cost,
		ProfitMargin:      &margin,
		ImportSource:      importSource(supplierURL),
	}
	if desc := strings.TrimSpace(input.Description); desc != "" {
		product.Description = &desc
	}

	created, err := s.products.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return &CreateResult{
		Success:   true,
		ProductID: created.ID,
		Slug:      created.Slug,
		Message:   "Successfully created product: " + created.Name,
	}, nil
}

func (s *service) SupportedPlatforms() []Platform {
	return SupportedPlatforms()
}

// Margin is (price - cost) / price as a percentage with two decimals; zero
// when either side is missing.
func Margin(priceCents, costCents int64) float64 {
	if priceCents <= 0 || costCents <= 0 {
		return 0
	}
	price := decimal.NewFromInt(priceCents)
	margin, _ := price.Sub(decimal.NewFromInt(costCents)).
		Div(price).
		Mul(decimal.NewFromInt(100)).
		Round(2).
		Float64()
	return margin
}

// importSource records aliexpress listings as such; every other supplier is a manual import.
func importSource(url string) *enums.ImportSource {
	src := enums.ImportSourceManual
	if DetectSource(url) == SourceAliExpress {
		src = enums.ImportSourceAliexpress
	}
	return &src
}

func failure(msg string) ParseResult {
	return ParseResult{Error: &msg}
}
