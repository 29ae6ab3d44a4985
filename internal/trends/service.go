package trends

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/pagination"
	"github.com/angelmondragon/urgency-engine/pkg/types"
	"gorm.io/gorm"
)

// DefaultImportPriceCents prices an imported product that carries no suggestion.
const DefaultImportPriceCents int64 = 1999

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the trend product catalogue.
type Service interface {
	List(ctx context.Context, input ListInput) (*ListResult, error)
	Get(ctx context.Context, id int64) (*TrendProductDTO, error)
	Import(ctx context.Context, input ImportInput) (*ImportResult, error)
	Seed(ctx context.Context) (*SeedResult, error)
	Categories(ctx context.Context) ([]Category, error)
	Stats(ctx context.Context) (*Stats, error)
}

type service struct {
	repo     Repository
	products products.Repository
	tx       txRunner
}

// NewService wires the trend catalogue service.
func NewService(repo Repository, productRepo products.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "trends repository required")
	}
	if productRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &service{repo: repo, products: productRepo, tx: tx}, nil
}

func (s *service) List(ctx context.Context, input ListInput) (*ListResult, error) {
	if input.Filters.Sort != "" && !validSort(input.Filters.Sort) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sort_by").
			WithDetails(map[string]any{"valid": SortKeys()})
	}
	params := pagination.Page(input.Page, input.PageSize)
	rows, total, err := s.repo.List(ctx, input.Filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list trend products")
	}
	out := make([]TrendProductDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, toDTO(row))
	}
	return &ListResult{
		Products: out,
		Total:    total,
		Page:     params.Offset/params.Limit + 1,
		PageSize: params.Limit,
		HasMore:  int64(params.Offset+len(rows)) < total,
	}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*TrendProductDTO, error) {
	row, err := s.load(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	dto := toDTO(*row)
	return &dto, nil
}

// Import copies the trend product into the catalogue as a testing product and
// marks it imported in the same transaction.
func (s *service) Import(ctx context.Context, input ImportInput) (*ImportResult, error) {
	var created *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		trendRepo := s.repo.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		trend, err := s.load(ctx, trendRepo, input.TrendProductID)
		if err != nil {
			return err
		}
		if trend.IsImported {
			return pkgerrors.New(pkgerrors.CodeValidation, "Product already imported")
		}

		name := trend.Title
		if input.CustomName != nil && strings.TrimSpace(*input.CustomName) != "" {
			name = strings.TrimSpace(*input.CustomName)
		}
		slug, err := products.UniqueSlug(ctx, products.Slugify(name, products.MaxGeneratedSlugLen), productRepo.SlugExists)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}

		product := &models.Product{
			Slug:              slug,
			Name:              name,
			Description:       trend.Description,
			PriceCents:        importPrice(input.CustomPriceCents, trend.SuggestedPriceCents),
			CostCents:         trend.SupplierPriceCents,
			MainImageURL:      trend.ImageURL,
			VideoURL:          trend.VideoURL,
			Status:            enums.ProductStatusTesting,
			TrendScore:        trend.TrendScore,
			SupplierURL:       trend.SupplierURL,
			SupplierCostCents: trend.SupplierPriceCents,
			ProfitMargin:      trend.EstimatedMargin,
			ImportSource:      importSource(trend.Source),
		}
		if input.CustomDescription != nil && strings.TrimSpace(*input.CustomDescription) != "" {
			desc := strings.TrimSpace(*input.CustomDescription)
			product.Description = &desc
		}
		created, err = productRepo.Create(ctx, product)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}

		trend.IsImported = true
		trend.ImportedProductID = &created.ID
		if err := trendRepo.Save(ctx, trend); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark trend imported")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ImportResult{
		Success:   true,
		ProductID: &created.ID,
		Message:   "Successfully imported product: " + created.Name,
	}, nil
}

// Seed inserts the demo catalogue when no trend products exist yet.
func (s *service) Seed(ctx context.Context) (*SeedResult, error) {
	existing, err := s.repo.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count trend products")
	}
	if existing > 0 {
		return &SeedResult{Message: fmt.Sprintf("Already have %d trend products", existing)}, nil
	}

	catalogue := DemoCatalogue()
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for i := range catalogue {
			if err := repo.Create(ctx, &catalogue[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed trend products")
	}
	return &SeedResult{
		Message: fmt.Sprintf("Seeded %d trend products", len(catalogue)),
		Seeded:  len(catalogue),
	}, nil
}

func (s *service) Categories(ctx context.Context) ([]Category, error) {
	rows, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	var total int64
	out := make([]Category, 0, len(rows)+1)
	out = append(out, Category{Value: "all", Label: "All Categories"})
	for _, row := range rows {
		total += row.Count
		out = append(out, Category{Value: row.Category, Label: titleCase(row.Category), Count: row.Count})
	}
	out[0].Count = total
	return out, nil
}

func (s *service) Stats(ctx context.Context) (*Stats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "trend stats")
	}
	stats.AvgTrendScore = types.Round(stats.AvgTrendScore, 1)
	return stats, nil
}

func (s *service) load(ctx context.Context, repo Repository, id int64) (*models.TrendProduct, error) {
	row, err := repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Trend product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load trend product")
	}
	return row, nil
}

func validSort(key string) bool {
	for _, k := range SortKeys() {
		if k == key {
			return true
		}
	}
	return false
}

func importPrice(custom, suggested *int64) int64 {
	if custom != nil && *custom > 0 {
		return *custom
	}
	if suggested != nil && *suggested > 0 {
		return *suggested
	}
	return DefaultImportPriceCents
}

// importSource maps the feed name onto a catalogue source; unknown feeds count as tiktok.
func importSource(feed string) *enums.ImportSource {
	src, err := enums.ParseImportSource(strings.ToLower(feed))
	if err != nil {
		src = enums.ImportSourceTiktok
	}
	return &src
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
