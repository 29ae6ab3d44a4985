package suggestions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/pagination"
	"gorm.io/gorm"
)

// DefaultPriceCents is used when neither the reviewer nor the scorer priced the product.
const DefaultPriceCents int64 = 1999

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Suggestion is the admin queue view of a trend suggestion.
type Suggestion struct {
	ID                   int64                  `json:"id"`
	Hashtag              string                 `json:"hashtag"`
	SuggestedName        *string                `json:"suggested_name"`
	SuggestedDescription *string                `json:"suggested_description"`
	SuggestedPriceCents  *int64                 `json:"suggested_price_cents"`
	TrendScore           float64                `json:"trend_score"`
	UrgencyScore         float64                `json:"urgency_score"`
	Reasoning            *string                `json:"reasoning"`
	Views                int64                  `json:"views"`
	VideoCount           int64                  `json:"video_count"`
	GrowthRate           float64                `json:"growth_rate"`
	Status               enums.SuggestionStatus `json:"status"`
	ProductID            *int64                 `json:"product_id"`
	ReviewedAt           *time.Time             `json:"reviewed_at"`
	CreatedAt            time.Time              `json:"created_at"`
}

// ListInput filters the queue; a nil status lists every suggestion.
type ListInput struct {
	Status *enums.SuggestionStatus
	Limit  int
	Offset int
}

// ApproveInput lets the reviewer override the generated name and price.
type ApproveInput struct {
	Name       *string `json:"name" validate:"omitempty,min=2,max=255"`
	PriceCents *int64  `json:"price_cents" validate:"omitempty,gte=0,lte=1000000000"`
}

// RejectResult acknowledges a rejection.
type RejectResult struct {
	ID     int64                  `json:"id"`
	Status enums.SuggestionStatus `json:"status"`
}

// Service manages the admin review queue.
type Service interface {
	List(ctx context.Context, input ListInput) ([]Suggestion, error)
	Approve(ctx context.Context, id int64, input ApproveInput) (*products.ProductDTO, error)
	Reject(ctx context.Context, id int64) (*RejectResult, error)
}

type service struct {
	repo     Repository
	products products.Repository
	tx       txRunner
	now      func() time.Time
}

// NewService wires the suggestion queue.
func NewService(repo Repository, productRepo products.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "suggestion repository required")
	}
	if productRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "product repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &service{repo: repo, products: productRepo, tx: tx, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]Suggestion, error) {
	rows, err := s.repo.List(ctx, input.Status, pagination.Params{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suggestions")
	}
	out := make([]Suggestion, 0, len(rows))
	for i := range rows {
		out = append(out, toSuggestion(&rows[i]))
	}
	return out, nil
}

// Approve turns a pending suggestion into exactly one testing product and
// links it back, all in one transaction.
func (s *service) Approve(ctx context.Context, id int64, input ApproveInput) (*products.ProductDTO, error) {
	var created *models.Product
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		suggestion, err := loadSuggestion(ctx, repo, id)
		if err != nil {
			return err
		}
		if suggestion.Status != enums.SuggestionStatusPending {
			return pkgerrors.New(pkgerrors.CodeValidation, "Suggestion already processed").
				WithDetails(map[string]any{"status": suggestion.Status.String()})
		}

		slug := products.HashtagSlug(suggestion.Hashtag)
		switch {
		case slug == "":
			slug = fmt.Sprintf("trend-%d", suggestion.ID)
		case len(slug) < 3:
			slug = "trend-" + slug
		}
		taken, err := productRepo.SlugExists(ctx, slug)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
		}
		if taken {
			slug = fmt.Sprintf("%s-%d", slug, suggestion.ID)
		}

		product := &models.Product{
			Slug:         slug,
			Name:         approvedName(input.Name, suggestion),
			Description:  approvedDescription(suggestion),
			PriceCents:   approvedPrice(input.PriceCents, suggestion),
			TrendScore:   suggestion.TrendScore,
			UrgencyScore: suggestion.UrgencyScore,
			Status:       enums.ProductStatusTesting,
		}
		source := enums.ImportSourceTiktok
		product.ImportSource = &source
		if created, err = productRepo.Create(ctx, product); err != nil {
			if pkgerrors.IsUniqueViolation(err) {
				return pkgerrors.Newf(pkgerrors.CodeConflict, "product with slug '%s' already exists", slug)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}

		reviewedAt := s.now().UTC()
		suggestion.Status = enums.SuggestionStatusApproved
		suggestion.ReviewedAt = &reviewedAt
		suggestion.ProductID = &created.ID
		if err := repo.Save(ctx, suggestion); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark suggestion approved")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return products.FromModel(created), nil
}

func (s *service) Reject(ctx context.Context, id int64) (*RejectResult, error) {
	suggestion, err := loadSuggestion(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if suggestion.Status == enums.SuggestionStatusApproved {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Suggestion already processed").
			WithDetails(map[string]any{"status": suggestion.Status.String()})
	}
	reviewedAt := s.now().UTC()
	suggestion.Status = enums.SuggestionStatusRejected
	suggestion.ReviewedAt = &reviewedAt
	if err := s.repo.Save(ctx, suggestion); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark suggestion rejected")
	}
	return &RejectResult{ID: suggestion.ID, Status: suggestion.Status}, nil
}

func loadSuggestion(ctx context.Context, repo Repository, id int64) (*models.TrendSuggestion, error) {
	suggestion, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "Suggestion not found", "load suggestion")
	}
	return suggestion, nil
}

func approvedName(override *string, suggestion *models.TrendSuggestion) string {
	if override != nil && strings.TrimSpace(*override) != "" {
		return strings.TrimSpace(*override)
	}
	if suggestion.SuggestedName != nil && strings.TrimSpace(*suggestion.SuggestedName) != "" {
		return strings.TrimSpace(*suggestion.SuggestedName)
	}
	return "Trending: " + suggestion.Hashtag
}

func approvedPrice(override *int64, suggestion *models.TrendSuggestion) int64 {
	if override != nil && *override > 0 {
		return *override
	}
	if suggestion.SuggestedPriceCents != nil && *suggestion.SuggestedPriceCents > 0 {
		return *suggestion.SuggestedPriceCents
	}
	return DefaultPriceCents
}

func approvedDescription(suggestion *models.TrendSuggestion) *string {
	if suggestion.SuggestedDescription != nil && *suggestion.SuggestedDescription != "" {
		return suggestion.SuggestedDescription
	}
	desc := "Viral product inspired by #" + strings.TrimPrefix(suggestion.Hashtag, "#")
	return &desc
}

func toSuggestion(row *models.TrendSuggestion) Suggestion {
	return Suggestion{
		ID:                   row.ID,
		Hashtag:              row.Hashtag,
		SuggestedName:        row.SuggestedName,
		SuggestedDescription: row.SuggestedDescription,
		SuggestedPriceCents:  row.SuggestedPriceCents,
		TrendScore:           row.TrendScore,
		UrgencyScore:         row.UrgencyScore,
		Reasoning:            row.Reasoning,
		Views:                row.Views,
		VideoCount:           row.VideoCount,
		GrowthRate:           row.GrowthRate,
		Status:               row.Status,
		ProductID:            row.ProductID,
		ReviewedAt:           row.ReviewedAt,
		CreatedAt:            row.CreatedAt,
	}
}
