package products

import (
	"context"
	"fmt"
	"strings"

	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/pagination"
)

const (
	minNameLen        = 2
	maxNameLen        = 255
	maxDescriptionLen = 10000
)

// Service exposes storefront and admin product operations.
type Service interface {
	List(ctx context.Context, input ListInput) ([]ProductDTO, error)
	GetBySlug(ctx context.Context, slug string) (*ProductDTO, error)
	RecordView(ctx context.Context, slug string, sessionID *string) error
	Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	Update(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error)
	Delete(ctx context.Context, id int64, hard bool) error
}

type service struct {
	repo Repository
}

// NewService constructs a product service instance.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) List(ctx context.Context, input ListInput) ([]ProductDTO, error) {
	rows, err := s.repo.List(ctx, ListFilters{
		Status:        input.Status,
		MinTrendScore: input.MinTrendScore,
	}, pagination.Params{Limit: input.Limit, Offset: input.Offset})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return FromModels(rows), nil
}

func (s *service) GetBySlug(ctx context.Context, slug string) (*ProductDTO, error) {
	product, err := s.loadBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	return FromModel(product), nil
}

func (s *service) RecordView(ctx context.Context, slug string, sessionID *string) error {
	product, err := s.loadBySlug(ctx, slug)
	if err != nil {
		return err
	}
	if sessionID != nil {
		trimmed := strings.TrimSpace(*sessionID)
		if trimmed == "" {
			sessionID = nil
		} else {
			sessionID = &trimmed
		}
	}
	if err := s.repo.RecordView(ctx, &models.ProductView{ProductID: product.ID, SessionID: sessionID}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record product view")
	}
	return nil
}

func (s *service) Create(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name, err := normalizeName(input.Name)
	if err != nil {
		return nil, err
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}
	status := input.Status
	if status == "" {
		status = enums.ProductStatusTesting
	}
	if !status.IsValid() {
		return nil, invalidStatus(status.String())
	}

	exists, err := s.repo.SlugExists(ctx, input.Slug)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check slug")
	}
	if exists {
		return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "product with slug '%s' already exists", input.Slug)
	}

	product := &models.Product{
		Slug:              input.Slug,
		Name:              name,
		Description:       input.Description,
		PriceCents:        input.PriceCents,
		CostCents:         input.CostCents,
		MainImageURL:      input.MainImageURL,
		VideoURL:          input.VideoURL,
		Status:            status,
		TrendScore:        input.TrendScore,
		UrgencyScore:      input.UrgencyScore,
		SupplierInfo:      input.SupplierInfo,
		SupplierURL:       input.SupplierURL,
		SupplierName:      input.SupplierName,
		SupplierCostCents: input.SupplierCostCents,
		ProfitMargin:      input.ProfitMargin,
		ImportSource:      input.ImportSource,
		InventoryQuantity: input.InventoryQuantity,
	}
	created, err := s.repo.Create(ctx, product)
	if err != nil {
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.Newf(pkgerrors.CodeConflict, "product with slug '%s' already exists", input.Slug)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, id int64, input UpdateProductInput) (*ProductDTO, error) {
	product, err := s.loadByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		name, err := normalizeName(*input.Name)
		if err != nil {
			return nil, err
		}
		input.Name = &name
	}
	if err := validateDescription(input.Description); err != nil {
		return nil, err
	}
	if input.Status != nil && !input.Status.IsValid() {
		return nil, invalidStatus(input.Status.String())
	}
	applyUpdate(product, input)

	saved, err := s.repo.Save(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
	}
	return FromModel(saved), nil
}

func (s *service) Delete(ctx context.Context, id int64, hard bool) error {
	product, err := s.loadByID(ctx, id)
	if err != nil {
		return err
	}
	if hard {
		if err := s.repo.Delete(ctx, id); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		return nil
	}
	product.Status = enums.ProductStatusKilled
	if _, err := s.repo.Save(ctx, product); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "kill product")
	}
	return nil
}

func (s *service) loadBySlug(ctx context.Context, slug string) (*models.Product, error) {
	product, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "Product not found", "load product")
	}
	return product, nil
}

func (s *service) loadByID(ctx context.Context, id int64) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "Product not found", "load product")
	}
	return product, nil
}

func normalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if len(name) < minNameLen || len(name) > maxNameLen {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "name must be 2-255 characters").
			WithDetails(map[string]any{"field": "name"})
	}
	return name, nil
}

func validateDescription(desc *string) error {
	if desc != nil && len(*desc) > maxDescriptionLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "description too long").
			WithDetails(map[string]any{"field": "description", "max": maxDescriptionLen})
	}
	return nil
}

func invalidStatus(value string) error {
	return pkgerrors.Newf(pkgerrors.CodeValidation, "invalid product status '%s'", value).
		WithDetails(map[string]any{"valid_statuses": enums.ProductStatuses()})
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = *input.Name
	}
	if input.Description != nil {
		product.Description = input.Description
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.CostCents != nil {
		product.CostCents = input.CostCents
	}
	if input.MainImageURL != nil {
		product.MainImageURL = input.MainImageURL
	}
	if input.VideoURL != nil {
		product.VideoURL = input.VideoURL
	}
	if input.Status != nil {
		product.Status = *input.Status
	}
	if input.TrendScore != nil {
		product.TrendScore = *input.TrendScore
	}
	if input.UrgencyScore != nil {
		product.UrgencyScore = *input.UrgencyScore
	}
	if input.SupplierInfo != nil {
		product.SupplierInfo = input.SupplierInfo
	}
	if input.SupplierURL != nil {
		product.SupplierURL = input.SupplierURL
	}
	if input.SupplierName != nil {
		product.SupplierName = input.SupplierName
	}
	if input.SupplierCostCents != nil {
		product.SupplierCostCents = input.SupplierCostCents
	}
	if input.ProfitMargin != nil {
		product.ProfitMargin = input.ProfitMargin
	}
	if input.InventoryQuantity != nil {
		product.InventoryQuantity = input.InventoryQuantity
	}
}
