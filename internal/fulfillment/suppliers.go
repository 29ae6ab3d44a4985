package fulfillment

import (
	"context"
	"strings"

	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"gorm.io/gorm"
)

const (
	defaultMaxOrderValueCents = 10000
	defaultShippingDays       = 14
)

func (s *service) ListSuppliers(ctx context.Context, input SupplierListInput) ([]SupplierDTO, error) {
	rows, err := s.repo.ListSuppliers(ctx, input.Platform, !input.IncludeInactive)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list suppliers")
	}
	out := make([]SupplierDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, supplierDTO(row))
	}
	return out, nil
}

func (s *service) CreateSupplier(ctx context.Context, input SupplierInput) (*SupplierDTO, error) {
	supplier := &models.Supplier{IsActive: true}
	if err := applySupplier(supplier, input); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateSupplier(ctx, supplier)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create supplier")
	}
	dto := supplierDTO(*created)
	return &dto, nil
}

func (s *service) GetSupplier(ctx context.Context, id int64) (*SupplierDTO, error) {
	supplier, err := s.loadSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := supplierDTO(*supplier)
	return &dto, nil
}

func (s *service) UpdateSupplier(ctx context.Context, id int64, input SupplierInput) (*SupplierDTO, error) {
	supplier, err := s.loadSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applySupplier(supplier, input); err != nil {
		return nil, err
	}
	saved, err := s.repo.SaveSupplier(ctx, supplier)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update supplier")
	}
	dto := supplierDTO(*saved)
	return &dto, nil
}

// DeactivateSupplier hides the supplier from default listings; links and history stay.
func (s *service) DeactivateSupplier(ctx context.Context, id int64) (*ActionResult, error) {
	supplier, err := s.loadSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	supplier.IsActive = false
	if _, err := s.repo.SaveSupplier(ctx, supplier); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "deactivate supplier")
	}
	return &ActionResult{Success: true, Message: "Supplier deactivated"}, nil
}

func (s *service) ListProductSuppliers(ctx context.Context, productID int64) ([]LinkDTO, error) {
	rows, err := s.repo.ListLinks(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list product suppliers")
	}
	out := make([]LinkDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, linkDTO(row))
	}
	return out, nil
}

// LinkSupplier attaches a supplier listing to a product. A primary link
// demotes every other link for the product in the same transaction.
func (s *service) LinkSupplier(ctx context.Context, productID int64, input LinkInput) (*LinkDTO, error) {
	if input.ProductID != productID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Product ID mismatch")
	}
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, pkgerrors.FromStore(err, "Product not found", "load product")
	}
	supplier, err := s.loadSupplier(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}

	link := &models.ProductSupplier{
		ProductID:          productID,
		SupplierID:         supplier.ID,
		SupplierProductURL: strings.TrimSpace(input.SupplierProductURL),
		SupplierSKU:        input.SupplierSKU,
		SupplierPriceCents: input.SupplierPriceCents,
		ShippingCostCents:  input.ShippingCostCents,
		ShippingDays:       defaultShippingDays,
		IsPrimary:          input.IsPrimary == nil || *input.IsPrimary,
		IsAvailable:        true,
		Priority:           input.Priority,
	}
	if input.ShippingDays != nil {
		link.ShippingDays = *input.ShippingDays
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if link.IsPrimary {
			if err := repo.ClearPrimary(ctx, productID); err != nil {
				return err
			}
		}
		_, err := repo.CreateLink(ctx, link)
		return err
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "link supplier")
	}
	link.Supplier = supplier
	dto := linkDTO(*link)
	return &dto, nil
}

func (s *service) UnlinkSupplier(ctx context.Context, productID, supplierID int64) (*ActionResult, error) {
	link, err := s.repo.FindLink(ctx, productID, supplierID)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "Link not found", "load link")
	}
	if err := s.repo.DeleteLink(ctx, link.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unlink supplier")
	}
	return &ActionResult{Success: true, Message: "Supplier unlinked from product"}, nil
}

func (s *service) loadSupplier(ctx context.Context, id int64) (*models.Supplier, error) {
	supplier, err := s.repo.FindSupplier(ctx, id)
	if err != nil {
		return nil, pkgerrors.FromStore(err, "Supplier not found", "load supplier")
	}
	return supplier, nil
}

func applySupplier(supplier *models.Supplier, input SupplierInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]any{"field": "name"})
	}
	platform := strings.ToLower(strings.TrimSpace(input.Platform))
	if platform == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "platform is required").
			WithDetails(map[string]any{"field": "platform"})
	}
	supplier.Name = name
	supplier.Platform = platform
	supplier.WebsiteURL = input.WebsiteURL
	supplier.ContactEmail = input.ContactEmail
	supplier.AutoOrderEnabled = input.AutoOrderEnabled
	supplier.MaxOrderValueCents = defaultMaxOrderValueCents
	if input.MaxOrderValueCents != nil {
		supplier.MaxOrderValueCents = *input.MaxOrderValueCents
	}
	return nil
}
