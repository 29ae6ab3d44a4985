package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/urgency-engine/api/responses"
	"github.com/angelmondragon/urgency-engine/api/validators"
	productsvc "github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
)

// ListProducts serves the storefront catalogue with optional status and score filters.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		rawStatus, err := validators.ParseQueryEnum(r, "status", enums.ProductStatuses()...)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var status *enums.ProductStatus
		if rawStatus != "" {
			parsed := enums.ProductStatus(rawStatus)
			status = &parsed
		}

		minScore, err := validators.ParseQueryOptionalFloat(r, "min_trend_score", 0, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := validators.ParseLimitOffset(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.List(r.Context(), productsvc.ListInput{
			Status:        status,
			MinTrendScore: minScore,
			Limit:         page.Limit,
			Offset:        page.Offset,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}

// GetProduct returns a single product by slug.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		product, err := svc.GetBySlug(r.Context(), strings.TrimSpace(chi.URLParam(r, "slug")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type recordViewRequest struct {
	SessionID *string `json:"session_id" validate:"omitempty,max=100"`
}

// RecordProductView counts a storefront page view.
func RecordProductView(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload recordViewRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		if err := svc.RecordView(r.Context(), strings.TrimSpace(chi.URLParam(r, "slug")), payload.SessionID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"recorded": true})
	}
}

// AdminCreateProduct adds a product to the catalogue.
func AdminCreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteCreated(w, product)
	}
}

// AdminUpdateProduct patches the given fields of a product.
func AdminUpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminDeleteProduct kills a product, or removes it entirely with ?hard=true.
func AdminDeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := validators.ParsePathID(chi.URLParam(r, "id"), "id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		hard, err := validators.ParseQueryBool(r, "hard", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id, hard); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"id": id, "deleted": true, "hard": hard})
	}
}

type createProductRequest struct {
	Slug              string   `json:"slug" validate:"required,slug"`
	Name              string   `json:"name" validate:"required,min=2,max=255"`
	Description       *string  `json:"description,omitempty"`
	PriceCents        int64    `json:"price_cents" validate:"gte=0,lte=1000000000"`
	CostCents         *int64   `json:"cost_cents,omitempty" validate:"omitempty,gte=0"`
	MainImageURL      *string  `json:"main_image_url,omitempty" validate:"omitempty,httpurl"`
	VideoURL          *string  `json:"video_url,omitempty" validate:"omitempty,httpurl"`
	Status            *string  `json:"status,omitempty"`
	TrendScore        float64  `json:"trend_score" validate:"gte=0,lte=100"`
	UrgencyScore      float64  `json:"urgency_score" validate:"gte=0,lte=100"`
	SupplierInfo      *string  `json:"supplier_info,omitempty"`
	SupplierURL       *string  `json:"supplier_url,omitempty" validate:"omitempty,httpurl"`
	SupplierName      *string  `json:"supplier_name,omitempty" validate:"omitempty,max=255"`
	SupplierCostCents *int64   `json:"supplier_cost_cents,omitempty" validate:"omitempty,gte=0"`
	ProfitMargin      *float64 `json:"profit_margin,omitempty"`
	ImportSource      *string  `json:"import_source,omitempty"`
	InventoryQuantity *int     `json:"inventory_quantity,omitempty" validate:"omitempty,gte=0"`
}

func (r createProductRequest) toCreateInput() (productsvc.CreateProductInput, error) {
	var status enums.ProductStatus
	if r.Status != nil {
		parsed, err := enums.ParseProductStatus(strings.TrimSpace(*r.Status))
		if err != nil {
			return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		status = parsed
	}

	var source *enums.ImportSource
	if r.ImportSource != nil {
		parsed, err := enums.ParseImportSource(strings.TrimSpace(*r.ImportSource))
		if err != nil {
			return productsvc.CreateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid import_source")
		}
		source = &parsed
	}

	return productsvc.CreateProductInput{
		Slug:              strings.TrimSpace(r.Slug),
		Name:              strings.TrimSpace(r.Name),
		Description:       r.Description,
		PriceCents:        r.PriceCents,
		CostCents:         r.CostCents,
		MainImageURL:      r.MainImageURL,
		VideoURL:          r.VideoURL,
		Status:            status,
		TrendScore:        r.TrendScore,
		UrgencyScore:      r.UrgencyScore,
		SupplierInfo:      r.SupplierInfo,
		SupplierURL:       r.SupplierURL,
		SupplierName:      r.SupplierName,
		SupplierCostCents: r.SupplierCostCents,
		ProfitMargin:      r.ProfitMargin,
		ImportSource:      source,
		InventoryQuantity: r.InventoryQuantity,
	}, nil
}

type updateProductRequest struct {
	Name              *string  `json:"name,omitempty" validate:"omitempty,min=2,max=255"`
	Description       *string  `json:"description,omitempty"`
	PriceCents        *int64   `json:"price_cents,omitempty" validate:"omitempty,gte=0,lte=1000000000"`
	CostCents         *int64   `json:"cost_cents,omitempty" validate:"omitempty,gte=0"`
	MainImageURL      *string  `json:"main_image_url,omitempty" validate:"omitempty,httpurl"`
	VideoURL          *string  `json:"video_url,omitempty" validate:"omitempty,httpurl"`
	Status            *string  `json:"status,omitempty"`
	TrendScore        *float64 `json:"trend_score,omitempty" validate:"omitempty,gte=0,lte=100"`
	UrgencyScore      *float64 `json:"urgency_score,omitempty" validate:"omitempty,gte=0,lte=100"`
	SupplierInfo      *string  `json:"supplier_info,omitempty"`
	SupplierURL       *string  `json:"supplier_url,omitempty" validate:"omitempty,httpurl"`
	SupplierName      *string  `json:"supplier_name,omitempty" validate:"omitempty,max=255"`
	SupplierCostCents *int64   `json:"supplier_cost_cents,omitempty" validate:"omitempty,gte=0"`
	ProfitMargin      *float64 `json:"profit_margin,omitempty"`
	InventoryQuantity *int     `json:"inventory_quantity,omitempty" validate:"omitempty,gte=0"`
}

func (r updateProductRequest) toUpdateInput() (productsvc.UpdateProductInput, error) {
	var status *enums.ProductStatus
	if r.Status != nil {
		parsed, err := enums.ParseProductStatus(strings.TrimSpace(*r.Status))
		if err != nil {
			return productsvc.UpdateProductInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		status = &parsed
	}

	return productsvc.UpdateProductInput{
		Name:              r.Name,
		Description:       r.Description,
		PriceCents:        r.PriceCents,
		CostCents:         r.CostCents,
		MainImageURL:      r.MainImageURL,
		VideoURL:          r.VideoURL,
		Status:            status,
		TrendScore:        r.TrendScore,
		UrgencyScore:      r.UrgencyScore,
		SupplierInfo:      r.SupplierInfo,
		SupplierURL:       r.SupplierURL,
		SupplierName:      r.SupplierName,
		SupplierCostCents: r.SupplierCostCents,
		ProfitMargin:      r.ProfitMargin,
		InventoryQuantity: r.InventoryQuantity,
	}, nil
}
