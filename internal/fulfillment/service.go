package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/urgency-engine/internal/notifications"
	"github.com/angelmondragon/urgency-engine/internal/orders"
	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/pkg/config"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"github.com/angelmondragon/urgency-engine/pkg/logger"
	"github.com/angelmondragon/urgency-engine/pkg/metrics"
	"github.com/angelmondragon/urgency-engine/pkg/types"
	"gorm.io/gorm"
)

const (
	unknownSupplier = "Unknown Supplier"
	defaultSupplier = "Default Supplier"

	simulatedStock        = 100
	simulatedShippingDays = 7

	supplierOrderLayout = "20060102150405"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Create(ctx context.Context, input notifications.CreateInput) (*notifications.Notification, error)
}

// Service automates supplier ordering for storefront orders and manages suppliers.
type Service interface {
	CheckEligibility(ctx context.Context, orderID int64) (*Eligibility, error)
	AutoOrder(ctx context.Context, orderID int64) *AutoOrderResult
	ProcessQueue(ctx context.Context) ([]AutoOrderResult, error)
	UpdateTracking(ctx context.Context, orderID int64, number string, url *string) (*orders.TrackingResult, error)
	MarkDelivered(ctx context.Context, orderID int64) (*orders.DeliveryResult, error)
	SupplierAvailability(ctx context.Context, orderID int64) (*Availability, error)

	ListSuppliers(ctx context.Context, input SupplierListInput) ([]SupplierDTO, error)
	CreateSupplier(ctx context.Context, input SupplierInput) (*SupplierDTO, error)
	GetSupplier(ctx context.Context, id int64) (*SupplierDTO, error)
	UpdateSupplier(ctx context.Context, id int64, input SupplierInput) (*SupplierDTO, error)
	DeactivateSupplier(ctx context.Context, id int64) (*ActionResult, error)

	ListProductSuppliers(ctx context.Context, productID int64) ([]LinkDTO, error)
	LinkSupplier(ctx context.Context, productID int64, input LinkInput) (*LinkDTO, error)
	UnlinkSupplier(ctx context.Context, productID, supplierID int64) (*ActionResult, error)
}

// ServiceParams wires the fulfillment service.
type ServiceParams struct {
	Config       config.FulfillmentConfig
	Repo         Repository
	Orders       orders.Repository
	OrderService orders.Service
	Products     products.Repository
	Tx           txRunner
	Notifier     notifier
	Metrics      *metrics.FulfillmentMetrics
	Logger       *logger.Logger
}

type service struct {
	cfg          config.FulfillmentConfig
	repo         Repository
	orders       orders.Repository
	orderService orders.Service
	products     products.Repository
	tx           txRunner
	notifier     notifier
	metrics      *metrics.FulfillmentMetrics
	logg         *logger.Logger
	now          func() time.Time
}

// NewService builds the fulfillment service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment repository required")
	}
	if params.Orders == nil || params.OrderService == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "orders dependencies required")
	}
	if params.Products == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "products repository required")
	}
	if params.Tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &service{
		cfg:          params.Config,
		repo:         params.Repo,
		orders:       params.Orders,
		orderService: params.OrderService,
		products:     params.Products,
		tx:           params.Tx,
		notifier:     params.Notifier,
		metrics:      params.Metrics,
		logg:         params.Logger,
		now:          time.Now,
	}, nil
}

func (s *service) CheckEligibility(ctx context.Context, orderID int64) (*Eligibility, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Eligibility{OrderID: orderID, Reasons: []string{"Order not found"}}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	eligibility, _, err := s.evaluate(ctx, order)
	return eligibility, err
}

// evaluate lists every reason the order cannot be auto-ordered, in a stable order.
func (s *service) evaluate(ctx context.Context, order *models.Order) (*Eligibility, *models.Product, error) {
	reasons := make([]string, 0)
	if !s.cfg.AutoFulfillEnabled {
		reasons = append(reasons, "Auto-fulfillment is disabled")
	}
	if order.Status != enums.OrderStatusPending {
		reasons = append(reasons, fmt.Sprintf("Order status is '%s', must be 'pending'", order.Status))
	}
	if order.AmountCents > s.cfg.MaxAutoOrderValueCents {
		reasons = append(reasons, fmt.Sprintf("Order value %s exceeds auto-fulfill limit %s",
			types.Dollars(order.AmountCents), types.Dollars(s.cfg.MaxAutoOrderValueCents)))
	}

	var product *models.Product
	if order.ProductID == nil {
		reasons = append(reasons, "Order has no associated product")
	} else {
		p, err := s.products.FindByID(ctx, *order.ProductID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			reasons = append(reasons, "Order has no associated product")
		case err != nil:
			return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		default:
			product = p
			if !p.HasSupplier() {
				reasons = append(reasons, "Product does not have supplier information")
			}
		}
	}

	value := order.AmountCents
	eligibility := &Eligibility{
		OrderID:    order.ID,
		Eligible:   len(reasons) == 0,
		Reasons:    reasons,
		OrderValue: &value,
		ProductID:  order.ProductID,
	}
	if product != nil {
		name, err := s.supplierName(ctx, product)
		if err != nil {
			return nil, nil, err
		}
		eligibility.SupplierName = name
	}
	return eligibility, product, nil
}

func (s *service) supplierName(ctx context.Context, product *models.Product) (*string, error) {
	link, err := s.repo.PrimaryLink(ctx, product.ID)
	switch {
	case err == nil && link.Supplier != nil:
		name := link.Supplier.Name
		return &name, nil
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load primary supplier")
	}
	return product.SupplierName, nil
}

func (s *service) AutoOrder(ctx context.Context, orderID int64) *AutoOrderResult {
	ctx = s.withOrder(ctx, orderID)
	result := &AutoOrderResult{OrderID: orderID}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Message = "Order not found"
			s.metrics.IncFailed("not_found")
			return result
		}
		return s.failed(ctx, result, err)
	}

	eligibility, product, err := s.evaluate(ctx, order)
	if err != nil {
		return s.failed(ctx, result, err)
	}
	if !eligibility.Eligible {
		result.Message = "Not eligible: " + strings.Join(eligibility.Reasons, "; ")
		s.metrics.IncFailed("ineligible")
		return result
	}

	supplierOrderID := fmt.Sprintf("SUP-%d-%s", order.ID, s.now().UTC().Format(supplierOrderLayout))
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)
		current, err := ordersRepo.FindByID(ctx, order.ID)
		if err != nil {
			return err
		}
		if err := orders.ValidateTransition(current.Status, enums.OrderStatusProcessing); err != nil {
			return err
		}
		if err := ordersRepo.Update(ctx, order.ID, map[string]any{
			"supplier_order_id": supplierOrderID,
			"status":            enums.OrderStatusProcessing,
		}); err != nil {
			return err
		}
		link, err := s.repo.WithTx(tx).PrimaryLink(ctx, product.ID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return s.repo.WithTx(tx).RecordSupplierOrder(ctx, link.SupplierID, true)
	})
	if err != nil {
		return s.failed(ctx, result, err)
	}

	name := unknownSupplier
	if eligibility.SupplierName != nil && *eligibility.SupplierName != "" {
		name = *eligibility.SupplierName
	}
	result.Success = true
	result.SupplierOrderID = &supplierOrderID
	result.Message = "Order placed with " + name

	s.metrics.IncPlaced()
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "supplier_order_id", supplierOrderID), "fulfillment.auto_order.placed")
	}
	s.notifyPlaced(ctx, order, name, supplierOrderID)
	return result
}

func (s *service) failed(ctx context.Context, result *AutoOrderResult, err error) *AutoOrderResult {
	result.Message = "Fulfillment error: " + err.Error()
	s.metrics.IncFailed("error")
	if s.logg != nil {
		s.logg.Error(ctx, "fulfillment.auto_order.failed", err)
	}
	return result
}

// ProcessQueue auto-orders every pending order under the value cap. Each order
// commits on its own so one failure does not roll back the rest.
func (s *service) ProcessQueue(ctx context.Context) ([]AutoOrderResult, error) {
	pending, err := s.orders.ListPendingUpTo(ctx, s.cfg.MaxAutoOrderValueCents)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list pending orders")
	}
	s.metrics.SetQueueSize(len(pending))

	results := make([]AutoOrderResult, 0, len(pending))
	for _, order := range pending {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		results = append(results, *s.AutoOrder(ctx, order.ID))
	}
	return results, nil
}

func (s *service) UpdateTracking(ctx context.Context, orderID int64, number string, url *string) (*orders.TrackingResult, error) {
	return s.orderService.AddTracking(ctx, orderID, number, url)
}

func (s *service) MarkDelivered(ctx context.Context, orderID int64) (*orders.DeliveryResult, error) {
	return s.orderService.MarkDelivered(ctx, orderID)
}

func (s *service) SupplierAvailability(ctx context.Context, orderID int64) (*Availability, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order or product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.ProductID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order or product not found")
	}
	product, err := s.products.FindByID(ctx, *order.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order or product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	out := &Availability{OrderID: order.ID, ProductID: product.ID}
	if !product.HasSupplier() {
		msg := "No supplier configured"
		out.Message = &msg
		return out, nil
	}

	price := product.PriceCents * 4 / 10
	if product.SupplierCostCents != nil {
		price = *product.SupplierCostCents
	}
	name := defaultSupplier
	if product.SupplierName != nil && *product.SupplierName != "" {
		name = *product.SupplierName
	}
	out.Available = true
	out.Quantity = simulatedStock
	out.PriceCents = price
	out.ShippingDays = simulatedShippingDays
	out.SupplierName = name
	return out, nil
}

func (s *service) notifyPlaced(ctx context.Context, order *models.Order, supplier, supplierOrderID string) {
	if s.notifier == nil {
		return
	}
	_, err := s.notifier.Create(ctx, notifications.CreateInput{
		Type:     enums.NotificationTypeOrder,
		Title:    "Order auto-fulfilled",
		Message:  fmt.Sprintf("Order #%d (%s) was placed with %s", order.ID, types.Dollars(order.AmountCents), supplier),
		Priority: enums.NotificationPriorityMedium,
		Metadata: map[string]any{"order_id": order.ID, "supplier_order_id": supplierOrderID},
	})
	if err != nil && s.logg != nil {
		s.logg.Error(ctx, "fulfillment.notify_failed", err)
	}
}

func (s *service) withOrder(ctx context.Context, orderID int64) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithOrderID(ctx, orderID)
}
