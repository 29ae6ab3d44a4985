package fulfillment

import (
	"context"
	"errors"
	"strings"

	"github.com/angelmondragon/urgency-engine/internal/orders"
	"github.com/angelmondragon/urgency-engine/internal/products"
	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
	pkgerrors "github.com/angelmondragon/urgency-engine/pkg/errors"
	"gorm.io/gorm"
)

// RulesService manages the stored fulfillment rules and evaluates orders against them.
type RulesService interface {
	SeedDefaults(ctx context.Context) (int, error)
	List(ctx context.Context) ([]RuleDTO, error)
	Create(ctx context.Context, input RuleInput) (*RuleDTO, error)
	Update(ctx context.Context, id int64, input RuleInput) (*RuleDTO, error)
	Toggle(ctx context.Context, id int64) (*ToggleResult, error)
	Delete(ctx context.Context, id int64) (*ActionResult, error)
	EvaluateOrder(ctx context.Context, orderID int64) (*Evaluation, error)
}

type rulesService struct {
	repo     Repository
	orders   orders.Repository
	products products.Repository
}

// NewRulesService builds the rules service.
func NewRulesService(repo Repository, ordersRepo orders.Repository, productsRepo products.Repository) (RulesService, error) {
	if repo == nil || ordersRepo == nil || productsRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "rules dependencies required")
	}
	return &rulesService{repo: repo, orders: ordersRepo, products: productsRepo}, nil
}

// SeedDefaults inserts the default rules when none exist and returns how many were added.
func (s *rulesService) SeedDefaults(ctx context.Context) (int, error) {
	count, err := s.repo.CountRules(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count rules")
	}
	if count > 0 {
		return 0, nil
	}
	defaults := DefaultRules()
	for i := range defaults {
		if _, err := s.repo.CreateRule(ctx, &defaults[i]); err != nil {
			return i, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "seed rule")
		}
	}
	return len(defaults), nil
}

func (s *rulesService) List(ctx context.Context) ([]RuleDTO, error) {
	rows, err := s.repo.ListRules(ctx, false)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rules")
	}
	out := make([]RuleDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, ruleDTO(row))
	}
	return out, nil
}

func (s *rulesService) Create(ctx context.Context, input RuleInput) (*RuleDTO, error) {
	rule := &models.FulfillmentRule{Priority: 1, IsEnabled: true}
	if err := applyRule(rule, input); err != nil {
		return nil, err
	}
	created, err := s.repo.CreateRule(ctx, rule)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create rule")
	}
	dto := ruleDTO(*created)
	return &dto, nil
}

func (s *rulesService) Update(ctx context.Context, id int64, input RuleInput) (*RuleDTO, error) {
	rule, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyRule(rule, input); err != nil {
		return nil, err
	}
	saved, err := s.repo.SaveRule(ctx, rule)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update rule")
	}
	dto := ruleDTO(*saved)
	return &dto, nil
}

func (s *rulesService) Toggle(ctx context.Context, id int64) (*ToggleResult, error) {
	rule, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	rule.IsEnabled = !rule.IsEnabled
	if _, err := s.repo.SaveRule(ctx, rule); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "toggle rule")
	}
	return &ToggleResult{Success: true, ID: rule.ID, IsEnabled: rule.IsEnabled}, nil
}

func (s *rulesService) Delete(ctx context.Context, id int64) (*ActionResult, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.DeleteRule(ctx, id); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete rule")
	}
	return &ActionResult{Success: true, Message: "Rule deleted"}, nil
}

func (s *rulesService) EvaluateOrder(ctx context.Context, orderID int64) (*Evaluation, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	facts, err := s.facts(ctx, order)
	if err != nil {
		return nil, err
	}
	rules, err := s.repo.ListRules(ctx, true)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list rules")
	}
	action, matched := Evaluate(rules, facts)
	return &Evaluation{
		OrderID:      order.ID,
		OrderValue:   order.AmountCents,
		Action:       action,
		MatchedRules: matched,
	}, nil
}

func (s *rulesService) facts(ctx context.Context, order *models.Order) (OrderFacts, error) {
	earlier, err := s.orders.HasEarlierOrder(ctx, order.Email, order.ID)
	if err != nil {
		return OrderFacts{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check order history")
	}
	facts := OrderFacts{
		OrderValue:   order.AmountCents,
		IsFirstOrder: !earlier,
		EmailDomain:  emailDomain(order.Email),
	}
	if order.ProductID == nil {
		return facts, nil
	}
	product, err := s.products.FindByID(ctx, *order.ProductID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return facts, nil
	case err != nil:
		return OrderFacts{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	facts.HasSupplier = product.HasSupplier()
	facts.ProductStatus = string(product.Status)
	return facts, nil
}

func (s *rulesService) load(ctx context.Context, id int64) (*models.FulfillmentRule, error) {
	rule, err := s.repo.FindRule(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load rule")
	}
	return rule, nil
}

func applyRule(rule *models.FulfillmentRule, input RuleInput) error {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required").
			WithDetails(map[string]any{"field": "name"})
	}
	field := strings.TrimSpace(input.ConditionType)
	operator := strings.TrimSpace(input.ConditionOperator)
	value := strings.TrimSpace(input.ConditionValue)
	if err := ValidateCondition(field, operator, value); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, err.Error())
	}
	action, err := enums.ParseFulfillmentAction(strings.TrimSpace(input.Action))
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid action").
			WithDetails(map[string]any{"valid": enums.FulfillmentActions()})
	}

	rule.Name = name
	rule.Description = input.Description
	rule.ConditionType = field
	rule.ConditionOperator = operator
	rule.ConditionValue = value
	rule.Action = string(action)
	if input.Priority != nil {
		rule.Priority = *input.Priority
	}
	if input.IsEnabled != nil {
		rule.IsEnabled = *input.IsEnabled
	}
	return nil
}
