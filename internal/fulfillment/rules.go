package fulfillment

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/angelmondragon/urgency-engine/pkg/db/models"
	"github.com/angelmondragon/urgency-engine/pkg/enums"
)

// Rule condition fields.
const (
	FieldOrderValue    = "order_value"
	FieldIsFirstOrder  = "is_first_order"
	FieldHasSupplier   = "has_supplier"
	FieldProductStatus = "product_status"
	FieldEmailDomain   = "email_domain"
)

// Rule condition operators.
const (
	OpLess         = "<"
	OpLessEqual    = "<="
	OpGreater      = ">"
	OpGreaterEqual = ">="
	OpEqual        = "=="
	OpNotEqual     = "!="
	OpContains     = "contains"
)

type fieldKind int

const (
	kindNumber fieldKind = iota
	kindBool
	kindString
)

var fieldKinds = map[string]fieldKind{
	FieldOrderValue:    kindNumber,
	FieldIsFirstOrder:  kindBool,
	FieldHasSupplier:   kindBool,
	FieldProductStatus: kindString,
	FieldEmailDomain:   kindString,
}

var operatorsByKind = map[fieldKind][]string{
	kindNumber: {OpLess, OpLessEqual, OpGreater, OpGreaterEqual, OpEqual, OpNotEqual},
	kindBool:   {OpEqual, OpNotEqual},
	kindString: {OpEqual, OpNotEqual, OpContains},
}

// OrderFacts are the order attributes a rule condition can reference.
type OrderFacts struct {
	OrderValue    int64
	IsFirstOrder  bool
	HasSupplier   bool
	ProductStatus string
	EmailDomain   string
}

// DefaultRules are seeded when the rules table is empty.
func DefaultRules() []models.FulfillmentRule {
	desc := func(s string) *string { return &s }
	return []models.FulfillmentRule{
		{
			Name:              "auto_fulfill_low_value",
			Description:       desc("Auto-fulfill low value orders"),
			ConditionType:     FieldOrderValue,
			ConditionOperator: OpLess,
			ConditionValue:    "5000",
			Action:            string(enums.FulfillmentActionAutoFulfill),
			Priority:          1,
			IsEnabled:         true,
		},
		{
			Name:              "hold_high_value",
			Description:       desc("Hold high value orders for review"),
			ConditionType:     FieldOrderValue,
			ConditionOperator: OpGreaterEqual,
			ConditionValue:    "10000",
			Action:            string(enums.FulfillmentActionHoldForReview),
			Priority:          2,
			IsEnabled:         true,
		},
		{
			Name:              "hold_first_time",
			Description:       desc("Hold first-time customer orders"),
			ConditionType:     FieldIsFirstOrder,
			ConditionOperator: OpEqual,
			ConditionValue:    "true",
			Action:            string(enums.FulfillmentActionHoldForReview),
			Priority:          3,
			IsEnabled:         false,
		},
	}
}

// ValidateCondition rejects conditions the evaluator could never match.
func ValidateCondition(field, operator, value string) error {
	kind, ok := fieldKinds[field]
	if !ok {
		return fmt.Errorf("unknown condition field %q", field)
	}
	if !contains(operatorsByKind[kind], operator) {
		return fmt.Errorf("operator %q not supported for %s", operator, field)
	}
	switch kind {
	case kindNumber:
		if _, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err != nil {
			return fmt.Errorf("condition value for %s must be an integer", field)
		}
	case kindBool:
		if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
			return fmt.Errorf("condition value for %s must be true or false", field)
		}
	}
	return nil
}

// Matches reports whether the rule's condition holds for the facts. Malformed
// conditions never match.
func Matches(rule models.FulfillmentRule, facts OrderFacts) bool {
	kind, ok := fieldKinds[rule.ConditionType]
	if !ok || !contains(operatorsByKind[kind], rule.ConditionOperator) {
		return false
	}
	literal := strings.TrimSpace(rule.ConditionValue)

	switch kind {
	case kindNumber:
		want, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return false
		}
		return compareInt(facts.OrderValue, rule.ConditionOperator, want)
	case kindBool:
		want, err := strconv.ParseBool(literal)
		if err != nil {
			return false
		}
		got := facts.IsFirstOrder
		if rule.ConditionType == FieldHasSupplier {
			got = facts.HasSupplier
		}
		if rule.ConditionOperator == OpEqual {
			return got == want
		}
		return got != want
	default:
		got := facts.ProductStatus
		if rule.ConditionType == FieldEmailDomain {
			got = facts.EmailDomain
		}
		got, literal = strings.ToLower(got), strings.ToLower(literal)
		switch rule.ConditionOperator {
		case OpEqual:
			return got == literal
		case OpNotEqual:
			return got != literal
		default:
			return strings.Contains(got, literal)
		}
	}
}

// Evaluate walks rules in the given order; each match overwrites the action,
// so the last match wins. Disabled rules are skipped.
func Evaluate(rules []models.FulfillmentRule, facts OrderFacts) (enums.FulfillmentAction, []string) {
	action := enums.FulfillmentActionProcess
	matched := make([]string, 0)
	for _, rule := range rules {
		if !rule.IsEnabled || !Matches(rule, facts) {
			continue
		}
		parsed, err := enums.ParseFulfillmentAction(rule.Action)
		if err != nil {
			continue
		}
		action = parsed
		matched = append(matched, rule.Name)
	}
	return action, matched
}

func compareInt(got int64, op string, want int64) bool {
	switch op {
	case OpLess:
		return got < want
	case OpLessEqual:
		return got <= want
	case OpGreater:
		return got > want
	case OpGreaterEqual:
		return got >= want
	case OpEqual:
		return got == want
	case OpNotEqual:
		return got != want
	}
	return false
}

func emailDomain(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return ""
	}
	return strings.ToLower(email[at+1:])
}

func contains(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}
