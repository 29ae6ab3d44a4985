package middleware

import (
	"context"

	"github.com/angelmondragon/urgency-engine/pkg/enums"
)

type operatorKey struct{}

// Operator is the authenticated admin behind a request.
type Operator struct {
	Email   string
	Role    enums.AdminRole
	TokenID string
}

// WithOperator injects the authenticated operator into the context.
func WithOperator(ctx context.Context, op Operator) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, operatorKey{}, op)
}

func OperatorFromContext(ctx context.Context) (Operator, bool) {
	if ctx == nil {
		return Operator{}, false
	}
	op, ok := ctx.Value(operatorKey{}).(Operator)
	return op, ok
}

// WithAdmin is shorthand for WithOperator without a token id.
func WithAdmin(ctx context.Context, email string, role enums.AdminRole) context.Context {
	return WithOperator(ctx, Operator{Email: email, Role: role})
}

func AdminEmailFromContext(ctx context.Context) string {
	op, _ := OperatorFromContext(ctx)
	return op.Email
}

func RoleFromContext(ctx context.Context) enums.AdminRole {
	op, _ := OperatorFromContext(ctx)
	return op.Role
}
