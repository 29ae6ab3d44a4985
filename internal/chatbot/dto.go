package chatbot

import (
	"fmt"
	"strings"
	"time"

	"github.com/angelmondragon/urgency-engine/pkg/enums"
)

// SendInput is a customer chat message.
type SendInput struct {
	Message       string  `json:"message" validate:"required,max=4000"`
	SessionID     *string `json:"session_id" validate:"omitempty,max=100"`
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
	CustomerName  *string `json:"customer_name" validate:"omitempty,max=255"`
	OrderID       *string `json:"order_id" validate:"omitempty,max=50"`
	ProductID     *int64  `json:"product_id" validate:"omitempty,gt=0"`
}

// Reply is the bot's answer to one message.
type Reply struct {
	SessionID        string    `json:"session_id"`
	Response         string    `json:"response"`
	SuggestedActions []string  `json:"suggested_actions"`
	NeedsHuman       bool      `json:"needs_human"`
	Confidence       float64   `json:"confidence"`
	Intent           string    `json:"intent"`
	Timestamp        time.Time `json:"timestamp"`
}

// History is the full transcript of a session.
type History struct {
	SessionID     string                  `json:"session_id"`
	Status        enums.ChatSessionStatus `json:"status"`
	CustomerEmail *string                 `json:"customer_email"`
	CustomerName  *string                 `json:"customer_name"`
	Messages      []Message               `json:"messages"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// EscalateInput hands a session to a human agent.
type EscalateInput struct {
	Reason        *string `json:"reason" validate:"omitempty,max=500"`
	CustomerEmail *string `json:"customer_email" validate:"omitempty,email"`
	Priority      *string `json:"priority" validate:"omitempty,oneof=low medium high urgent"`
}

// Ticket is the support ticket opened on escalation.
type Ticket struct {
	ID                  string                     `json:"ticket_id"`
	CustomerEmail       string                     `json:"customer_email"`
	Subject             string                     `json:"subject"`
	Priority            enums.NotificationPriority `json:"priority"`
	Status              string                     `json:"status"`
	ConversationSummary string                     `json:"conversation_summary"`
	CreatedAt           time.Time                  `json:"created_at"`
}

// Escalation is returned to the customer after escalating.
type Escalation struct {
	TicketID              string `json:"ticket_id"`
	Message               string `json:"message"`
	EstimatedResponseTime string `json:"estimated_response_time"`
	Ticket                Ticket `json:"-"`
}

// ResolveResult confirms a resolved session.
type ResolveResult struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// SessionSummary is a session row in the admin list.
type SessionSummary struct {
	ID            string                  `json:"id"`
	Status        enums.ChatSessionStatus `json:"status"`
	MessageCount  int                     `json:"message_count"`
	CustomerEmail *string                 `json:"customer_email"`
	CustomerName  *string                 `json:"customer_name"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
	LastMessage   *string                 `json:"last_message"`
}

// SessionList is the admin session listing.
type SessionList struct {
	Sessions         []SessionSummary         `json:"sessions"`
	Total            int                      `json:"total"`
	FilteredByStatus *enums.ChatSessionStatus `json:"filtered_by_status"`
}

// Stats counts sessions per status.
type Stats struct {
	TotalSessions     int     `json:"total_sessions"`
	Active            int     `json:"active"`
	PendingEscalation int     `json:"pending_escalation"`
	Escalated         int     `json:"escalated"`
	Resolved          int     `json:"resolved"`
	ResolutionRate    float64 `json:"resolution_rate"`
}

// AgentInput is a reply typed by a human agent.
type AgentInput struct {
	Message   string `json:"message" validate:"required,max=4000"`
	AgentName string `json:"agent_name" validate:"max=100"`
}

// AgentResult confirms an agent message.
type AgentResult struct {
	Success   bool      `json:"success"`
	Timestamp time.Time `json:"timestamp"`
}

type orderContext struct {
	OrderID           string
	Status            string
	Total             string
	TotalCents        int64
	TrackingNumber    *string
	EstimatedDelivery *string
}

func (o *orderContext) statusReply() string {
	var b strings.Builder
	fmt.Fprintf(&b, "I found your order #%s! Here's the status:\n\n", o.OrderID)
	fmt.Fprintf(&b, "Status: %s\n", o.Status)
	fmt.Fprintf(&b, "Total: %s\n", o.Total)
	if o.TrackingNumber != nil && *o.TrackingNumber != "" {
		fmt.Fprintf(&b, "Tracking: %s\n", *o.TrackingNumber)
	}
	if o.EstimatedDelivery != nil && *o.EstimatedDelivery != "" {
		fmt.Fprintf(&b, "Estimated Delivery: %s\n", *o.EstimatedDelivery)
	}
	b.WriteString("\nIs there anything else you'd like to know about this order?")
	return b.String()
}

type productContext struct {
	Name        string
	Price       string
	Description string
	InStock     bool
}

type customerContext struct {
	customerName *string
	order        *orderContext
	product      *productContext
}

// describe renders the context block handed to the model.
func (c customerContext) describe() string {
	parts := make([]string, 0, 3)
	if o := c.order; o != nil {
		tracking := "Not available yet"
		if o.TrackingNumber != nil {
			tracking = *o.TrackingNumber
		}
		parts = append(parts, fmt.Sprintf(
			"Customer Order Information:\n- Order ID: %s\n- Status: %s\n- Total: %s\n- Tracking: %s",
			o.OrderID, o.Status, o.Total, tracking))
	}
	if p := c.product; p != nil {
		stock := "Out of stock"
		if p.InStock {
			stock = "Yes"
		}
		desc := p.Description
		if desc == "" {
			desc = "No description"
		}
		parts = append(parts, fmt.Sprintf(
			"Product Information:\n- Name: %s\n- Price: %s\n- In Stock: %s\n- Description: %s",
			p.Name, p.Price, stock, desc))
	}
	if c.customerName != nil && *c.customerName != "" {
		parts = append(parts, "Customer Name: "+*c.customerName)
	}
	if len(parts) == 0 {
		return "No specific customer context available."
	}
	return strings.Join(parts, "\n\n")
}
