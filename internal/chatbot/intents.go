package chatbot

import "strings"

// Intents detected from customer messages.
const (
	IntentOrderStatus       = "order_status"
	IntentReturnRefund      = "return_refund"
	IntentProductInquiry    = "product_inquiry"
	IntentShippingInfo      = "shipping_info"
	IntentCancellation      = "cancellation"
	IntentPaymentIssue      = "payment_issue"
	IntentEscalationRequest = "escalation_request"
	IntentGreeting          = "greeting"
	IntentClosing           = "closing"
	IntentGeneral           = "general"
)

type intentRule struct {
	intent   string
	keywords []string
}

// Rules are checked in order; the first keyword hit wins.
var intentRules = []intentRule{
	{IntentOrderStatus, []string{"order", "tracking", "shipped", "delivery", "where is"}},
	{IntentReturnRefund, []string{"return", "refund", "money back", "exchange"}},
	{IntentProductInquiry, []string{"product", "item", "price", "available", "stock"}},
	{IntentShippingInfo, []string{"shipping", "delivery time", "how long"}},
	{IntentCancellation, []string{"cancel", "cancelled"}},
	{IntentPaymentIssue, []string{"payment", "charge", "bill"}},
	{IntentEscalationRequest, []string{"help", "support", "agent", "human", "person"}},
	{IntentGreeting, []string{"hi", "hello", "hey", "good morning", "good afternoon"}},
	{IntentClosing, []string{"thank", "thanks", "bye", "goodbye"}},
}

// DetectIntent classifies a message by keyword.
func DetectIntent(message string) string {
	lower := strings.ToLower(message)
	for _, rule := range intentRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.intent
			}
		}
	}
	return IntentGeneral
}

var suggestedActions = map[string][]string{
	IntentOrderStatus:       {"Track my order", "Check delivery date", "Contact shipping carrier"},
	IntentReturnRefund:      {"Start a return", "Check refund status", "Talk to agent"},
	IntentProductInquiry:    {"View product details", "Check availability", "See similar items"},
	IntentShippingInfo:      {"View shipping options", "Track order", "Estimate delivery"},
	IntentCancellation:      {"Cancel order", "Modify order", "Talk to agent"},
	IntentPaymentIssue:      {"View order details", "Check payment status", "Talk to agent"},
	IntentEscalationRequest: {"Talk to agent", "Request callback", "Email support"},
	IntentGreeting:          {"Track my order", "Browse products", "Get help"},
	IntentClosing:           {"Continue shopping", "Rate our service", "Get more help"},
	IntentGeneral:           {"Track order", "Product help", "Talk to agent"},
}

// SuggestedActions returns quick replies for an intent.
func SuggestedActions(intent string) []string {
	if actions, ok := suggestedActions[intent]; ok {
		return append([]string(nil), actions...)
	}
	return []string{"Talk to agent"}
}

var fallbackReplies = map[string]string{
	IntentGreeting:          "Hello! Welcome to our store support. How can I help you today? You can ask about orders, products, shipping, or returns.",
	IntentOrderStatus:       "I'd be happy to help you check your order status! Please provide your order number or the email used during checkout, and I'll look it up for you.",
	IntentReturnRefund:      "I can help with returns and refunds. Our policy allows returns within 30 days for unused items. Would you like to start a return, or do you have questions about an existing refund?",
	IntentProductInquiry:    "I'd be glad to help with product information! What product are you interested in? You can share the product name or link, and I'll get you the details.",
	IntentShippingInfo:      "We offer free standard shipping (5-7 days) on orders over $50, and express shipping (2-3 days) for an additional fee. Would you like tracking info for an existing order?",
	IntentCancellation:      "I understand you'd like to cancel an order. If your order hasn't shipped yet, I can help with that. Please provide your order number so I can check the status.",
	IntentPaymentIssue:      "I'm sorry to hear you're having payment issues. Let me connect you with our support team who can securely review your account. Would you like to speak with an agent?",
	IntentEscalationRequest: "Of course! I'll connect you with a human support agent right away. They'll be able to help with your specific situation. Please hold for a moment.",
	IntentClosing:           "You're welcome! Thanks for shopping with us. Is there anything else I can help you with before you go?",
	IntentGeneral:           "Thanks for reaching out! I'm here to help with orders, products, shipping, returns, and general questions. What can I assist you with today?",
}

func fallbackReply(intent string) string {
	if reply, ok := fallbackReplies[intent]; ok {
		return reply
	}
	return fallbackReplies[IntentGeneral]
}

// FAQTopic is one entry of the FAQ index.
type FAQTopic struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// FAQAnswer is a canned answer for a topic.
type FAQAnswer struct {
	Topic    string `json:"topic"`
	Response string `json:"response"`
}

var faqTopics = []FAQTopic{
	{ID: "shipping_cost", Title: "Shipping Costs"},
	{ID: "delivery_time", Title: "Delivery Times"},
	{ID: "return_policy", Title: "Return Policy"},
	{ID: "refund_time", Title: "Refund Processing Time"},
	{ID: "track_order", Title: "How to Track Orders"},
	{ID: "cancel_order", Title: "Cancelling Orders"},
	{ID: "contact", Title: "Contact Us"},
	{ID: "payment_methods", Title: "Payment Methods"},
}

var faqAnswers = map[string]string{
	"shipping_cost":   "Shipping is FREE on all orders over $50! For orders under $50, standard shipping is $4.99 and express shipping is $9.99.",
	"delivery_time":   "Standard delivery takes 5-7 business days. Express delivery takes 2-3 business days. International orders may take 10-14 days.",
	"return_policy":   "You can return most unused items within 30 days of delivery for a full refund. Items must be in original packaging. Some items like personalized products are final sale.",
	"refund_time":     "Once we receive your return, refunds are processed within 5-7 business days. It may take an additional 3-5 days to appear on your statement.",
	"track_order":     "You can track your order by logging into your account and viewing your order history, or by using the tracking number sent to your email.",
	"cancel_order":    "Orders can be cancelled within 1 hour of placement or before shipping. After that, you'll need to initiate a return once you receive the item.",
	"contact":         "You can reach us via chat 24/7, or by email. Human agents are available 9 AM - 6 PM EST.",
	"payment_methods": "We accept all major credit cards (Visa, Mastercard, Amex, Discover), PayPal, Apple Pay, and Google Pay.",
}

const systemPrompt = `You are a friendly and helpful customer support assistant for an e-commerce store that showcases trending products.

You can answer questions about order status when order info is provided, product information, shipping timelines, returns and refunds, and general store questions.

Guidelines:
1. Be warm, professional, and concise
2. If you don't have specific order/product info, ask for details
3. For refunds over $100, damaged items, or account issues, suggest escalating to human support
4. Never make up order statuses or tracking numbers
5. Acknowledge the customer's concern before providing solutions

Store Policies:
- Shipping: Free shipping on orders over $50. Standard delivery 5-7 business days, Express 2-3 days
- Returns: 30-day return policy for unused items in original packaging
- Refunds: Processed within 5-7 business days after item receipt
- Support Hours: 24/7 chat support, human agents available 9 AM - 6 PM EST`
