package dto

// PaymentWebhook is the provider event envelope posted to the webhook
// endpoint. The body is authenticated as raw bytes before parsing.
type PaymentWebhook struct {
	Event string      `json:"event"`
	Data  PaymentData `json:"data"`
}

type PaymentData struct {
	Reference string          `json:"reference"`
	Status    string          `json:"status"`
	Amount    int64           `json:"amount"`
	Currency  string          `json:"currency"`
	Customer  PaymentCustomer `json:"customer"`
	Metadata  PaymentMetadata `json:"metadata"`
}

type PaymentCustomer struct {
	CustomerCode string `json:"customer_code"`
	Email        string `json:"email"`
}

type PaymentMetadata struct {
	UserID string `json:"user_id"`
}

type WebhookAck struct {
	Received bool `json:"received"`
}
