package payments

// Payment status values as reported by the provider.
const (
	PaymentStatusApproved  = "approved"
	PaymentStatusPending   = "pending"
	PaymentStatusRejected  = "rejected"
	PaymentStatusCancelled = "cancelled"
)

// EventTypePayment is the only notification type the pipeline processes.
const EventTypePayment = "payment"

// Payment is the provider's payment resource, narrowed to the fields the
// pipeline consumes.
type Payment struct {
	ID                string  `json:"id"`
	Status            string  `json:"status"`
	StatusDetail      string  `json:"status_detail"`
	ExternalReference string  `json:"external_reference"`
	TransactionAmount float64 `json:"transaction_amount"`
	PayerEmail        string  `json:"payer_email"`
}

// WebhookNotification is the inbound webhook body. The provider guarantees at
// least id and type; payment facts may be embedded under data to spare a
// round trip when the queue processor runs.
type WebhookNotification struct {
	ID   string `json:"id" validate:"required"`
	Type string `json:"type" validate:"required"`
	Data struct {
		ID                string `json:"id"`
		Status            string `json:"status"`
		StatusDetail      string `json:"status_detail"`
		ExternalReference string `json:"external_reference"`
	} `json:"data"`
}

// PaymentID returns the provider payment identifier referenced by the
// notification: data.id when present, otherwise the top-level id.
func (n *WebhookNotification) PaymentID() string {
	if n.Data.ID != "" {
		return n.Data.ID
	}
	return n.ID
}

// PreferenceItem is one purchasable line in a checkout preference.
type PreferenceItem struct {
	Title     string  `json:"title"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// PreferenceRequest is the outbound payload for creating a checkout
// preference with the provider.
type PreferenceRequest struct {
	Items             []PreferenceItem `json:"items"`
	ExternalReference string           `json:"external_reference"`
	NotificationURL   string           `json:"notification_url,omitempty"`
	PayerEmail        string           `json:"payer_email,omitempty"`
}

// Preference is the provider's answer to a preference creation: the id plus
// the URL the buyer is redirected to.
type Preference struct {
	ID        string `json:"id"`
	InitPoint string `json:"init_point"`
}
