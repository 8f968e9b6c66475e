package notification

// Message is what mutating services hand to the notifier.
type Message struct {
	CompanyID string
	UserID    string
	Title     string
	Message   string
	Type      string
	Channels  []string
}

type NotificationResponse struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	Message   string   `json:"message"`
	Type      string   `json:"type"`
	Channels  []string `json:"channels,omitempty"`
	Read      bool     `json:"read"`
	CreatedAt string   `json:"created_at"`
}
