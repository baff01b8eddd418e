package providers

// Message is one role-tagged entry of a chat-completions exchange.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
