package conversation

import "time"

// Message is a single WhatsApp-style transcript entry.
type Message struct {
	Body     string    `json:"body"`
	SentAt   time.Time `json:"sentAt"`
	Outbound bool      `json:"outbound"`
}

// Conversation groups the messages exchanged with one phone number.
type Conversation struct {
	Phone    string    `json:"phone"`
	Contact  string    `json:"contact,omitempty"`
	Messages []Message `json:"messages"`
}

// Analysis summarizes a set of conversations for the report export.
type Analysis struct {
	Conversations int            `json:"conversations"`
	TotalMessages int            `json:"totalMessages"`
	Inbound       int            `json:"inbound"`
	Outbound      int            `json:"outbound"`
	BusiestHour   int            `json:"busiestHour"`
	TopContacts   []ContactCount `json:"topContacts"`
	GeneratedAt   time.Time      `json:"generatedAt"`
}

// ContactCount pairs a contact with its message volume.
type ContactCount struct {
	Phone    string `json:"phone"`
	Contact  string `json:"contact,omitempty"`
	Messages int    `json:"messages"`
}
