package models

// Message is a single entry in a conversation log. Messages are created
// once by the submission handler and never mutated or deleted.
type Message struct {
	// ID is assigned server-side (UUID), never by the client.
	ID string `json:"id" validate:"required,uuid4"`
	// SenderID is the authenticated session id of the author.
	SenderID string `json:"senderId" validate:"required"`
	// Text is the message body.
	Text string `json:"text" validate:"required"`
	// Timestamp is milliseconds since epoch, assigned at persistence time.
	// It doubles as the sorted-set score, so log order follows it.
	Timestamp int64 `json:"timestamp" validate:"required,gt=0"`
}

// MessageNotification is the richer payload published to the counterparty's
// personal topic. It carries denormalized sender metadata so the sidebar
// can render a toast without an extra profile fetch.
type MessageNotification struct {
	Message
	SenderName  string `json:"senderName"`
	SenderImage string `json:"senderImage"`
}
