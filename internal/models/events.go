package models

// Event names carried in bus envelopes.
const (
	// EventIncomingMessage is published on the conversation topic and
	// consumed by any open conversation view.
	EventIncomingMessage = "incoming_message"
	// EventNewMessage is published on the counterparty's personal chats
	// topic and consumed by the sidebar regardless of the open view.
	EventNewMessage = "new_message"
	// EventNewFriend is published on both users' friends topics when a
	// friendship is established.
	EventNewFriend = "new_friend"
)
