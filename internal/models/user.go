package models

// User represents an account in the system. The Postgres row (via gorm) is
// the durable record; a denormalized JSON copy is kept in Redis under
// user:{id} so the send path can read sender metadata with a single GET.
type User struct {
	// ID is the stable identifier issued by the session provider (UUID).
	ID string `gorm:"primaryKey" json:"id"`
	// Name is the display name shown in toasts and the sidebar.
	Name string `gorm:"type:text;not null" json:"name"`
	// Email identifies the account to the auth collaborator.
	Email string `gorm:"uniqueIndex" json:"email"`
	// Image is the avatar URL.
	Image string `gorm:"type:text" json:"image"`
}
