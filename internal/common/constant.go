// Package common contains shared constants and sentinel errors used across
// SnapNote components.
package common

// Collector HTTP routes. The client and the server must agree on them.
const (
	PathPing          = "/api/ping"
	PathPublicKey     = "/api/push/public-key"
	PathSubscribe     = "/api/push/subscribe"
	PathNotes         = "/api/notes"
	PathSyncCompleted = "/api/push/synced"
)

// Multipart field names of a note upload.
const (
	FieldID        = "id"
	FieldText      = "text"
	FieldCreatedAt = "createdAt"
	FieldImage     = "image"

	// ImageFileName is the attachment name sent for every note image.
	ImageFileName = "note.jpg"
	// ImageContentType is declared on the image part.
	ImageContentType = "image/jpeg"
)

// NotificationTitle is the title of every sync confirmation push message.
const NotificationTitle = "SnapNote"
