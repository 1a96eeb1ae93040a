package domain

// Notification fields written by the broadcast and mark-as-read operations.
const (
	FieldUserID  = "user_id"
	FieldTitle   = "title"
	FieldMessage = "message"
	FieldType    = "type"
	FieldIsRead  = "is_read"
)

// DefaultNotificationType is used when a notification or broadcast omits its type.
const DefaultNotificationType = "announcement"

// BroadcastTemplate is the content copied into one notification per user.
type BroadcastTemplate struct {
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
}

// BroadcastResult reports the notifications created by a broadcast.
type BroadcastResult struct {
	Count           int      `json:"count"`
	NotificationIDs []string `json:"notification_ids"`
}
