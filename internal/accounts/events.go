package accounts

const (
	EventUserDeleted = "UserDeleted"
	TopicUserDeleted = "user.deleted"
)

type UserDeletedPayload struct {
	UserID string `json:"user_id"`
}
