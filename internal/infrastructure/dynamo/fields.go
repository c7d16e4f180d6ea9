package dynamo

// DynamoDB attribute names used in key conditions and update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldNotificationID = "notification_id"
	fieldUserID         = "user_id"
	fieldRead           = "read"
	fieldCreatedAt      = "created_at"
)
