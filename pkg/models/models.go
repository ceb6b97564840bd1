package models

// Domain models matching the database schema in db/migrations/0001_init.sql.
// Timestamps are unix milliseconds unless noted.

const (
	RoleClient    = "client"
	RoleDeveloper = "developer"
)

const (
	ProjectStatusOpen       = "open"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusCancelled  = "cancelled"
	ProjectStatusOnHold     = "on_hold"
)

const (
	ApplicationStatusPending  = "pending"
	ApplicationStatusAccepted = "accepted"
	ApplicationStatusRejected = "rejected"
)

const (
	ConversationStatusActive   = "active"
	ConversationStatusArchived = "archived"
)

// Event kinds for system-authored notification messages. A message with an
// empty event kind is a plain user message.
const (
	EventNewApplication      = "new_application"
	EventApplicationAccepted = "application_accepted"
	EventApplicationRejected = "application_rejected"
)

type Account struct {
	ID           int64  `json:"id" db:"id"`
	Email        string `json:"email" db:"email" validate:"required,email"`
	Role         string `json:"role" db:"role"`
	Created      int64  `json:"created" db:"created"`
	Updated      int64  `json:"updated" db:"updated"`
	PasswordHash string `json:"-" db:"password_hash"`
}

type Profile struct {
	ID           int64  `json:"id" db:"id"`
	AccountID    int64  `json:"account_id" db:"account_id"`
	DisplayName  string `json:"display_name" db:"display_name"`
	AvatarURL    string `json:"avatar_url,omitempty" db:"avatar_url"`
	Location     string `json:"location,omitempty" db:"location"`
	ContactEmail string `json:"contact_email,omitempty" db:"contact_email"`
	Created      int64  `json:"created" db:"created"`
	Updated      int64  `json:"updated" db:"updated"`
}

// DeveloperProfile extends Profile for developer accounts. AverageRating and
// TotalRatings are a cached aggregate over ratings rows, recomputed in the same
// transaction as every rating write.
type DeveloperProfile struct {
	ID            int64    `json:"id" db:"id"`
	AccountID     int64    `json:"account_id" db:"account_id"`
	Bio           string   `json:"bio,omitempty" db:"bio"`
	Skills        []string `json:"skills" db:"skills"`
	Languages     []string `json:"languages" db:"languages"`
	HourlyRate    int64    `json:"hourly_rate" db:"hourly_rate"`
	DailyRate     int64    `json:"daily_rate" db:"daily_rate"`
	AverageRating float64  `json:"average_rating" db:"average_rating"`
	TotalRatings  int64    `json:"total_ratings" db:"total_ratings"`
	Created       int64    `json:"created" db:"created"`
	Updated       int64    `json:"updated" db:"updated"`
}

type Project struct {
	ID             int64    `json:"id" db:"id"`
	ClientID       int64    `json:"client_id" db:"client_id"`
	Title          string   `json:"title" db:"title" validate:"required"`
	Description    string   `json:"description,omitempty" db:"description"`
	ProjectType    string   `json:"project_type,omitempty" db:"project_type"`
	BudgetMin      int64    `json:"budget_min" db:"budget_min"`
	BudgetMax      int64    `json:"budget_max" db:"budget_max"`
	Timeline       string   `json:"timeline,omitempty" db:"timeline"`
	RequiredSkills []string `json:"required_skills" db:"required_skills"`
	Complexity     string   `json:"complexity,omitempty" db:"complexity"`
	Status         string   `json:"status" db:"status"`
	Created        int64    `json:"created" db:"created"`
	Updated        int64    `json:"updated" db:"updated"`
}

type Application struct {
	ID          int64  `json:"id" db:"id"`
	ProjectID   int64  `json:"project_id" db:"project_id"`
	DeveloperID int64  `json:"developer_id" db:"developer_id"`
	Status      string `json:"status" db:"status"`
	Message     string `json:"message,omitempty" db:"message"`
	Created     int64  `json:"created" db:"created"`
	Updated     int64  `json:"updated" db:"updated"`
}

// Conversation is keyed by the full (client, developer, project) triple; a new
// project between the same two parties gets a new thread.
type Conversation struct {
	ID            int64  `json:"id" db:"id"`
	ClientID      int64  `json:"client_id" db:"client_id"`
	DeveloperID   int64  `json:"developer_id" db:"developer_id"`
	ProjectID     int64  `json:"project_id" db:"project_id"`
	ApplicationID *int64 `json:"application_id,omitempty" db:"application_id"`
	Subject       string `json:"subject,omitempty" db:"subject"`
	Status        string `json:"status" db:"status"`
	LastMessageAt int64  `json:"last_message_at" db:"last_message_at"`
	Created       int64  `json:"created" db:"created"`
	Updated       int64  `json:"updated" db:"updated"`
}

type Message struct {
	ID             int64  `json:"id" db:"id"`
	ConversationID int64  `json:"conversation_id" db:"conversation_id"`
	SenderID       int64  `json:"sender_id" db:"sender_id"`
	Body           string `json:"body" db:"body"`
	Read           bool   `json:"read" db:"read"`
	EventKind      string `json:"event_kind,omitempty" db:"event_kind"`
	EventRef       string `json:"event_ref,omitempty" db:"event_ref"`
	Created        int64  `json:"created" db:"created"`
}

type Rating struct {
	ID           int64  `json:"id" db:"id"`
	ClientID     int64  `json:"client_id" db:"client_id"`
	DeveloperID  int64  `json:"developer_id" db:"developer_id"`
	Rating       int    `json:"rating" db:"rating"`
	Comment      string `json:"comment,omitempty" db:"comment"`
	ProjectTitle string `json:"project_title,omitempty" db:"project_title"`
	Created      int64  `json:"created" db:"created"`
}
