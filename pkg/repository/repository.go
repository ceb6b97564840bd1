package repository

import (
	"context"
	"errors"

	"github.com/mfreitas/devmarket/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Reads that find nothing return (nil, nil): an expected empty result is normal
// control flow, not an error. Writes that hit a storage uniqueness constraint
// return ErrDuplicate; callers treat that as the authoritative "already exists"
// signal instead of running a racy pre-check query.

// ErrDuplicate is returned when an insert violates a uniqueness constraint.
var ErrDuplicate = errors.New("duplicate row")

type AccountRepo interface {
	CreateAccount(ctx context.Context, a *models.Account) (int64, error)
	GetAccountByID(ctx context.Context, id int64) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
}

type ProfileRepo interface {
	CreateProfile(ctx context.Context, p *models.Profile) (int64, error)
	GetProfileByAccountID(ctx context.Context, accountID int64) (*models.Profile, error)
	UpdateProfile(ctx context.Context, p *models.Profile) error
	SetAvatarURL(ctx context.Context, accountID int64, url string) error
}

type DeveloperProfileRepo interface {
	CreateDeveloperProfile(ctx context.Context, p *models.DeveloperProfile) (int64, error)
	GetDeveloperProfileByAccountID(ctx context.Context, accountID int64) (*models.DeveloperProfile, error)
	UpdateDeveloperProfile(ctx context.Context, p *models.DeveloperProfile) error
}

// ProjectFilter narrows ListProjects. Zero values mean "no filter".
type ProjectFilter struct {
	Status   string
	ClientID int64
	Skill    string
	Limit    int
	Offset   int
}

type ProjectRepo interface {
	CreateProject(ctx context.Context, p *models.Project) (int64, error)
	GetProjectByID(ctx context.Context, id int64) (*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	UpdateProjectStatus(ctx context.Context, id int64, status string) error
	ListProjects(ctx context.Context, f ProjectFilter) ([]models.Project, error)
	CountProjects(ctx context.Context, f ProjectFilter) (int64, error)
}

type ApplicationRepo interface {
	CreateApplication(ctx context.Context, a *models.Application) (int64, error)
	GetApplicationByID(ctx context.Context, id int64) (*models.Application, error)
	GetApplicationByProjectAndDeveloper(ctx context.Context, projectID, developerID int64) (*models.Application, error)
	ListApplicationsByProject(ctx context.Context, projectID int64) ([]models.Application, error)
	ListApplicationsByDeveloper(ctx context.Context, developerID int64) ([]models.Application, error)
	ListApplications(ctx context.Context) ([]models.Application, error)
	// TransitionApplicationStatus moves an application from one status to
	// another and reports whether a row actually changed. A false result
	// means the application was not in the expected source status.
	TransitionApplicationStatus(ctx context.Context, id int64, from, to string) (bool, error)
}

type ConversationRepo interface {
	CreateConversation(ctx context.Context, c *models.Conversation) (int64, error)
	GetConversationByID(ctx context.Context, id int64) (*models.Conversation, error)
	GetConversationByKey(ctx context.Context, clientID, developerID, projectID int64) (*models.Conversation, error)
	ListConversationsByAccount(ctx context.Context, accountID int64) ([]models.Conversation, error)
	TouchConversation(ctx context.Context, id int64) error
}

type MessageRepo interface {
	CreateMessage(ctx context.Context, m *models.Message) (int64, error)
	ListMessagesByConversation(ctx context.Context, conversationID int64, limit, offset int) ([]models.Message, error)
	CountMessagesByConversation(ctx context.Context, conversationID int64) (int64, error)
	// MarkMessagesRead marks every message in the conversation not sent by
	// readerID as read.
	MarkMessagesRead(ctx context.Context, conversationID, readerID int64) error
}

type RatingRepo interface {
	// UpsertRating inserts or replaces the rating for the (client, developer)
	// pair and recomputes the developer's cached rating aggregate in the same
	// transaction.
	UpsertRating(ctx context.Context, r *models.Rating) (int64, error)
	ListRatingsByDeveloper(ctx context.Context, developerID int64) ([]models.Rating, error)
}
