// Package mock provides hand-rolled in-memory repositories for handler tests.
package mock

import (
	"context"

	"github.com/mfreitas/devmarket/pkg/models"
	"github.com/mfreitas/devmarket/pkg/repository"
)

type Mocks struct {
	AccRepo  *AccountRepo
	ProfRepo *ProfileRepo
	DevRepo  *DeveloperProfileRepo
	ProjRepo *ProjectRepo
	AppRepo  *ApplicationRepo
	ConvRepo *ConversationRepo
	MsgRepo  *MessageRepo
	RateRepo *RatingRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		AccRepo:  &AccountRepo{},
		ProfRepo: &ProfileRepo{},
		DevRepo:  &DeveloperProfileRepo{},
		ProjRepo: &ProjectRepo{},
		AppRepo:  &ApplicationRepo{},
		ConvRepo: &ConversationRepo{},
		MsgRepo:  &MessageRepo{},
		RateRepo: &RatingRepo{},
	}
}

type AccountRepo struct {
	Stored    *models.Account
	CreateErr error
}

var _ repository.AccountRepo = (*AccountRepo)(nil)

func (m *AccountRepo) CreateAccount(ctx context.Context, a *models.Account) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	if m.Stored != nil && m.Stored.Email == a.Email {
		return 0, repository.ErrDuplicate
	}
	m.Stored = &models.Account{ID: 1, Email: a.Email, Role: a.Role, PasswordHash: a.PasswordHash}
	return 1, nil
}

func (m *AccountRepo) GetAccountByID(ctx context.Context, id int64) (*models.Account, error) {
	if m.Stored != nil && m.Stored.ID == id {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *AccountRepo) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	if m.Stored != nil && m.Stored.Email == email {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *AccountRepo) ListAccounts(ctx context.Context) ([]models.Account, error) {
	if m.Stored == nil {
		return nil, nil
	}
	return []models.Account{*m.Stored}, nil
}

type ProfileRepo struct {
	Stored    *models.Profile
	CreateErr error
}

var _ repository.ProfileRepo = (*ProfileRepo)(nil)

func (m *ProfileRepo) CreateProfile(ctx context.Context, p *models.Profile) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	stored := *p
	stored.ID = 1
	m.Stored = &stored
	return 1, nil
}

func (m *ProfileRepo) GetProfileByAccountID(ctx context.Context, accountID int64) (*models.Profile, error) {
	if m.Stored != nil && m.Stored.AccountID == accountID {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *ProfileRepo) UpdateProfile(ctx context.Context, p *models.Profile) error {
	m.Stored = p
	return nil
}

func (m *ProfileRepo) SetAvatarURL(ctx context.Context, accountID int64, url string) error {
	if m.Stored != nil && m.Stored.AccountID == accountID {
		m.Stored.AvatarURL = url
	}
	return nil
}

type DeveloperProfileRepo struct {
	Stored    *models.DeveloperProfile
	CreateErr error
}

var _ repository.DeveloperProfileRepo = (*DeveloperProfileRepo)(nil)

func (m *DeveloperProfileRepo) CreateDeveloperProfile(ctx context.Context, p *models.DeveloperProfile) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	stored := *p
	stored.ID = 1
	m.Stored = &stored
	return 1, nil
}

func (m *DeveloperProfileRepo) GetDeveloperProfileByAccountID(ctx context.Context, accountID int64) (*models.DeveloperProfile, error) {
	if m.Stored != nil && m.Stored.AccountID == accountID {
		return m.Stored, nil
	}
	return nil, nil
}

func (m *DeveloperProfileRepo) UpdateDeveloperProfile(ctx context.Context, p *models.DeveloperProfile) error {
	m.Stored = p
	return nil
}

type ProjectRepo struct {
	Projects  map[int64]*models.Project
	CreateErr error
	nextID    int64
}

var _ repository.ProjectRepo = (*ProjectRepo)(nil)

func (m *ProjectRepo) CreateProject(ctx context.Context, p *models.Project) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	if m.Projects == nil {
		m.Projects = make(map[int64]*models.Project)
	}
	m.nextID++
	stored := *p
	stored.ID = m.nextID
	m.Projects[stored.ID] = &stored
	return stored.ID, nil
}

func (m *ProjectRepo) GetProjectByID(ctx context.Context, id int64) (*models.Project, error) {
	if p, ok := m.Projects[id]; ok {
		return p, nil
	}
	return nil, nil
}

func (m *ProjectRepo) UpdateProject(ctx context.Context, p *models.Project) error {
	if m.Projects == nil {
		m.Projects = make(map[int64]*models.Project)
	}
	m.Projects[p.ID] = p
	return nil
}

func (m *ProjectRepo) UpdateProjectStatus(ctx context.Context, id int64, status string) error {
	if p, ok := m.Projects[id]; ok {
		p.Status = status
	}
	return nil
}

func (m *ProjectRepo) ListProjects(ctx context.Context, f repository.ProjectFilter) ([]models.Project, error) {
	var out []models.Project
	for _, p := range m.Projects {
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.ClientID > 0 && p.ClientID != f.ClientID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (m *ProjectRepo) CountProjects(ctx context.Context, f repository.ProjectFilter) (int64, error) {
	items, _ := m.ListProjects(ctx, f)
	return int64(len(items)), nil
}

type ApplicationRepo struct {
	Applications map[int64]*models.Application
	CreateErr    error
	nextID       int64
}

var _ repository.ApplicationRepo = (*ApplicationRepo)(nil)

func (m *ApplicationRepo) CreateApplication(ctx context.Context, a *models.Application) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	for _, existing := range m.Applications {
		if existing.ProjectID == a.ProjectID && existing.DeveloperID == a.DeveloperID {
			return 0, repository.ErrDuplicate
		}
	}
	if m.Applications == nil {
		m.Applications = make(map[int64]*models.Application)
	}
	m.nextID++
	stored := *a
	stored.ID = m.nextID
	m.Applications[stored.ID] = &stored
	return stored.ID, nil
}

func (m *ApplicationRepo) GetApplicationByID(ctx context.Context, id int64) (*models.Application, error) {
	if a, ok := m.Applications[id]; ok {
		return a, nil
	}
	return nil, nil
}

func (m *ApplicationRepo) GetApplicationByProjectAndDeveloper(ctx context.Context, projectID, developerID int64) (*models.Application, error) {
	for _, a := range m.Applications {
		if a.ProjectID == projectID && a.DeveloperID == developerID {
			return a, nil
		}
	}
	return nil, nil
}

func (m *ApplicationRepo) ListApplicationsByProject(ctx context.Context, projectID int64) ([]models.Application, error) {
	var out []models.Application
	for _, a := range m.Applications {
		if a.ProjectID == projectID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *ApplicationRepo) ListApplicationsByDeveloper(ctx context.Context, developerID int64) ([]models.Application, error) {
	var out []models.Application
	for _, a := range m.Applications {
		if a.DeveloperID == developerID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (m *ApplicationRepo) ListApplications(ctx context.Context) ([]models.Application, error) {
	var out []models.Application
	for _, a := range m.Applications {
		out = append(out, *a)
	}
	return out, nil
}

func (m *ApplicationRepo) TransitionApplicationStatus(ctx context.Context, id int64, from, to string) (bool, error) {
	a, ok := m.Applications[id]
	if !ok || a.Status != from {
		return false, nil
	}
	a.Status = to
	return true, nil
}

type ConversationRepo struct {
	Conversations map[int64]*models.Conversation
	CreateErr     error
	nextID        int64
}

var _ repository.ConversationRepo = (*ConversationRepo)(nil)

func (m *ConversationRepo) CreateConversation(ctx context.Context, c *models.Conversation) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	for _, existing := range m.Conversations {
		if existing.ClientID == c.ClientID && existing.DeveloperID == c.DeveloperID && existing.ProjectID == c.ProjectID {
			return 0, repository.ErrDuplicate
		}
	}
	if m.Conversations == nil {
		m.Conversations = make(map[int64]*models.Conversation)
	}
	m.nextID++
	stored := *c
	stored.ID = m.nextID
	m.Conversations[stored.ID] = &stored
	return stored.ID, nil
}

func (m *ConversationRepo) GetConversationByID(ctx context.Context, id int64) (*models.Conversation, error) {
	if c, ok := m.Conversations[id]; ok {
		return c, nil
	}
	return nil, nil
}

func (m *ConversationRepo) GetConversationByKey(ctx context.Context, clientID, developerID, projectID int64) (*models.Conversation, error) {
	for _, c := range m.Conversations {
		if c.ClientID == clientID && c.DeveloperID == developerID && c.ProjectID == projectID {
			return c, nil
		}
	}
	return nil, nil
}

func (m *ConversationRepo) ListConversationsByAccount(ctx context.Context, accountID int64) ([]models.Conversation, error) {
	var out []models.Conversation
	for _, c := range m.Conversations {
		if c.ClientID == accountID || c.DeveloperID == accountID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *ConversationRepo) TouchConversation(ctx context.Context, id int64) error {
	return nil
}

type MessageRepo struct {
	Messages  []*models.Message
	CreateErr error
	nextID    int64
}

var _ repository.MessageRepo = (*MessageRepo)(nil)

func (m *MessageRepo) CreateMessage(ctx context.Context, msg *models.Message) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	if msg.EventKind != "" {
		for _, existing := range m.Messages {
			if existing.ConversationID == msg.ConversationID && existing.EventKind == msg.EventKind && existing.EventRef == msg.EventRef {
				return 0, repository.ErrDuplicate
			}
		}
	}
	m.nextID++
	stored := *msg
	stored.ID = m.nextID
	m.Messages = append(m.Messages, &stored)
	return stored.ID, nil
}

func (m *MessageRepo) ListMessagesByConversation(ctx context.Context, conversationID int64, limit, offset int) ([]models.Message, error) {
	var out []models.Message
	for _, msg := range m.Messages {
		if msg.ConversationID == conversationID {
			out = append(out, *msg)
		}
	}
	return out, nil
}

func (m *MessageRepo) CountMessagesByConversation(ctx context.Context, conversationID int64) (int64, error) {
	items, _ := m.ListMessagesByConversation(ctx, conversationID, 0, 0)
	return int64(len(items)), nil
}

func (m *MessageRepo) MarkMessagesRead(ctx context.Context, conversationID, readerID int64) error {
	for _, msg := range m.Messages {
		if msg.ConversationID == conversationID && msg.SenderID != readerID {
			msg.Read = true
		}
	}
	return nil
}

type RatingRepo struct {
	Ratings   []*models.Rating
	UpsertErr error
	nextID    int64
}

var _ repository.RatingRepo = (*RatingRepo)(nil)

func (m *RatingRepo) UpsertRating(ctx context.Context, r *models.Rating) (int64, error) {
	if m.UpsertErr != nil {
		return 0, m.UpsertErr
	}
	for _, existing := range m.Ratings {
		if existing.ClientID == r.ClientID && existing.DeveloperID == r.DeveloperID {
			existing.Rating = r.Rating
			existing.Comment = r.Comment
			existing.ProjectTitle = r.ProjectTitle
			return existing.ID, nil
		}
	}
	m.nextID++
	stored := *r
	stored.ID = m.nextID
	m.Ratings = append(m.Ratings, &stored)
	return stored.ID, nil
}

func (m *RatingRepo) ListRatingsByDeveloper(ctx context.Context, developerID int64) ([]models.Rating, error) {
	var out []models.Rating
	for _, r := range m.Ratings {
		if r.DeveloperID == developerID {
			out = append(out, *r)
		}
	}
	return out, nil
}
