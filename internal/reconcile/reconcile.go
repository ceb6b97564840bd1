// Package reconcile is the single implementation of the application lifecycle
// flow: record a candidacy, resolve the conversation thread for it, and emit a
// system notification into that thread. Every entry point (HTTP handlers and
// the background sweep) goes through this package, so the flow cannot drift
// between call sites.
//
// None of the steps share a transaction. Instead every step is find-or-create
// against a storage uniqueness constraint, which makes the whole flow safe to
// re-run: the sweep repairs any record left incomplete by a partial failure.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"log/slog"

	"github.com/mfreitas/devmarket/pkg/models"
	"github.com/mfreitas/devmarket/pkg/repository"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrApplicationNotFound = errors.New("application not found")
	ErrSelfApplication     = errors.New("cannot apply to your own project")
	ErrProjectClosed       = errors.New("project is not open for applications")
	ErrInvalidTransition   = errors.New("invalid application status transition")
	ErrNotProjectOwner     = errors.New("only the project owner may decide applications")
)

type Reconciler struct {
	projects repository.ProjectRepo
	apps     repository.ApplicationRepo
	convs    repository.ConversationRepo
	msgs     repository.MessageRepo
	logger   *slog.Logger
}

func New(projects repository.ProjectRepo, apps repository.ApplicationRepo, convs repository.ConversationRepo, msgs repository.MessageRepo, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{projects: projects, apps: apps, convs: convs, msgs: msgs, logger: logger}
}

// ApplyResult reports what the application flow actually did. Incomplete means
// the application row exists but the conversation or notification step failed;
// the sweep will finish the flow on its next run.
type ApplyResult struct {
	Application    *models.Application `json:"application"`
	AlreadyApplied bool                `json:"already_applied"`
	ConversationID int64               `json:"conversation_id,omitempty"`
	Incomplete     bool                `json:"incomplete,omitempty"`
}

// Apply records a developer's application to a project and drives the
// conversation and notification steps. The uniqueness constraint on
// (project_id, developer_id) is the only dedup check: a duplicate insert is
// resolved by returning the existing application.
func (r *Reconciler) Apply(ctx context.Context, projectID, developerID int64, message string) (*ApplyResult, error) {
	project, err := r.projects.GetProjectByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load project %d: %w", projectID, err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.ClientID == developerID {
		return nil, ErrSelfApplication
	}
	if project.Status != models.ProjectStatusOpen {
		return nil, ErrProjectClosed
	}

	app := &models.Application{
		ProjectID:   projectID,
		DeveloperID: developerID,
		Status:      models.ApplicationStatusPending,
		Message:     message,
	}
	id, err := r.apps.CreateApplication(ctx, app)
	if errors.Is(err, repository.ErrDuplicate) {
		existing, gerr := r.apps.GetApplicationByProjectAndDeveloper(ctx, projectID, developerID)
		if gerr != nil {
			return nil, fmt.Errorf("load existing application: %w", gerr)
		}
		if existing == nil {
			// row vanished between the conflict and the re-read
			return nil, fmt.Errorf("application conflict but no existing row")
		}
		return &ApplyResult{Application: existing, AlreadyApplied: true}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("create application: %w", err)
	}
	app.ID = id

	result := &ApplyResult{Application: app}

	convID, err := r.ResolveConversation(ctx, project.ClientID, developerID, projectID, &id, project.Title)
	if err != nil {
		r.logger.Error("resolve conversation after application", "application_id", id, "err", err)
		result.Incomplete = true
		return result, nil
	}
	result.ConversationID = convID

	body := fmt.Sprintf("New application for %q: %s", project.Title, message)
	if _, err := r.EmitNotification(ctx, convID, developerID, models.EventNewApplication, eventRef(id), body); err != nil {
		r.logger.Error("emit application notification", "application_id", id, "err", err)
		result.Incomplete = true
	}

	return result, nil
}

// ResolveConversation returns the id of the single conversation for the
// (client, developer, project) triple, creating it when absent. A concurrent
// create loses the unique-index race and resolves to the winner's row.
func (r *Reconciler) ResolveConversation(ctx context.Context, clientID, developerID, projectID int64, applicationID *int64, subject string) (int64, error) {
	c, err := r.convs.GetConversationByKey(ctx, clientID, developerID, projectID)
	if err != nil {
		return 0, fmt.Errorf("find conversation: %w", err)
	}
	if c != nil {
		if err := r.convs.TouchConversation(ctx, c.ID); err != nil {
			r.logger.Warn("touch conversation", "conversation_id", c.ID, "err", err)
		}
		return c.ID, nil
	}

	id, err := r.convs.CreateConversation(ctx, &models.Conversation{
		ClientID:      clientID,
		DeveloperID:   developerID,
		ProjectID:     projectID,
		ApplicationID: applicationID,
		Subject:       subject,
		Status:        models.ConversationStatusActive,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		c, gerr := r.convs.GetConversationByKey(ctx, clientID, developerID, projectID)
		if gerr != nil {
			return 0, fmt.Errorf("re-read conversation after conflict: %w", gerr)
		}
		if c == nil {
			return 0, fmt.Errorf("conversation conflict but no existing row")
		}
		return c.ID, nil
	}
	if err != nil {
		return 0, fmt.Errorf("create conversation: %w", err)
	}

	return id, nil
}

// EmitNotification appends one system-authored message for (kind, ref) into
// the conversation. The partial unique index makes repeats a no-op; the
// returned bool reports whether a message was actually inserted.
func (r *Reconciler) EmitNotification(ctx context.Context, conversationID, senderID int64, kind, ref, body string) (bool, error) {
	_, err := r.msgs.CreateMessage(ctx, &models.Message{
		ConversationID: conversationID,
		SenderID:       senderID,
		Body:           body,
		EventKind:      kind,
		EventRef:       ref,
	})
	if errors.Is(err, repository.ErrDuplicate) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("create notification message: %w", err)
	}

	if err := r.convs.TouchConversation(ctx, conversationID); err != nil {
		r.logger.Warn("touch conversation", "conversation_id", conversationID, "err", err)
	}

	return true, nil
}

// Decide moves an application from pending to accepted or rejected on behalf
// of the project owner and emits the matching notification. Accepted and
// rejected are terminal: the guarded update refuses any further change.
func (r *Reconciler) Decide(ctx context.Context, applicationID, clientID int64, to string) (*models.Application, error) {
	if to != models.ApplicationStatusAccepted && to != models.ApplicationStatusRejected {
		return nil, ErrInvalidTransition
	}

	app, err := r.apps.GetApplicationByID(ctx, applicationID)
	if err != nil {
		return nil, fmt.Errorf("load application %d: %w", applicationID, err)
	}
	if app == nil {
		return nil, ErrApplicationNotFound
	}

	project, err := r.projects.GetProjectByID(ctx, app.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project %d: %w", app.ProjectID, err)
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.ClientID != clientID {
		return nil, ErrNotProjectOwner
	}

	moved, err := r.apps.TransitionApplicationStatus(ctx, applicationID, models.ApplicationStatusPending, to)
	if err != nil {
		return nil, fmt.Errorf("transition application %d: %w", applicationID, err)
	}
	if !moved {
		return nil, ErrInvalidTransition
	}
	app.Status = to

	convID, err := r.ResolveConversation(ctx, project.ClientID, app.DeveloperID, project.ID, &app.ID, project.Title)
	if err != nil {
		r.logger.Error("resolve conversation after decision", "application_id", app.ID, "err", err)
		return app, nil
	}

	kind, body := decisionEvent(to, project.Title)
	if _, err := r.EmitNotification(ctx, convID, clientID, kind, eventRef(app.ID), body); err != nil {
		r.logger.Error("emit decision notification", "application_id", app.ID, "err", err)
	}

	return app, nil
}

func decisionEvent(status, projectTitle string) (kind, body string) {
	if status == models.ApplicationStatusAccepted {
		return models.EventApplicationAccepted, fmt.Sprintf("Your application for %q was accepted.", projectTitle)
	}
	return models.EventApplicationRejected, fmt.Sprintf("Your application for %q was rejected.", projectTitle)
}

func eventRef(applicationID int64) string {
	return strconv.FormatInt(applicationID, 10)
}
