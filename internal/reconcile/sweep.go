package reconcile

import (
	"context"
	"fmt"

	"github.com/mfreitas/devmarket/pkg/models"
)

// SweepReport counts what a sweep pass actually repaired.
type SweepReport struct {
	Applications         int `json:"applications"`
	ConversationsCreated int `json:"conversations_created"`
	MessagesEmitted      int `json:"messages_emitted"`
	Errors               int `json:"errors"`
}

// Sweep walks every application and makes sure its conversation and
// notifications exist. Each step is find-or-create, so the pass is idempotent
// and safe to run on any schedule; it exists to finish flows interrupted
// between the application insert and the notification insert.
func (r *Reconciler) Sweep(ctx context.Context) (SweepReport, error) {
	var report SweepReport

	apps, err := r.apps.ListApplications(ctx)
	if err != nil {
		return report, fmt.Errorf("list applications: %w", err)
	}
	report.Applications = len(apps)

	projects := make(map[int64]*models.Project)
	for _, app := range apps {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		project, ok := projects[app.ProjectID]
		if !ok {
			project, err = r.projects.GetProjectByID(ctx, app.ProjectID)
			if err != nil || project == nil {
				r.logger.Error("sweep: load project", "project_id", app.ProjectID, "err", err)
				report.Errors++
				continue
			}
			projects[app.ProjectID] = project
		}

		appID := app.ID
		existing, err := r.convs.GetConversationByKey(ctx, project.ClientID, app.DeveloperID, project.ID)
		if err != nil {
			r.logger.Error("sweep: find conversation", "application_id", appID, "err", err)
			report.Errors++
			continue
		}

		convID, err := r.ResolveConversation(ctx, project.ClientID, app.DeveloperID, project.ID, &appID, project.Title)
		if err != nil {
			r.logger.Error("sweep: resolve conversation", "application_id", appID, "err", err)
			report.Errors++
			continue
		}
		if existing == nil {
			report.ConversationsCreated++
		}

		body := fmt.Sprintf("New application for %q: %s", project.Title, app.Message)
		emitted, err := r.EmitNotification(ctx, convID, app.DeveloperID, models.EventNewApplication, eventRef(appID), body)
		if err != nil {
			r.logger.Error("sweep: emit application notification", "application_id", appID, "err", err)
			report.Errors++
		} else if emitted {
			report.MessagesEmitted++
		}

		if app.Status == models.ApplicationStatusAccepted || app.Status == models.ApplicationStatusRejected {
			kind, body := decisionEvent(app.Status, project.Title)
			emitted, err := r.EmitNotification(ctx, convID, project.ClientID, kind, eventRef(appID), body)
			if err != nil {
				r.logger.Error("sweep: emit decision notification", "application_id", appID, "err", err)
				report.Errors++
			} else if emitted {
				report.MessagesEmitted++
			}
		}
	}

	return report, nil
}
