// internal/pipeline/engine.go
package pipeline

import (
	"context"
	"fmt"

	"recruiting-pipeline/internal/activitylog"
	"recruiting-pipeline/internal/catalog"
	errs "recruiting-pipeline/internal/common/errors"
	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/common/metrics"
	"recruiting-pipeline/internal/models"
)

// Engine validates and executes stage and sub-stage changes. It is the only
// component allowed to mutate an application's stage fields.
type Engine struct {
	apps       ApplicationStore
	activities *activitylog.Logger
	notifier   Notifier
	log        logger.Logger
}

func NewEngine(apps ApplicationStore, activities *activitylog.Logger, log logger.Logger) *Engine {
	return &Engine{
		apps:       apps,
		activities: activities,
		log:        log.WithFields(map[string]interface{}{"component": "transition_engine"}),
	}
}

// WithNotifier attaches a best-effort candidate notifier.
func (e *Engine) WithNotifier(n Notifier) *Engine {
	e.notifier = n
	return e
}

// Advance moves an application to targetStage/targetSubStage. The target
// must be strictly forward in pipeline order or a terminal stage; a target
// equal to the current stage is allowed only for a sub-stage move. An empty
// targetSubStage leaves the sub-stage at the target stage's first canonical
// value.
func (e *Engine) Advance(ctx context.Context, applicationID string, targetStage models.Stage, targetSubStage models.SubStage, actor activitylog.Actor) (*models.Application, error) {
	app, err := e.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, errs.NewDatabaseError("find application", err)
	}
	if app == nil {
		return nil, errs.NewNotFoundError("application", applicationID)
	}

	if !catalog.IsKnown(targetStage) {
		return nil, errs.NewInvalidTransitionError(fmt.Sprintf("unknown stage %q", targetStage))
	}
	if targetSubStage != "" && !catalog.BelongsTo(targetStage, targetSubStage) {
		return nil, errs.NewInvalidTransitionError(
			fmt.Sprintf("sub-stage %q does not belong to stage %q", targetSubStage, targetStage))
	}

	subStageOnly := targetStage == app.Stage
	if subStageOnly {
		if targetSubStage == "" || targetSubStage == app.SubStage {
			return nil, errs.NewInvalidTransitionError(
				fmt.Sprintf("application already in stage %q", targetStage))
		}
	} else if !catalog.IsForwardTransition(app.Stage, targetStage) {
		return nil, errs.NewInvalidTransitionError(
			fmt.Sprintf("cannot move from %q to %q", app.Stage, targetStage))
	}

	resolvedSub := targetSubStage
	if resolvedSub == "" {
		if first := catalog.SubstagesOf(targetStage); len(first) > 0 {
			resolvedSub = first[0]
		}
	}

	if err := e.apps.UpdateStageFields(ctx, applicationID, targetStage, resolvedSub); err != nil {
		return nil, errs.NewDatabaseError("update stage fields", err)
	}

	meta := models.StageChangeMetadata{
		FromStage:    app.Stage,
		ToStage:      targetStage,
		FromSubStage: app.SubStage,
		ToSubStage:   resolvedSub,
	}

	if subStageOnly {
		_, err = e.activities.LogSubStageChange(ctx, applicationID, meta, actor)
	} else {
		_, err = e.activities.LogStageChange(ctx, applicationID, meta, actor)
	}
	if err != nil {
		// The stage fields are already changed; a lost activity is the
		// documented two-write risk, not a reason to roll back.
		e.log.Error("activity append failed after stage update", map[string]interface{}{
			"error":         err,
			"applicationId": applicationID,
			"toStage":       targetStage,
		})
	}

	fromStage, fromSub := app.Stage, app.SubStage
	app.Stage = targetStage
	app.SubStage = resolvedSub

	if !subStageOnly {
		metrics.StageTransitionsTotal.WithLabelValues(string(fromStage), string(targetStage)).Inc()
		if e.notifier != nil {
			go e.notifier.StageChanged(context.WithoutCancel(ctx), app, fromStage, targetStage)
		}
	}

	e.log.Info("stage transition", map[string]interface{}{
		"applicationId": applicationID,
		"fromStage":     fromStage,
		"fromSubStage":  fromSub,
		"toStage":       targetStage,
		"toSubStage":    resolvedSub,
	})

	return app, nil
}

// AdvanceNext moves an application to the stage directly after its current
// one in pipeline order.
func (e *Engine) AdvanceNext(ctx context.Context, applicationID string, actor activitylog.Actor) (*models.Application, error) {
	app, err := e.apps.FindByID(ctx, applicationID)
	if err != nil {
		return nil, errs.NewDatabaseError("find application", err)
	}
	if app == nil {
		return nil, errs.NewNotFoundError("application", applicationID)
	}

	next, ok := catalog.NextStage(app.Stage)
	if !ok {
		return nil, errs.NewInvalidTransitionError(
			fmt.Sprintf("no next stage after %q", app.Stage))
	}

	return e.Advance(ctx, applicationID, next, "", actor)
}
