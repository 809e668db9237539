// internal/pipeline/engine_test.go
package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "recruiting-pipeline/internal/common/errors"
	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/models"
)

func newTestEngine(apps *fakeAppStore, sink *fakeActivitySink) *Engine {
	return NewEngine(apps, testActivityLogger(sink), logger.NewNoOpLogger())
}

func TestEngine_Advance_Forward(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageInReview, models.SubStageUnderReview))
	sink := &fakeActivitySink{}
	engine := newTestEngine(apps, sink)

	app, err := engine.Advance(context.Background(), "app-001", models.StageShortlisted, "", actor())

	require.NoError(t, err)
	assert.Equal(t, models.StageShortlisted, app.Stage)
	// SHORTLISTED defines no canonical sub-stages, so the field clears
	assert.Equal(t, models.SubStage(""), app.SubStage)

	require.Len(t, apps.updates, 1)
	assert.Equal(t, models.StageShortlisted, apps.updates[0].stage)

	require.Len(t, sink.appended, 1)
	activity := sink.appended[0]
	assert.Equal(t, models.ActivityStageChange, activity.Type)
	assert.Equal(t, "app-001", activity.ApplicationID)
	meta, ok := activity.Metadata.(models.StageChangeMetadata)
	require.True(t, ok)
	assert.Equal(t, models.StageInReview, meta.FromStage)
	assert.Equal(t, models.StageShortlisted, meta.ToStage)
}

func TestEngine_Advance_DefaultsToFirstSubstage(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageShortlisted, ""))
	sink := &fakeActivitySink{}
	engine := newTestEngine(apps, sink)

	app, err := engine.Advance(context.Background(), "app-001", models.StageInterview, "", actor())

	require.NoError(t, err)
	assert.Equal(t, models.StageInterview, app.Stage)
	assert.Equal(t, models.SubStageScheduled, app.SubStage)
}

func TestEngine_Advance_ExplicitSubstage(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageShortlisted, ""))
	sink := &fakeActivitySink{}
	engine := newTestEngine(apps, sink)

	app, err := engine.Advance(context.Background(), "app-001", models.StageInterview, models.SubStageEvaluationPending, actor())

	require.NoError(t, err)
	assert.Equal(t, models.SubStageEvaluationPending, app.SubStage)
}

func TestEngine_Advance_SubStageOnly(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageInterview, models.SubStageScheduled))
	sink := &fakeActivitySink{}
	engine := newTestEngine(apps, sink)

	app, err := engine.Advance(context.Background(), "app-001", models.StageInterview, models.SubStageCompleted, actor())

	require.NoError(t, err)
	assert.Equal(t, models.StageInterview, app.Stage)
	assert.Equal(t, models.SubStageCompleted, app.SubStage)

	require.Len(t, sink.appended, 1)
	assert.Equal(t, models.ActivitySubStageChange, sink.appended[0].Type)
}

func TestEngine_Advance_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		current   models.Stage
		target    models.Stage
		targetSub models.SubStage
	}{
		{"backward move", models.StageInterview, models.StageInReview, ""},
		{"same stage same substage", models.StageInterview, models.StageInterview, ""},
		{"unknown stage", models.StageInReview, models.Stage("BOGUS"), ""},
		{"substage of wrong stage", models.StageInReview, models.StageInterview, models.SubStageApplied},
		{"out of terminal", models.StageHired, models.StageRejected, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps := newFakeAppStore(testApplication("app-001", tt.current, ""))
			sink := &fakeActivitySink{}
			engine := newTestEngine(apps, sink)

			_, err := engine.Advance(context.Background(), "app-001", tt.target, tt.targetSub, actor())

			require.Error(t, err)
			assert.True(t, errs.IsInvalidTransition(err))
			assert.Empty(t, apps.updates, "rejected transition must not touch storage")
			assert.Empty(t, sink.appended, "rejected transition must not log an activity")
		})
	}
}

func TestEngine_Advance_IntoTerminal(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageInReview, models.SubStageApplied))
	sink := &fakeActivitySink{}
	engine := newTestEngine(apps, sink)

	app, err := engine.Advance(context.Background(), "app-001", models.StageRejected, "", actor())

	require.NoError(t, err)
	assert.Equal(t, models.StageRejected, app.Stage)
	assert.Equal(t, models.SubStage(""), app.SubStage)
}

func TestEngine_Advance_ApplicationNotFound(t *testing.T) {
	engine := newTestEngine(newFakeAppStore(), &fakeActivitySink{})

	_, err := engine.Advance(context.Background(), "missing", models.StageShortlisted, "", actor())

	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestEngine_Advance_StoreFailure(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageInReview, ""))
	apps.updateErr = errors.New("connection reset")
	engine := newTestEngine(apps, &fakeActivitySink{})

	_, err := engine.Advance(context.Background(), "app-001", models.StageShortlisted, "", actor())

	require.Error(t, err)
	assert.True(t, errs.IsRetryable(err))
}

func TestEngine_Advance_ActivityFailureDoesNotRollBack(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageInReview, ""))
	sink := &fakeActivitySink{appendErr: errors.New("log store down")}
	engine := newTestEngine(apps, sink)

	app, err := engine.Advance(context.Background(), "app-001", models.StageShortlisted, "", actor())

	// the stage change survives even though its activity was lost
	require.NoError(t, err)
	assert.Equal(t, models.StageShortlisted, app.Stage)
	require.Len(t, apps.updates, 1)
}

func TestEngine_Advance_NotifiesOnStageMove(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageCompensation, models.SubStageApproved))
	notifier := newFakeNotifier()
	engine := newTestEngine(apps, &fakeActivitySink{}).WithNotifier(notifier)

	_, err := engine.Advance(context.Background(), "app-001", models.StageOffer, "", actor())
	require.NoError(t, err)

	select {
	case <-notifier.done:
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not invoked")
	}

	sent := notifier.notifications()
	require.Len(t, sent, 1)
	assert.Equal(t, models.StageCompensation, sent[0].from)
	assert.Equal(t, models.StageOffer, sent[0].to)
}

func TestEngine_Advance_NoNotifyOnSubStageMove(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageInterview, models.SubStageScheduled))
	notifier := newFakeNotifier()
	engine := newTestEngine(apps, &fakeActivitySink{}).WithNotifier(notifier)

	_, err := engine.Advance(context.Background(), "app-001", models.StageInterview, models.SubStageCompleted, actor())
	require.NoError(t, err)

	select {
	case <-notifier.done:
		t.Fatal("sub-stage move must not notify")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestEngine_AdvanceNext(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageInterview, models.SubStageCompleted))
	engine := newTestEngine(apps, &fakeActivitySink{})

	app, err := engine.AdvanceNext(context.Background(), "app-001", actor())

	require.NoError(t, err)
	assert.Equal(t, models.StageTechnicalTask, app.Stage)
	assert.Equal(t, models.SubStageAssigned, app.SubStage)
}

func TestEngine_AdvanceNext_AtEnd(t *testing.T) {
	tests := []models.Stage{models.StageOffer, models.StageHired, models.StageRejected}

	for _, stage := range tests {
		t.Run(string(stage), func(t *testing.T) {
			apps := newFakeAppStore(testApplication("app-001", stage, ""))
			engine := newTestEngine(apps, &fakeActivitySink{})

			_, err := engine.AdvanceNext(context.Background(), "app-001", actor())

			require.Error(t, err)
			assert.True(t, errs.IsInvalidTransition(err))
		})
	}
}
