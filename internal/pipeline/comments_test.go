// internal/pipeline/comments_test.go
package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "recruiting-pipeline/internal/common/errors"
	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/models"
)

func newTestCommentService(apps *fakeAppStore, comments *fakeCommentStore, sink *fakeActivitySink) *CommentService {
	return NewCommentService(apps, comments, testActivityLogger(sink), logger.NewNoOpLogger())
}

func TestCommentService_AddComment(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageInterview, models.SubStageScheduled))
	comments := &fakeCommentStore{}
	sink := &fakeActivitySink{}
	svc := newTestCommentService(apps, comments, sink)

	comment, err := svc.AddComment(context.Background(), "app-001", "strong candidate", "", "", actor())

	require.NoError(t, err)
	assert.NotEmpty(t, comment.ID)
	// stage omitted: the application's current snapshot is stamped
	assert.Equal(t, models.StageInterview, comment.Stage)
	assert.Equal(t, models.SubStageScheduled, comment.SubStage)
	assert.Equal(t, "recruiter-001", comment.AuthorID)

	require.Len(t, sink.appended, 1)
	activity := sink.appended[0]
	assert.Equal(t, models.ActivityCommentAdded, activity.Type)
	assert.Equal(t, comment.Stage, activity.Stage)
	assert.Equal(t, comment.SubStage, activity.SubStage)

	meta, ok := activity.Metadata.(models.CommentMetadata)
	require.True(t, ok)
	assert.Equal(t, comment.ID, meta.CommentID)
}

func TestCommentService_AddComment_ExplicitStage(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageInterview, models.SubStageScheduled))
	comments := &fakeCommentStore{}
	sink := &fakeActivitySink{}
	svc := newTestCommentService(apps, comments, sink)

	comment, err := svc.AddComment(context.Background(), "app-001", "notes from review", models.StageInReview, models.SubStageUnderReview, actor())

	require.NoError(t, err)
	assert.Equal(t, models.StageInReview, comment.Stage)
	assert.Equal(t, models.SubStageUnderReview, comment.SubStage)
}

func TestCommentService_AddComment_EmptyText(t *testing.T) {
	svc := newTestCommentService(newFakeAppStore(), &fakeCommentStore{}, &fakeActivitySink{})

	_, err := svc.AddComment(context.Background(), "app-001", "", "", "", actor())

	require.Error(t, err)
	assert.True(t, errs.IsInvalidState(err))
}

func TestCommentService_AddComment_UnknownStage(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageInterview, ""))
	svc := newTestCommentService(apps, &fakeCommentStore{}, &fakeActivitySink{})

	_, err := svc.AddComment(context.Background(), "app-001", "text", models.Stage("BOGUS"), "", actor())

	require.Error(t, err)
	assert.True(t, errs.IsInvalidState(err))
}

func TestCommentService_AddComment_ApplicationNotFound(t *testing.T) {
	svc := newTestCommentService(newFakeAppStore(), &fakeCommentStore{}, &fakeActivitySink{})

	_, err := svc.AddComment(context.Background(), "missing", "text", "", "", actor())

	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestCommentService_AddComment_StoreFailure(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageInReview, ""))
	comments := &fakeCommentStore{createErr: errors.New("disk full")}
	sink := &fakeActivitySink{}
	svc := newTestCommentService(apps, comments, sink)

	_, err := svc.AddComment(context.Background(), "app-001", "text", "", "", actor())

	require.Error(t, err)
	assert.True(t, errs.IsRetryable(err))
	assert.Empty(t, sink.appended, "no activity without a persisted comment")
}

func TestCommentService_AddComment_ActivityFailureKeepsComment(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageInReview, ""))
	comments := &fakeCommentStore{}
	sink := &fakeActivitySink{appendErr: errors.New("log store down")}
	svc := newTestCommentService(apps, comments, sink)

	comment, err := svc.AddComment(context.Background(), "app-001", "text", "", "", actor())

	require.NoError(t, err)
	assert.NotNil(t, comment)
	assert.Len(t, comments.comments, 1)
}

func TestCommentService_ListComments(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageInReview, ""))
	comments := &fakeCommentStore{}
	svc := newTestCommentService(apps, comments, &fakeActivitySink{})

	_, err := svc.AddComment(context.Background(), "app-001", "first", "", "", actor())
	require.NoError(t, err)
	_, err = svc.AddComment(context.Background(), "app-001", "second", "", "", actor())
	require.NoError(t, err)

	listed, err := svc.ListComments(context.Background(), "app-001")
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "first", listed[0].Text)
	assert.Equal(t, "second", listed[1].Text)
}
