// internal/pipeline/offers_test.go
package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruiting-pipeline/internal/activitylog"
	errs "recruiting-pipeline/internal/common/errors"
	"recruiting-pipeline/internal/common/logger"
	"recruiting-pipeline/internal/models"
)

func newTestOfferService(apps *fakeAppStore, offers *fakeOfferStore, sink *fakeActivitySink) *OfferService {
	return NewOfferService(apps, offers, testActivityLogger(sink), logger.NewNoOpLogger())
}

func seekerActor() activitylog.Actor {
	return activitylog.Actor{ID: "seeker-001", Name: "Jordan Candidate"}
}

func TestOfferService_Upload(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageOffer, models.SubStageSent))
	offers := newFakeOfferStore()
	sink := &fakeActivitySink{}
	svc := newTestOfferService(apps, offers, sink)

	amount := int64(105000)
	offer, err := svc.Upload(context.Background(), "app-001", "s3://offers/app-001.pdf", &amount, actor())

	require.NoError(t, err)
	// uploads go straight to sent; there is no draft step
	assert.Equal(t, models.OfferSent, offer.Status)
	require.NotNil(t, offer.SentAt)

	require.Len(t, sink.appended, 1)
	assert.Equal(t, models.ActivityOfferSent, sink.appended[0].Type)
	meta, ok := sink.appended[0].Metadata.(models.OfferMetadata)
	require.True(t, ok)
	assert.Equal(t, offer.ID, meta.OfferID)
	assert.Equal(t, models.OfferSent, meta.Status)
}

func TestOfferService_Upload_EmptyDocumentRef(t *testing.T) {
	svc := newTestOfferService(newFakeAppStore(), newFakeOfferStore(), &fakeActivitySink{})

	_, err := svc.Upload(context.Background(), "app-001", "", nil, actor())

	require.Error(t, err)
	assert.True(t, errs.IsInvalidState(err))
}

func TestOfferService_UpdateStatus_Signed(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageOffer, models.SubStageSent))
	offers := newFakeOfferStore()
	sink := &fakeActivitySink{}
	svc := newTestOfferService(apps, offers, sink)

	offer, err := svc.Upload(context.Background(), "app-001", "s3://offers/app-001.pdf", nil, actor())
	require.NoError(t, err)

	signed, err := svc.UpdateStatus(context.Background(), offer.ID, models.OfferSigned, seekerActor(), StatusUpdate{
		SignedDocumentRef: "s3://offers/app-001-signed.pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, models.OfferSigned, signed.Status)
	assert.Equal(t, "s3://offers/app-001-signed.pdf", signed.SignedDocumentRef)
	require.NotNil(t, signed.SignedAt)

	assert.Equal(t, models.ActivityOfferSigned, sink.last().Type)
}

func TestOfferService_UpdateStatus_SignedByNonOwner(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageOffer, ""))
	offers := newFakeOfferStore()
	svc := newTestOfferService(apps, offers, &fakeActivitySink{})

	offer, err := svc.Upload(context.Background(), "app-001", "doc", nil, actor())
	require.NoError(t, err)

	// a recruiter cannot sign or decline on the candidate's behalf
	_, err = svc.UpdateStatus(context.Background(), offer.ID, models.OfferSigned, actor(), StatusUpdate{})
	require.Error(t, err)
	assert.True(t, errs.IsAuthorization(err))

	_, err = svc.UpdateStatus(context.Background(), offer.ID, models.OfferDeclined, actor(), StatusUpdate{})
	require.Error(t, err)
	assert.True(t, errs.IsAuthorization(err))
}

func TestOfferService_UpdateStatus_WithdrawnByRecruiter(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageOffer, ""))
	offers := newFakeOfferStore()
	sink := &fakeActivitySink{}
	svc := newTestOfferService(apps, offers, sink)

	offer, err := svc.Upload(context.Background(), "app-001", "doc", nil, actor())
	require.NoError(t, err)

	withdrawn, err := svc.UpdateStatus(context.Background(), offer.ID, models.OfferWithdrawn, actor(), StatusUpdate{
		WithdrawalReason: "position closed",
	})

	require.NoError(t, err)
	assert.Equal(t, models.OfferWithdrawn, withdrawn.Status)
	assert.Equal(t, "position closed", withdrawn.WithdrawalReason)
	require.NotNil(t, withdrawn.WithdrawnAt)

	assert.Equal(t, models.ActivityOfferWithdrawn, sink.last().Type)
	meta, ok := sink.last().Metadata.(models.OfferMetadata)
	require.True(t, ok)
	assert.Equal(t, "position closed", meta.Reason)
}

func TestOfferService_UpdateStatus_Monotonic(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageOffer, ""))
	offers := newFakeOfferStore()
	svc := newTestOfferService(apps, offers, &fakeActivitySink{})

	offer, err := svc.Upload(context.Background(), "app-001", "doc", nil, actor())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), offer.ID, models.OfferDeclined, seekerActor(), StatusUpdate{})
	require.NoError(t, err)

	// a declined offer is final
	_, err = svc.UpdateStatus(context.Background(), offer.ID, models.OfferSigned, seekerActor(), StatusUpdate{})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidState(err))
}

func TestOfferService_UpdateStatus_IllegalTarget(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageOffer, ""))
	offers := newFakeOfferStore()
	svc := newTestOfferService(apps, offers, &fakeActivitySink{})

	offer, err := svc.Upload(context.Background(), "app-001", "doc", nil, actor())
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), offer.ID, models.OfferDraft, actor(), StatusUpdate{})
	require.Error(t, err)
	assert.True(t, errs.IsInvalidState(err))
}

func TestOfferService_UpdateStatus_OfferNotFound(t *testing.T) {
	svc := newTestOfferService(newFakeAppStore(), newFakeOfferStore(), &fakeActivitySink{})

	_, err := svc.UpdateStatus(context.Background(), "missing", models.OfferSigned, seekerActor(), StatusUpdate{})

	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}

func TestOfferService_Reoffer(t *testing.T) {
	apps := newFakeAppStore(testApplication("app-001", models.StageOffer, ""))
	offers := newFakeOfferStore()
	svc := newTestOfferService(apps, offers, &fakeActivitySink{})

	first, err := svc.Upload(context.Background(), "app-001", "doc-v1", nil, actor())
	require.NoError(t, err)
	_, err = svc.UpdateStatus(context.Background(), first.ID, models.OfferWithdrawn, actor(), StatusUpdate{})
	require.NoError(t, err)

	// a second offer for the same application is independent of the first
	second, err := svc.Upload(context.Background(), "app-001", "doc-v2", nil, actor())
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, models.OfferSent, second.Status)

	listed, err := svc.ListOffers(context.Background(), "app-001")
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
