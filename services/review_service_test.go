package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dixis/dixis/database/dbtest"
	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/repository"
	"github.com/dixis/dixis/ws"
)

func insertReview(t *testing.T, db *sql.DB, subjectType string, subjectID, userID int64, rating int) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO reviews (type, subject_id, user_id, rating, comment) VALUES (?, ?, ?, ?, 'ok')`,
		subjectType, subjectID, userID, rating)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

type reviewFixture struct {
	svc        *reviewService
	hub        *recordingHub
	productRev int64
	producerRv int64
}

func newReviewFixture(t *testing.T) reviewFixture {
	t.Helper()
	db := dbtest.New(t)
	hub := newRecordingHub()
	svc := NewReviewService(repository.NewSQLiteReviewRepo(db.Conn), hub).(*reviewService)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }

	userID := insertUser(t, db.Conn, "Nikos", "nikos@example.test", "consumer")
	producerID := insertProducer(t, db.Conn, "Honey House")
	categoryID := insertCategory(t, db.Conn, "Μέλι", "meli")
	products := NewProductService(
		repository.NewSQLiteProductRepo(db.Conn),
		repository.NewSQLiteCategoryRepo(db.Conn),
		repository.NewSQLiteProducerRepo(db.Conn),
	)
	p, err := products.Create(context.Background(), &models.CreateProductRequest{
		Name: "Thyme honey", Description: "raw", Price: 9, Stock: ptr(3),
		CategoryID: categoryID, ProducerID: producerID,
	})
	require.NoError(t, err)

	return reviewFixture{
		svc:        svc,
		hub:        hub,
		productRev: insertReview(t, db.Conn, models.SubjectProduct, p.ID, userID, 5),
		producerRv: insertReview(t, db.Conn, models.SubjectProducer, producerID, userID, 2),
	}
}

func TestReviewTypeMismatchIsNotFound(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	r, err := f.svc.Get(ctx, models.SubjectProduct, f.productRev)
	require.NoError(t, err)
	assert.Equal(t, "Thyme honey", r.SubjectName)

	_, err = f.svc.Get(ctx, models.SubjectProducer, f.productRev)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	_, err = f.svc.Get(ctx, "", f.productRev)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, "recipe", f.productRev)
	assert.Contains(t, validationFields(t, err), "type")
}

func TestReviewApproveStampsApprovedAt(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	approved, err := f.svc.Approve(ctx, "", f.productRev)
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedAt)
	first := *approved.ApprovedAt

	f.svc.now = func() time.Time { return first.Add(time.Hour) }
	again, err := f.svc.Approve(ctx, "", f.productRev)
	require.NoError(t, err)
	require.NotNil(t, again.ApprovedAt)
	assert.True(t, again.ApprovedAt.Equal(first), "re-approving keeps the original timestamp")

	rejected, err := f.svc.Reject(ctx, models.SubjectProduct, f.productRev, &models.RejectReviewRequest{RejectionReason: "spam"})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusRejected, rejected.Status)
	assert.Nil(t, rejected.ApprovedAt)
	require.NotNil(t, rejected.AdminNotes)
	assert.Equal(t, "spam", *rejected.AdminNotes)

	assert.Equal(t, []string{ws.OpReviewModerated, ws.OpReviewModerated, ws.OpReviewModerated}, f.hub.ops())
}

func TestReviewRejectRequiresReason(t *testing.T) {
	f := newReviewFixture(t)
	_, err := f.svc.Reject(context.Background(), "", f.productRev, &models.RejectReviewRequest{})
	assert.Contains(t, validationFields(t, err), "rejection_reason")
}

func TestReviewUpdateKeepsNotesUnlessSent(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	r, err := f.svc.Update(ctx, "", f.producerRv, &models.UpdateReviewRequest{AdminNotes: models.Some("checked")})
	require.NoError(t, err)
	assert.Equal(t, models.ReviewStatusPending, r.Status)

	r, err = f.svc.Update(ctx, "", f.producerRv, &models.UpdateReviewRequest{Status: ptr(models.ReviewStatusApproved)})
	require.NoError(t, err)
	require.NotNil(t, r.AdminNotes)
	assert.Equal(t, "checked", *r.AdminNotes)
	assert.NotNil(t, r.ApprovedAt)
}

func TestReviewPendingAndDelete(t *testing.T) {
	f := newReviewFixture(t)
	ctx := context.Background()

	pending, total, err := f.svc.Pending(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, pending, 2)

	pending, total, err = f.svc.Pending(ctx, models.SubjectProducer)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, f.producerRv, pending[0].ID)

	assert.ErrorIs(t, f.svc.Delete(ctx, models.SubjectProducer, f.productRev), pkg.ErrNotFound)
	require.NoError(t, f.svc.Delete(ctx, models.SubjectProduct, f.productRev))

	_, total, err = f.svc.Pending(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}
