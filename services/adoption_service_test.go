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

type adoptionFixture struct {
	db         *sql.DB
	svc        *adoptionService
	hub        *recordingHub
	userID     int64
	producerID int64
	now        time.Time
}

func newAdoptionFixture(t *testing.T) adoptionFixture {
	t.Helper()
	db := dbtest.New(t)
	hub := newRecordingHub()
	now := time.Date(2024, 5, 15, 10, 0, 0, 0, time.UTC)

	svc := NewAdoptionService(db.Conn, repository.NewSQLiteAdoptionRepo(db.Conn), hub, time.UTC).(*adoptionService)
	svc.now = func() time.Time { return now }

	return adoptionFixture{
		db:         db.Conn,
		svc:        svc,
		hub:        hub,
		userID:     insertUser(t, db.Conn, "Maria", "maria@example.test", "consumer"),
		producerID: insertProducer(t, db.Conn, "Olive Grove"),
		now:        now,
	}
}

func (f adoptionFixture) itemStatus(t *testing.T, id int64) string {
	t.Helper()
	var status string
	require.NoError(t, f.db.QueryRow(`SELECT status FROM adoptable_items WHERE id = ?`, id).Scan(&status))
	return status
}

func TestAdoptionCancelReleasesItem(t *testing.T) {
	f := newAdoptionFixture(t)
	ctx := context.Background()

	item := insertItem(t, f.db, f.producerID, "Tree A", models.ItemStatusAdopted)
	id := insertAdoption(t, f.db, f.userID, item, models.AdoptionStatusActive, f.now.AddDate(0, -1, 0), f.now.AddDate(0, 11, 0), 60)

	cancelled, err := f.svc.Cancel(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.AdoptionStatusCancelled, cancelled.Status)
	assert.Equal(t, models.ItemStatusAvailable, f.itemStatus(t, item))
	assert.Equal(t, []string{ws.OpAdoptionUpdated}, f.hub.ops())

	_, err = f.svc.Cancel(ctx, id)
	assert.ErrorIs(t, err, pkg.ErrUnprocessable)

	_, err = f.svc.Cancel(ctx, 999)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestAdoptionCancelLeavesUnavailableItem(t *testing.T) {
	f := newAdoptionFixture(t)

	item := insertItem(t, f.db, f.producerID, "Hive", models.ItemStatusUnavailable)
	id := insertAdoption(t, f.db, f.userID, item, models.AdoptionStatusActive, f.now, f.now.AddDate(1, 0, 0), 0)

	_, err := f.svc.Cancel(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStatusUnavailable, f.itemStatus(t, item))
}

func TestAdoptionRenew(t *testing.T) {
	f := newAdoptionFixture(t)
	ctx := context.Background()

	item := insertItem(t, f.db, f.producerID, "Tree B", models.ItemStatusAvailable)
	id := insertAdoption(t, f.db, f.userID, item, models.AdoptionStatusExpired, f.now.AddDate(-1, 0, 0), f.now.AddDate(0, 0, -1), 60)

	_, err := f.svc.Renew(ctx, id, &models.RenewAdoptionRequest{DurationMonths: 0})
	assert.Contains(t, validationFields(t, err), "duration_months")

	renewed, err := f.svc.Renew(ctx, id, &models.RenewAdoptionRequest{DurationMonths: 6, PricePaid: 45})
	require.NoError(t, err)
	assert.Equal(t, models.AdoptionStatusActive, renewed.Status)
	assert.True(t, renewed.StartDate.Equal(f.now), "start %v", renewed.StartDate)
	assert.True(t, renewed.EndDate.Equal(f.now.AddDate(0, 6, 0)), "end %v", renewed.EndDate)
	assert.InDelta(t, 45, renewed.PricePaid, 0.001)
	assert.Equal(t, models.ItemStatusAdopted, f.itemStatus(t, item))
}

func TestAdoptionExpireDue(t *testing.T) {
	f := newAdoptionFixture(t)
	ctx := context.Background()

	lapsed := insertItem(t, f.db, f.producerID, "Lapsed", models.ItemStatusAdopted)
	insertAdoption(t, f.db, f.userID, lapsed, models.AdoptionStatusActive, f.now.AddDate(-1, 0, 0), f.now.Add(-time.Hour), 60)

	// Still adopted through a second, current adoption.
	shared := insertItem(t, f.db, f.producerID, "Shared", models.ItemStatusAdopted)
	insertAdoption(t, f.db, f.userID, shared, models.AdoptionStatusActive, f.now.AddDate(-1, 0, 0), f.now.Add(-time.Hour), 60)
	insertAdoption(t, f.db, f.userID, shared, models.AdoptionStatusActive, f.now, f.now.AddDate(1, 0, 0), 60)

	current := insertItem(t, f.db, f.producerID, "Current", models.ItemStatusAdopted)
	insertAdoption(t, f.db, f.userID, current, models.AdoptionStatusActive, f.now, f.now.AddDate(0, 1, 0), 60)

	expired, released, err := f.svc.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, expired)
	assert.EqualValues(t, 1, released)

	assert.Equal(t, models.ItemStatusAvailable, f.itemStatus(t, lapsed))
	assert.Equal(t, models.ItemStatusAdopted, f.itemStatus(t, shared))
	assert.Equal(t, models.ItemStatusAdopted, f.itemStatus(t, current))

	expired, released, err = f.svc.ExpireDue(ctx)
	require.NoError(t, err)
	assert.Zero(t, expired)
	assert.Zero(t, released)
}

func TestAdoptionUpdateRejectsInvertedDates(t *testing.T) {
	f := newAdoptionFixture(t)

	item := insertItem(t, f.db, f.producerID, "Tree C", models.ItemStatusAdopted)
	id := insertAdoption(t, f.db, f.userID, item, models.AdoptionStatusActive, f.now, f.now.AddDate(1, 0, 0), 60)

	_, err := f.svc.Update(context.Background(), id, &models.UpdateAdoptionRequest{EndDate: ptr("2024-01-01")})
	assert.Contains(t, validationFields(t, err), "end_date")
}

func TestAdoptionStatsMonthlySeries(t *testing.T) {
	f := newAdoptionFixture(t)

	item := insertItem(t, f.db, f.producerID, "Tree D", models.ItemStatusAdopted)
	insertAdoption(t, f.db, f.userID, item, models.AdoptionStatusActive, f.now, f.now.AddDate(1, 0, 0), 60)

	stats, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	require.Len(t, stats.MonthlyCounts, adoptionStatsMonths)
	assert.Equal(t, "May 2024", stats.MonthlyCounts[0].Label)
	assert.Equal(t, "Dec 2023", stats.MonthlyCounts[5].Label)
	assert.NotNil(t, stats.TopItems)
	assert.NotNil(t, stats.TopUsers)
}
