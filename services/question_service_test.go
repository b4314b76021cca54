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

func insertQuestion(t *testing.T, db *sql.DB, subjectType string, subjectID, userID int64, text string) int64 {
	t.Helper()
	res, err := db.Exec(`INSERT INTO questions (type, subject_id, user_id, question) VALUES (?, ?, ?, ?)`,
		subjectType, subjectID, userID, text)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return id
}

func TestQuestionAnswerAndClear(t *testing.T) {
	db := dbtest.New(t)
	hub := newRecordingHub()
	svc := NewQuestionService(repository.NewSQLiteQuestionRepo(db.Conn), hub).(*questionService)
	answeredAt := time.Date(2024, 4, 2, 12, 30, 0, 0, time.UTC)
	svc.now = func() time.Time { return answeredAt }
	ctx := context.Background()

	adminID := insertUser(t, db.Conn, "Admin", "admin@example.test", "admin")
	userID := insertUser(t, db.Conn, "Eleni", "eleni@example.test", "consumer")
	producerID := insertProducer(t, db.Conn, "Cretan Farm")
	id := insertQuestion(t, db.Conn, models.SubjectProducer, producerID, userID, "Do you ship to Rhodes?")

	q, err := svc.Update(ctx, id, adminID, &models.UpdateQuestionRequest{
		Answer: models.Some("  Yes, every Tuesday.  "),
	})
	require.NoError(t, err)
	require.NotNil(t, q.Answer)
	assert.Equal(t, "Yes, every Tuesday.", *q.Answer)
	require.NotNil(t, q.AnsweredAt)
	assert.True(t, answeredAt.Equal(*q.AnsweredAt))
	assert.Equal(t, &adminID, q.AnsweredBy)
	assert.Equal(t, "Cretan Farm", q.SubjectName)
	assert.True(t, q.IsVisible)
	assert.Equal(t, []string{ws.OpQuestionAnswered}, hub.ops())

	q, err = svc.Update(ctx, id, adminID, &models.UpdateQuestionRequest{IsVisible: ptr(false)})
	require.NoError(t, err)
	assert.False(t, q.IsVisible)
	assert.NotNil(t, q.Answer, "visibility change keeps the answer")

	q, err = svc.Update(ctx, id, adminID, &models.UpdateQuestionRequest{Answer: models.Some("   ")})
	require.NoError(t, err)
	assert.Nil(t, q.Answer)
	assert.Nil(t, q.AnsweredAt)
	assert.Nil(t, q.AnsweredBy)
	assert.Len(t, hub.ops(), 1)
}

func TestQuestionListsAndDelete(t *testing.T) {
	db := dbtest.New(t)
	svc := NewQuestionService(repository.NewSQLiteQuestionRepo(db.Conn), newRecordingHub())
	ctx := context.Background()

	userID := insertUser(t, db.Conn, "Kostas", "kostas@example.test", "consumer")
	producerID := insertProducer(t, db.Conn, "Naxos Dairy")
	first := insertQuestion(t, db.Conn, models.SubjectProducer, producerID, userID, "Is the graviera aged?")
	second := insertQuestion(t, db.Conn, models.SubjectProducer, producerID, userID, "Organic certification?")
	_, err := db.Conn.Exec(`UPDATE questions SET answer = 'Yes' WHERE id = ?`, first)
	require.NoError(t, err)

	open, total, err := svc.Unanswered(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, open, 1)
	assert.Equal(t, second, open[0].ID)

	page, err := svc.List(ctx, models.QuestionFilter{Status: "answered", Page: pkg.PageParams{Page: 1, PerPage: 15}})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	page, err = svc.List(ctx, models.QuestionFilter{Search: "graviera", Page: pkg.PageParams{Page: 1, PerPage: 15}})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, first, page.Data[0].ID)

	_, err = svc.List(ctx, models.QuestionFilter{Type: "recipe"})
	assert.Contains(t, validationFields(t, err), "type")

	require.NoError(t, svc.Delete(ctx, second))
	_, err = svc.Get(ctx, second)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, second), pkg.ErrNotFound)
}
