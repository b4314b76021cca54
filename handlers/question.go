package handlers

import (
	"net/http"

	"github.com/dixis/dixis/models"
	"github.com/dixis/dixis/pkg"
	"github.com/dixis/dixis/services"
)

type QuestionHandler struct {
	questionService services.QuestionService
}

func NewQuestionHandler(questionService services.QuestionService) *QuestionHandler {
	return &QuestionHandler{questionService: questionService}
}

// List godoc
// GET /api/admin/questions
func (h *QuestionHandler) List(w http.ResponseWriter, r *http.Request) {
	q := newQuery(r, nil)
	f := models.QuestionFilter{
		Type:   q.oneOf("type", models.SubjectTypes...),
		Status: q.oneOf("status", "answered", "unanswered"),
		Search: q.str("search"),
		Page:   q.page(pkg.DefaultPerPage),
	}
	if err := q.err(); err != nil {
		pkg.Error(w, err)
		return
	}

	page, err := h.questionService.List(r.Context(), f)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, page)
}

// Unanswered godoc
// GET /api/admin/questions/unanswered
func (h *QuestionHandler) Unanswered(w http.ResponseWriter, r *http.Request) {
	questions, total, err := h.questionService.Unanswered(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if questions == nil {
		questions = []models.Question{}
	}
	pkg.JSON(w, http.StatusOK, pendingList[models.Question]{Data: questions, Total: total})
}

// Get godoc
// GET /api/admin/questions/{id}
func (h *QuestionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	question, err := h.questionService.Get(r.Context(), id)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, question)
}

// Update godoc
// PUT /api/admin/questions/{id}
func (h *QuestionHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	admin, ok := currentUser(r)
	if !ok {
		pkg.ErrorWithMessage(w, http.StatusUnauthorized, "user not found in context")
		return
	}

	var req models.UpdateQuestionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	question, err := h.questionService.Update(r.Context(), id, admin.ID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, question)
}

// Delete godoc
// DELETE /api/admin/questions/{id}
func (h *QuestionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if err := h.questionService.Delete(r.Context(), id); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "question deleted"})
}
