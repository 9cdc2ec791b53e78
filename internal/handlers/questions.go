// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"storefront/internal/catalog"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/session"
	"storefront/internal/store"
)

// QuestionRepository is the question persistence the handlers need.
// *store.QuestionStore implements it.
type QuestionRepository interface {
	CreatePending(ctx context.Context, q *models.Question, limit int) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Question, error)
	List(ctx context.Context, f models.QuestionFilter) ([]models.Question, error)
	Update(ctx context.Context, q *models.Question) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Questions groups the customer question handlers. Customers ask questions
// about a category; admins and editors answer or reject them.
type Questions struct {
	questions  QuestionRepository
	categories *catalog.Manager
}

// NewQuestions creates the question handler group.
func NewQuestions(questions QuestionRepository, categories *catalog.Manager) *Questions {
	return &Questions{questions: questions, categories: categories}
}

type questionInput struct {
	Text       string    `json:"text"`
	CategoryID uuid.UUID `json:"categoryId"`
}

type answerInput struct {
	AnswerURL string `json:"answerUrl"`
}

type rejectInput struct {
	RejectComment string `json:"rejectComment"`
}

// isStaff reports whether the session may moderate questions.
func isStaff(sess *session.Data) bool {
	role := models.Role(sess.Role)
	return role == models.RoleAdmin || role == models.RoleEditor
}

// Create handles POST /api/v1/questions. The question is always stored as
// pending and belongs to the caller.
func (h *Questions) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var in questionInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.Text = strings.TrimSpace(in.Text)
	switch {
	case in.Text == "":
		writeError(w, http.StatusBadRequest, "Question text is required")
		return
	case utf8.RuneCountInString(in.Text) > models.MaxQuestionText:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Question text cannot exceed %d characters", models.MaxQuestionText))
		return
	case in.CategoryID == uuid.Nil:
		writeError(w, http.StatusBadRequest, "Category is required")
		return
	}

	if _, err := h.categories.Get(r.Context(), in.CategoryID); err != nil {
		writeCatalogError(w, "find question category", err)
		return
	}

	q := &models.Question{Text: in.Text, CategoryID: in.CategoryID, UserID: sess.UserID}
	err := h.questions.CreatePending(r.Context(), q, models.MaxPendingQuestions)
	if errors.Is(err, store.ErrPendingLimit) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("This category already has %d pending questions", models.MaxPendingQuestions))
		return
	}
	if err != nil {
		slog.Error("create question failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("question created", "id", q.ID, "category_id", q.CategoryID, "user_id", q.UserID)
	writeData(w, http.StatusCreated, q, "Question submitted")
}

// List handles GET /api/v1/questions. Staff see every question; other
// users only see their own. Optional filters: status, categoryId.
func (h *Questions) List(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	if sess == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	q := r.URL.Query()
	var f models.QuestionFilter
	if v := q.Get("status"); v != "" {
		f.Status = models.QuestionStatus(v)
		if !f.Status.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid status.")
			return
		}
	}
	if v := q.Get("categoryId"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid categoryId.")
			return
		}
		f.CategoryID = &id
	}
	if !isStaff(sess) {
		f.UserID = &sess.UserID
	}

	items, err := h.questions.List(r.Context(), f)
	if err != nil {
		slog.Error("list questions failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if items == nil {
		items = []models.Question{}
	}
	n := len(items)
	writeJSON(w, http.StatusOK, envelope{Success: true, Data: items, Count: &n})
}

// load fetches the {id} question, writing 400/404/500 itself. Non-staff
// callers get a 404 for questions they did not ask.
func (h *Questions) load(w http.ResponseWriter, r *http.Request) (*models.Question, bool) {
	id, ok := urlID(w, r)
	if !ok {
		return nil, false
	}
	q, err := h.questions.FindByID(r.Context(), id)
	if err != nil {
		slog.Error("find question failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return nil, false
	}
	sess := middleware.SessionFromCtx(r.Context())
	if q == nil || sess == nil || (!isStaff(sess) && q.UserID != sess.UserID) {
		writeError(w, http.StatusNotFound, "Question not found")
		return nil, false
	}
	return q, true
}

// Get handles GET /api/v1/questions/{id}.
func (h *Questions) Get(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	writeData(w, http.StatusOK, q, "")
}

// Answer handles PUT /api/v1/questions/{id}/answer. Each call attaches one
// answer link; a question holds at most two and cannot be answered once
// rejected.
func (h *Questions) Answer(w http.ResponseWriter, r *http.Request) {
	var in answerInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.AnswerURL = strings.TrimSpace(in.AnswerURL)
	if in.AnswerURL == "" {
		writeError(w, http.StatusBadRequest, "answerUrl is required")
		return
	}
	if u, err := url.Parse(in.AnswerURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		writeError(w, http.StatusBadRequest, "answerUrl must be an absolute http(s) URL")
		return
	}

	q, ok := h.load(w, r)
	if !ok {
		return
	}
	switch {
	case q.Status == models.QuestionRejected:
		writeError(w, http.StatusConflict, "Question has been rejected")
		return
	case len(q.AnswerURLs) >= models.MaxAnswerURLs:
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("A question can have at most %d answers", models.MaxAnswerURLs))
		return
	}

	q.AnswerURLs = append(q.AnswerURLs, in.AnswerURL)
	q.Status = models.QuestionAnswered
	if err := h.questions.Update(r.Context(), q); err != nil {
		slog.Error("answer question failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("question answered", "id", q.ID, "answers", len(q.AnswerURLs))
	writeData(w, http.StatusOK, q, "Question answered")
}

// Reject handles PUT /api/v1/questions/{id}/reject. Only pending
// questions can be rejected.
func (h *Questions) Reject(w http.ResponseWriter, r *http.Request) {
	var in rejectInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	in.RejectComment = strings.TrimSpace(in.RejectComment)
	if in.RejectComment == "" {
		writeError(w, http.StatusBadRequest, "rejectComment is required")
		return
	}

	q, ok := h.load(w, r)
	if !ok {
		return
	}
	if q.Status != models.QuestionPending {
		writeError(w, http.StatusConflict, "Only pending questions can be rejected")
		return
	}

	q.Status = models.QuestionRejected
	q.RejectComment = in.RejectComment
	if err := h.questions.Update(r.Context(), q); err != nil {
		slog.Error("reject question failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	slog.Info("question rejected", "id", q.ID)
	writeData(w, http.StatusOK, q, "Question rejected")
}

// Delete handles DELETE /api/v1/questions/{id}.
func (h *Questions) Delete(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r)
	if !ok {
		return
	}
	if err := h.questions.Delete(r.Context(), q.ID); err != nil {
		slog.Error("delete question failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	slog.Info("question deleted", "id", q.ID)
	writeData(w, http.StatusOK, nil, "Question deleted")
}
