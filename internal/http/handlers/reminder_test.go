package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	reminderrepo "github.com/ssingh-rookie/LeafWise-API/internal/data/repos/reminder"
	"github.com/ssingh-rookie/LeafWise-API/internal/data/repos/testutil"
	reminderdomain "github.com/ssingh-rookie/LeafWise-API/internal/domain/reminder"
	reminderservice "github.com/ssingh-rookie/LeafWise-API/internal/reminder"
)

func newTestReminderHandler(t *testing.T) *ReminderHandler {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	svc := reminderservice.New(reminderrepo.New(db, log), log)
	return NewReminderHandler(svc)
}

func newReminderRouter(h *ReminderHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/reminders", h.Create)
	r.POST("/reminders/:id/complete", h.Complete)
	r.POST("/reminders/:id/skip", h.Skip)
	r.GET("/reminders/due", h.Due)
	return r
}

func TestReminderHandlerCreateRejectsInvalidRecurrence(t *testing.T) {
	h := newTestReminderHandler(t)
	r := newReminderRouter(h)

	req := newRequestWithIdentity(http.MethodPost, "/reminders", createReminderRequest{
		PlantID:   uuid.New().String(),
		DueDate:   "2026-09-01T00:00:00Z",
		Recurring: true,
	}, uuid.New())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReminderHandlerCreateRejectsMalformedDueDate(t *testing.T) {
	h := newTestReminderHandler(t)
	r := newReminderRouter(h)

	req := newRequestWithIdentity(http.MethodPost, "/reminders", createReminderRequest{
		PlantID: uuid.New().String(),
		DueDate: "not-a-date",
	}, uuid.New())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReminderHandlerCreateCompleteAndDueLifecycle(t *testing.T) {
	h := newTestReminderHandler(t)
	r := newReminderRouter(h)
	userID := uuid.New()

	createReq := newRequestWithIdentity(http.MethodPost, "/reminders", createReminderRequest{
		PlantID:   uuid.New().String(),
		DueDate:   "2026-09-01T00:00:00Z",
		Recurring: true,
		Frequency: reminderdomain.FrequencyDays,
		Interval:  3,
	}, userID)
	createRec := httptest.NewRecorder()
	r.ServeHTTP(createRec, createReq)
	if createRec.Code != http.StatusOK {
		t.Fatalf("expected 200 on create, got %d: %s", createRec.Code, createRec.Body.String())
	}

	var created struct {
		Data struct {
			Reminder struct {
				ID string `json:"id"`
			} `json:"reminder"`
		} `json:"data"`
	}
	if err := json.Unmarshal(createRec.Body.Bytes(), &created); err != nil {
		t.Fatalf("unmarshal create response: %v", err)
	}
	if created.Data.Reminder.ID == "" {
		t.Fatalf("expected a reminder id in the response, got %s", createRec.Body.String())
	}

	dueReq := newRequestWithIdentity(http.MethodGet, "/reminders/due?withinHours=100000", nil, userID)
	dueRec := httptest.NewRecorder()
	r.ServeHTTP(dueRec, dueReq)
	if dueRec.Code != http.StatusOK {
		t.Fatalf("expected 200 on due, got %d: %s", dueRec.Code, dueRec.Body.String())
	}

	completeReq := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/reminders/%s/complete", created.Data.Reminder.ID), nil)
	completeRec := httptest.NewRecorder()
	r.ServeHTTP(completeRec, completeReq)
	if completeRec.Code != http.StatusOK {
		t.Fatalf("expected 200 on complete, got %d: %s", completeRec.Code, completeRec.Body.String())
	}
}

func TestReminderHandlerCompleteRejectsInvalidID(t *testing.T) {
	h := newTestReminderHandler(t)
	r := newReminderRouter(h)

	req := httptest.NewRequest(http.MethodPost, "/reminders/not-a-uuid/complete", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestReminderHandlerDueRequiresRequestIdentity(t *testing.T) {
	h := newTestReminderHandler(t)
	r := newReminderRouter(h)

	req := httptest.NewRequest(http.MethodGet, "/reminders/due", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
