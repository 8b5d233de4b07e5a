package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pomodoro/internal/model"
)

type deleteCall struct {
	id    int64
	owner string
}

type fakeLedger struct {
	created     []model.Session
	nextID      int64
	listed      []model.Session
	listErr     error
	gotOwner    string
	gotLimit    int
	deleteCalls []deleteCall
}

func (f *fakeLedger) Create(ctx context.Context, s *model.Session) error {
	f.nextID++
	s.ID = f.nextID
	f.created = append(f.created, *s)
	return nil
}

func (f *fakeLedger) ListRecentByOwner(ctx context.Context, owner string, limit int) ([]model.Session, error) {
	f.gotOwner = owner
	f.gotLimit = limit
	return f.listed, f.listErr
}

func (f *fakeLedger) DeleteByIDAndOwner(ctx context.Context, id int64, owner string) (bool, error) {
	f.deleteCalls = append(f.deleteCalls, deleteCall{id: id, owner: owner})
	for _, s := range f.created {
		if s.ID == id && s.Owner == owner {
			return true, nil
		}
	}
	return false, nil
}

func newRouter(h *SessionHandler) http.Handler {
	r := chi.NewRouter()
	r.Post("/api/log", h.Log)
	r.Get("/api/history", h.History)
	r.Delete("/api/history/{id}", h.Delete)
	return r
}

func TestLogStoresClientValuesVerbatim(t *testing.T) {
	ledger := &fakeLedger{}
	h := NewSessionHandler(ledger, 50)
	owner := uuid.NewString()

	body := `{"uuid":"` + owner + `","duration":50,"created_at":"2024-01-01T10:00:00"}`
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/log", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"success"}` {
		t.Errorf("body = %s", got)
	}
	if len(ledger.created) != 1 {
		t.Fatalf("created %d sessions", len(ledger.created))
	}
	s := ledger.created[0]
	if s.Owner != owner || s.StartTime != "2024-01-01T10:00:00" || s.Duration != 50 {
		t.Errorf("stored session = %+v", s)
	}
}

func TestLogDefaults(t *testing.T) {
	// И отсутствующий duration, и явный null дают 25 минут.
	for _, body := range []string{`{"uuid":"u1"}`, `{"uuid":"u1","duration":null,"created_at":null}`} {
		ledger := &fakeLedger{}
		h := NewSessionHandler(ledger, 50)
		now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
		h.now = func() time.Time { return now }

		rec := httptest.NewRecorder()
		newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/log", strings.NewReader(body)))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d for %s", rec.Code, body)
		}
		s := ledger.created[0]
		if s.Duration != 25 {
			t.Errorf("duration = %d, want default 25", s.Duration)
		}
		if s.StartTime != "2024-05-10T12:00:00.000000" {
			t.Errorf("start_time = %q, want server-stamped time", s.StartTime)
		}
	}
}

func TestLogMissingOwnerIsStoredAsIs(t *testing.T) {
	ledger := &fakeLedger{}
	h := NewSessionHandler(ledger, 50)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/log", strings.NewReader(`{"duration":25}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ledger.created[0].Owner != "" {
		t.Errorf("owner = %q, want empty string stored as-is", ledger.created[0].Owner)
	}
}

func TestLogRejectsInvalidJSON(t *testing.T) {
	h := NewSessionHandler(&fakeLedger{}, 50)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/log", strings.NewReader("{not json")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHistoryReturnsNewestFirstWindow(t *testing.T) {
	ledger := &fakeLedger{listed: []model.Session{
		{ID: 2, StartTime: "2024-01-02T10:00:00", Duration: 25},
		{ID: 1, StartTime: "2024-01-01T10:00:00", Duration: 50},
	}}
	h := NewSessionHandler(ledger, 50)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?uuid=u1", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ledger.gotOwner != "u1" || ledger.gotLimit != 50 {
		t.Errorf("ledger queried with owner=%q limit=%d", ledger.gotOwner, ledger.gotLimit)
	}
	var got []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d", len(got))
	}
	if got[0]["start_time"] != "2024-01-02T10:00:00" {
		t.Errorf("first item = %v, want newest first", got[0])
	}
	if _, ok := got[0]["owner"]; ok {
		t.Error("owner must not be serialized in history items")
	}
}

func TestHistoryWithoutOwnerIsEmptyArray(t *testing.T) {
	ledger := &fakeLedger{listErr: errors.New("must not be called")}
	h := NewSessionHandler(ledger, 50)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
	if ledger.gotOwner != "" {
		t.Error("ledger must not be queried without an owner")
	}
}

func TestHistoryEmptyResultIsArrayNotNull(t *testing.T) {
	h := NewSessionHandler(&fakeLedger{}, 50)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/history?uuid=u1", nil))
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestDeleteOwnerScoped(t *testing.T) {
	ledger := &fakeLedger{}
	h := NewSessionHandler(ledger, 50)
	r := newRouter(h)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/log", strings.NewReader(`{"uuid":"u2","created_at":"2024-01-01T10:00:00"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("log status = %d", rec.Code)
	}

	// Чужой владелец: тот же успешный ответ, запись остаётся.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/history/1", strings.NewReader(`{"uuid":"u1"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"status":"deleted"}` {
		t.Errorf("body = %s", got)
	}
	if len(ledger.deleteCalls) != 1 || ledger.deleteCalls[0] != (deleteCall{id: 1, owner: "u1"}) {
		t.Errorf("delete calls = %+v", ledger.deleteCalls)
	}
}

func TestDeleteInvalidID(t *testing.T) {
	h := NewSessionHandler(&fakeLedger{}, 50)
	rec := httptest.NewRecorder()
	newRouter(h).ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/history/abc", strings.NewReader(`{"uuid":"u1"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
