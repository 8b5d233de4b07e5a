package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pomodoro/internal/model"
)

// Значение по умолчанию для длительности фокус-сессии, минуты.
const defaultDuration = 25

// serverTimeLayout — формат серверной метки времени (ISO-8601 UTC с микросекундами).
const serverTimeLayout = "2006-01-02T15:04:05.000000"

// Ledger — контракт хранилища сессий для HTTP-слоя (реализуется repository.SessionRepository).
type Ledger interface {
	Create(ctx context.Context, s *model.Session) error
	ListRecentByOwner(ctx context.Context, owner string, limit int) ([]model.Session, error)
	DeleteByIDAndOwner(ctx context.Context, id int64, owner string) (bool, error)
}

type SessionHandler struct {
	ledger       Ledger
	historyLimit int
	now          func() time.Time
}

func NewSessionHandler(ledger Ledger, historyLimit int) *SessionHandler {
	return &SessionHandler{ledger: ledger, historyLimit: historyLimit, now: time.Now}
}

type logRequest struct {
	UUID string `json:"uuid"`
	// nil == отсутствует или null; и то и другое даёт значение по умолчанию.
	Duration  *int    `json:"duration"`
	CreatedAt *string `json:"created_at"`
}

type statusResponse struct {
	Status string `json:"status"`
}

// Log записывает одну завершённую сессию. created_at нужен офлайн-клиентам,
// досылающим сессии задним числом — серверу он передаётся как есть, без
// проверки формата и правдоподобия. Без created_at ставится серверное UTC.
// Пустой uuid тоже сохраняется как есть: такая строка просто никогда не
// совпадёт с владельцем в запросах.
func (h *SessionHandler) Log(w http.ResponseWriter, r *http.Request) {
	var req logRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	duration := defaultDuration
	if req.Duration != nil {
		duration = *req.Duration
	}
	startTime := h.now().UTC().Format(serverTimeLayout)
	if req.CreatedAt != nil {
		startTime = *req.CreatedAt
	}

	s := &model.Session{Owner: req.UUID, StartTime: startTime, Duration: duration}
	if err := h.ledger.Create(r.Context(), s); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to log session")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "success"})
}

// History отдаёт последние сессии владельца, новые сверху. Без uuid — пустой
// список, а не ошибка: иначе запрос без идентификатора вернул бы чужие данные.
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	owner := r.URL.Query().Get("uuid")
	if owner == "" {
		writeJSON(w, http.StatusOK, []model.Session{})
		return
	}

	sessions, err := h.ledger.ListRecentByOwner(r.Context(), owner, h.historyLimit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get history")
		return
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

type deleteRequest struct {
	UUID string `json:"uuid"`
}

// Delete удаляет сессию при совпадении id и владельца. Ответ одинаковый и для
// «не было», и для «чужая» — существование чужих id не раскрывается, повторное
// удаление остаётся no-op.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if _, err := h.ledger.DeleteByIDAndOwner(r.Context(), id, req.UUID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "deleted"})
}
