package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pomodoro/internal/calendar"
	"github.com/pomodoro/internal/logger"
)

type CalendarHandler struct {
	synth *calendar.Synthesizer
}

func NewCalendarHandler(synth *calendar.Synthesizer) *CalendarHandler {
	return &CalendarHandler{synth: synth}
}

// Feed отдаёт полный iCalendar-фид владельца (роут /calendar/{owner}.ics).
// Битая запись в хранилище валит генерацию целиком — клиент получает 500,
// а не календарь с молча пропущенными событиями.
func (h *CalendarHandler) Feed(w http.ResponseWriter, r *http.Request) {
	owner := chi.URLParam(r, "owner")

	feed, err := h.synth.Generate(r.Context(), owner)
	if err != nil {
		logger.Errorf("calendar feed for %s: %v", owner, err)
		writeError(w, http.StatusInternalServerError, "failed to generate calendar")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(feed)); err != nil {
		logger.Errorf("calendar feed write: %v", err)
	}
}
