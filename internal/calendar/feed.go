// Package calendar собирает iCalendar-фид (RFC 5545) из записанных фокус-сессий.
// Календарные клиенты опрашивают фид по URL и сами убирают дубликаты по UID,
// поэтому UID событий детерминированы и стабильны между генерациями.
package calendar

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"github.com/pomodoro/internal/model"
)

const (
	prodID       = "-//My Pomodoro//EN"
	calendarName = "Pomodoro Focus"
	eventSummary = "🍅 Focus Session"
	uidDomain    = "myserver"
	// Подсказка клиентам, как часто перезапрашивать фид.
	refreshInterval = "PT15M"
)

// Ledger — read-only источник сессий; реализуется repository.SessionRepository.
type Ledger interface {
	ListAllByOwner(ctx context.Context, owner string) ([]model.Session, error)
}

type Synthesizer struct {
	ledger Ledger
}

func NewSynthesizer(ledger Ledger) *Synthesizer {
	return &Synthesizer{ledger: ledger}
}

// Generate строит полный фид по всем сессиям владельца (без лимита в 50,
// в отличие от истории). Одна битая start_time в хранилище валит весь фид —
// частичный календарь хуже явной ошибки, по ней видно, какую строку чинить.
func (s *Synthesizer) Generate(ctx context.Context, owner string) (string, error) {
	sessions, err := s.ledger.ListAllByOwner(ctx, owner)
	if err != nil {
		return "", fmt.Errorf("calendar.Generate: %w", err)
	}

	cal := ics.NewCalendar()
	cal.SetProductId(prodID)
	cal.SetCalscale("GREGORIAN")
	cal.SetXWRCalName(calendarName)
	// REFRESH-INTERVAL уже несёт VALUE=DURATION по умолчанию, параметр не нужен.
	cal.SetRefreshInterval(refreshInterval)

	for _, sess := range sessions {
		start, err := parseStartTime(sess.StartTime)
		if err != nil {
			return "", fmt.Errorf("calendar.Generate: session %d: %w", sess.ID, err)
		}
		end := start.Add(time.Duration(sess.Duration) * time.Minute)

		ev := cal.AddEvent(fmt.Sprintf("pomodoro-%d@%s", sess.ID, uidDomain))
		ev.SetDtStampTime(start)
		ev.SetStartAt(start)
		ev.SetEndAt(end)
		ev.SetSummary(eventSummary)
		ev.SetStatus(ics.ObjectStatusConfirmed)
	}

	// Явный CRLF: платформенный перевод строки по умолчанию даёт голый LF на unix.
	return cal.Serialize(ics.WithNewLineWindows), nil
}

// Раскладки ISO-8601, которые реально присылают клиенты: с зоной и без,
// с долями секунды и без, иногда дата без времени.
var startLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseStartTime разбирает сохранённую start_time и возвращает её «настенные»
// поля как UTC без пересчёта зоны: фид всегда заявляет Z, доли секунды
// отбрасываются. Значение с явным смещением тоже не конвертируется —
// переиспользуются его собственные часы и минуты.
func parseStartTime(v string) (time.Time, error) {
	for _, layout := range startLayouts {
		t, err := time.Parse(layout, v)
		if err != nil {
			continue
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("invalid start_time %q", v)
}
