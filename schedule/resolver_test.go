package schedule

import (
	"testing"
	"time"

	"github.com/Dosada05/tournament-sessions/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestResolveParamsPrecedence(t *testing.T) {
	request := Params{MatchDurationMinutes: 30, BreakDurationMinutes: 5, ParallelFields: 2}

	t.Run("request only", func(t *testing.T) {
		p := ResolveParams(nil, nil, request)
		assert.Equal(t, request, p)
	})

	t.Run("tournament defaults override request", func(t *testing.T) {
		tournament := &models.Tournament{
			DefaultMatchDurationMinutes: intPtr(45),
			DefaultParallelFields:       intPtr(4),
		}
		p := ResolveParams(nil, tournament, request)
		assert.Equal(t, 45, p.MatchDurationMinutes)
		assert.Equal(t, 5, p.BreakDurationMinutes) // не задан в турнире, берётся из запроса
		assert.Equal(t, 4, p.ParallelFields)
	})

	t.Run("campus override wins over everything", func(t *testing.T) {
		tournament := &models.Tournament{
			DefaultMatchDurationMinutes: intPtr(45),
			DefaultBreakDurationMinutes: intPtr(10),
		}
		override := &models.CampusScheduleParams{
			MatchDurationMinutes: intPtr(20),
			ParallelFields:       intPtr(1),
		}
		p := ResolveParams(override, tournament, request)
		assert.Equal(t, 20, p.MatchDurationMinutes)
		assert.Equal(t, 10, p.BreakDurationMinutes)
		assert.Equal(t, 1, p.ParallelFields)
	})

	t.Run("parallel fields clamped to one", func(t *testing.T) {
		p := ResolveParams(nil, nil, Params{MatchDurationMinutes: 30, ParallelFields: 0})
		assert.Equal(t, 1, p.ParallelFields)
	})
}

func TestScheduleSingleFieldSequential(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	plan := NewCampusPlan(1, Params{MatchDurationMinutes: 30, BreakDurationMinutes: 5, ParallelFields: 1}, start)
	s := New(plan)

	first := s.NextSlot()
	assert.Equal(t, start, first.StartsAt)
	assert.Equal(t, start.Add(30*time.Minute), first.EndsAt)
	assert.Equal(t, 1, first.FieldNumber)

	second := s.NextSlot()
	// Следующий матч начинается после матча и перерыва.
	assert.Equal(t, start.Add(35*time.Minute), second.StartsAt)
}

func TestScheduleParallelFieldsNoOverlap(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	plan := NewCampusPlan(1, Params{MatchDurationMinutes: 30, BreakDurationMinutes: 5, ParallelFields: 3}, start)
	s := New(plan)

	type window struct{ from, to time.Time }
	byField := make(map[int][]window)
	for i := 0; i < 12; i++ {
		slot := s.NextSlot()
		require.GreaterOrEqual(t, slot.FieldNumber, 1)
		require.LessOrEqual(t, slot.FieldNumber, 3)
		byField[slot.FieldNumber] = append(byField[slot.FieldNumber], window{slot.StartsAt, slot.EndsAt})
	}

	// Первые три матча стартуют одновременно на трёх полях.
	assert.Len(t, byField, 3)

	for field, windows := range byField {
		for i := 1; i < len(windows); i++ {
			assert.False(t, windows[i].from.Before(windows[i-1].to),
				"field %d: slot %d overlaps previous", field, i)
		}
	}
}

func TestScheduleMultiCampusPicksEarliest(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	fast := NewCampusPlan(1, Params{MatchDurationMinutes: 10, BreakDurationMinutes: 0, ParallelFields: 1}, start)
	slow := NewCampusPlan(2, Params{MatchDurationMinutes: 60, BreakDurationMinutes: 0, ParallelFields: 1}, start)
	s := New(fast, slow)

	// Оба кампуса свободны: берётся первый, затем второй.
	first := s.NextSlot()
	second := s.NextSlot()
	assert.Equal(t, 1, first.CampusID)
	assert.Equal(t, 2, second.CampusID)

	// Быстрый кампус освобождается в 10:10, медленный занят до 11:00.
	third := s.NextSlot()
	assert.Equal(t, 1, third.CampusID)
	assert.Equal(t, start.Add(10*time.Minute), third.StartsAt)
}

func TestScheduleLastEnd(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	plan := NewCampusPlan(1, Params{MatchDurationMinutes: 30, BreakDurationMinutes: 5, ParallelFields: 2}, start)
	s := New(plan)

	s.NextSlot()
	s.NextSlot()
	s.NextSlot()

	// Два матча в 10:00, третий на первом поле в 10:35.
	assert.Equal(t, start.Add(65*time.Minute), s.LastEnd())
}

func TestScheduleRoundBreak(t *testing.T) {
	start := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	plan := NewCampusPlan(1, Params{MatchDurationMinutes: 30, BreakDurationMinutes: 5, ParallelFields: 2}, start)
	s := New(plan)

	s.NextSlot()
	s.NextSlot()
	s.RoundBreak()

	// Раунд закончился в 10:30, пауза между раундами — два перерыва.
	next := s.NextSlot()
	assert.Equal(t, start.Add(40*time.Minute), next.StartsAt)
}
