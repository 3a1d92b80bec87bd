package schedule

import (
	"time"

	"github.com/Dosada05/tournament-sessions/models"
)

// Params — эффективные параметры расписания одного кампуса после
// применения приоритета: переопределение кампуса > настройки турнира >
// параметры запроса.
type Params struct {
	MatchDurationMinutes int
	BreakDurationMinutes int
	ParallelFields       int
}

// ResolveParams вычисляет эффективные параметры для кампуса. Любое поле
// переопределения может отсутствовать и тогда наследуется ниже по цепочке.
func ResolveParams(override *models.CampusScheduleParams, t *models.Tournament, request Params) Params {
	p := request

	if t != nil {
		if t.DefaultMatchDurationMinutes != nil {
			p.MatchDurationMinutes = *t.DefaultMatchDurationMinutes
		}
		if t.DefaultBreakDurationMinutes != nil {
			p.BreakDurationMinutes = *t.DefaultBreakDurationMinutes
		}
		if t.DefaultParallelFields != nil {
			p.ParallelFields = *t.DefaultParallelFields
		}
	}

	if override != nil {
		if override.MatchDurationMinutes != nil {
			p.MatchDurationMinutes = *override.MatchDurationMinutes
		}
		if override.BreakDurationMinutes != nil {
			p.BreakDurationMinutes = *override.BreakDurationMinutes
		}
		if override.ParallelFields != nil {
			p.ParallelFields = *override.ParallelFields
		}
	}

	if p.ParallelFields < 1 {
		p.ParallelFields = 1
	}
	return p
}

// CampusPlan держит независимые «часы» каждого поля кампуса. Новый матч
// назначается на поле с самым ранним временем, после чего часы этого поля
// сдвигаются на длительность матча плюс перерыв.
type CampusPlan struct {
	CampusID int
	Params

	fieldClocks []time.Time
	lastEnd     time.Time
}

// NewCampusPlan создаёт план кампуса, все поля которого свободны с момента start.
func NewCampusPlan(campusID int, params Params, start time.Time) *CampusPlan {
	clocks := make([]time.Time, params.ParallelFields)
	for i := range clocks {
		clocks[i] = start
	}
	return &CampusPlan{
		CampusID:    campusID,
		Params:      params,
		fieldClocks: clocks,
		lastEnd:     start,
	}
}

func (p *CampusPlan) matchDuration() time.Duration {
	return time.Duration(p.MatchDurationMinutes) * time.Minute
}

func (p *CampusPlan) breakDuration() time.Duration {
	return time.Duration(p.BreakDurationMinutes) * time.Minute
}

// earliestField возвращает номер поля (1-based) с самым ранним свободным слотом.
func (p *CampusPlan) earliestField() int {
	field := 0
	for i := 1; i < len(p.fieldClocks); i++ {
		if p.fieldClocks[i].Before(p.fieldClocks[field]) {
			field = i
		}
	}
	return field
}

func (p *CampusPlan) peek() time.Time {
	return p.fieldClocks[p.earliestField()]
}

func (p *CampusPlan) take() (field int, start, end time.Time) {
	idx := p.earliestField()
	start = p.fieldClocks[idx]
	end = start.Add(p.matchDuration())
	p.fieldClocks[idx] = end.Add(p.breakDuration())
	if end.After(p.lastEnd) {
		p.lastEnd = end
	}
	return idx + 1, start, end
}

// Slot — назначенный интервал на конкретном поле кампуса.
type Slot struct {
	CampusID    int
	FieldNumber int
	StartsAt    time.Time
	EndsAt      time.Time
}

// Schedule объединяет планы всех кампусов турнира. Очередной матч получает
// глобально самый ранний свободный слот среди всех полей всех кампусов.
type Schedule struct {
	plans []*CampusPlan
}

func New(plans ...*CampusPlan) *Schedule {
	return &Schedule{plans: plans}
}

// NextSlot выдаёт самый ранний свободный слот и сдвигает часы его поля.
func (s *Schedule) NextSlot() Slot {
	best := 0
	for i := 1; i < len(s.plans); i++ {
		if s.plans[i].peek().Before(s.plans[best].peek()) {
			best = i
		}
	}
	plan := s.plans[best]
	field, start, end := plan.take()
	return Slot{
		CampusID:    plan.CampusID,
		FieldNumber: field,
		StartsAt:    start,
		EndsAt:      end,
	}
}

// LastEnd возвращает время окончания последнего назначенного матча.
func (s *Schedule) LastEnd() time.Time {
	last := s.plans[0].lastEnd
	for _, p := range s.plans[1:] {
		if p.lastEnd.After(last) {
			last = p.lastEnd
		}
	}
	return last
}

// RoundBreak выравнивает часы всех полей на момент, когда последний матч
// раунда завершился на всех кампусах, плюс удвоенный перерыв кампуса.
// Матч следующего раунда не может начаться раньше этой границы.
func (s *Schedule) RoundBreak() {
	lastEnd := s.LastEnd()
	for _, p := range s.plans {
		nextStart := lastEnd.Add(2 * p.breakDuration())
		for i := range p.fieldClocks {
			if p.fieldClocks[i].Before(nextStart) {
				p.fieldClocks[i] = nextStart
			}
		}
	}
}
