package recap

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/internat/core"
	"github.com/trezcool/internat/core/attendance"
)

// PlaceholderObservation stands in for active groups that saved no observation
// (or a blank one); every active group appears in the report exactly once.
const PlaceholderObservation = "nothing to report"

type Aggregator struct {
	attRepo attendance.Repository
}

func NewAggregator(attRepo attendance.Repository) *Aggregator {
	return &Aggregator{attRepo: attRepo}
}

// CollectDayData combines a day's attendance into report input. Only groups
// with at least one attendance record are included; observations saved for
// groups without attendance are ignored. The result is deterministic: groups
// come in canonical grade-then-cohort order and absence lists are sorted.
// An empty DayData is a valid "no data" result, not an error.
func (agg *Aggregator) CollectDayData(ctx context.Context, day time.Time) (DayData, error) {
	day = core.NormalizeDay(day)
	data := DayData{Day: day}

	groups, err := agg.attRepo.ActiveGroups(ctx, day)
	if err != nil {
		return DayData{}, errors.Wrap(err, "collecting active groups")
	}
	if len(groups) == 0 {
		return data, nil
	}

	observations, err := agg.attRepo.ObservationsForDay(ctx, day)
	if err != nil {
		return DayData{}, errors.Wrap(err, "collecting observations")
	}
	obsByGroup := make(map[attendance.Group]string, len(observations))
	for _, obs := range observations {
		key := attendance.Group{GradeLevel: obs.GradeLevel, Cohort: obs.Cohort}
		obsByGroup[key] = core.CleanString(obs.Text)
	}

	absences, err := agg.attRepo.AbsencesForDay(ctx, day)
	if err != nil {
		return DayData{}, errors.Wrap(err, "collecting absences")
	}
	absByGroup := make(map[attendance.Group][]string)
	for _, rec := range absences {
		key := attendance.Group{GradeLevel: rec.GradeLevel, Cohort: rec.Student.Cohort}
		absByGroup[key] = append(absByGroup[key], rec.Student.DisplayName())
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Before(groups[j]) })

	data.Groups = make([]GroupReport, 0, len(groups))
	for _, group := range groups {
		obs := obsByGroup[group]
		if obs == "" {
			obs = PlaceholderObservation
		}
		abs := absByGroup[group]
		sort.Strings(abs)
		data.Groups = append(data.Groups, GroupReport{
			Group:       group,
			Observation: obs,
			Absences:    abs,
		})
	}
	return data, nil
}
