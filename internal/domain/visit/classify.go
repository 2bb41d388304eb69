package visit

import (
	"sort"
	"time"
)

// Classified buckets a patient's visits relative to a point in time. Every
// visit lands in exactly one of Today, Upcoming or Past; NeedsDiagnosis is an
// overlapping view of the visits whose derived status demands clinical notes.
type Classified struct {
	Today          []WithStatus `json:"today"`
	Upcoming       []WithStatus `json:"upcoming"`
	Past           []WithStatus `json:"past"`
	NeedsDiagnosis []WithStatus `json:"needs_diagnosis"`
}

// Classify partitions visits by date relative to now. Today and Upcoming are
// sorted by ascending date, Past by descending; sorts are stable so equal
// dates keep their input order.
func Classify(visits []*Visit, now time.Time) Classified {
	var out Classified
	today := DateOnly(now)

	for _, v := range visits {
		ws := v.Resolve(now)
		day := DateOnly(v.Date)
		switch {
		case day.Equal(today):
			out.Today = append(out.Today, ws)
		case day.After(today):
			out.Upcoming = append(out.Upcoming, ws)
		default:
			out.Past = append(out.Past, ws)
		}
		if ws.EffectiveStatus == StatusNeedsDiagnosis {
			out.NeedsDiagnosis = append(out.NeedsDiagnosis, ws)
		}
	}

	byDateAsc := func(s []WithStatus) func(i, j int) bool {
		return func(i, j int) bool { return s[i].Date.Before(s[j].Date) }
	}
	sort.SliceStable(out.Today, byDateAsc(out.Today))
	sort.SliceStable(out.Upcoming, byDateAsc(out.Upcoming))
	sort.SliceStable(out.Past, func(i, j int) bool {
		return out.Past[j].Date.Before(out.Past[i].Date)
	})
	sort.SliceStable(out.NeedsDiagnosis, byDateAsc(out.NeedsDiagnosis))

	return out
}
