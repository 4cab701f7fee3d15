package rules

import "bistroboard/internal/domain"

// Derived queries with no transition semantics.

func PositiveReview(r domain.Review) bool { return r.Rating >= 4 }

func NegativeReview(r domain.Review) bool { return r.Rating <= 2 }

func CanReplyToReview(r domain.Review) bool { return r.ReplyText == nil }

// PercentChange computes (current-previous)/previous*100. A zero previous
// yields 0 rather than a division blowup; callers treat this as "no rate".
func PercentChange(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	return float64(current-previous) / float64(previous) * 100
}

// CompareSnapshots derives per-step deltas between the newest snapshot and the
// one before it. Previous may be nil for restaurants with a single week of
// history; every step then reports a zero baseline.
func CompareSnapshots(latest domain.Snapshot, previous *domain.Snapshot) []domain.StepDelta {
	prev := domain.Snapshot{}
	if previous != nil {
		prev = *previous
	}
	steps := []struct {
		name     string
		cur, prv int64
	}{
		{"impressions", latest.Impressions, prev.Impressions},
		{"menu_views", latest.MenuViews, prev.MenuViews},
		{"orders", latest.Orders, prev.Orders},
		{"revenue_cents", latest.RevenueCents, prev.RevenueCents},
	}
	out := make([]domain.StepDelta, 0, len(steps))
	for _, s := range steps {
		out = append(out, domain.StepDelta{
			Step:       s.name,
			Current:    s.cur,
			Previous:   s.prv,
			Absolute:   s.cur - s.prv,
			Percentage: PercentChange(s.cur, s.prv),
		})
	}
	return out
}

// BreachesDropThreshold reports whether a funnel step fell by more than
// dropPercent week over week.
func BreachesDropThreshold(d domain.StepDelta, dropPercent float64) bool {
	if dropPercent <= 0 {
		return false
	}
	return d.Percentage < -dropPercent
}
