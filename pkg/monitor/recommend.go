package monitor

import (
	"github.com/charlie0129/powersaver/pkg/powerinfo"
	"github.com/charlie0129/powersaver/pkg/tips"
)

const (
	// DefaultRecommendationCount is how many tips the home screen shows.
	DefaultRecommendationCount = 5

	criticalLevelPercentage = 20
)

// RecommendedTips returns at most maxCount tips for the current status.
//
// At or below 20% only high impact tips are returned, in catalog order. In
// Low Power Mode high and medium impact tips are returned, in catalog order.
// Otherwise the whole catalog is shuffled.
func (m *Monitor) RecommendedTips(maxCount int) []tips.Tip {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Recommend(m.status, maxCount, m.rand)
}

// Recommend applies the recommendation rules to a status.
func Recommend(s powerinfo.Status, maxCount int, r tips.Rand) []tips.Tip {
	switch {
	case s.LevelPercentage() <= criticalLevelPercentage:
		return tips.Take(tips.ByImpact(tips.High), maxCount)
	case s.IsLowPowerMode:
		return tips.Take(tips.ByImpact(tips.High, tips.Medium), maxCount)
	default:
		shuffled := tips.Shuffled(r)
		if maxCount <= 0 {
			return []tips.Tip{}
		}
		if len(shuffled) > maxCount {
			shuffled = shuffled[:maxCount]
		}
		return shuffled
	}
}
