package settlement

import (
	"math"
	"time"
)

// halfLifeFromThreeQuarterLife converts the three-quarter life implied by
// round-trip durations into a half life: ln(0.5)/ln(0.75).
const halfLifeFromThreeQuarterLife = 2.41

// UpdateCurrentPopulation decays the current population toward the target:
// the remaining gap halves every GapHalfLife. A zero half life jumps
// straight to the target.
func UpdateCurrentPopulation(s Settlement, nowMicros uint64) Settlement {
	if nowMicros < s.LastPopulationUpdateMicros {
		return s
	}
	elapsed := nowMicros - s.LastPopulationUpdateMicros
	if s.GapHalfLife == 0 {
		s.CurrentPopulation = s.TargetPopulation
	} else {
		halfLives := float64(elapsed) / float64(s.GapHalfLife.Microseconds())
		gap := s.TargetPopulation - s.CurrentPopulation
		s.CurrentPopulation = s.TargetPopulation - gap*math.Pow(0.5, halfLives)
	}
	s.LastPopulationUpdateMicros = nowMicros
	return s
}

// UpdateTown recomputes a town's target population, nation and gap half
// life from its aggregated traffic summaries.
func UpdateTown(s Settlement, summaries []TrafficSummary, trafficToPopulation, nationFlipTrafficPc float64) Settlement {
	totalShare := 0.0
	for _, summary := range summaries {
		totalShare += summary.TrafficShare
	}
	s.TargetPopulation = totalShare * trafficToPopulation
	s.Nation = townNation(s.Nation, summaries, totalShare, nationFlipTrafficPc)
	s.GapHalfLife = townGapHalfLife(s.GapHalfLife, summaries, totalShare)
	return s
}

func townNation(original string, summaries []TrafficSummary, totalShare, nationFlipTrafficPc float64) string {
	if totalShare == 0 {
		return original
	}
	best := summaries[0]
	for _, summary := range summaries[1:] {
		if summary.TrafficShare > best.TrafficShare {
			best = summary
		}
	}
	if best.TrafficShare/totalShare >= nationFlipTrafficPc {
		return best.Nation
	}
	return original
}

// townGapHalfLife derives the population response time from the round-trip
// durations of the traffic serving the town.
func townGapHalfLife(original time.Duration, summaries []TrafficSummary, totalShare float64) time.Duration {
	if len(summaries) == 0 {
		return original
	}
	var roundTrips time.Duration
	for _, summary := range summaries {
		roundTrips += summary.TotalDuration * 2
	}
	threeQuarterLife := float64(roundTrips) / totalShare
	return time.Duration(threeQuarterLife * halfLifeFromThreeQuarterLife)
}

// UpdateHomeland sets a homeland's target population to its share of the
// visible land.
func UpdateHomeland(s Settlement, visibleLandPositions, homelandCount int) Settlement {
	if homelandCount > 0 {
		s.TargetPopulation = float64(visibleLandPositions) / float64(homelandCount)
	}
	return s
}
