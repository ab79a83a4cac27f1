package domain

import (
	"math"
	"strconv"
	"strings"
)

// RiskLevel grades a running sample from 1 (safe) to 3 (stop now).
type RiskLevel int

const (
	RiskSafe     RiskLevel = 1
	RiskModerate RiskLevel = 2
	RiskHigh     RiskLevel = 3
)

const (
	DecisionSafe     = "Safe: Player can continue playing."
	DecisionModerate = "Moderate risk: Monitor player closely."
	DecisionHigh     = "High risk: Player must stop, medical attention needed."
)

// Vital sign columns read by the risk assessment.
const (
	HeartRateColumn   = "heart_rate"
	RespiratoryColumn = "respiratory"
	BodyTempColumn    = "body_temp"
)

// RiskWindow is the number of most recent samples the run summary averages over.
const RiskWindow = 60

// Vitals are the readings a risk assessment is based on. Missing or
// unparseable readings are zero.
type Vitals struct {
	HeartRate   float64
	Respiratory float64
	BodyTemp    float64
}

// Assessment is the risk verdict for one sample.
type Assessment struct {
	Level    RiskLevel
	Decision string
}

// RiskSummary aggregates the assessments of a run.
type RiskSummary struct {
	Samples int
	Counts  map[RiskLevel]int
	// AverageLevel and MostFrequentDecision cover the last RiskWindow samples.
	AverageLevel         RiskLevel
	MostFrequentDecision string
}

// VitalsFromRecord reads the vital sign columns of rec.
func VitalsFromRecord(rec Record) Vitals {
	return Vitals{
		HeartRate:   parseReading(rec[HeartRateColumn]),
		Respiratory: parseReading(rec[RespiratoryColumn]),
		BodyTemp:    parseReading(rec[BodyTempColumn]),
	}
}

func parseReading(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Assess grades v. Heart rate above 180 or body temperature above 39.5 is high
// risk; heart rate above 160, body temperature above 38.8 or respiratory rate
// above 35 is moderate.
func Assess(v Vitals) Assessment {
	level := RiskSafe
	switch {
	case v.HeartRate > 180:
		level = RiskHigh
	case v.HeartRate > 160:
		level = RiskModerate
	}

	switch {
	case v.BodyTemp > 39.5:
		level = RiskHigh
	case v.BodyTemp > 38.8:
		level = max(level, RiskModerate)
	}

	if v.Respiratory > 35 {
		level = max(level, RiskModerate)
	}
	return Assessment{Level: level, Decision: level.Decision()}
}

// Decision returns the recommendation text for the level.
func (l RiskLevel) Decision() string {
	switch l {
	case RiskHigh:
		return DecisionHigh
	case RiskModerate:
		return DecisionModerate
	default:
		return DecisionSafe
	}
}

// AssessDataset grades every row of ds in order.
func AssessDataset(ds Dataset) []Assessment {
	out := make([]Assessment, 0, ds.Len())
	for i := range ds.Rows {
		out = append(out, Assess(VitalsFromRecord(ds.Record(i))))
	}
	return out
}

// SummarizeRisk counts levels over all assessments and averages the last
// RiskWindow of them. An empty run averages to RiskSafe.
func SummarizeRisk(assessments []Assessment) RiskSummary {
	summary := RiskSummary{
		Samples:              len(assessments),
		Counts:               make(map[RiskLevel]int),
		AverageLevel:         RiskSafe,
		MostFrequentDecision: DecisionSafe,
	}
	for _, a := range assessments {
		summary.Counts[a.Level]++
	}

	recent := assessments
	if len(recent) > RiskWindow {
		recent = recent[len(recent)-RiskWindow:]
	}
	if len(recent) == 0 {
		return summary
	}

	sum := 0
	freq := make(map[string]int)
	order := make([]string, 0, 3)
	for _, a := range recent {
		sum += int(a.Level)
		if freq[a.Decision] == 0 {
			order = append(order, a.Decision)
		}
		freq[a.Decision]++
	}
	// Ties go to the decision seen first in the window.
	maxCount := 0
	for _, decision := range order {
		if freq[decision] > maxCount {
			maxCount = freq[decision]
			summary.MostFrequentDecision = decision
		}
	}
	avg := math.Round(float64(sum) / float64(len(recent)))
	summary.AverageLevel = min(max(RiskLevel(avg), RiskSafe), RiskHigh)
	return summary
}
