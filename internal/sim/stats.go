package sim

import (
	"github.com/kostasthomson/cloud-simulator/internal/power"
	"github.com/kostasthomson/cloud-simulator/pkg/models"
	"github.com/kostasthomson/cloud-simulator/pkg/utils"
)

// Statistics accumulates run outcomes. It implements the broker's Recorder
// so admission and rejection land here directly.
type Statistics struct {
	submitted int
	accepted  int
	rejected  int
	completed int

	rejectionReasons map[string]int
	waitTimes        []float64
	responseTimes    []float64

	powerSamples []float64
	peakPowerW   float64
	energyKWh    float64
}

// NewStatistics returns an empty accumulator
func NewStatistics() *Statistics {
	return &Statistics{
		rejectionReasons: make(map[string]int),
	}
}

// RecordSubmission counts a task handed to the broker
func (s *Statistics) RecordSubmission(task *models.Task) {
	s.submitted++
}

// RecordAdmission implements broker.Recorder
func (s *Statistics) RecordAdmission(task *models.Task, waitTime float64) {
	s.accepted++
	s.waitTimes = append(s.waitTimes, waitTime)
}

// RecordRejection implements broker.Recorder
func (s *Statistics) RecordRejection(task *models.Task, reason string) {
	s.rejected++
	s.rejectionReasons[reason]++
}

// RecordCompletion counts a released task with its arrival-to-completion time
func (s *Statistics) RecordCompletion(task *models.Task, responseTime float64) {
	s.completed++
	s.responseTimes = append(s.responseTimes, responseTime)
}

// RecordPowerSample folds one step's total draw into the energy ledger
func (s *Statistics) RecordPowerSample(watts, intervalSeconds float64) {
	s.powerSamples = append(s.powerSamples, watts)
	if watts > s.peakPowerW {
		s.peakPowerW = watts
	}
	s.energyKWh += power.EnergyKWh(watts, intervalSeconds)
}

// EnergyKWh returns the energy consumed so far
func (s *Statistics) EnergyKWh() float64 {
	return s.energyKWh
}

// Distribution summarizes a sample set
type Distribution struct {
	Count int     `json:"count"`
	Mean  float64 `json:"mean"`
	P50   float64 `json:"p50"`
	P95   float64 `json:"p95"`
	P99   float64 `json:"p99"`
}

func distribution(values []float64) Distribution {
	return Distribution{
		Count: len(values),
		Mean:  utils.Mean(values),
		P50:   utils.P50(values),
		P95:   utils.P95(values),
		P99:   utils.P99(values),
	}
}

// Summary is the final statistics snapshot of a run
type Summary struct {
	TasksSubmitted   int            `json:"tasks_submitted"`
	TasksAccepted    int            `json:"tasks_accepted"`
	TasksRejected    int            `json:"tasks_rejected"`
	TasksCompleted   int            `json:"tasks_completed"`
	AcceptanceRate   float64        `json:"acceptance_rate"`
	RejectionReasons map[string]int `json:"rejection_reasons"`

	WaitTime     Distribution `json:"wait_time_s"`
	ResponseTime Distribution `json:"response_time_s"`

	MeanPowerW float64 `json:"mean_power_w"`
	PeakPowerW float64 `json:"peak_power_w"`
	EnergyKWh  float64 `json:"energy_kwh"`
}

// Summarize freezes the accumulated counters into a Summary
func (s *Statistics) Summarize() Summary {
	rate := 0.0
	if decided := s.accepted + s.rejected; decided > 0 {
		rate = float64(s.accepted) / float64(decided)
	}

	reasons := make(map[string]int, len(s.rejectionReasons))
	for k, v := range s.rejectionReasons {
		reasons[k] = v
	}

	return Summary{
		TasksSubmitted:   s.submitted,
		TasksAccepted:    s.accepted,
		TasksRejected:    s.rejected,
		TasksCompleted:   s.completed,
		AcceptanceRate:   rate,
		RejectionReasons: reasons,
		WaitTime:         distribution(s.waitTimes),
		ResponseTime:     distribution(s.responseTimes),
		MeanPowerW:       utils.Mean(s.powerSamples),
		PeakPowerW:       s.peakPowerW,
		EnergyKWh:        s.energyKWh,
	}
}
