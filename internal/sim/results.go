package sim

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kostasthomson/cloud-simulator/internal/cloud"
	"github.com/kostasthomson/cloud-simulator/pkg/config"
)

// Result is the exportable outcome of one run. Config echoes the effective
// configuration the run was built from, defaults applied.
type Result struct {
	Config       *config.Config `json:"config"`
	EndTime      float64        `json:"end_time_s"`
	Steps        int            `json:"steps"`
	TasksInQueue int            `json:"tasks_in_queue"`
	TasksRunning int            `json:"tasks_running"`
	Summary      Summary        `json:"summary"`
	FinalState   *cloud.View    `json:"final_state"`
}

// WriteFile writes the result as indented JSON
func (r *Result) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
