package timing

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

// Report is the JSON form of the measurements of one run.
type Report struct {
	RunID        string        `json:"run_id"`
	Measurements []Measurement `json:"measurements"`
}

// ForRun keeps the measurements tagged with runID, in their original order.
func ForRun(measurements []Measurement, runID string) []Measurement {
	filtered := make([]Measurement, 0, len(measurements))
	for _, m := range measurements {
		if m.RunID == runID {
			filtered = append(filtered, m)
		}
	}

	return filtered
}

// WriteJSON writes the measurements of runID as one JSON document followed by a newline.
func WriteJSON(w io.Writer, runID string, measurements []Measurement) error {
	report := Report{
		RunID:        runID,
		Measurements: ForRun(measurements, runID),
	}

	if err := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(w).Encode(report); err != nil {
		return fmt.Errorf("encode timing report: %w", err)
	}

	return nil
}
