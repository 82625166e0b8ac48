package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/bems/core/metrics"
)

// WriteJSON writes the step records to w in JSON format.
func WriteJSON(w io.Writer, records []metrics.StepRecord) error {
	enc := json.NewEncoder(w)
	return enc.Encode(records)
}

// WriteCSV writes the step records to w in CSV format.
func WriteCSV(w io.Writer, records []metrics.StepRecord) error {
	cw := csv.NewWriter(w)
	header := []string{"run_id", "building", "time_step", "hour", "device", "action", "indoor_temp", "setpoint_error", "time"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			r.RunID,
			r.Building,
			strconv.Itoa(r.TimeStep),
			strconv.Itoa(r.Hour),
			r.Device,
			strconv.FormatFloat(r.Action, 'f', -1, 64),
			strconv.FormatFloat(r.IndoorTemp, 'f', -1, 64),
			strconv.FormatFloat(r.SetpointError, 'f', -1, 64),
			r.Time.Format(time.RFC3339),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
