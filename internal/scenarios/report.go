package scenarios

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/regform/regform/internal/version"
	"gopkg.in/yaml.v3"
)

// Report summarises a run.
type Report struct {
	RunID        string    `json:"run_id" yaml:"run_id"`
	Version      string    `json:"version" yaml:"version"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	FormURL      string    `json:"form_url" yaml:"form_url"`
	Total        int       `json:"total" yaml:"total"`
	Passed       int       `json:"passed" yaml:"passed"`
	Failed       int       `json:"failed" yaml:"failed"`
	KnownDefects int       `json:"known_defects" yaml:"known_defects"`
	Errors       int       `json:"errors" yaml:"errors"`
	Skipped      int       `json:"skipped" yaml:"skipped"`
	SuccessRate  float64   `json:"success_rate" yaml:"success_rate"`
	Results      []Result  `json:"results" yaml:"results"`
}

// NewReport tallies results.
func NewReport(formURL string, results []Result) *Report {
	r := &Report{
		RunID:     uuid.New().String(),
		Version:   version.Version,
		Timestamp: time.Now().UTC(),
		FormURL:   formURL,
		Total:     len(results),
		Results:   results,
	}
	for _, res := range results {
		switch res.Status {
		case StatusPass:
			r.Passed++
		case StatusFail:
			r.Failed++
		case StatusKnownDefect:
			r.KnownDefects++
		case StatusError:
			r.Errors++
		case StatusSkipped:
			r.Skipped++
		}
	}
	if r.Total > 0 {
		r.SuccessRate = float64(r.Passed+r.KnownDefects) / float64(r.Total) * 100
	}
	return r
}

// OK is true when nothing failed, errored or was skipped. Known defects do
// not fail a run.
func (r *Report) OK() bool {
	return r.Failed == 0 && r.Errors == 0 && r.Skipped == 0
}

// Print writes a human-readable summary.
func (r *Report) Print(w io.Writer) {
	line := strings.Repeat("=", 60)
	fmt.Fprintln(w, line)
	fmt.Fprintln(w, "             REGISTRATION FORM SCENARIO REPORT")
	fmt.Fprintln(w, line)
	fmt.Fprintf(w, "Run:          %s (regform %s)\n", r.RunID, r.Version)
	fmt.Fprintf(w, "Timestamp:    %s\n", r.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Form:         %s\n", r.FormURL)
	fmt.Fprintf(w, "Total:        %d\n", r.Total)
	fmt.Fprintf(w, "Passed:       %d\n", r.Passed)
	fmt.Fprintf(w, "Known defect: %d\n", r.KnownDefects)
	fmt.Fprintf(w, "Failed:       %d\n", r.Failed)
	fmt.Fprintf(w, "Errors:       %d\n", r.Errors)
	if r.Skipped > 0 {
		fmt.Fprintf(w, "Skipped:      %d\n", r.Skipped)
	}
	fmt.Fprintf(w, "Success Rate: %.1f%%\n", r.SuccessRate)
	fmt.Fprintln(w, strings.Repeat("-", 60))

	group := ""
	for _, res := range r.Results {
		if res.Group != group {
			group = res.Group
			fmt.Fprintf(w, "\n%s\n", group)
		}
		fmt.Fprintf(w, "  %-13s %s", statusLabel(res.Status), res.Name)
		if res.Defect != nil {
			fmt.Fprintf(w, " (bug #%d)", res.Defect.Number)
		}
		fmt.Fprintln(w)
		if res.Error != "" {
			fmt.Fprintf(w, "                %s\n", res.Error)
		}
		if res.Note != "" {
			fmt.Fprintf(w, "                note: %s\n", res.Note)
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, line)
	if r.OK() {
		fmt.Fprintln(w, "All scenarios behaved as expected.")
	} else {
		fmt.Fprintf(w, "%d scenario(s) failed, %d errored.\n", r.Failed, r.Errors)
	}
}

func statusLabel(s Status) string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusFail:
		return "FAIL"
	case StatusKnownDefect:
		return "KNOWN DEFECT"
	case StatusError:
		return "ERROR"
	default:
		return strings.ToUpper(string(s))
	}
}

// Save writes the report as YAML when path ends in .yaml or .yml, JSON
// otherwise.
func (r *Report) Save(path string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(r)
	default:
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create report dir: %w", err)
		}
	}
	return os.WriteFile(path, data, 0o644)
}
