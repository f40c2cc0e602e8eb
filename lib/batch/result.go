package batch

type Outcome string

const (
	OutcomeProcessed Outcome = "processed"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// RowResult is the outcome of one dataset row. Reason is set for skipped and failed rows.
type RowResult struct {
	Row      int      `json:"row"`
	Name     string   `json:"name"`
	Outcome  Outcome  `json:"outcome"`
	Reason   string   `json:"reason,omitempty"`
	Files    []string `json:"files,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

type Summary struct {
	Total     int         `json:"total"`
	Processed int         `json:"processed"`
	Skipped   int         `json:"skipped"`
	Failed    int         `json:"failed"`
	Rows      []RowResult `json:"rows"`
}

func (s *Summary) Add(res RowResult) {
	s.Rows = append(s.Rows, res)
	switch res.Outcome {
	case OutcomeProcessed:
		s.Processed++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Failed++
	}
}
