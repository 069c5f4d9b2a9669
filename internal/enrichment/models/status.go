package models

// Status is the overall result of an enrichment run.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusPartial Status = "PARTIAL"
	StatusFailed  Status = "FAILED"
)

// DeriveStatus folds the mandatory outcome and the optional outcomes into a status.
//
// Failures count across every stage, including soft sub-fetches of the
// mandatory stage. Successes count over optional stages only, so a run where
// only the cadastre answered reports FAILED. Skipped stages count as neither.
func DeriveStatus(mandatory Outcome, optional []Outcome) Status {
	failures := len(mandatory.SourcesFailed)
	successes := 0
	for _, o := range optional {
		failures += len(o.SourcesFailed)
		successes += len(o.SourcesUsed)
	}
	switch {
	case failures == 0:
		return StatusSuccess
	case successes > 0:
		return StatusPartial
	default:
		return StatusFailed
	}
}
