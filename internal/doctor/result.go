// Package doctor turns resolver and remediation output into report lines.
package doctor

// Status is the severity of one report line.
type Status string

const (
	// StatusOK means the check passed.
	StatusOK Status = "OK"
	// StatusWarn means the check did not pass but does not block the run.
	StatusWarn Status = "WARN"
	// StatusFail means the check failed.
	StatusFail Status = "FAIL"
)

// Result is one rendered check.
type Result struct {
	Status         Status
	CheckName      string
	Message        string
	Recommendation string
}

// HasFailure reports whether any result failed.
func HasFailure(results []Result) bool {
	for _, r := range results {
		if r.Status == StatusFail {
			return true
		}
	}
	return false
}
