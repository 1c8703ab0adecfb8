package msisdn

import "fmt"

// ValidationError reports input that cannot be normalized. Expected, when
// set, describes the format the caller should have sent.
type ValidationError struct {
	Field    string
	Value    string
	Country  string
	Expected string
	Reason   string
}

func (e *ValidationError) Error() string {
	if e.Expected != "" {
		return fmt.Sprintf("%s: expected %s", e.Reason, e.Expected)
	}

	return e.Reason
}
