package ingest

import "strings"

// Form field names and the literal messages reported for them.
const (
	FieldTestResult = "test_result"
	FieldUsername   = "username"
	FieldAPIToken   = "api_token"

	MsgFieldRequired = "This field is required."
)

// FieldError reports one missing or invalid request field.
type FieldError struct {
	Field   string
	Message string
}

// Form is the shape of an upload request before any file is opened.
type Form struct {
	HasFile  bool
	Username string
	APIToken string
}

// ValidateForm lists the fields each entry point requires but did not get.
// The interactive path takes its username from the session, so only the file
// is checked there.
func ValidateForm(entry EntryPoint, f Form) []FieldError {
	var errs []FieldError
	if !f.HasFile {
		errs = append(errs, FieldError{Field: FieldTestResult, Message: MsgFieldRequired})
	}
	switch entry {
	case AnonymousAPI:
		if strings.TrimSpace(f.Username) == "" {
			errs = append(errs, FieldError{Field: FieldUsername, Message: MsgFieldRequired})
		}
	case Autotest:
		if f.APIToken == "" {
			errs = append(errs, FieldError{Field: FieldAPIToken, Message: MsgFieldRequired})
		}
	}
	return errs
}

// Messages groups field errors by field name.
func Messages(errs []FieldError) map[string][]string {
	out := make(map[string][]string, len(errs))
	for _, e := range errs {
		out[e.Field] = append(out[e.Field], e.Message)
	}
	return out
}
