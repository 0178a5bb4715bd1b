package dto

// ValidationIssue is a row-level validation error or warning.
// Row is 1-indexed over the file with the header counted as row 1,
// so the first data row is row 2. Row 0 flags header-level problems.
type ValidationIssue struct {
	Row     int    `json:"row"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationSummary is the client-facing view of a validation pass.
type ValidationSummary struct {
	Valid         bool              `json:"valid"`
	Errors        []ValidationIssue `json:"errors"`
	Warnings      []ValidationIssue `json:"warnings"`
	ValidRowCount int               `json:"validRowCount"`
}

// ValidateResponse is returned by POST /api/import/validate.
type ValidateResponse struct {
	Success    bool                `json:"success"`
	Validation ValidationSummary   `json:"validation"`
	Preview    []map[string]string `json:"preview"`
	TotalRows  int                 `json:"totalRows"`
}

// ImportResultPayload is the outcome of a processed import.
type ImportResultPayload struct {
	Imported int      `json:"imported"`
	Skipped  int      `json:"skipped"`
	Errors   []string `json:"errors"`
}

// ProcessResponse is returned by POST /api/import/process.
type ProcessResponse struct {
	Success bool                `json:"success"`
	Result  ImportResultPayload `json:"result"`
	Message string              `json:"message"`
}
