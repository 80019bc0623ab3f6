package ingredients

// Ingredient is a stored safety record for one cosmetic ingredient.
type Ingredient struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	IsSafe            bool     `json:"is_safe"`
	PercentageIfAny   *string  `json:"percentageifany"`
	Description       *string  `json:"description"`
	CasesWhereHarmful []string `json:"cases_where_harmful"`

	// Input is the normalised caller string that resolved to this record.
	// Only set on classification output.
	Input string `json:"input,omitempty"`
}

// ClassificationResult partitions a query into matched records and raw names.
type ClassificationResult struct {
	Known   []Ingredient `json:"known"`
	Unknown []string     `json:"unknown"`
}

// SafetyReport aggregate over a set of known ingredients
type SafetyReport struct {
	Total       int     `json:"total_chemicals"`
	Safe        int     `json:"safe_chemicals"`
	Unsafe      int     `json:"unsafe_chemicals"`
	Percentage  float64 `json:"safety_percentage"`
	Description string  `json:"description"`
}

// FailedRecord is a record the upload could not persist.
type FailedRecord struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// UploadResult outcome of a best-effort batch upload
type UploadResult struct {
	Inserted []Ingredient
	Skipped  []Ingredient
	Failed   []FailedRecord
}
