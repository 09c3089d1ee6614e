package logging

// Standardized field names for structured logging.
const (
	FieldFile        = "file_path"
	FieldRunID       = "run_id"
	FieldRow         = "row"
	FieldDate        = "date"
	FieldAccount     = "account"
	FieldDesc1       = "desc1"
	FieldDesc2       = "desc2"
	FieldCategory    = "category"
	FieldSubcategory = "subcategory"
	FieldNote        = "note"
	FieldStrategy    = "strategy"
	FieldSource      = "source"
	FieldAttempt     = "attempt"
	FieldCount       = "count"
	FieldOperation   = "operation"
	FieldDuration    = "duration_ms"
	FieldInputFile   = "input_file"
	FieldOutputFile  = "output_file"
)
