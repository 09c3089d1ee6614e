package models

// Tag values carried in the Income/Expense column.
const (
	TagIncome      Tag = "Income"
	TagExpense     Tag = "Expense"
	TagTransferOut Tag = "Transfer-Out"
)

// Categories
const (
	CategoryOther = "Other"
)

// Defaults
const (
	DefaultCurrency   = "CAD"
	NeedsReviewMarker = "NEEDS REVIEW"
	DateLayoutBank    = "01/02/2006"
	DateLayoutLedger  = "2006/01/02"
)

// Resolution sources
const (
	SourceMapping     = "mapping"
	SourceAI          = "ai"
	SourceManual      = "manual"
	SourcePlaceholder = "placeholder"
)

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionDataFile   = 0644
)
