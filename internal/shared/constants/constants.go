package constants

const (
	// Default pagination
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// HTTP Headers
	HeaderAuthorization = "Authorization"
	HeaderXRequestID    = "X-Request-ID"

	// Context keys
	ContextKeyStaffID   = "staff_id"
	ContextKeyStaffName = "staff_name"
	ContextKeyRequestID = "request_id"

	// Database table names
	TableReports      = "reports"
	TableReportMerges = "report_merges"
	TableIssueTypes   = "issue_types"
	TableBarangays    = "barangays"
	TableSitios       = "sitios"

	// Error messages
	ErrMsgInternalServerError = "Internal server error occurred"
)
