package log

// Common field names for structured logging
const (
	FieldComponent      = "component"
	FieldRequestID      = "request_id"
	FieldMethod         = "method"
	FieldPath           = "path"
	FieldStatusCode     = "status_code"
	FieldDuration       = "duration_ms"
	FieldSuccess        = "success"
	FieldError          = "error"
	FieldOperation      = "operation"
	FieldUserID         = "user_id"
	FieldState          = "state"
	FieldEvent          = "event"
	FieldContributionID = "contribution_id"
	FieldYear           = "year"
	FieldMonth          = "month"
	FieldCategory       = "category"
	FieldMember         = "member"
	FieldAmount         = "amount"
	FieldProofPath      = "proof_path"
	FieldExportPath     = "export_path"
	FieldSheetsRef      = "sheets_ref"
)

// Components defines standard component names
const (
	ComponentApp          = "app"
	ComponentHTTP         = "http"
	ComponentTelegram     = "telegram"
	ComponentConversation = "conversation"
	ComponentContribution = "contribution"
	ComponentStorage      = "storage"
	ComponentProofs       = "proofs"
	ComponentExport       = "export"
	ComponentAMQP         = "amqp"
	ComponentWorker       = "worker"
	ComponentSheets       = "sheets"
	ComponentBackend      = "backend"
	ComponentReport       = "report"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpRead     = "read"
	OpList     = "list"
	OpAppend   = "append"
	OpSync     = "sync"
	OpValidate = "validate"
	OpExport   = "export"
	OpDownload = "download"
	OpShutdown = "shutdown"
	OpStartup  = "startup"
	OpPublish  = "publish"
	OpConsume  = "consume"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

// NewFields creates a new LogFields instance
func NewFields() LogFields {
	return make(LogFields)
}

// WithComponent adds component field
func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

// WithOperation adds operation field
func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithUser adds the submitting user id
func (f LogFields) WithUser(userID int64) LogFields {
	f[FieldUserID] = userID
	return f
}

// WithContribution adds contribution-related fields. member may be empty.
func (f LogFields) WithContribution(id int64, year int, month, category, member, amount string) LogFields {
	f[FieldContributionID] = id
	f[FieldYear] = year
	f[FieldMonth] = month
	f[FieldCategory] = category
	if member != "" {
		f[FieldMember] = member
	}
	f[FieldAmount] = amount
	return f
}

// WithHTTPRequest adds HTTP request fields
func (f LogFields) WithHTTPRequest(method, path string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	return f
}

// WithHTTPResponse adds HTTP response fields
func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64, success bool) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = success
	return f
}

// ToSlice converts LogFields to a slice for slog
func (f LogFields) ToSlice() []any {
	slice := make([]any, 0, len(f)*2)
	for k, v := range f {
		slice = append(slice, k, v)
	}
	return slice
}
