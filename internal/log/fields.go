package log

// Common field names for structured logging
const (
	FieldComponent    = "component"
	FieldRequestID    = "request_id"
	FieldClientIP     = "client_ip"
	FieldMethod       = "method"
	FieldPath         = "path"
	FieldQuery        = "query"
	FieldStatusCode   = "status_code"
	FieldDuration     = "duration_ms"
	FieldUserAgent    = "user_agent"
	FieldSuccess      = "success"
	FieldError        = "error"
	FieldOperation    = "operation"
	FieldUserID       = "user_id"
	FieldPeriod       = "period"
	FieldStartDate    = "start_date"
	FieldEndDate      = "end_date"
	FieldKind         = "kind"
	FieldKindFilter   = "kind_filter"
	FieldCategoryID   = "category_id"
	FieldTransactions = "transactions"
	FieldPages        = "pages"
	FieldSections     = "sections"
	FieldFileName     = "file_name"
	FieldJobID        = "job_id"
	FieldBytes        = "bytes"
	FieldBackend      = "backend"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentHTTP      = "http"
	ComponentReport    = "report"
	ComponentDocument  = "document"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentWorker    = "worker"
	ComponentCache     = "cache"
	ComponentRateLimit = "rate_limit"
	ComponentTrace     = "trace"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpList      = "list"
	OpFetch     = "fetch"
	OpFilter    = "filter"
	OpAggregate = "aggregate"
	OpLayout    = "layout"
	OpRender    = "render"
	OpExport    = "export"
	OpPublish   = "publish"
	OpConsume   = "consume"
	OpValidate  = "validate"
	OpShutdown  = "shutdown"
	OpStartup   = "startup"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithComponent(component string) LogFields {
	f[FieldComponent] = component
	return f
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	f[FieldRequestID] = requestID
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds error field
func (f LogFields) WithError(err error) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithCriteria adds the report selection. Empty values are omitted.
func (f LogFields) WithCriteria(userID, period, start, end, kind, categoryID string) LogFields {
	f[FieldUserID] = userID
	f[FieldPeriod] = period
	for k, v := range map[string]string{
		FieldStartDate:  start,
		FieldEndDate:    end,
		FieldKind:       kind,
		FieldCategoryID: categoryID,
	} {
		if v != "" {
			f[k] = v
		}
	}
	return f
}

// WithDocument adds the outcome of a document build.
func (f LogFields) WithDocument(fileName string, pages int, sections []string) LogFields {
	f[FieldFileName] = fileName
	f[FieldPages] = pages
	f[FieldSections] = sections
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	f[FieldQuery] = query
	f[FieldUserAgent] = userAgent
	return f
}

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
