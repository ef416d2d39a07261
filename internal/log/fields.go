package log

// Common field names for structured logging
const (
	FieldComponent = "component"
	FieldRunID     = "run_id"
	FieldPeriod    = "period"
	FieldFrom      = "from"
	FieldTo        = "to"
	FieldCount     = "count"
	FieldDraws     = "draws"
	FieldRejected  = "rejected"
	FieldOpening   = "opening"
	FieldClosing   = "closing"
	FieldSink      = "sink"
	FieldRef       = "ref"
	FieldPath      = "path"
	FieldDuration  = "duration_ms"
	FieldError     = "error"
	FieldOperation = "operation"
	FieldYear      = "year"
	FieldMonth     = "month"
	FieldAccount   = "account"
)

// Components defines standard component names
const (
	ComponentApp       = "app"
	ComponentCLI       = "cli"
	ComponentGenerator = "generator"
	ComponentRender    = "render"
	ComponentStorage   = "storage"
	ComponentAMQP      = "amqp"
	ComponentSheets    = "sheets"
	ComponentGCS       = "gcs"
	ComponentMetrics   = "metrics"
	ComponentBackend   = "backend"
)

// Operations defines standard operation names
const (
	OpSample   = "sample"
	OpSequence = "sequence"
	OpRender   = "render"
	OpAppend   = "append"
	OpPublish  = "publish"
	OpUpload   = "upload"
	OpMigrate  = "migrate"
	OpValidate = "validate"
	OpStartup  = "startup"
	OpShutdown = "shutdown"
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

// WithRunID adds the run identifier
func (f LogFields) WithRunID(id string) LogFields {
	f[FieldRunID] = id
	return f
}

// WithPeriod adds the "MM/YYYY" period label
func (f LogFields) WithPeriod(label string) LogFields {
	f[FieldPeriod] = label
	return f
}

// WithBalances adds opening and closing balances as fixed two-decimal strings
func (f LogFields) WithBalances(opening, closing string) LogFields {
	f[FieldOpening] = opening
	f[FieldClosing] = closing
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

// WithSink adds the sink name and the reference it returned
func (f LogFields) WithSink(name, ref string) LogFields {
	f[FieldSink] = name
	if ref != "" {
		f[FieldRef] = ref
	}
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
