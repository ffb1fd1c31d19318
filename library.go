package flowmix

// LibraryOption configures a [Library] at construction time.
type LibraryOption func(*Library)

// WithLogger attaches structured logging to every combinator lib runs.
func WithLogger(l Logger) LibraryOption {
	return func(lib *Library) { lib.logger = l }
}

// WithTracer attaches OpenTelemetry span recording to every combinator lib
// runs.
func WithTracer(t Tracer) LibraryOption {
	return func(lib *Library) { lib.tracer = t }
}

// WithMeter attaches OpenTelemetry metric recording to every combinator lib
// runs.
func WithMeter(m Meter) LibraryOption {
	return func(lib *Library) { lib.meter = m }
}

// Configure applies opts to lib, returning lib for chaining.
func (lib *Library) Configure(opts ...LibraryOption) *Library {
	for _, opt := range opts {
		opt(lib)
	}
	return lib
}

// Errors exposes flowmix's error constructors as a single value, the
// closest Go analogue of the host runtime's "errors" namespace a pluggable
// deferred-computation library is handed alongside its adapter.
type Errors struct{}

// NewConfigError builds a [*ConfigError].
func (Errors) NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

// NewContractError builds a [*ContractError].
func (Errors) NewContractError(field, reason string) *ContractError {
	return &ContractError{Field: field, Reason: reason}
}

// Errors returns flowmix's error constructors.
func (lib *Library) Errors() Errors {
	return Errors{}
}
