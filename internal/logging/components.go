package logging

// Component constants for structured logging
// These replace hardcoded bracketed prefixes like [LIFECYCLE], [REGISTRY], etc.
const (
	ComponentStartup    = "startup"
	ComponentLifecycle  = "lifecycle"
	ComponentRegistry   = "registry"
	ComponentQueue      = "queue"
	ComponentDispatch   = "dispatch"
	ComponentScanner    = "scanner"
	ComponentHistory    = "history"
	ComponentTicker     = "ticker"
	ComponentWorkerConf = "worker-config"
)
