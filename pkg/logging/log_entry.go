package logging

// LogEntry represents a structured log record with fields particularly
// relevant to agent execution and evolution runs.
type LogEntry struct {
	// Standard fields
	Time     int64
	Severity Severity
	Message  string
	File     string
	Line     int
	Function string

	// Domain fields
	AgentID    string // The agent this record concerns, if any
	Generation int    // Evolution generation, -1 when not applicable

	// General structured data
	Fields map[string]interface{}
}
