package ports

type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusError   StatusKind = "error"
	StatusSuccess StatusKind = "success"
)

// Receives user-facing progress messages from a report run.
type StatusSink interface {
	Status(message string, kind StatusKind)
}
