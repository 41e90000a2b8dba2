package build

// StatusKind classifies a build outcome.
type StatusKind string

const (
	KindOK          StatusKind = "ok"
	KindNoFeed      StatusKind = "no_feed"
	KindNoEntries   StatusKind = "no_entries"
	KindFetchFailed StatusKind = "fetch_failed"
)

// Status is the tagged outcome of a build. A failed status always carries
// a human-readable message; callers branch on it rather than on errors.
type Status struct {
	OK      bool
	Kind    StatusKind
	Message string
}

// OKStatus returns the success status.
func OKStatus() Status {
	return Status{OK: true, Kind: KindOK, Message: "ok"}
}

// Fail returns a failure status of the given kind.
func Fail(kind StatusKind, message string) Status {
	return Status{OK: false, Kind: kind, Message: message}
}
