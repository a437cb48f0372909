package constants

const Version = "1.0.0"

// DateFmt is the wire format for all date-only fields (start/end dates,
// billing periods).
const DateFmt = "2006-01-02"

const (
	APIPrefix = "/api/v1"
)

// Identity headers populated by the edge proxy after authentication.
// Authentication itself is handled upstream; these are trusted inputs here.
const (
	HeaderActorID   = "X-Dpc-Actor-Id"
	HeaderActorType = "X-Dpc-Actor-Type"
)
