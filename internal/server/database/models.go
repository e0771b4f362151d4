package database

import "time"

// Session is a persisted emulator session.
type Session struct {
	ID           string
	TokenHash    string
	ImageID      *string // nil when the session runs on the server's default VFS
	StartedAt    time.Time
	LastActiveAt time.Time
	EndedAt      *time.Time
	EndReason    *string // "exit", "closed" or "expired"
	CommandCount int
}

// CommandRecord is one executed input line within a session.
type CommandRecord struct {
	ID         int64
	SessionID  string
	Seq        int
	Line       string
	OK         bool
	ErrorKind  *string // error text when the line failed
	ExecutedAt time.Time
}

// Stats holds aggregate server statistics.
type Stats struct {
	TotalSessions  int64
	ActiveSessions int64
	TotalCommands  int64
}
