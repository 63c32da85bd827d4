package research

import (
	"fmt"
	"time"
)

// PermanentLogEntry is one timestamped, project-wide log line.
type PermanentLogEntry struct {
	Timestamp time.Time
	Text      string
}

// PermanentLog is the append-only project-wide log, distinct from
// per-node history, surfaced as the PermanentLogs dynamic section.
// Supplemented from the original's separate permanent-log concept.
type PermanentLog struct {
	Entries []PermanentLogEntry
}

// NewPermanentLog returns an empty permanent log.
func NewPermanentLog() *PermanentLog {
	return &PermanentLog{}
}

// Append records a new entry.
func (p *PermanentLog) Append(text string, at time.Time) {
	p.Entries = append(p.Entries, PermanentLogEntry{Timestamp: at, Text: text})
}

// Strings renders each entry as "[RFC3339 timestamp] text", the form
// consumed by the PermanentLogs dynamic section factory.
func (p *PermanentLog) Strings() []string {
	out := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = fmt.Sprintf("[%s] %s", e.Timestamp.Format(time.RFC3339), e.Text)
	}
	return out
}
