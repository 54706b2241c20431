package master

import (
	"sort"
	"time"
)

// ServerRecord is the status of a single game server at fetch time.
type ServerRecord struct {
	Address       string // host:port
	Name          string // hostname with color codes stripped
	Map           string
	NumPlaying    int // humans on a team, bots excluded
	NumSpectating int
	NumBots       int
	MaxPlayers    int
	Ping          time.Duration
}

// Snapshot is one complete result of a master-server query. It is immutable
// once built; Servers is ordered by NumPlaying descending, Name ascending.
type Snapshot struct {
	Servers []ServerRecord
	Taken   time.Time
}

// NewSnapshot sorts records into display order and stamps the snapshot.
func NewSnapshot(records []ServerRecord) *Snapshot {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].NumPlaying != records[j].NumPlaying {
			return records[i].NumPlaying > records[j].NumPlaying
		}
		return records[i].Name < records[j].Name
	})
	return &Snapshot{Servers: records, Taken: time.Now()}
}

// MaxPlaying returns the playing count of the top-ranked server, 0 when the
// snapshot is empty.
func (s *Snapshot) MaxPlaying() int {
	if s == nil || len(s.Servers) == 0 {
		return 0
	}
	return s.Servers[0].NumPlaying
}
