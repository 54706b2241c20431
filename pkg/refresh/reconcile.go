// Package refresh drives the periodic master-server fetch and decides which
// parts of the tray state changed between consecutive snapshots.
package refresh

import (
	"github.com/Unvanquished/unvanquished-tray-browser/pkg/master"
)

// Delta reports what changed between two snapshots. The two flags are
// independent: a badge change without reordering is possible and vice versa.
type Delta struct {
	BadgeChanged bool
	MenuChanged  bool
}

// Reconcile compares the previous snapshot against the next one. A nil
// previous snapshot (first run) marks everything changed. The badge tracks
// the top-ranked server's playing count, so an empty next snapshot compares
// as badge value 0.
func Reconcile(prev, next *master.Snapshot) Delta {
	if prev == nil {
		return Delta{BadgeChanged: true, MenuChanged: true}
	}
	return Delta{
		BadgeChanged: prev.MaxPlaying() != next.MaxPlaying(),
		MenuChanged:  !sameEntries(prev.Servers, next.Servers),
	}
}

// sameEntries reports whether two ordered record sequences are equal in every
// displayed field. Ping is excluded: it jitters on every fetch and would
// force a menu rebuild each interval.
func sameEntries(a, b []master.ServerRecord) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		x, y := a[i], b[i]
		if x.Address != y.Address ||
			x.Name != y.Name ||
			x.Map != y.Map ||
			x.NumPlaying != y.NumPlaying ||
			x.NumSpectating != y.NumSpectating ||
			x.NumBots != y.NumBots ||
			x.MaxPlayers != y.MaxPlayers {
			return false
		}
	}
	return true
}
