package master

import (
	"bytes"
	"fmt"
	"strconv"
)

// parseInfoString splits a `\`-separated key/value config string into a map.
// The separator count must be even, i.e. every key has a value.
func parseInfoString(data []byte) (map[string]string, error) {
	fields := bytes.Split(data, []byte{recordSep})
	if len(fields)%2 == 1 {
		return nil, fmt.Errorf("odd number of fields in config string (%d)", len(fields))
	}
	info := make(map[string]string, len(fields)/2)
	for i := 0; i+1 < len(fields); i += 2 {
		info[string(fields[i])] = string(fields[i+1])
	}
	return info, nil
}

// playerCounts derives player numbers from the paired per-slot state strings:
// B holds bot skills ('-' for humans), P holds teams ('-' empty, '0'
// spectator, '1' aliens, '2' humans).
func playerCounts(bots, teams string) (playing, spectating, numBots int, err error) {
	if len(bots) != len(teams) {
		return 0, 0, 0, fmt.Errorf("bot and player state lengths differ (%d vs %d)", len(bots), len(teams))
	}

	for i := range bots {
		human := bots[i] == '-'
		switch teams[i] {
		case '-':
			if !human {
				return 0, 0, 0, fmt.Errorf("bot in empty slot %d", i)
			}
		case '0':
			if human {
				spectating++
			} else {
				return 0, 0, 0, fmt.Errorf("spectating bot in slot %d", i)
			}
		case '1', '2':
			if human {
				playing++
			} else {
				numBots++
			}
		default:
			return 0, 0, 0, fmt.Errorf("bad team identifier %q in slot %d", teams[i], i)
		}
	}
	return playing, spectating, numBots, nil
}

// recordFromInfo builds a ServerRecord from a parsed status config string.
// Missing player-state fields yield zero counts rather than an error, so a
// server that responds with a sparse config still shows up in the list.
func recordFromInfo(addr string, info map[string]string) ServerRecord {
	rec := ServerRecord{Address: addr}

	if name, ok := info["sv_hostname"]; ok {
		rec.Name = CleanName(name)
	} else {
		rec.Name = addr
	}
	rec.Map = info["mapname"]

	if raw, ok := info["sv_maxclients"]; ok {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			rec.MaxPlayers = n
		}
	}

	if playing, spectating, numBots, err := playerCounts(info["B"], info["P"]); err == nil {
		rec.NumPlaying = playing
		rec.NumSpectating = spectating
		rec.NumBots = numBots
	}

	return rec
}
