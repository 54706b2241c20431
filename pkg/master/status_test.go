package master

import "testing"

func TestParseInfoString(t *testing.T) {
	info, err := parseInfoString([]byte(`sv_hostname\My Server\mapname\plat23`))
	if err != nil {
		t.Fatalf("parseInfoString failed: %v", err)
	}
	if info["sv_hostname"] != "My Server" {
		t.Errorf("sv_hostname = %q, want %q", info["sv_hostname"], "My Server")
	}
	if info["mapname"] != "plat23" {
		t.Errorf("mapname = %q, want %q", info["mapname"], "plat23")
	}
}

func TestParseInfoStringOddFields(t *testing.T) {
	if _, err := parseInfoString([]byte(`sv_hostname\My Server\mapname`)); err == nil {
		t.Error("Expected error for config string with a key but no value")
	}
}

func TestPlayerCounts(t *testing.T) {
	tests := []struct {
		name       string
		bots       string
		teams      string
		playing    int
		spectating int
		numBots    int
		wantErr    bool
	}{
		{"empty server", "----", "----", 0, 0, 0, false},
		{"humans on teams", "----", "1122", 4, 0, 0, false},
		{"spectators", "---", "001", 1, 2, 0, false},
		{"bots on teams", "5-5-", "1122", 2, 0, 2, false},
		{"mixed", "----5-", "12101-", 3, 1, 1, false},
		{"length mismatch", "--", "---", 0, 0, 0, true},
		{"bot in empty slot", "5", "-", 0, 0, 0, true},
		{"spectating bot", "5", "0", 0, 0, 0, true},
		{"bad team id", "-", "9", 0, 0, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			playing, spectating, numBots, err := playerCounts(tt.bots, tt.teams)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Expected an error")
				}
				return
			}
			if err != nil {
				t.Fatalf("playerCounts failed: %v", err)
			}
			if playing != tt.playing || spectating != tt.spectating || numBots != tt.numBots {
				t.Errorf("playerCounts(%q, %q) = (%d, %d, %d), want (%d, %d, %d)",
					tt.bots, tt.teams, playing, spectating, numBots,
					tt.playing, tt.spectating, tt.numBots)
			}
		})
	}
}

func TestRecordFromInfo(t *testing.T) {
	info := map[string]string{
		"sv_hostname":   "^2Cozy^7 Cave",
		"mapname":       "plat23",
		"sv_maxclients": "20",
		"B":             "--5-",
		"P":             "1205",
	}
	// The bad team id "5" drops the player counts but keeps the record.
	rec := recordFromInfo("192.0.2.1:27960", info)
	if rec.Name != "Cozy Cave" {
		t.Errorf("Name = %q, want %q", rec.Name, "Cozy Cave")
	}
	if rec.MaxPlayers != 20 {
		t.Errorf("MaxPlayers = %d, want 20", rec.MaxPlayers)
	}
	if rec.NumPlaying != 0 || rec.NumSpectating != 0 || rec.NumBots != 0 {
		t.Errorf("Counts = (%d, %d, %d), want zeros for an unparseable player state",
			rec.NumPlaying, rec.NumSpectating, rec.NumBots)
	}
}

func TestRecordFromInfoDefaults(t *testing.T) {
	rec := recordFromInfo("192.0.2.1:27960", map[string]string{})
	if rec.Name != "192.0.2.1:27960" {
		t.Errorf("Name = %q, want the address as fallback", rec.Name)
	}
	if rec.Map != "" || rec.MaxPlayers != 0 || rec.NumPlaying != 0 {
		t.Error("Expected zero values for missing fields")
	}
}

func TestRecordFromInfoFullState(t *testing.T) {
	info := map[string]string{
		"sv_hostname": "Main Station",
		"B":           "--5-",
		"P":           "1210",
	}
	rec := recordFromInfo("192.0.2.1:27960", info)
	if rec.NumPlaying != 2 {
		t.Errorf("NumPlaying = %d, want 2", rec.NumPlaying)
	}
	if rec.NumSpectating != 1 {
		t.Errorf("NumSpectating = %d, want 1", rec.NumSpectating)
	}
	if rec.NumBots != 1 {
		t.Errorf("NumBots = %d, want 1", rec.NumBots)
	}
}
