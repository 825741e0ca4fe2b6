package catalog

import "testing"

func TestNormalizeSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Create Mod v1.2", "create_mod_v1_2"},
		{"nether_star.png", "nether_star_png"},
		{"--weird--", "weird"},
		{"ALLCAPS", "allcaps"},
		{"___", ""},
		{"sound (old)", "sound_old"},
	}

	for _, tt := range tests {
		if got := NormalizeSegment(tt.in); got != tt.want {
			t.Errorf("NormalizeSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBaseKey(t *testing.T) {
	candidate := Candidate{
		SourceKind: SourceMod,
		SourceName: "Sample Mod",
		Namespace:  "sample",
		RelPath:    "textures/item/Nether Star.png",
	}
	want := "mod.sample_mod.sample.textures.item.nether_star_png"
	if got := BaseKey(&candidate); got != want {
		t.Errorf("BaseKey = %q, want %q", got, want)
	}
}

func TestUniqueKeySuffixProgression(t *testing.T) {
	counts := make(KeyCounts)
	base := "mod.sample.sample.textures.item.star.png"

	if got := counts.Unique(base); got != base {
		t.Errorf("first claim = %q, want %q", got, base)
	}
	if got := counts.Unique(base); got != base+".dup1" {
		t.Errorf("second claim = %q, want %q", got, base+".dup1")
	}
	if got := counts.Unique(base); got != base+".dup2" {
		t.Errorf("third claim = %q, want %q", got, base+".dup2")
	}
}

func TestParseDupSuffix(t *testing.T) {
	tests := []struct {
		key       string
		wantBase  string
		wantIndex int
		wantOK    bool
	}{
		{"mod.a.b.c.dup3", "mod.a.b.c", 3, true},
		{"mod.a.b.c", "mod.a.b.c", 0, false},
		{"mod.a.b.c.dup", "mod.a.b.c.dup", 0, false},
		{"mod.a.b.c.dupx", "mod.a.b.c.dupx", 0, false},
		{"mod.a.b.c.dup12", "mod.a.b.c", 12, true},
	}

	for _, tt := range tests {
		base, index, ok := ParseDupSuffix(tt.key)
		if base != tt.wantBase || index != tt.wantIndex || ok != tt.wantOK {
			t.Errorf("ParseDupSuffix(%q) = (%q, %d, %v), want (%q, %d, %v)",
				tt.key, base, index, ok, tt.wantBase, tt.wantIndex, tt.wantOK)
		}
	}
}

func TestRebuildKeyCountsPreservesDupProgression(t *testing.T) {
	base := "mod.sample.sample.sounds.block.grass.step.ogg"
	records := []Record{
		{Key: base},
		{Key: base + ".dup1"},
	}

	counts := RebuildKeyCounts(records)
	if got := counts.Unique(base); got != base+".dup2" {
		t.Errorf("next key after rebuild = %q, want %q", got, base+".dup2")
	}
}

func TestFinalizeAssignsUniqueKeys(t *testing.T) {
	candidates := []Candidate{
		{SourceKind: SourceMod, SourceName: "sample", Namespace: "sample", RelPath: "textures/item/star.png"},
		{SourceKind: SourceMod, SourceName: "sample", Namespace: "sample", RelPath: "textures/item/star.png"},
	}

	records := Finalize(candidates, make(KeyCounts))
	if len(records) != 2 {
		t.Fatalf("Finalize returned %d records, want 2", len(records))
	}
	if records[0].Key == records[1].Key {
		t.Errorf("duplicate candidates received identical keys %q", records[0].Key)
	}
	if records[0].AssetID != records[0].Key {
		t.Errorf("asset id %q differs from key %q", records[0].AssetID, records[0].Key)
	}
	want := "mod.sample.sample.textures.item.star_png.dup1"
	if records[1].Key != want {
		t.Errorf("second key = %q, want %q", records[1].Key, want)
	}
}
