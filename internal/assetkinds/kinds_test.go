package assetkinds

import "testing"

func TestClassification(t *testing.T) {
	tests := []struct {
		ext     string
		isImage bool
		isAudio bool
		isJSON  bool
	}{
		{"png", true, false, false},
		{"PNG", true, false, false},
		{"tga", true, false, false},
		{"ogg", false, true, false},
		{"wav", false, true, false},
		{"mcmeta", false, false, true},
		{"json", false, false, true},
		{"txt", false, false, false},
		{"", false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.ext, func(t *testing.T) {
			if got := IsImage(tt.ext); got != tt.isImage {
				t.Errorf("IsImage(%q) = %v, want %v", tt.ext, got, tt.isImage)
			}
			if got := IsAudio(tt.ext); got != tt.isAudio {
				t.Errorf("IsAudio(%q) = %v, want %v", tt.ext, got, tt.isAudio)
			}
			if got := IsJSON(tt.ext); got != tt.isJSON {
				t.Errorf("IsJSON(%q) = %v, want %v", tt.ext, got, tt.isJSON)
			}
		})
	}
}

func TestMimeType(t *testing.T) {
	tests := []struct {
		ext  string
		want string
	}{
		{"png", "image/png"},
		{"jpg", "image/jpeg"},
		{"ogg", "audio/ogg"},
		{"oga", "audio/ogg"},
		{"mcmeta", "application/json"},
		{"bin", "application/octet-stream"},
	}

	for _, tt := range tests {
		if got := MimeType(tt.ext); got != tt.want {
			t.Errorf("MimeType(%q) = %q, want %q", tt.ext, got, tt.want)
		}
	}
}

func TestExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"textures/item/nether_star.png", "png"},
		{"sounds/block/grass/step1.OGG", "ogg"},
		{"pack", ""},
		{"dir.with.dots/file", ""},
		{"sounds/trailing.", ""},
	}

	for _, tt := range tests {
		if got := Extension(tt.path); got != tt.want {
			t.Errorf("Extension(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
