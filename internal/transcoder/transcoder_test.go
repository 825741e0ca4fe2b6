package transcoder

import (
	"context"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatOriginal, false},
		{"original", FormatOriginal, false},
		{"mp3", FormatMP3, false},
		{"MP3", FormatMP3, false},
		{" wav ", FormatWAV, false},
		{"flac", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatExtension(t *testing.T) {
	if got := FormatMP3.Extension(); got != "mp3" {
		t.Errorf("mp3 extension = %q", got)
	}
	if got := FormatWAV.Extension(); got != "wav" {
		t.Errorf("wav extension = %q", got)
	}
	if got := FormatOriginal.Extension(); got != "" {
		t.Errorf("original extension = %q, want empty", got)
	}
}

func TestCodecArgs(t *testing.T) {
	if args := FormatMP3.codecArgs(); args[1] != "libmp3lame" {
		t.Errorf("mp3 codec args = %v", args)
	}
	if args := FormatWAV.codecArgs(); args[1] != "pcm_s16le" {
		t.Errorf("wav codec args = %v", args)
	}
	if args := FormatOriginal.codecArgs(); args[1] != "copy" {
		t.Errorf("original codec args = %v", args)
	}
}

func TestNilTranscoderIsUnavailable(t *testing.T) {
	var tc *Transcoder
	if err := tc.Convert(context.Background(), nil, "/tmp/out.mp3", FormatMP3); err != ErrUnavailable {
		t.Errorf("nil transcoder Convert err = %v, want ErrUnavailable", err)
	}
	tc.Cleanup()
}
