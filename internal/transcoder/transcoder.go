// Package transcoder runs ffmpeg to convert audio assets between formats.
// Input bytes are streamed over stdin so archive entries never touch disk
// before conversion.
package transcoder

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"asset-explorer/internal/logging"
	"asset-explorer/internal/metrics"
)

// Format selects the audio output encoding.
type Format string

const (
	// FormatOriginal remuxes without re-encoding.
	FormatOriginal Format = "original"
	// FormatMP3 encodes with libmp3lame at VBR quality 2.
	FormatMP3 Format = "mp3"
	// FormatWAV encodes 16-bit PCM.
	FormatWAV Format = "wav"
)

// ParseFormat validates a request-supplied format string. Empty input
// means original.
func ParseFormat(value string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(value))) {
	case "", FormatOriginal:
		return FormatOriginal, nil
	case FormatMP3:
		return FormatMP3, nil
	case FormatWAV:
		return FormatWAV, nil
	default:
		return "", fmt.Errorf("unknown audio format %q", value)
	}
}

// Extension returns the file extension the format produces, or "" for
// original.
func (f Format) Extension() string {
	switch f {
	case FormatMP3:
		return "mp3"
	case FormatWAV:
		return "wav"
	default:
		return ""
	}
}

func (f Format) codecArgs() []string {
	switch f {
	case FormatMP3:
		return []string{"-c:a", "libmp3lame", "-q:a", "2"}
	case FormatWAV:
		return []string{"-c:a", "pcm_s16le"}
	default:
		return []string{"-c:a", "copy"}
	}
}

// ErrUnavailable is returned when no working ffmpeg binary was found.
var ErrUnavailable = errors.New("ffmpeg is not available")

// Transcoder wraps an ffmpeg binary. Running processes are tracked so
// Cleanup can terminate them on shutdown.
type Transcoder struct {
	ffmpegPath string

	processMu sync.Mutex
	processes map[int]*exec.Cmd
	nextID    int
}

// New resolves the ffmpeg binary and returns a Transcoder. path may name
// an explicit binary; when empty, "ffmpeg" is looked up on PATH. A nil
// Transcoder with ErrUnavailable is returned when nothing works, so the
// service can start with conversion disabled.
func New(path string) (*Transcoder, error) {
	if path == "" {
		path = "ffmpeg"
	}
	resolved, err := exec.LookPath(path)
	if err != nil {
		return nil, ErrUnavailable
	}
	if err := exec.Command(resolved, "-version").Run(); err != nil {
		return nil, ErrUnavailable
	}

	logging.Debug("Using ffmpeg binary at %s", resolved)
	return &Transcoder{
		ffmpegPath: resolved,
		processes:  make(map[int]*exec.Cmd),
	}, nil
}

// Convert transcodes input into outputPath using the requested format.
func (t *Transcoder) Convert(ctx context.Context, input []byte, outputPath string, format Format) error {
	if t == nil {
		return ErrUnavailable
	}

	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", "pipe:0", "-vn"}
	args = append(args, format.codecArgs()...)
	args = append(args, outputPath)

	cmd := exec.CommandContext(ctx, t.ffmpegPath, args...)
	cmd.Stdin = bytes.NewReader(input)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	id := t.track(cmd)
	defer t.untrack(id)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("ffmpeg conversion failed: %s", strings.TrimSpace(stderr.String()))
	}

	metrics.AudioConversions.WithLabelValues(string(format)).Inc()
	return nil
}

func (t *Transcoder) track(cmd *exec.Cmd) int {
	t.processMu.Lock()
	defer t.processMu.Unlock()
	t.nextID++
	t.processes[t.nextID] = cmd
	return t.nextID
}

func (t *Transcoder) untrack(id int) {
	t.processMu.Lock()
	defer t.processMu.Unlock()
	delete(t.processes, id)
}

// Cleanup kills any conversions still running. Called during shutdown.
func (t *Transcoder) Cleanup() {
	if t == nil {
		return
	}
	t.processMu.Lock()
	defer t.processMu.Unlock()

	for id, cmd := range t.processes {
		if cmd.Process != nil {
			logging.Warn("Killing ffmpeg process %d during shutdown", cmd.Process.Pid)
			_ = cmd.Process.Kill()
		}
		delete(t.processes, id)
	}
}
