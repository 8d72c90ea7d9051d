// Copyright (c) Microsoft. All rights reserved.

package speech

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
)

// Default capture/playback command lines. Both read or write WAV on the
// standard streams so audio never touches the filesystem.
const (
	DefaultRecordCommand = "arecord -q -f S16_LE -r 16000 -c 1 -d 5 -t wav -"
	DefaultPlayCommand   = "aplay -q -"
)

// Recorder captures a single utterance by running an external command that
// writes WAV data to stdout.
type Recorder struct {
	argv []string
}

// NewRecorder creates a Recorder from a whitespace-separated command line.
// A blank command line uses [DefaultRecordCommand].
func NewRecorder(cmdline string) *Recorder {
	return &Recorder{argv: commandArgv(cmdline, DefaultRecordCommand)}
}

// Record runs the capture command and returns the WAV bytes it produced.
func (r *Recorder) Record(ctx context.Context) ([]byte, error) {
	cmd := exec.CommandContext(ctx, r.argv[0], r.argv[1:]...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("record command failed: %w: %s", err, stderr.String())
	}
	return stdout.Bytes(), nil
}

// Player plays synthesized audio by piping it to an external command.
type Player struct {
	argv []string
}

// NewPlayer creates a Player from a whitespace-separated command line.
// A blank command line uses [DefaultPlayCommand].
func NewPlayer(cmdline string) *Player {
	return &Player{argv: commandArgv(cmdline, DefaultPlayCommand)}
}

// Play starts playback and returns without waiting for it to finish.
// Playback failures are logged, not returned.
func (p *Player) Play(ctx context.Context, audio []byte) error {
	cmd := exec.CommandContext(ctx, p.argv[0], p.argv[1:]...)
	cmd.Stdin = bytes.NewReader(audio)

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start playback: %w", err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			slog.WarnContext(ctx, "audio playback failed", "error", err)
		}
	}()
	return nil
}

// commandArgv splits a command line on whitespace, falling back to the
// default when the line has no words. Shell quoting is not interpreted.
func commandArgv(cmdline, fallback string) []string {
	argv := strings.Fields(cmdline)
	if len(argv) == 0 {
		argv = strings.Fields(fallback)
	}
	return argv
}
