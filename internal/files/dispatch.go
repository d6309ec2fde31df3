package files

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Delivery modes.
const (
	ModeNone       = "none"
	ModeSingle     = "single"
	ModeArchive    = "archive"
	ModeIndividual = "individual"
)

// Sink receives the result of a dispatch.
type Sink interface {
	// Single delivers the only file directly, without an archive.
	Single(ctx context.Context, p Pair) error
	// Archive delivers a built zip.
	Archive(ctx context.Context, name string, a *Archive) error
	// Individual delivers one file of the fallback sequence.
	Individual(ctx context.Context, p Pair) error
}

// Outcome describes what a dispatch did.
type Outcome struct {
	Mode    string
	Files   int
	Skipped int
}

// Dispatcher picks the delivery path for a list of pairs.
type Dispatcher struct {
	Fetcher Fetcher
	// Delay spaces the individual downloads of the fallback path.
	Delay time.Duration
	// Sleep waits between individual downloads; nil uses a timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewDispatcher(fetcher Fetcher, delay time.Duration) *Dispatcher {
	return &Dispatcher{Fetcher: fetcher, Delay: delay}
}

// Dispatch delivers pairs to sink: nothing for zero pairs (ErrNoFiles), a
// direct download for one, a zip for several. When the zip cannot be built
// the files are handed to sink.Individual one at a time, Delay apart.
func (d *Dispatcher) Dispatch(ctx context.Context, archiveName string, pairs []Pair, sink Sink) (Outcome, error) {
	switch len(pairs) {
	case 0:
		return Outcome{Mode: ModeNone}, ErrNoFiles
	case 1:
		if err := sink.Single(ctx, pairs[0]); err != nil {
			return Outcome{Mode: ModeSingle}, fmt.Errorf("single download: %w", err)
		}
		return Outcome{Mode: ModeSingle, Files: 1}, nil
	}

	archive, err := BuildArchive(ctx, d.Fetcher, pairs)
	if err == nil {
		if err := sink.Archive(ctx, archiveName, archive); err != nil {
			return Outcome{Mode: ModeArchive}, fmt.Errorf("archive download: %w", err)
		}
		return Outcome{Mode: ModeArchive, Files: len(archive.Included), Skipped: len(archive.Skipped)}, nil
	}

	slog.Warn("Archive failed, falling back to individual downloads", "archive", archiveName, "files", len(pairs), "error", err)
	out := Outcome{Mode: ModeIndividual}
	for i, p := range pairs {
		if i > 0 {
			if err := d.sleep(ctx, d.Delay); err != nil {
				return out, err
			}
		}
		if err := sink.Individual(ctx, p); err != nil {
			slog.Error("Individual download failed", "name", p.Name, "url", p.URL, "error", err)
			out.Skipped++
			continue
		}
		out.Files++
	}
	return out, nil
}

func (d *Dispatcher) sleep(ctx context.Context, dur time.Duration) error {
	if dur <= 0 {
		return ctx.Err()
	}
	if d.Sleep != nil {
		return d.Sleep(ctx, dur)
	}
	t := time.NewTimer(dur)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
