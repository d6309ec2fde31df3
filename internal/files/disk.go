package files

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DiskSink writes downloads into a directory.
type DiskSink struct {
	Dir     string
	Fetcher Fetcher
	Written []string
}

func (s *DiskSink) Single(ctx context.Context, p Pair) error {
	return s.fetchTo(ctx, p)
}

func (s *DiskSink) Individual(ctx context.Context, p Pair) error {
	return s.fetchTo(ctx, p)
}

func (s *DiskSink) Archive(_ context.Context, name string, a *Archive) error {
	target, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(target, a.Data, 0o644); err != nil {
		return fmt.Errorf("failed to write archive: %w", err)
	}
	s.Written = append(s.Written, target)
	return nil
}

func (s *DiskSink) fetchTo(ctx context.Context, p Pair) error {
	target, err := s.path(p.Name)
	if err != nil {
		return err
	}
	body, err := s.Fetcher.Fetch(ctx, p.URL)
	if err != nil {
		return err
	}
	defer body.Close()

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", target, err)
	}
	if _, err := io.Copy(out, body); err != nil {
		out.Close()
		os.Remove(target)
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	if err := out.Close(); err != nil {
		return err
	}
	s.Written = append(s.Written, target)
	return nil
}

// path keeps names inside Dir; folder prefixes like "DST/" become real folders.
func (s *DiskSink) path(name string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(name))
	target := filepath.Join(s.Dir, clean)
	if !strings.HasPrefix(target, filepath.Clean(s.Dir)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid file name %q", name)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder: %w", err)
	}
	return target, nil
}
