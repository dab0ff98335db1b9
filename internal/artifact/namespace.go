// Package artifact manages the filesystem artifact namespace. An artifact's
// existence is the only completion signal the pipeline has: there is no
// size, checksum, or recency validation, so a truncated artifact silently
// short-circuits recomputation.
package artifact

import (
	"fmt"
	"io"
	"os"

	"github.com/vincentlogarzo/archilume/internal/model"
)

// Exists reports whether the artifact at path has been produced.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// FilterNew removes jobs whose declared output artifact already exists,
// returning the remaining jobs in their original order and the number
// skipped.
func FilterNew(jobs []model.Job) ([]model.Job, int) {
	var fresh []model.Job
	skipped := 0
	for _, j := range jobs {
		if Exists(j.Output) {
			skipped++
			continue
		}
		fresh = append(fresh, j)
	}
	return fresh, skipped
}

// Stage copies src to every destination that does not already exist.
func Stage(src string, dests []string) error {
	for _, dest := range dests {
		if Exists(dest) {
			continue
		}
		if err := copyFile(src, dest); err != nil {
			return fmt.Errorf("failed to stage %s: %w", dest, err)
		}
	}
	return nil
}

// Remove deletes the listed artifacts, ignoring ones already absent, and
// returns how many were deleted.
func Remove(paths []string) (int, error) {
	deleted := 0
	for _, p := range paths {
		err := os.Remove(p)
		switch {
		case err == nil:
			deleted++
		case os.IsNotExist(err):
		default:
			return deleted, fmt.Errorf("failed to remove %s: %w", p, err)
		}
	}
	return deleted, nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
