package checkpoint

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cnpjscan/internal/config"
)

const artifactExt = ".xlsx"

// Artifacts names and finds the daily checkpoint workbooks in a directory.
type Artifacts struct {
	Dir        string
	Prefix     string
	DateLayout string
}

// ArtifactsFromConfig returns the artifact naming configured for cfg.
func ArtifactsFromConfig(cfg *config.Config) Artifacts {
	return Artifacts{
		Dir:        cfg.Paths.WorkDir,
		Prefix:     cfg.Artifact.Prefix,
		DateLayout: cfg.Artifact.DateLayout,
	}
}

// PathFor returns the canonical artifact path for date.
func (a Artifacts) PathFor(date time.Time) string {
	return filepath.Join(a.Dir, a.Prefix+date.Format(a.DateLayout)+artifactExt)
}

// Latest returns the most recently modified artifact in the directory, or ""
// when none exists.
func (a Artifacts) Latest() (string, error) {
	pattern := filepath.Join(a.Dir, globEscape(a.Prefix)+"*"+artifactExt)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return "", fmt.Errorf("glob %s: %w", pattern, err)
	}

	var (
		latest  string
		modTime time.Time
	)
	for _, match := range matches {
		if strings.HasPrefix(filepath.Base(match), "~$") {
			continue
		}
		info, err := os.Stat(match)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return "", fmt.Errorf("stat %s: %w", match, err)
		}
		if info.IsDir() {
			continue
		}
		if latest == "" || info.ModTime().After(modTime) {
			latest = match
			modTime = info.ModTime()
		}
	}
	return latest, nil
}

// Locate prefers the artifact for date and falls back to the most recently
// modified one. It returns "" when the directory holds no artifact.
func (a Artifacts) Locate(date time.Time) (string, error) {
	today := a.PathFor(date)
	info, err := os.Stat(today)
	switch {
	case err == nil && !info.IsDir():
		return today, nil
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("stat %s: %w", today, err)
	}
	return a.Latest()
}

func globEscape(value string) string {
	replacer := strings.NewReplacer(`*`, `\*`, `?`, `\?`, `[`, `\[`, `\`, `\\`)
	return replacer.Replace(value)
}
