// Package library manages the recordings directory: naming new recordings
// and listing existing ones.
package library

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// InstantLayout is ISO-8601 with timezone offset and second precision.
const InstantLayout = "2006-01-02T15:04:05Z07:00"

// maxSuffix bounds the collision search for a single instant.
const maxSuffix = 1000

var ErrNoRecordings = errors.New("no recordings found")

// Recording describes a recorded file on disk.
type Recording struct {
	Name         string    `json:"name" yaml:"name"`
	Path         string    `json:"path" yaml:"path"`
	Size         int64     `json:"size" yaml:"size"`
	SizeHuman    string    `json:"size_human" yaml:"size_human"`
	ModTime      time.Time `json:"mod_time" yaml:"mod_time"`
	ModTimeHuman string    `json:"mod_time_human" yaml:"mod_time_human"`
	Extension    string    `json:"extension" yaml:"extension"`
}

type Library struct {
	Dir       string
	Extension string
}

func New(dir, extension string) *Library {
	return &Library{Dir: dir, Extension: strings.TrimPrefix(extension, ".")}
}

// NextPath returns a path named after now that does not exist yet. When the
// instant is taken, "-2", "-3", ... are appended before the extension.
func (l *Library) NextPath(now time.Time) (string, error) {
	if err := os.MkdirAll(l.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create recordings directory: %w", err)
	}

	base := now.Format(InstantLayout)
	for n := 1; n <= maxSuffix; n++ {
		name := base
		if n > 1 {
			name = fmt.Sprintf("%s-%d", base, n)
		}
		path := filepath.Join(l.Dir, name+"."+l.Extension)

		_, err := os.Stat(path)
		if errors.Is(err, os.ErrNotExist) {
			return path, nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to check %s: %w", path, err)
		}
		slog.Debug("Recording name taken", "path", path)
	}

	return "", fmt.Errorf("no free recording name for %s after %d attempts", base, maxSuffix)
}

// List returns the recordings in the directory, newest first.
func (l *Library) List() ([]Recording, error) {
	files, err := os.ReadDir(l.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read recordings directory: %w", err)
	}

	var recordings []Recording
	for _, file := range files {
		if file.IsDir() {
			continue
		}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(file.Name())), ".")
		if ext != strings.ToLower(l.Extension) {
			continue
		}

		info, err := file.Info()
		if err != nil {
			slog.Warn("Failed to get file info for recording", "file", file.Name(), "error", err)
			continue
		}

		recordings = append(recordings, Recording{
			Name:         file.Name(),
			Path:         filepath.Join(l.Dir, file.Name()),
			Size:         info.Size(),
			SizeHuman:    FormatBytes(info.Size()),
			ModTime:      info.ModTime(),
			ModTimeHuman: info.ModTime().Format("2006-01-02 15:04:05"),
			Extension:    ext,
		})
	}

	sort.SliceStable(recordings, func(i, j int) bool {
		if recordings[i].ModTime.Equal(recordings[j].ModTime) {
			return recordings[i].Name > recordings[j].Name
		}
		return recordings[i].ModTime.After(recordings[j].ModTime)
	})

	return recordings, nil
}

// Latest returns the most recent recording or ErrNoRecordings.
func (l *Library) Latest() (Recording, error) {
	recordings, err := l.List()
	if err != nil {
		return Recording{}, err
	}
	if len(recordings) == 0 {
		return Recording{}, ErrNoRecordings
	}
	return recordings[0], nil
}

// FormatBytes formats bytes in human readable format
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
