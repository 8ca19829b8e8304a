package output

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/natefinch/atomic"

	"github.com/harunnryd/studioport/internal/convert"
	spErrors "github.com/harunnryd/studioport/internal/errors"
	"github.com/harunnryd/studioport/internal/render"
)

const (
	lockFileName   = ".studioport.lock"
	RequestFile    = "request.json"
	CurlFile       = "request.curl.txt"
	ScriptFile     = "request.sh"
	lockRetryDelay = 50 * time.Millisecond
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Artifacts are the rendered forms of one conversion.
type Artifacts struct {
	Request string
	Curl    string
	Script  string
}

// Build renders every artifact for res.
func Build(factory *render.FormatterFactory, res *convert.Result) (Artifacts, error) {
	var a Artifacts
	targets := []struct {
		format render.OutputFormat
		dst    *string
	}{
		{render.OutputFormatJSON, &a.Request},
		{render.OutputFormatCurl, &a.Curl},
		{render.OutputFormatScript, &a.Script},
	}

	for _, target := range targets {
		r, err := factory.Create(target.format)
		if err != nil {
			return Artifacts{}, err
		}
		text, err := r.Render(res)
		if err != nil {
			return Artifacts{}, fmt.Errorf("render %s: %w", target.format, err)
		}
		*target.dst = text
	}
	return a, nil
}

// Writer owns an output directory for the duration of a run. The directory
// is guarded by an advisory lock so two runs never interleave their files.
type Writer struct {
	dir  string
	lock *flock.Flock
	mu   sync.Mutex
}

// Open creates dir if needed and locks it, waiting up to lockTimeout.
func Open(ctx context.Context, dir string, lockTimeout time.Duration) (*Writer, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, spErrors.InvalidInput("output directory is empty")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	lockPath := filepath.Join(dir, lockFileName)
	lock := flock.New(lockPath)

	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()

	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil && lockCtx.Err() == nil {
		return nil, fmt.Errorf("failed to attempt lock: %w", err)
	}
	if !locked {
		return nil, spErrors.Conflict(fmt.Sprintf("output directory %s is locked by another run (timeout after %v)", dir, lockTimeout))
	}

	slog.Debug("Output directory locked", "path", lockPath)
	return &Writer{dir: dir, lock: lock}, nil
}

func (w *Writer) Dir() string {
	return w.dir
}

// Write stores the artifacts under sub, which may be empty to write into the
// directory itself. It returns the written paths.
func (w *Writer) Write(sub string, a Artifacts) ([]string, error) {
	target := w.dir
	if sub != "" {
		name, err := SafeName(sub)
		if err != nil {
			return nil, err
		}
		target = filepath.Join(w.dir, name)
	}
	if err := os.MkdirAll(target, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", target, err)
	}

	files := []struct {
		name    string
		content string
		mode    os.FileMode
	}{
		{RequestFile, a.Request, 0644},
		{CurlFile, a.Curl, 0644},
		{ScriptFile, a.Script, 0755},
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(target, f.name)
		content := strings.TrimRight(f.content, "\n") + "\n"
		if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := os.Chmod(path, f.mode); err != nil {
			return written, fmt.Errorf("failed to chmod %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.lock == nil {
		return nil
	}
	err := w.lock.Unlock()
	w.lock = nil
	if err != nil {
		return fmt.Errorf("failed to release output lock: %w", err)
	}
	return nil
}

// SafeName turns a job name into a single path element.
func SafeName(name string) (string, error) {
	cleaned := strings.Trim(unsafeNameChars.ReplaceAllString(strings.TrimSpace(name), "_"), "_")
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "", spErrors.InvalidInput(fmt.Sprintf("job name %q cannot be used as a directory name", name))
	}
	return cleaned, nil
}
