package forward

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
)

var ErrInvalidAsset = errors.New("invalid pipeline asset")

// PipelineAsset is the saved form of a pipeline configuration:
//
//	dynamic_batching = true
//	instancing = false
//	diagnostics = "auto" # auto | on | off
type PipelineAsset struct {
	DynamicBatching bool            `toml:"dynamic_batching"`
	Instancing      bool            `toml:"instancing"`
	Diagnostics     DiagnosticsMode `toml:"diagnostics"`
}

// ParsePipelineAsset decodes a TOML asset. Unknown keys are rejected.
func ParsePipelineAsset(data []byte) (*PipelineAsset, error) {
	var a PipelineAsset
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&a); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAsset, err)
	}
	return &a, nil
}

func LoadPipelineAsset(path string) (*PipelineAsset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pipeline asset: %w", err)
	}
	a, err := ParsePipelineAsset(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

func (a *PipelineAsset) Save(path string) error {
	data, err := toml.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode pipeline asset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write pipeline asset: %w", err)
	}
	return nil
}

func (a *PipelineAsset) Config() PipelineConfig {
	return PipelineConfig{
		DynamicBatching: a.DynamicBatching,
		Instancing:      a.Instancing,
		Diagnostics:     a.Diagnostics,
	}
}

// CreatePipeline builds a new pipeline from the asset.
func (a *PipelineAsset) CreatePipeline(logger Logger) *Pipeline {
	return NewPipeline(a.Config(), logger)
}

// WatchPipelineAsset calls onChange with the re-parsed asset each time the
// file at path is written or replaced, until ctx is done. Edits that do not
// parse are logged and skipped, as are edits that leave the asset unchanged.
// onChange runs on the watcher goroutine.
func WatchPipelineAsset(ctx context.Context, path string, logger Logger, onChange func(*PipelineAsset)) error {
	logger = namedLogger(logger, "asset")
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch pipeline asset: %w", err)
	}
	defer watcher.Close()

	// Editors often save by replacing the file, so watch its directory.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch pipeline asset: %w", err)
	}

	var last *PipelineAsset
	if a, err := LoadPipelineAsset(path); err == nil {
		last = a
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			a, err := LoadPipelineAsset(path)
			if err != nil {
				logger.Warnf("pipeline asset not reloaded: %v", err)
				continue
			}
			if last != nil && *last == *a {
				continue
			}
			last = a
			logger.Infof("pipeline asset %s changed", path)
			onChange(a)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Errorf("pipeline asset watcher: %v", err)
		}
	}
}
