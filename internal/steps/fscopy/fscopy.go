// Package fscopy implements a pipeline.Step that copies a file or directory
// tree, reporting chunked progress through the context as it goes. It is
// grounded on internal/plugins/copy/copy.go's Apply/copyFile/copyDirectory
// flow, adapted to report granular progress instead of a single pass/fail
// result.
package fscopy

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/kestrelrun/taskpipe/pkg/pipeline"
)

const defaultBufferSize = 32 * 1024

// Settings configures one fscopy step. Overwrite/PreserveMode mirror
// config.CopyStep's flags; BufferSize controls chunk granularity for
// progress reporting.
type Settings struct {
	Source       string
	Destination  string
	Recursive    bool
	Overwrite    bool
	PreserveMode bool
	BufferSize   int
}

// Step copies Settings.Source to Settings.Destination.
type Step[C any] struct {
	pipeline.BaseStep
	Settings Settings
}

// New constructs a Step from a plan's type-directed settings map, the
// shape internal/planconfig.Factory expects.
func New[C any](id, description string, critical bool, settings map[string]any) (pipeline.Step[C], error) {
	s := Settings{BufferSize: defaultBufferSize}
	if v, ok := settings["source"].(string); ok {
		s.Source = v
	}
	if v, ok := settings["destination"].(string); ok {
		s.Destination = v
	}
	if v, ok := settings["recursive"].(bool); ok {
		s.Recursive = v
	}
	if v, ok := settings["overwrite"].(bool); ok {
		s.Overwrite = v
	}
	if v, ok := settings["preserve_mode"].(bool); ok {
		s.PreserveMode = v
	}
	if v, ok := settings["buffer_size"].(int); ok && v > 0 {
		s.BufferSize = v
	}
	if s.Source == "" || s.Destination == "" {
		return nil, fmt.Errorf("fscopy step %q: source and destination are required", id)
	}

	return Step[C]{
		BaseStep: pipeline.BaseStep{StepID: id, StepDesc: description, NonCritical: !critical},
		Settings: s,
	}, nil
}

// Run copies Source to Destination, contributing bytes_copied (int) and
// copied_files ([]string) to the context's results.
func (s Step[C]) Run(goCtx context.Context, ctx *pipeline.Context[C]) (*pipeline.Context[C], error) {
	srcInfo, err := os.Stat(s.Settings.Source)
	if err != nil {
		return nil, err
	}

	var files []string
	var totalBytes int64

	if srcInfo.IsDir() {
		if !s.Settings.Recursive {
			return nil, fmt.Errorf("source %s is a directory; enable recursive copy", s.Settings.Source)
		}
		files, totalBytes, err = s.copyDirectory(goCtx, ctx)
	} else {
		var n int64
		n, err = s.copyFile(goCtx, ctx, s.Settings.Source, s.Settings.Destination, srcInfo, 0, 1)
		if err == nil {
			files = []string{s.Settings.Destination}
			totalBytes = n
		}
	}
	if err != nil {
		return nil, err
	}

	ctx.Results["copied_files"] = files
	ctx.Results["bytes_copied"] = int(totalBytes)
	ctx.UpdateStepProgress(100)
	return ctx, nil
}

func (s Step[C]) copyDirectory(goCtx context.Context, ctx *pipeline.Context[C]) ([]string, int64, error) {
	var entries []string
	if err := filepath.WalkDir(s.Settings.Source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			entries = append(entries, path)
		}
		return nil
	}); err != nil {
		return nil, 0, err
	}

	var copied []string
	var totalBytes int64
	for i, path := range entries {
		rel, err := filepath.Rel(s.Settings.Source, path)
		if err != nil {
			return nil, 0, err
		}
		target := filepath.Join(s.Settings.Destination, rel)
		info, err := os.Stat(path)
		if err != nil {
			return nil, 0, err
		}

		n, err := s.copyFile(goCtx, ctx, path, target, info, i, len(entries))
		if err != nil {
			return nil, 0, err
		}
		copied = append(copied, target)
		totalBytes += n
	}
	return copied, totalBytes, nil
}

func (s Step[C]) copyFile(goCtx context.Context, ctx *pipeline.Context[C], src, dst string, srcInfo os.FileInfo, fileIndex, fileCount int) (int64, error) {
	if !s.Settings.Overwrite {
		if _, err := os.Stat(dst); err == nil {
			return 0, fmt.Errorf("destination %s exists", dst)
		}
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, err
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer srcFile.Close()

	mode := os.FileMode(0o644)
	if s.Settings.PreserveMode {
		mode = srcInfo.Mode()
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_RDWR|os.O_TRUNC, mode)
	if err != nil {
		return 0, err
	}
	defer dstFile.Close()

	buf := make([]byte, s.Settings.BufferSize)
	var copied int64
	total := srcInfo.Size()
	for {
		select {
		case <-goCtx.Done():
			return copied, goCtx.Err()
		default:
		}

		n, readErr := srcFile.Read(buf)
		if n > 0 {
			if _, err := dstFile.Write(buf[:n]); err != nil {
				return copied, err
			}
			copied += int64(n)
			if total > 0 {
				perFile := 100.0 * float64(copied) / float64(total)
				overall := (float64(fileIndex) + perFile/100.0) / float64(fileCount) * 100.0
				ctx.UpdateStepProgress(overall)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return copied, readErr
		}
	}

	if s.Settings.PreserveMode {
		if err := os.Chmod(dst, srcInfo.Mode()); err != nil {
			return copied, err
		}
	}

	return copied, nil
}
