// Package export writes bookmark backups to disk. Output is JSON or
// TOON; a .zst suffix on the target path enables zstd compression.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	errs "raindrip/internal/errors"
	"raindrip/internal/models"
	"raindrip/internal/toon"
)

// Options controls an export run.
type Options struct {
	// Path is the output file. Required.
	Path string
	// Format is "json" or "toon". Empty means: infer from the file
	// extension, defaulting to json.
	Format string
	// ToonIndent and ToonDelimiter configure TOON output.
	ToonIndent    int
	ToonDelimiter string
}

// Result summarizes a completed export.
type Result struct {
	Path       string `json:"path"`
	Format     string `json:"format"`
	Count      int    `json:"count"`
	Bytes      int64  `json:"bytes"`
	Compressed bool   `json:"compressed"`
}

// Write serializes the bookmarks to opts.Path and returns a summary.
func Write(drops []models.Raindrop, opts Options) (*Result, error) {
	if opts.Path == "" {
		return nil, errs.NewValidationError("export: no output path given", "Pass --output FILE.")
	}

	compressed := strings.HasSuffix(opts.Path, ".zst")
	format, err := resolveFormat(opts)
	if err != nil {
		return nil, err
	}

	payload := toon.Object{
		{Key: "exportedAt", Value: time.Now().UTC().Format(time.RFC3339)},
		{Key: "count", Value: float64(len(drops))},
		{Key: "items", Value: drops},
	}

	var data []byte
	switch format {
	case "json":
		data, err = json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return nil, errs.NewInternalError(err)
		}
		data = append(data, '\n')
	case "toon":
		text, err := toon.EncodeWithOptions(payload, toon.EncodeOptions{
			Indent:    opts.ToonIndent,
			Delimiter: opts.ToonDelimiter,
		})
		if err != nil {
			return nil, errs.WrapCodec(err)
		}
		data = []byte(text + "\n")
	default:
		return nil, errs.NewValidationError(
			fmt.Sprintf("export: unknown data format %q", format),
			"Use --data-format json or --data-format toon.")
	}

	if err := writeFile(opts.Path, data, compressed); err != nil {
		return nil, errs.NewInternalError(err)
	}

	info, err := os.Stat(opts.Path)
	if err != nil {
		return nil, errs.NewInternalError(err)
	}

	return &Result{
		Path:       opts.Path,
		Format:     format,
		Count:      len(drops),
		Bytes:      info.Size(),
		Compressed: compressed,
	}, nil
}

// resolveFormat picks the data format: explicit option first, then the
// file extension with any .zst suffix stripped.
func resolveFormat(opts Options) (string, error) {
	if opts.Format != "" {
		switch opts.Format {
		case "json", "toon":
			return opts.Format, nil
		}
		return "", errs.NewValidationError(
			fmt.Sprintf("export: unknown data format %q", opts.Format),
			"Use --data-format json or --data-format toon.")
	}
	base := strings.TrimSuffix(opts.Path, ".zst")
	if filepath.Ext(base) == ".toon" {
		return "toon", nil
	}
	return "json", nil
}

func writeFile(path string, data []byte, compressed bool) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	var w io.WriteCloser = f
	var zw *zstd.Encoder
	if compressed {
		zw, err = zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return err
		}
		w = zw
	}

	if _, err := w.Write(data); err != nil {
		if zw != nil {
			_ = zw.Close()
		}
		_ = f.Close()
		return err
	}
	if zw != nil {
		if err := zw.Close(); err != nil {
			_ = f.Close()
			return err
		}
	}
	return f.Close()
}
