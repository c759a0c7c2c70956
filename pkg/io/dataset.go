package io

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/popdyn/pkg/errors"
	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

// Dataset is a set of indicators plus the panel metrics that go with them.
type Dataset struct {
	Items   []treemap.Item `json:"items" toml:"items" yaml:"items"`
	Metrics panels.Metrics `json:"metrics" toml:"metrics" yaml:"metrics"`
}

// Format is a dataset file format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat,
		"cannot infer dataset format from %q (use .json, .toml, .yaml or .yml)", path)
}

// ReadDataset decodes and validates a dataset from r.
func ReadDataset(r io.Reader, format Format) (Dataset, error) {
	var ds Dataset
	var err error
	switch format {
	case FormatJSON:
		ds, err = decodeJSON(r)
	case FormatTOML:
		_, err = toml.NewDecoder(r).Decode(&ds)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&ds)
		if err == io.EOF {
			err = nil
		}
	default:
		return Dataset{}, errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format %q", format)
	}
	if err != nil {
		return Dataset{}, errors.Wrap(errors.ErrCodeInvalidDataset, err, "decode %s dataset", format)
	}
	if err := ds.Validate(); err != nil {
		return Dataset{}, err
	}
	return ds, nil
}

// decodeJSON accepts either a dataset object or a bare array of items.
func decodeJSON(r io.Reader) (Dataset, error) {
	br := bufio.NewReader(r)
	first, err := peekNonSpace(br)
	if err != nil {
		return Dataset{}, err
	}
	dec := json.NewDecoder(br)
	var ds Dataset
	if first == '[' {
		err = dec.Decode(&ds.Items)
	} else {
		err = dec.Decode(&ds)
	}
	return ds, err
}

func peekNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.Peek(1)
		if err != nil {
			return 0, err
		}
		switch b[0] {
		case ' ', '\t', '\r', '\n':
			_, _ = br.ReadByte()
		default:
			return b[0], nil
		}
	}
}

// ImportFile reads a dataset file, inferring the format from its extension.
func ImportFile(path string) (Dataset, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Dataset{}, err
	}
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Dataset{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "dataset %s not found", path)
	}
	if err != nil {
		return Dataset{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	ds, err := ReadDataset(f, format)
	if err != nil {
		return Dataset{}, fmt.Errorf("%s: %w", path, err)
	}
	return ds, nil
}

// Validate checks item IDs and weights.
func (ds Dataset) Validate() error {
	seen := make(map[string]bool, len(ds.Items))
	for i, it := range ds.Items {
		if err := errors.ValidateID(it.ID); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataset, err, "item %d", i)
		}
		if seen[it.ID] {
			return errors.New(errors.ErrCodeInvalidDataset, "duplicate item id %q", it.ID)
		}
		seen[it.ID] = true
		if err := errors.ValidateWeight(it.ID, it.Weight); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidDataset, err, "item %q", it.ID)
		}
	}
	return nil
}

// Write encodes ds to w in the given format. JSON and YAML are indented by
// two spaces.
func Write(ds Dataset, w io.Writer, format Format) error {
	var err error
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(ds)
	case FormatTOML:
		err = toml.NewEncoder(w).Encode(ds)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err = enc.Encode(ds); err == nil {
			err = enc.Close()
		}
	default:
		return errors.New(errors.ErrCodeInvalidFormat, "unsupported dataset format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteJSON encodes ds as indented JSON.
func WriteJSON(ds Dataset, w io.Writer) error {
	return Write(ds, w, FormatJSON)
}

// ExportFile writes ds to path in the format implied by its extension.
func ExportFile(ds Dataset, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Write(ds, &buf, format); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// ExportJSON writes ds to a JSON file at path.
func ExportJSON(ds Dataset, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(ds, f)
}
