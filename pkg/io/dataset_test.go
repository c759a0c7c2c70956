package io

import (
	"bytes"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/popdyn/pkg/errors"
	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

var wantDataset = Dataset{
	Items: []treemap.Item{
		{ID: "births", Name: "Birth rate", Value: 92, Target: 100, Weight: 6, Sector: "Health"},
		{ID: "deaths", Name: "Mortality", Value: 70, Target: 100, Weight: 2, Sector: "Health"},
		{ID: "migration", Name: "Net migration", Value: 40, Target: 50, Weight: 2, Sector: "Mobility"},
	},
	Metrics: panels.Metrics{
		PendingApprovals: 3,
		OverdueApprovals: 1,
		CriticalAlerts:   2,
		OpenClaims:       4,
		DEIScore:         76.5,
	},
}

func TestImportFile(t *testing.T) {
	for _, name := range []string{"dashboard.json", "dashboard.toml", "dashboard.yaml"} {
		t.Run(name, func(t *testing.T) {
			ds, err := ImportFile(filepath.Join("testdata", name))
			if err != nil {
				t.Fatalf("ImportFile() error: %v", err)
			}
			if !reflect.DeepEqual(ds, wantDataset) {
				t.Errorf("ImportFile() = %+v\nwant %+v", ds, wantDataset)
			}
		})
	}
}

func TestImportFileErrors(t *testing.T) {
	if _, err := ImportFile("testdata/missing.json"); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v, want FILE_NOT_FOUND", err)
	}
	if _, err := ImportFile("testdata/dashboard.csv"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("csv error = %v, want INVALID_FORMAT", err)
	}
}

func TestReadDatasetBareArray(t *testing.T) {
	in := `
  [{"id": "a", "weight": 1}, {"id": "b", "weight": 2}]`
	ds, err := ReadDataset(strings.NewReader(in), FormatJSON)
	if err != nil {
		t.Fatalf("ReadDataset() error: %v", err)
	}
	if len(ds.Items) != 2 || ds.Items[1].ID != "b" {
		t.Errorf("items = %+v", ds.Items)
	}
	if ds.Metrics != (panels.Metrics{}) {
		t.Errorf("bare array should have zero metrics, got %+v", ds.Metrics)
	}
}

func TestReadDatasetValidation(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"malformed", `{"items": [`},
		{"missing id", `[{"weight": 1}]`},
		{"duplicate id", `[{"id": "a", "weight": 1}, {"id": "a", "weight": 2}]`},
		{"negative weight", `[{"id": "a", "weight": -1}]`},
		{"path in id", `[{"id": "a/b", "weight": 1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadDataset(strings.NewReader(tt.in), FormatJSON)
			if !errors.Is(err, errors.ErrCodeInvalidDataset) {
				t.Errorf("ReadDataset() error = %v, want INVALID_DATASET", err)
			}
		})
	}
}

func TestReadDatasetEmptyYAML(t *testing.T) {
	ds, err := ReadDataset(strings.NewReader(""), FormatYAML)
	if err != nil {
		t.Fatalf("ReadDataset() error: %v", err)
	}
	if len(ds.Items) != 0 {
		t.Errorf("empty yaml produced %d items", len(ds.Items))
	}
}

func TestExportRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"out.json", "out.toml", "out.yml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := ExportFile(wantDataset, path); err != nil {
				t.Fatalf("ExportFile() error: %v", err)
			}
			got, err := ImportFile(path)
			if err != nil {
				t.Fatalf("ImportFile() error: %v", err)
			}
			if !reflect.DeepEqual(got, wantDataset) {
				t.Errorf("round trip = %+v\nwant %+v", got, wantDataset)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(wantDataset, &buf); err != nil {
		t.Fatalf("WriteJSON() error: %v", err)
	}
	if !strings.Contains(buf.String(), `"dei_score": 76.5`) {
		t.Errorf("WriteJSON() output missing metrics:\n%s", buf.String())
	}
	if err := Write(wantDataset, &buf, Format("xml")); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Write(xml) error = %v, want INVALID_FORMAT", err)
	}
}
