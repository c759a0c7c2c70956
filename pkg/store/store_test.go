package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	perrors "github.com/matzehuels/popdyn/pkg/errors"
	"github.com/matzehuels/popdyn/pkg/filter"
	"github.com/matzehuels/popdyn/pkg/panels"
	"github.com/matzehuels/popdyn/pkg/treemap"
)

var fixture = []treemap.Item{
	{ID: "births", Name: "Birth rate", Value: 92, Target: 100, Weight: 6, Sector: "Health",
		Meta: map[string]any{"unit": "per 1000"}},
	{ID: "deaths", Name: "Mortality", Value: 70, Target: 100, Weight: 2, Sector: "Health"},
	{ID: "migration", Name: "Net migration", Value: 40, Target: 50, Weight: 2, Sector: "Mobility"},
}

// testRepository exercises the Repository contract against any backend.
func testRepository(t *testing.T, repo Repository) {
	t.Helper()
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		items, err := repo.ListItems(ctx, filter.Criteria{})
		if err != nil {
			t.Fatalf("ListItems() error: %v", err)
		}
		if len(items) != 0 {
			t.Errorf("new repository has %d items", len(items))
		}
		m, err := repo.Metrics(ctx)
		if err != nil {
			t.Fatalf("Metrics() error: %v", err)
		}
		if m != (panels.Metrics{}) {
			t.Errorf("new repository metrics = %+v, want zero", m)
		}
	})

	t.Run("put and list", func(t *testing.T) {
		if err := repo.PutItems(ctx, fixture); err != nil {
			t.Fatalf("PutItems() error: %v", err)
		}
		items, err := repo.ListItems(ctx, filter.Criteria{})
		if err != nil {
			t.Fatalf("ListItems() error: %v", err)
		}
		if !reflect.DeepEqual(items, fixture) {
			t.Errorf("ListItems() = %+v\nwant %+v", items, fixture)
		}
	})

	t.Run("filtered list", func(t *testing.T) {
		items, err := repo.ListItems(ctx, filter.Criteria{Categories: []string{"mobility"}})
		if err != nil {
			t.Fatalf("ListItems() error: %v", err)
		}
		if len(items) != 1 || items[0].ID != "migration" {
			t.Errorf("filtered items = %+v", items)
		}
	})

	t.Run("get", func(t *testing.T) {
		it, err := repo.GetItem(ctx, "births")
		if err != nil {
			t.Fatalf("GetItem() error: %v", err)
		}
		if !reflect.DeepEqual(it, fixture[0]) {
			t.Errorf("GetItem() = %+v, want %+v", it, fixture[0])
		}

		_, err = repo.GetItem(ctx, "nope")
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("GetItem(nope) error = %v, want ErrNotFound", err)
		}
		if !perrors.Is(err, perrors.ErrCodeNotFound) {
			t.Errorf("GetItem(nope) code = %v, want NOT_FOUND", perrors.GetCode(err))
		}
	})

	t.Run("upsert keeps position", func(t *testing.T) {
		update := fixture[1]
		update.Weight = 9
		added := treemap.Item{ID: "housing", Name: "Housing starts", Weight: 1, Sector: "Housing"}
		if err := repo.PutItems(ctx, []treemap.Item{added, update}); err != nil {
			t.Fatalf("PutItems() error: %v", err)
		}
		items, err := repo.ListItems(ctx, filter.Criteria{})
		if err != nil {
			t.Fatalf("ListItems() error: %v", err)
		}
		var ids []string
		for _, it := range items {
			ids = append(ids, it.ID)
		}
		if want := []string{"births", "deaths", "migration", "housing"}; !reflect.DeepEqual(ids, want) {
			t.Errorf("order = %v, want %v", ids, want)
		}
		if items[1].Weight != 9 {
			t.Errorf("updated weight = %v, want 9", items[1].Weight)
		}
	})

	t.Run("rejects invalid items", func(t *testing.T) {
		err := repo.PutItems(ctx, []treemap.Item{{ID: "", Weight: 1}})
		if !perrors.IsValidation(err) {
			t.Errorf("PutItems(empty id) error = %v, want validation error", err)
		}
		err = repo.PutItems(ctx, []treemap.Item{{ID: "bad", Weight: -2}})
		if !perrors.Is(err, perrors.ErrCodeInvalidWeight) {
			t.Errorf("PutItems(negative) error = %v, want INVALID_WEIGHT", err)
		}
	})

	t.Run("metrics", func(t *testing.T) {
		m := panels.Metrics{PendingApprovals: 3, OverdueApprovals: 1, CriticalAlerts: 2, OpenClaims: 4, DEIScore: 76.5}
		if err := repo.PutMetrics(ctx, m); err != nil {
			t.Fatalf("PutMetrics() error: %v", err)
		}
		m.Escalations = 7
		if err := repo.PutMetrics(ctx, m); err != nil {
			t.Fatalf("PutMetrics() error: %v", err)
		}
		got, err := repo.Metrics(ctx)
		if err != nil {
			t.Fatalf("Metrics() error: %v", err)
		}
		if got != m {
			t.Errorf("Metrics() = %+v, want %+v", got, m)
		}
	})
}

func TestMemory(t *testing.T) {
	repo := NewMemory()
	defer repo.Close()
	testRepository(t, repo)
}

func TestMemoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemory()
	if err := repo.PutItems(ctx, fixture[:1]); err != nil {
		t.Fatal(err)
	}
	it, _ := repo.GetItem(ctx, "births")
	it.Meta["unit"] = "changed"
	again, _ := repo.GetItem(ctx, "births")
	if again.Meta["unit"] != "per 1000" {
		t.Error("GetItem result aliases stored meta")
	}
}

func TestSQLite(t *testing.T) {
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "popdyn.db"))
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	defer repo.Close()
	testRepository(t, repo)
}

func TestSQLiteReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "popdyn.db")

	repo, err := OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("OpenSQLite() error: %v", err)
	}
	if err := repo.PutItems(ctx, fixture); err != nil {
		t.Fatalf("PutItems() error: %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	repo, err = OpenSQLite(ctx, path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer repo.Close()
	items, err := repo.ListItems(ctx, filter.Criteria{})
	if err != nil {
		t.Fatalf("ListItems() error: %v", err)
	}
	if len(items) != len(fixture) {
		t.Errorf("reopened store has %d items, want %d", len(items), len(fixture))
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	repo, err := Open(ctx, Config{})
	if err != nil {
		t.Fatalf("Open(default) error: %v", err)
	}
	if _, ok := repo.(*Memory); !ok {
		t.Errorf("Open(default) = %T, want *Memory", repo)
	}

	repo, err = Open(ctx, Config{Driver: "SQLite", DSN: filepath.Join(t.TempDir(), "x.db")})
	if err != nil {
		t.Fatalf("Open(sqlite) error: %v", err)
	}
	defer repo.Close()
	if _, ok := repo.(*SQLite); !ok {
		t.Errorf("Open(sqlite) = %T, want *SQLite", repo)
	}

	tests := []struct {
		cfg  Config
		code perrors.Code
	}{
		{Config{Driver: DriverSQLite}, perrors.ErrCodeInvalidInput},
		{Config{Driver: DriverMongo}, perrors.ErrCodeInvalidInput},
		{Config{Driver: "postgres", DSN: "x"}, perrors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		if _, err := Open(ctx, tt.cfg); !perrors.Is(err, tt.code) {
			t.Errorf("Open(%+v) error = %v, want %s", tt.cfg, err, tt.code)
		}
	}
}
