package warehouse

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/veemedia/socialiq/table"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(filepath.Join(t.TempDir(), "staging.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func TestStageAndReadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tbl := table.New("post_id", "channel", "likes")
	tbl.Rows = [][]string{
		{"101", "instagram", "15"},
		{"102", "instagram", "8"},
	}

	result, err := store.Stage(ctx, tbl, "STG_RIVALIQ_INSTAGRAM")
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if result.RowCount != 2 {
		t.Errorf("RowCount = %d, want 2", result.RowCount)
	}
	if result.LoadID == "" {
		t.Error("LoadID not assigned")
	}

	got, err := store.Read(ctx, "STG_RIVALIQ_INSTAGRAM")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	if !reflect.DeepEqual(got.Columns, tbl.Columns) {
		t.Errorf("Columns = %v, want %v", got.Columns, tbl.Columns)
	}
	if got.NumRows() != tbl.NumRows() {
		t.Errorf("NumRows = %d, want %d", got.NumRows(), tbl.NumRows())
	}
	if !reflect.DeepEqual(got.Rows, tbl.Rows) {
		t.Errorf("Rows = %v, want %v", got.Rows, tbl.Rows)
	}
}

func TestStageReplacesPreviousLoad(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := table.New("a")
	first.Rows = [][]string{{"1"}, {"2"}, {"3"}}
	if _, err := store.Stage(ctx, first, "STG_RIVALIQ_TWITTER"); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	// A later load with different columns fully replaces the table.
	second := table.New("x", "y")
	second.Rows = [][]string{{"7", "8"}}
	if _, err := store.Stage(ctx, second, "STG_RIVALIQ_TWITTER"); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	got, err := store.Read(ctx, "STG_RIVALIQ_TWITTER")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(got.Columns, []string{"x", "y"}) {
		t.Errorf("Columns = %v", got.Columns)
	}
	if got.NumRows() != 1 {
		t.Errorf("NumRows = %d, want 1", got.NumRows())
	}
}

func TestStageEmptyTable(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	result, err := store.Stage(ctx, &table.Table{}, "STG_RIVALIQ_ALL_SOCIAL_POSTS")
	if err != nil {
		t.Fatalf("Stage failed: %v", err)
	}
	if result.RowCount != 0 {
		t.Errorf("RowCount = %d, want 0", result.RowCount)
	}

	loads, err := store.Loads(ctx)
	if err != nil {
		t.Fatalf("Loads failed: %v", err)
	}
	if len(loads) != 1 {
		t.Fatalf("loads = %d, want 1", len(loads))
	}
	if loads[0].RowCount != 0 {
		t.Errorf("audit RowCount = %d, want 0", loads[0].RowCount)
	}
}

func TestStageRejectsBadDestination(t *testing.T) {
	store := openTestStore(t)

	_, err := store.Stage(
		context.Background(), table.New("a"), `bad"name; drop`,
	)
	if err == nil {
		t.Fatal("expected error for invalid destination name")
	}
}

func TestLoadsOrdering(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tbl := table.New("a")
	tbl.Rows = [][]string{{"1"}}

	if _, err := store.Stage(ctx, tbl, "STG_RIVALIQ_FACEBOOK"); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Stage(ctx, tbl, "STG_RIVALIQ_TIKTOK"); err != nil {
		t.Fatal(err)
	}

	loads, err := store.Loads(ctx)
	if err != nil {
		t.Fatalf("Loads failed: %v", err)
	}
	if len(loads) != 2 {
		t.Fatalf("loads = %d, want 2", len(loads))
	}
	for _, l := range loads {
		if l.LoadID == "" || l.Destination == "" {
			t.Errorf("incomplete load record: %+v", l)
		}
	}
}

func TestDestinationFor(t *testing.T) {
	cases := map[string]string{
		"facebook":  "STG_RIVALIQ_FACEBOOK",
		"Instagram": "STG_RIVALIQ_INSTAGRAM",
		"all":       "STG_RIVALIQ_ALL_SOCIAL_POSTS",
	}
	for channel, want := range cases {
		got, err := DestinationFor(channel)
		if err != nil {
			t.Errorf("DestinationFor(%q) failed: %v", channel, err)
			continue
		}
		if got != want {
			t.Errorf("DestinationFor(%q) = %q, want %q", channel, got, want)
		}
	}

	_, err := DestinationFor("myspace")
	if !errors.Is(err, ErrUnknownDestination) {
		t.Errorf("expected ErrUnknownDestination, got %v", err)
	}
}

func TestColumnNamesWithSpaces(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	tbl := table.New("Media Owner", `quo"ted`)
	tbl.Rows = [][]string{{"Acme", "x"}}

	if _, err := store.Stage(ctx, tbl, "STG_RIVALIQ_ALL_SOCIAL_POSTS"); err != nil {
		t.Fatalf("Stage failed: %v", err)
	}

	got, err := store.Read(ctx, "STG_RIVALIQ_ALL_SOCIAL_POSTS")
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(got.Columns, tbl.Columns) {
		t.Errorf("Columns = %v, want %v", got.Columns, tbl.Columns)
	}
}
