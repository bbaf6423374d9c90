package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/crossbridge-edu/advisory-cli/internal/fetcher"
	"github.com/crossbridge-edu/advisory-cli/internal/store"
)

func newSyncTestStore(t *testing.T) store.Store {
	t.Helper()
	s, err := store.NewSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newSyncFetcher() *fetcher.HTTPFetcher {
	return fetcher.NewHTTPFetcher(fetcher.HTTPOptions{
		Timeout:       5 * time.Second,
		MaxRetries:    1,
		RatePerSecond: 100,
	})
}

func TestSyncCSVFeed(t *testing.T) {
	csv := "name,country,ranking,website\n" +
		"MIT,US,1,https://mit.edu\n" +
		"Oxford,UK,3,https://ox.ac.uk\n" +
		",US,9,\n" // bad row, skipped
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(csv))
	}))
	defer srv.Close()

	st := newSyncTestStore(t)
	syncer := NewSyncer(newSyncFetcher(), st)

	res, err := syncer.Sync(context.Background(), srv.URL+"/schools.csv")
	require.NoError(t, err)
	assert.Equal(t, 3, res.RowsRead)
	assert.EqualValues(t, 2, res.Upserted)
	assert.Equal(t, 1, res.Skipped)

	schools, err := st.ListSchools(context.Background(), "", 0)
	require.NoError(t, err)
	require.Len(t, schools, 2)
	assert.Equal(t, "MIT", schools[0].Name)
}

func TestSyncXLSXFeed(t *testing.T) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Schools")
	require.NoError(t, err)
	for _, row := range [][]string{
		{"name", "country", "ranking", "website"},
		{"ETH Zurich", "CH", "7", "https://ethz.ch"},
		{"NUS", "SG", "8", "https://nus.edu.sg"},
	} {
		r := sheet.AddRow()
		for _, cell := range row {
			r.AddCell().SetString(cell)
		}
	}
	path := t.TempDir() + "/schools.xlsx"
	require.NoError(t, f.Save(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	st := newSyncTestStore(t)
	syncer := NewSyncer(newSyncFetcher(), st)

	res, err := syncer.Sync(context.Background(), srv.URL+"/schools.xlsx")
	require.NoError(t, err)
	assert.Equal(t, 2, res.RowsRead)
	assert.EqualValues(t, 2, res.Upserted)

	ch, err := st.ListSchools(context.Background(), "CH", 0)
	require.NoError(t, err)
	require.Len(t, ch, 1)
	assert.Equal(t, "ETH Zurich", ch[0].Name)
}

func TestSyncUnsupportedFormat(t *testing.T) {
	st := newSyncTestStore(t)
	syncer := NewSyncer(newSyncFetcher(), st)

	_, err := syncer.Sync(context.Background(), "https://feeds.example.com/schools.pdf")
	assert.ErrorContains(t, err, "unsupported feed format")
}

func TestSyncDownloadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	st := newSyncTestStore(t)
	syncer := NewSyncer(newSyncFetcher(), st)

	_, err := syncer.Sync(context.Background(), srv.URL+"/missing.csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "download feed")
}

func TestSyncIsIdempotent(t *testing.T) {
	csv := "name,country,ranking,website\nMIT,US,1,https://mit.edu\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(csv))
	}))
	defer srv.Close()

	st := newSyncTestStore(t)
	syncer := NewSyncer(newSyncFetcher(), st)

	for range 2 {
		_, err := syncer.Sync(context.Background(), srv.URL+"/schools.csv")
		require.NoError(t, err)
	}

	schools, err := st.ListSchools(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, schools, 1)
}
