// Package catalog syncs the school catalog from partner feeds into the
// store. Feeds arrive over HTTP or FTP as CSV or XLSX files.
package catalog

import (
	"context"
	"io"
	"os"
	"path"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/crossbridge-edu/advisory-cli/internal/fetcher"
	"github.com/crossbridge-edu/advisory-cli/internal/model"
	"github.com/crossbridge-edu/advisory-cli/internal/store"
)

// Downloader is the subset of fetcher capabilities a sync needs. Both
// the HTTP and FTP fetchers satisfy it.
type Downloader interface {
	Download(ctx context.Context, url string) (io.ReadCloser, error)
	DownloadToFile(ctx context.Context, url string, path string) (int64, error)
}

// Syncer pulls a school catalog feed and upserts it into the store.
type Syncer struct {
	dl Downloader
	st store.Store
}

// Result summarizes one sync run.
type Result struct {
	RowsRead int
	Upserted int64
	Skipped  int
}

func NewSyncer(dl Downloader, st store.Store) *Syncer {
	return &Syncer{dl: dl, st: st}
}

// Sync downloads the feed at feedURL and upserts every parseable row.
// The format is chosen by file extension; unparseable rows are logged
// and skipped rather than failing the whole feed.
func (s *Syncer) Sync(ctx context.Context, feedURL string) (*Result, error) {
	var (
		schools []model.School
		skipped int
		err     error
	)

	switch strings.ToLower(path.Ext(stripQuery(feedURL))) {
	case ".xlsx":
		schools, skipped, err = s.readXLSXFeed(ctx, feedURL)
	case ".csv", "":
		schools, skipped, err = s.readCSVFeed(ctx, feedURL)
	default:
		return nil, eris.Errorf("catalog: unsupported feed format for %s", feedURL)
	}
	if err != nil {
		return nil, err
	}

	upserted, err := s.st.UpsertSchools(ctx, schools)
	if err != nil {
		return nil, eris.Wrap(err, "catalog: upsert schools")
	}

	res := &Result{RowsRead: len(schools) + skipped, Upserted: upserted, Skipped: skipped}
	zap.L().Info("catalog sync complete",
		zap.String("feed", feedURL),
		zap.Int("rows", res.RowsRead),
		zap.Int64("upserted", res.Upserted),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

func (s *Syncer) readCSVFeed(ctx context.Context, feedURL string) ([]model.School, int, error) {
	body, err := s.dl.Download(ctx, feedURL)
	if err != nil {
		return nil, 0, eris.Wrap(err, "catalog: download feed")
	}
	defer body.Close() //nolint:errcheck

	rowCh, errCh := fetcher.StreamCSV(ctx, body, fetcher.CSVOptions{
		HasHeader: true,
		TrimSpace: true,
	})

	var schools []model.School
	skipped := 0
	for row := range rowCh {
		school, err := fetcher.ParseSchoolRow(row)
		if err != nil {
			skipped++
			zap.L().Warn("catalog: skipping row", zap.Strings("row", row), zap.Error(err))
			continue
		}
		schools = append(schools, school)
	}
	if err := <-errCh; err != nil {
		return nil, 0, eris.Wrap(err, "catalog: read feed")
	}
	return schools, skipped, nil
}

func (s *Syncer) readXLSXFeed(ctx context.Context, feedURL string) ([]model.School, int, error) {
	tmp, err := os.CreateTemp("", "catalog-*.xlsx")
	if err != nil {
		return nil, 0, eris.Wrap(err, "catalog: create temp file")
	}
	tmpPath := tmp.Name()
	tmp.Close() //nolint:errcheck
	defer os.Remove(tmpPath)

	if _, err := s.dl.DownloadToFile(ctx, feedURL, tmpPath); err != nil {
		return nil, 0, eris.Wrap(err, "catalog: download feed")
	}

	rows, err := fetcher.ReadXLSX(tmpPath, fetcher.XLSXOptions{SkipRows: 1})
	if err != nil {
		return nil, 0, eris.Wrap(err, "catalog: read feed")
	}

	var schools []model.School
	skipped := 0
	for _, row := range rows {
		school, err := fetcher.ParseSchoolRow(row)
		if err != nil {
			skipped++
			zap.L().Warn("catalog: skipping row", zap.Strings("row", row), zap.Error(err))
			continue
		}
		schools = append(schools, school)
	}
	return schools, skipped, nil
}

func stripQuery(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
