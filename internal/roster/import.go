// Package roster imports student rosters from XLSX sheets exported by
// the front-office CRM.
package roster

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/crossbridge-edu/advisory-cli/internal/fetcher"
	"github.com/crossbridge-edu/advisory-cli/internal/store"
)

// Result summarizes one roster import.
type Result struct {
	Created int
	Skipped int
}

// Importer loads roster rows into the store.
type Importer struct {
	st store.Store
}

func NewImporter(st store.Store) *Importer {
	return &Importer{st: st}
}

// ImportXLSX reads the roster sheet at path and creates a student for
// every parseable row. Rows that fail to parse are logged and skipped;
// a store failure aborts the import.
func (i *Importer) ImportXLSX(ctx context.Context, path string, sheetName string) (*Result, error) {
	rows, err := fetcher.ReadXLSX(path, fetcher.XLSXOptions{
		SheetName: sheetName,
		SkipRows:  1,
	})
	if err != nil {
		return nil, eris.Wrap(err, "roster: read sheet")
	}

	res := &Result{}
	for _, row := range rows {
		profile, err := fetcher.ParseRosterRow(row)
		if err != nil {
			res.Skipped++
			zap.L().Warn("roster: skipping row", zap.Strings("row", row), zap.Error(err))
			continue
		}
		if _, err := i.st.CreateStudent(ctx, profile); err != nil {
			return res, eris.Wrapf(err, "roster: create student %q", profile.Name)
		}
		res.Created++
	}

	zap.L().Info("roster import complete",
		zap.String("path", path),
		zap.Int("created", res.Created),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}
