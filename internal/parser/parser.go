package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/alitto/pond/v2"

	"github.com/pable/go-hoop-metrics/internal/model"
)

// DefaultSinceYear matches the season cut-off of the published dataset:
// only files for seasons after it are stacked.
const DefaultSinceYear = 2013

// DirOptions controls ReadDir.
type DirOptions struct {
	SinceYear int // files whose leading year is <= SinceYear are skipped
	Workers   int
}

// ReadFile reads one shot CSV from disk.
func ReadFile(path string) ([]model.RawShotRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, filepath.Base(path))
}

// ReadCSV reads a header row followed by shot rows. The header is checked
// with AssertColumns before any row is consumed.
func ReadCSV(r io.Reader, source string) ([]model.RawShotRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &model.SchemaError{Source: source, Missing: append([]string(nil), RequiredColumns...)}
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", source, err)
	}
	if err := AssertColumns(header); err != nil {
		var se *model.SchemaError
		if errors.As(err, &se) {
			se.Source = source
		}
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[normalizeHeader(h)] = i
	}
	col := func(row []string, name string) string {
		i, ok := idx[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []model.RawShotRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("%s: read row %d: %w", source, line, err)
		}
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		out = append(out, model.RawShotRecord{
			Source:   source,
			Line:     line,
			MatchID:  col(row, "match_id"),
			ShotX:    col(row, "shotX"),
			ShotY:    col(row, "shotY"),
			Quarter:  col(row, "quarter"),
			Player:   col(row, "player"),
			Team:     col(row, "team"),
			Made:     col(row, "made"),
			Distance: col(row, "distance"),
			ShotType: col(row, "shot_type"),
		})
	}
	return out, nil
}

// SeasonFiles lists the CSV files in dir whose name starts with a four-digit
// year greater than sinceYear, sorted by name.
func SeasonFiles(dir string, sinceYear int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".csv") || len(name) < 4 {
			continue
		}
		year, err := strconv.Atoi(name[:4])
		if err != nil || year <= sinceYear {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}

// ReadDir stacks every season file in dir into one batch. Files are read
// concurrently; the result keeps file-name order. Any failing file fails the
// whole batch.
func ReadDir(ctx context.Context, dir string, opts DirOptions) ([]model.RawShotRecord, []string, error) {
	files, err := SeasonFiles(dir, opts.SinceYear)
	if err != nil {
		return nil, nil, err
	}
	if len(files) == 0 {
		return nil, nil, nil
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	pool := pond.NewPool(workers, pond.WithQueueSize(len(files)))
	defer pool.StopAndWait()

	results := make([][]model.RawShotRecord, len(files))
	errs := make([]error, len(files))

	group := pool.NewGroupContext(ctx)
	groupCtx := group.Context()
	for i, path := range files {
		i, path := i, path
		group.Submit(func() {
			if err := groupCtx.Err(); err != nil {
				errs[i] = err
				return
			}
			results[i], errs[i] = ReadFile(path)
		})
	}
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, pond.ErrGroupStopped) {
		return nil, nil, fmt.Errorf("read season files: %w", err)
	}

	total := 0
	for i := range files {
		if errs[i] != nil {
			return nil, nil, errs[i]
		}
		total += len(results[i])
	}
	out := make([]model.RawShotRecord, 0, total)
	for _, r := range results {
		out = append(out, r...)
	}
	return out, files, nil
}
