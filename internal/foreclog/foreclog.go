// Package foreclog appends resolved forecasts to a daily JSONL audit file.
// It is write-only observability output; nothing in the pipeline reads it
// back.
package foreclog

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"marketlens/internal/types"
)

var mu sync.Mutex

type Entry struct {
	Time         string
	Symbol       string
	Interval     string
	Direction    string
	Confidence   string
	TargetPrice  float64
	CurrentPrice float64
	Warnings     []string `json:",omitempty"`
}

// EntryFromForecast flattens a forecast into an audit entry.
func EntryFromForecast(f *types.Forecast) Entry {
	return Entry{
		Symbol:       f.Symbol,
		Interval:     string(f.Interval),
		Direction:    string(f.Direction),
		Confidence:   string(f.Confidence),
		TargetPrice:  f.TargetPrice,
		CurrentPrice: f.CurrentPrice,
		Warnings:     f.Warnings,
	}
}

func logDir() string {
	if v := os.Getenv("FORECAST_LOG_DIR"); v != "" {
		return v
	}
	return filepath.Join("logs", "forecasts")
}

func dailyFilepath(t time.Time) string {
	return filepath.Join(logDir(), t.UTC().Format("2006-01-02")+".txt")
}

func Append(e Entry) error {
	mu.Lock()
	defer mu.Unlock()
	now := time.Now().UTC()
	e.Time = now.Format("2006-01-02 15:04:05")
	p := dailyFilepath(now)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	b, _ := json.Marshal(e)
	_, err = fmt.Fprintln(f, string(b))
	return err
}

// CompressOlder gzips audit files older than retentionDays and removes the
// originals. A non-positive retention disables compression.
func CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	root := logDir()
	cutoff := time.Now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".txt" {
			return nil
		}
		info, er := os.Stat(p)
		if er != nil || !info.ModTime().Before(cutoff) {
			return nil
		}

		gz := p + ".gz"
		if _, e2 := os.Stat(gz); e2 == nil {
			_ = os.Remove(p)
			return nil
		}

		in, e3 := os.Open(p)
		if e3 != nil {
			return nil
		}
		defer in.Close()

		out, e4 := os.OpenFile(gz, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if e4 != nil {
			return nil
		}
		gw := gzip.NewWriter(out)
		if _, e5 := io.Copy(gw, in); e5 != nil {
			gw.Close()
			out.Close()
			_ = os.Remove(gz)
			return nil
		}
		gw.Close()
		out.Close()
		_ = os.Remove(p)
		return nil
	})
}
