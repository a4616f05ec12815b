package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var lang = language.English

// Write prints the report as a two-column table.
func (r *Report) Write(w io.Writer) error {
	p := message.NewPrinter(lang)
	s := r.Summary

	keys := []string{
		"Board", "Games", "Workers", "Seed", "Elapsed",
		"Mean score", "Score 95% CI", "Std dev", "Median", "P90", "Best",
		"Mean moves", "Deepest cascade", "Deadlocks",
	}
	vals := map[string]string{
		"Board":           fmt.Sprintf("%dx%d, %d colors", r.Size, r.Size, r.Colors),
		"Games":           p.Sprintf("%d", r.Games),
		"Workers":         p.Sprintf("%d", r.Workers),
		"Seed":            fmt.Sprintf("%d", r.Seed),
		"Elapsed":         r.Elapsed.Round(time.Millisecond).String(),
		"Mean score":      p.Sprintf("%.1f", s.MeanScore),
		"Score 95% CI":    p.Sprintf("[%.1f, %.1f]", s.ScoreCI[0], s.ScoreCI[1]),
		"Std dev":         p.Sprintf("%.1f", s.StdScore),
		"Median":          p.Sprintf("%.0f", s.MedianScore),
		"P90":             p.Sprintf("%.0f", s.P90Score),
		"Best":            p.Sprintf("%.0f", s.MaxScore),
		"Mean moves":      p.Sprintf("%.1f", s.MeanMoves),
		"Deepest cascade": p.Sprintf("%d", s.MaxCascades),
		"Deadlocks":       p.Sprintf("%d (%.1f%%)", s.Deadlocks, 100*s.DeadlockRate(r.Games)),
	}

	_, err := io.WriteString(w, table("Match-3 simulation", keys, vals))
	return err
}

func table(title string, keys []string, vals map[string]string) string {
	keyW, valW := 0, 0
	for _, k := range keys {
		keyW = max(keyW, runewidth.StringWidth(k))
		valW = max(valW, runewidth.StringWidth(vals[k]))
	}
	keyW += 2
	valW += 2

	inner := keyW + valW + 1
	titleW := runewidth.StringWidth(title)
	if titleW > inner {
		valW += titleW - inner
		inner = titleW
	}
	left := (inner - titleW) / 2

	divider := "+" + strings.Repeat("-", keyW) + "+" + strings.Repeat("-", valW) + "+\n"

	var b strings.Builder
	b.WriteString("+" + strings.Repeat("-", inner) + "+\n")
	b.WriteString("|" + blank(left) + title + blank(inner-titleW-left) + "|\n")
	b.WriteString(divider)
	for _, k := range keys {
		v := vals[k]
		b.WriteString("| " + runewidth.FillRight(k, keyW-2) + " | " + runewidth.FillRight(v, valW-2) + " |\n")
	}
	b.WriteString(divider)
	return b.String()
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}

// WriteReport stores r at path as zstd-compressed JSON.
func WriteReport(path string, r *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}

	zw, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		f.Close()
		return fmt.Errorf("create zstd writer: %w", err)
	}
	if err := json.NewEncoder(zw).Encode(r); err != nil {
		zw.Close()
		f.Close()
		return fmt.Errorf("encode report: %w", err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		return fmt.Errorf("flush report: %w", err)
	}
	return f.Close()
}

// ReadReport loads a report written by WriteReport.
func ReadReport(path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()

	var r Report
	if err := json.NewDecoder(zr).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}
