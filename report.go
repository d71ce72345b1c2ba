package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/luinbytes/image-automator/analysis"
	"github.com/luinbytes/image-automator/imageio"
	"github.com/luinbytes/image-automator/storage"
)

const (
	reportFile = "analysis_report.json"
	csvFile    = "analysis_report.csv"
)

// imageRecord is one analysed input as shown in reports and the TUI.
type imageRecord struct {
	File            string  `json:"file"`
	Size            int64   `json:"size"`
	Format          string  `json:"format,omitempty"`
	Width           int     `json:"width,omitempty"`
	Height          int     `json:"height,omitempty"`
	Mode            string  `json:"mode,omitempty"`
	Kind            string  `json:"kind,omitempty"`
	Temperature     string  `json:"temperature,omitempty"`
	WarmthIndex     float64 `json:"warmth_index"`
	Brightness      string  `json:"brightness,omitempty"`
	BrightnessScore float64 `json:"brightness_score"`
	Mean            string  `json:"mean,omitempty"`
	Dominant        string  `json:"dominant,omitempty"`
	Prominent       string  `json:"prominent,omitempty"`
	Recipe          string  `json:"recipe,omitempty"`
	Error           string  `json:"error,omitempty"`
}

func newRecord(f storage.FileInfo, info imageio.Info, p analysis.Profile, prominent analysis.RGB) imageRecord {
	kind := analysis.Classify(p)
	return imageRecord{
		File:            f.Path,
		Size:            f.Size,
		Format:          info.Format,
		Width:           info.Width,
		Height:          info.Height,
		Mode:            info.Mode,
		Kind:            kind.String(),
		Temperature:     p.Temperature.String(),
		WarmthIndex:     p.WarmthIndex,
		Brightness:      p.Brightness.String(),
		BrightnessScore: p.Score,
		Mean:            p.Mean.Hex(),
		Dominant:        p.Dominant.Hex(),
		Prominent:       prominent.Hex(),
		Recipe:          analysis.Recipes[kind].String(),
	}
}

type analysisReport struct {
	Version    string         `json:"version"`
	Timestamp  time.Time      `json:"timestamp"`
	Input      string         `json:"input"`
	Source     string         `json:"source"`
	ImageCount int            `json:"image_count"`
	Failed     int            `json:"failed"`
	Kinds      map[string]int `json:"kinds"`
	Images     []imageRecord  `json:"images"`
}

func buildReport(recs []imageRecord) analysisReport {
	rep := analysisReport{
		Version:   version,
		Timestamp: time.Now(),
		Input:     cfg.Input,
		Source:    cfg.Source,
		Kinds:     make(map[string]int),
		Images:    recs,
	}
	for _, r := range recs {
		if r.Error != "" {
			rep.Failed++
			continue
		}
		rep.ImageCount++
		rep.Kinds[r.Kind]++
	}
	return rep
}

func writeReport(w io.Writer, recs []imageRecord) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildReport(recs))
}

var csvHeader = []string{
	"file", "size", "format", "width", "height", "mode", "kind",
	"temperature", "warmth_index", "brightness", "brightness_score",
	"mean", "dominant", "prominent", "recipe", "error",
}

func (r imageRecord) row() []string {
	return []string{
		r.File,
		strconv.FormatInt(r.Size, 10),
		r.Format,
		strconv.Itoa(r.Width),
		strconv.Itoa(r.Height),
		r.Mode,
		r.Kind,
		r.Temperature,
		strconv.FormatFloat(r.WarmthIndex, 'f', 4, 64),
		r.Brightness,
		strconv.FormatFloat(r.BrightnessScore, 'f', 4, 64),
		r.Mean,
		r.Dominant,
		r.Prominent,
		r.Recipe,
		r.Error,
	}
}

// writeCSV exports records to CSV format for easy integration with other tools
func writeCSV(w io.Writer, recs []imageRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		if err := cw.Write(r.row()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// exportReports writes the requested reports into the output folder.
func exportReports(ctx context.Context, ws *workspace, recs []imageRecord) {
	if cfg.ExportReport {
		err := storage.WriteFile(ctx, ws.dst, ws.dstDir, reportFile, func(w io.Writer) error {
			return writeReport(w, recs)
		})
		if err != nil {
			log.Printf("%sFailed to export report: %v", emoji("⚠️"), err)
		} else {
			log.Printf("%sReport exported to %s", emoji("📄"), reportFile)
		}
	}

	if cfg.ExportCSV {
		err := storage.WriteFile(ctx, ws.dst, ws.dstDir, csvFile, func(w io.Writer) error {
			return writeCSV(w, recs)
		})
		if err != nil {
			log.Printf("%sFailed to export CSV: %v", emoji("⚠️"), err)
		} else {
			log.Printf("%sCSV exported to %s", emoji("📄"), csvFile)
		}
	}
}
