package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/luinbytes/image-automator/analysis"
	"github.com/luinbytes/image-automator/imageio"
)

// progressFunc returns a batch progress callback that draws the bar on
// stderr. In verbose mode per-file log lines are printed instead.
func progressFunc() func(done, total int) {
	start := time.Now()
	return func(done, total int) {
		if cfg.Verbose {
			return
		}
		printProgress(done, total, start)
		if done == total {
			fmt.Fprintln(os.Stderr)
		}
	}
}

// printProgress displays a progress bar with ETA
func printProgress(current, total int, startTime time.Time) {
	if total <= 0 {
		return
	}
	percentage := float64(current) / float64(total)
	barWidth := 30
	filled := int(percentage * float64(barWidth))
	empty := barWidth - filled

	filledStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#7D56F4")).
		Background(lipgloss.Color("#7D56F4"))
	emptyStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#3c3c3c")).
		Background(lipgloss.Color("#3c3c3c"))

	var bar strings.Builder
	for i := 0; i < filled; i++ {
		bar.WriteString(filledStyle.Render("█"))
	}
	for i := 0; i < empty; i++ {
		bar.WriteString(emptyStyle.Render("░"))
	}

	elapsed := time.Since(startTime).Seconds()
	eta := "..."
	if current > 0 {
		eta = formatDuration(float64(total-current) * (elapsed / float64(current)))
	}

	fmt.Fprintf(os.Stderr, "\r%s%s %d/%d (%.1f%%) ETA: %s", emoji("🖼️"), bar.String(), current, total, percentage*100, eta)
}

// formatDuration converts seconds to a human-readable duration
func formatDuration(seconds float64) string {
	if seconds < 60 {
		return fmt.Sprintf("%.0fs", seconds)
	}
	minutes := int(seconds / 60)
	if minutes < 60 {
		return fmt.Sprintf("%dm %ds", minutes, int(seconds)%60)
	}
	hours := minutes / 60
	minutes = minutes % 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// formatFileError provides user-friendly error messages for common file issues
func formatFileError(path string, err error) string {
	var (
		decodeErr *imageio.DecodeError
		modeErr   *analysis.UnsupportedModeError
	)
	errStr := err.Error()

	switch {
	case errors.Is(err, fs.ErrPermission):
		return fmt.Sprintf("%s: Permission denied. Check file ownership.", path)
	case errors.Is(err, fs.ErrNotExist):
		return fmt.Sprintf("%s: File not found. It may have been deleted or moved.", path)
	case strings.Contains(errStr, "too many open files"):
		return fmt.Sprintf("%s: System limit reached. Try reducing -workers count or increase ulimit.", path)
	case strings.Contains(errStr, "is a directory"):
		return fmt.Sprintf("%s: Expected a file but found a directory.", path)
	case errors.As(err, &modeErr):
		return fmt.Sprintf("%s: Unsupported colour mode %s. Only colour and grayscale images can be analysed.", path, modeErr.Model)
	case errors.As(err, &decodeErr):
		return fmt.Sprintf("%s: Not a readable image. The file may be corrupted or in an unsupported format.", path)
	default:
		return fmt.Sprintf("%s: %v", path, err)
	}
}
