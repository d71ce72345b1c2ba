package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"io"
	"log"
	"os"
	"os/signal"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/luinbytes/image-automator/imageio"
	"github.com/luinbytes/image-automator/storage"
)

const (
	version       = "1.0.0"
	defaultInput  = "./input"
	defaultOutput = "./output"
	spawnedEnv    = "_IMGAUTO_SPAWNED"
)

// Config holds application configuration
type Config struct {
	Input   string `json:"input,omitempty"`
	Output  string `json:"output,omitempty"`
	Source  string `json:"source,omitempty"` // "local" or "google-drive"
	Workers int    `json:"workers,omitempty"`
	Quality int    `json:"quality,omitempty"` // JPEG quality of the fast batch job
	Seed    int64  `json:"seed,omitempty"`
	Verbose bool   `json:"verbose,omitempty"`
	NoEmoji bool   `json:"no_emoji,omitempty"`

	// Modes
	Demo      bool `json:"-"`
	Basic     bool `json:"-"`
	Analyze   bool `json:"-"`
	Smart     bool `json:"-"`
	Batch     bool `json:"-"`
	Compare   bool `json:"-"`
	Collage   bool `json:"-"`
	Gradient  bool `json:"-"`
	Art       bool `json:"-"`
	Watermark bool `json:"-"`
	Samples   bool `json:"-"`
	TUI       bool `json:"-"`
	Watch     bool `json:"-"`

	ExportReport bool `json:"export,omitempty"`
	ExportCSV    bool `json:"export_csv,omitempty"`

	// Collage
	Rows int `json:"rows,omitempty"`
	Cols int `json:"cols,omitempty"`

	// Generative art
	Palette string `json:"palette,omitempty"` // "random" or "harmonious"

	// Watermark
	UserID   string  `json:"user_id,omitempty"`
	Username string  `json:"username,omitempty"`
	ApplyTo  string  `json:"apply_to,omitempty"`
	Position string  `json:"position,omitempty"`
	Opacity  float64 `json:"opacity,omitempty"`

	WatchDebounce time.Duration `json:"-"`

	Cloud storage.CloudConfig `json:"cloud"`
}

var (
	cfg        Config
	configPath string // Path to config file
)

// emoji returns the emoji if NoEmoji is false, otherwise returns empty string
func emoji(e string) string {
	if cfg.NoEmoji {
		return ""
	}
	return e + " "
}

func init() {
	flag.Usage = customUsage

	flag.StringVar(&configPath, "config", "", "Config file path (JSON format)")

	flag.StringVar(&cfg.Input, "input", defaultInput, "Folder holding the source images")
	flag.StringVar(&cfg.Output, "output", defaultOutput, "Folder receiving the results")
	flag.StringVar(&cfg.Source, "source", string(storage.ProviderLocal), "Where input and output folders live: local or google-drive")
	flag.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "Number of worker goroutines for batch processing")
	flag.IntVar(&cfg.Quality, "quality", 85, "JPEG quality of the fast batch job (1-100)")
	flag.Int64Var(&cfg.Seed, "seed", 1, "Seed for generative art")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Show detailed output")
	flag.BoolVar(&cfg.NoEmoji, "no-emoji", false, "Disable emoji output for cleaner logs")

	flag.BoolVar(&cfg.Demo, "demo", false, "Run every step in turn (default when no mode is given)")
	flag.BoolVar(&cfg.Basic, "basic", false, "Basic operations on the first input image")
	flag.BoolVar(&cfg.Analyze, "analyze", false, "Analyse colour and brightness of every input image")
	flag.BoolVar(&cfg.Smart, "smart", false, "Classify every input image and apply its enhancement recipe")
	flag.BoolVar(&cfg.Batch, "batch", false, "Apply the filter pipeline to every input image with a worker pool")
	flag.BoolVar(&cfg.Compare, "compare", false, "With -batch: run sequentially first and report the speed-up")
	flag.BoolVar(&cfg.Collage, "collage", false, "Build a collage from the input images")
	flag.BoolVar(&cfg.Gradient, "gradient", false, "Render the two sample gradients")
	flag.BoolVar(&cfg.Art, "art", false, "Render generative art")
	flag.BoolVar(&cfg.Watermark, "watermark", false, "Generate personal watermarks and stamp one onto an image")
	flag.BoolVar(&cfg.Samples, "samples", false, "Write synthetic sample images into the input folder")
	flag.BoolVar(&cfg.TUI, "tui", false, "Review analysed images interactively and enhance the selected ones")
	flag.BoolVar(&cfg.Watch, "watch", false, "Enhance images as they are dropped into the input folder")

	flag.BoolVar(&cfg.ExportReport, "export", false, "Export the analysis report to JSON")
	flag.BoolVar(&cfg.ExportCSV, "export-csv", false, "Export the analysis report to CSV")

	flag.IntVar(&cfg.Rows, "rows", 2, "Collage rows")
	flag.IntVar(&cfg.Cols, "cols", 2, "Collage columns")
	flag.StringVar(&cfg.Palette, "palette", "random", "Generative art palette: random or harmonious")

	flag.StringVar(&cfg.UserID, "user-id", "", "Watermark user id (default: the three sample users)")
	flag.StringVar(&cfg.Username, "username", "", "Watermark display name")
	flag.StringVar(&cfg.ApplyTo, "apply-to", "", "Input image to stamp (default: first input image)")
	flag.StringVar(&cfg.Position, "position", "bottom-right", "Watermark position: bottom-right, center or top-left")
	flag.Float64Var(&cfg.Opacity, "opacity", 0.7, "Watermark opacity (accepted, the mark's own alpha is used)")

	flag.DurationVar(&cfg.WatchDebounce, "watch-debounce", 2*time.Second, "Debounce interval for file events in watch mode")
}

// customUsage prints categorized help text
func customUsage() {
	fmt.Fprintf(os.Stderr, "Usage: image-automator [mode] [options]\n\n")
	fmt.Fprintf(os.Stderr, "Batch image automation: transforms, analysis, smart enhancement, generative art and watermarks.\n\n")

	fmt.Fprintf(os.Stderr, "CONFIG:\n")
	fmt.Fprintf(os.Stderr, "  -config string\n\tConfig file path (JSON). Also checks ./.imgautorc.json and ~/.config/image-automator/config.json\n")

	fmt.Fprintf(os.Stderr, "\nFOLDERS:\n")
	fmt.Fprintf(os.Stderr, "  -input string\n\tSource folder (default: %s)\n", defaultInput)
	fmt.Fprintf(os.Stderr, "  -output string\n\tResult folder (default: %s)\n", defaultOutput)
	fmt.Fprintf(os.Stderr, "  -source string\n\tlocal or google-drive (default: local)\n")

	fmt.Fprintf(os.Stderr, "\nMODES:\n")
	fmt.Fprintf(os.Stderr, "  -demo\n\tRun every mode in turn (default)\n")
	fmt.Fprintf(os.Stderr, "  -basic\n\tResize, rotate, grayscale and crop the first input image\n")
	fmt.Fprintf(os.Stderr, "  -analyze\n\tPrint the colour profile and class of every input image\n")
	fmt.Fprintf(os.Stderr, "  -smart\n\tEnhance every input image with the recipe for its class\n")
	fmt.Fprintf(os.Stderr, "  -batch\n\tApply the filter pipeline with a worker pool\n")
	fmt.Fprintf(os.Stderr, "  -compare\n\tWith -batch: also run sequentially and print the speed-up\n")
	fmt.Fprintf(os.Stderr, "  -collage\n\tBuild a -rows x -cols collage (default 2x2)\n")
	fmt.Fprintf(os.Stderr, "  -gradient\n\tRender two sample gradients\n")
	fmt.Fprintf(os.Stderr, "  -art\n\tRender generative art (-seed, -palette)\n")
	fmt.Fprintf(os.Stderr, "  -watermark\n\tGenerate watermarks (-user-id, -username) and stamp one (-apply-to, -position)\n")
	fmt.Fprintf(os.Stderr, "  -samples\n\tWrite synthetic sample images into the input folder\n")
	fmt.Fprintf(os.Stderr, "  -tui\n\tReview analysed images and enhance the selected ones\n")
	fmt.Fprintf(os.Stderr, "  -watch\n\tEnhance images as they appear in the input folder (local only)\n")

	fmt.Fprintf(os.Stderr, "\nPROCESSING OPTIONS:\n")
	fmt.Fprintf(os.Stderr, "  -workers int\n\tNumber of parallel workers (default: %d)\n", runtime.NumCPU())
	fmt.Fprintf(os.Stderr, "  -quality int\n\tJPEG quality of the fast batch job (default: 85)\n")
	fmt.Fprintf(os.Stderr, "  -watch-debounce duration\n\tDebounce interval for file events (default: 2s)\n")

	fmt.Fprintf(os.Stderr, "\nOUTPUT OPTIONS:\n")
	fmt.Fprintf(os.Stderr, "  -verbose\n\tShow detailed progress\n")
	fmt.Fprintf(os.Stderr, "  -export\n\tExport JSON analysis report to the output folder\n")
	fmt.Fprintf(os.Stderr, "  -export-csv\n\tExport CSV analysis report to the output folder\n")
	fmt.Fprintf(os.Stderr, "  -no-emoji\n\tPlain text output (no emoji)\n")

	fmt.Fprintf(os.Stderr, "\nEXAMPLES:\n")
	fmt.Fprintf(os.Stderr, "  image-automator -samples\n")
	fmt.Fprintf(os.Stderr, "  image-automator -batch -compare -workers 4\n")
	fmt.Fprintf(os.Stderr, "  image-automator -analyze -export-csv\n")
	fmt.Fprintf(os.Stderr, "  image-automator -watermark -user-id 42 -username \"Ada Lovelace\" -position center\n")
	fmt.Fprintf(os.Stderr, "  image-automator -source google-drive -input Photos -output Photos/enhanced -smart\n")
}

// findConfigFile resolves which config file to load.
// Precedence: explicit -config > ./.imgautorc.json > ~/.config/image-automator/config.json
func findConfigFile() string {
	if configPath != "" {
		return configPath
	}
	if _, err := os.Stat(".imgautorc.json"); err == nil {
		return ".imgautorc.json"
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	global := filepath.Join(home, ".config", "image-automator", "config.json")
	if _, err := os.Stat(global); err == nil {
		return global
	}
	return ""
}

// loadConfig merges the config file into cfg. Flags given on the command
// line win because main parses them again afterwards.
func loadConfig() error {
	configFile := findConfigFile()
	if configFile == "" {
		return nil
	}

	data, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("cannot read config file %s: %w", configFile, err)
	}

	var fileCfg Config
	if err := json.Unmarshal(data, &fileCfg); err != nil {
		return fmt.Errorf("cannot parse config file %s: %w", configFile, err)
	}
	mergeConfig(&cfg, fileCfg)

	if cfg.Verbose {
		log.Printf("%sLoaded config from: %s", emoji("📄"), configFile)
	}
	return nil
}

func mergeConfig(dst *Config, src Config) {
	if src.Input != "" {
		dst.Input = src.Input
	}
	if src.Output != "" {
		dst.Output = src.Output
	}
	if src.Source != "" {
		dst.Source = src.Source
	}
	if src.Workers != 0 {
		dst.Workers = src.Workers
	}
	if src.Quality != 0 {
		dst.Quality = src.Quality
	}
	if src.Seed != 0 {
		dst.Seed = src.Seed
	}
	if src.Rows != 0 {
		dst.Rows = src.Rows
	}
	if src.Cols != 0 {
		dst.Cols = src.Cols
	}
	if src.Palette != "" {
		dst.Palette = src.Palette
	}
	if src.UserID != "" {
		dst.UserID = src.UserID
	}
	if src.Username != "" {
		dst.Username = src.Username
	}
	if src.ApplyTo != "" {
		dst.ApplyTo = src.ApplyTo
	}
	if src.Position != "" {
		dst.Position = src.Position
	}
	if src.Opacity != 0 {
		dst.Opacity = src.Opacity
	}
	if src.Cloud.GoogleDrive != nil {
		dst.Cloud.GoogleDrive = src.Cloud.GoogleDrive
	}
	dst.Verbose = src.Verbose || dst.Verbose
	dst.NoEmoji = src.NoEmoji || dst.NoEmoji
	dst.ExportReport = src.ExportReport || dst.ExportReport
	dst.ExportCSV = src.ExportCSV || dst.ExportCSV
}

func main() {
	flag.Parse()

	if err := loadConfig(); err != nil {
		log.Printf("Warning: could not load config: %v", err)
	}

	// Re-parse flags to override config values
	flag.Parse()

	spawned := os.Getenv(spawnedEnv) == "1"
	if flag.NFlag() == 0 && isDoubleClick() {
		if err := spawnTerminal(); err == nil {
			return
		}
		spawned = true
		cfg.TUI = true
	}

	// A spawned or double-clicked binary works next to itself.
	if spawned {
		if dir := getBinaryDir(); dir != "" {
			if cfg.Input == defaultInput {
				cfg.Input = filepath.Join(dir, "input")
			}
			if cfg.Output == defaultOutput {
				cfg.Output = filepath.Join(dir, "output")
			}
		}
	}

	log.SetFlags(log.Ltime)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatalf("%sError: %v", emoji("❌"), err)
	}
}

// run dispatches to the selected modes, in the order the demo runs them.
func run(ctx context.Context) error {
	if cfg.Watch {
		return runWatchMode(ctx)
	}

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	if cfg.Verbose {
		log.Printf("%sImage Automator v%s", emoji("🚀"), version)
		log.Printf("%sInput:  %s (%s)", emoji("📁"), cfg.Input, ws.src.Name())
		log.Printf("%sOutput: %s (%s)", emoji("📁"), cfg.Output, ws.dst.Name())
		log.Printf("%sWorkers: %d", emoji("👷"), cfg.Workers)
	}

	modes := []struct {
		on  bool
		run func(context.Context, *workspace) error
	}{
		{cfg.Samples, runSamples},
		{cfg.Basic, runBasic},
		{cfg.Gradient, runGradient},
		{cfg.Collage, runCollage},
		{cfg.Analyze, runAnalyze},
		{cfg.Smart, runSmart},
		{cfg.Batch, runBatch},
		{cfg.Art, runArt},
		{cfg.Watermark, runWatermark},
		{cfg.TUI, runTUI},
	}

	selected := false
	for _, m := range modes {
		if !m.on {
			continue
		}
		selected = true
		if err := m.run(ctx, ws); err != nil {
			return err
		}
	}
	if !selected || cfg.Demo {
		return runDemo(ctx, ws)
	}
	return nil
}

// workspace is where a run reads its inputs and writes its results.
type workspace struct {
	src    storage.Provider
	srcDir string
	dst    storage.Provider
	dstDir string
}

// openWorkspace builds the providers for cfg. Local folders each get their
// own provider so absolute -input and -output paths work; Google Drive uses
// one connection with both folders below My Drive.
func openWorkspace(ctx context.Context) (*workspace, error) {
	kind := storage.ProviderType(cfg.Source)
	if kind == storage.ProviderGoogleDrive {
		p, err := storage.New(ctx, kind, "", cfg.Cloud)
		if err != nil {
			return nil, fmt.Errorf("cannot connect to %s: %w", kind, err)
		}
		return &workspace{src: p, srcDir: drivePath(cfg.Input), dst: p, dstDir: drivePath(cfg.Output)}, nil
	}

	src, err := storage.New(ctx, kind, cfg.Input, cfg.Cloud)
	if err != nil {
		return nil, fmt.Errorf("cannot open input folder: %w", err)
	}
	dst, err := storage.New(ctx, kind, cfg.Output, cfg.Cloud)
	if err != nil {
		return nil, fmt.Errorf("cannot open output folder: %w", err)
	}
	return &workspace{src: src, dst: dst}, nil
}

func drivePath(p string) string {
	p = path.Clean(filepath.ToSlash(p))
	p = strings.TrimPrefix(p, "/")
	if p == "." {
		return ""
	}
	return p
}

func (w *workspace) Close() {
	w.src.Close()
	if w.dst != w.src {
		w.dst.Close()
	}
}

// save encodes img into the output folder, choosing the format from name.
func (w *workspace) save(ctx context.Context, sub, name string, img image.Image, opts imageio.SaveOptions) error {
	format, err := imageio.FormatFromPath(name)
	if err != nil {
		return err
	}
	return storage.WriteFile(ctx, w.dst, path.Join(w.dstDir, sub), name, func(out io.Writer) error {
		return imageio.Encode(out, img, format, opts)
	})
}

// getBinaryDir returns the directory where the executable is located.
// Falls back to current directory on errors or when running via `go run`.
func getBinaryDir() string {
	execPath, err := os.Executable()
	if err != nil {
		if cfg.Verbose {
			log.Printf("%sCould not get executable path: %v", emoji("⚠️"), err)
		}
		return ""
	}

	realPath, err := filepath.EvalSymlinks(execPath)
	if err != nil {
		realPath = execPath
	}

	if strings.Contains(realPath, "go-build") {
		if cfg.Verbose {
			log.Printf("%sDetected go run mode, using current directory", emoji("ℹ️"))
		}
		return ""
	}

	return filepath.Dir(realPath)
}
