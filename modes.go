package main

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"log"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/luinbytes/image-automator/analysis"
	"github.com/luinbytes/image-automator/batch"
	"github.com/luinbytes/image-automator/imageio"
	"github.com/luinbytes/image-automator/render"
	"github.com/luinbytes/image-automator/storage"
	"github.com/luinbytes/image-automator/transform"
	"github.com/luinbytes/image-automator/tui"
	"github.com/luinbytes/image-automator/watermark"
)

var errNoInputs = errors.New("no .jpg, .jpeg or .png images in the input folder (try -samples)")

var sampleSize = image.Pt(800, 600)

type user struct{ id, name string }

// demoUsers get a watermark each when no -user-id is given.
var demoUsers = []user{
	{"12345", "Иван Петров"},
	{"67890", "Анна Сидорова"},
	{"54321", "Петр Иванов"},
}

const (
	stampUserID   = "12345"
	stampUsername = "Тестовый Пользователь"
)

func (w *workspace) processor(sub string) *batch.Processor {
	return &batch.Processor{
		Source:    w.src,
		InputDir:  w.srcDir,
		Dest:      w.dst,
		OutputDir: path.Join(w.dstDir, sub),
	}
}

// open decodes one input and reports its format name.
func (w *workspace) open(ctx context.Context, f storage.FileInfo) (image.Image, string, error) {
	r, err := w.src.OpenFile(ctx, f.ID)
	if err != nil {
		return nil, "", &imageio.DecodeError{Source: f.Path, Err: err}
	}
	defer r.Close()
	return imageio.Decode(r, f.Path)
}

// input finds an input image by file name or path, or the first one when
// name is empty.
func (w *workspace) input(ctx context.Context, name string) (storage.FileInfo, error) {
	files, err := w.processor("").Inputs(ctx)
	if err != nil {
		return storage.FileInfo{}, fmt.Errorf("cannot list inputs: %w", err)
	}
	if len(files) == 0 {
		return storage.FileInfo{}, errNoInputs
	}
	if name == "" {
		return files[0], nil
	}
	for _, f := range files {
		if f.Name == name || f.Path == name {
			return f, nil
		}
	}
	if imageio.IsImageFile(name) {
		return storage.FileInfo{}, fmt.Errorf("%s is not a .jpg, .jpeg or .png image in the input folder", name)
	}
	return storage.FileInfo{}, fmt.Errorf("%s is not an image file", name)
}

func stem(name string) string {
	base := path.Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}

// runDemo walks through every mode in turn. Sample inputs are generated
// when the folder is empty, and a failing step does not stop the next one.
func runDemo(ctx context.Context, ws *workspace) error {
	log.Printf("%sIMAGE AUTOMATION v%s", emoji("🚀"), version)
	log.Println(strings.Repeat("=", 50))

	if files, err := ws.processor("").Inputs(ctx); err != nil || len(files) == 0 {
		if err := runSamples(ctx, ws); err != nil {
			return err
		}
	}

	steps := []struct {
		name string
		run  func(context.Context, *workspace) error
	}{
		{"Basic operations", runBasic},
		{"Gradients", runGradient},
		{"Collage", runCollage},
		{"Analysis", runAnalyze},
		{"Smart processing", runSmart},
		{"Batch comparison", runBatchCompare},
		{"Generative art", runArt},
		{"Watermarks", runWatermark},
	}

	failed := 0
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Println("")
		if err := step.run(ctx, ws); err != nil {
			failed++
			log.Printf("%s%s failed: %v", emoji("⚠️"), step.name, err)
		}
	}

	log.Println("")
	log.Println(strings.Repeat("=", 50))
	if failed > 0 {
		log.Printf("%sDone with %d failed step(s). Results saved in %s", emoji("⚠️"), failed, cfg.Output)
		return nil
	}
	log.Printf("%sAll steps completed! Results saved in %s", emoji("✅"), cfg.Output)
	return nil
}

func runSamples(ctx context.Context, ws *workspace) error {
	log.Printf("%sCreating sample images in %s...", emoji("🎨"), cfg.Input)
	samples := render.Samples(3, sampleSize)
	for _, s := range samples {
		img := s.Image
		err := storage.WriteFile(ctx, ws.src, ws.srcDir, s.Name, func(w io.Writer) error {
			return imageio.Encode(w, img, imageio.JPEG, imageio.DefaultSaveOptions)
		})
		if err != nil {
			return fmt.Errorf("cannot write sample %s: %w", s.Name, err)
		}
		if cfg.Verbose {
			log.Printf("   %s", s.Name)
		}
	}
	log.Printf("%sCreated %d sample images", emoji("✅"), len(samples))
	return nil
}

func runBasic(ctx context.Context, ws *workspace) error {
	log.Printf("%sBASIC OPERATIONS", emoji("🔧"))

	f, err := ws.input(ctx, "")
	if err != nil {
		return err
	}
	img, format, err := ws.open(ctx, f)
	if err != nil {
		return errors.New(formatFileError(f.Path, err))
	}

	info := imageio.Describe(img, format)
	log.Printf("%sFile:   %s", emoji("📄"), f.Path)
	log.Printf("   Format: %s", info.Format)
	log.Printf("   Size:   %dx%d (%s)", info.Width, info.Height, formatBytes(f.Size))
	log.Printf("   Mode:   %s", info.Mode)

	s := stem(f.Name)
	if err := ws.save(ctx, "", s+"_basic.png", img, imageio.DefaultSaveOptions); err != nil {
		return err
	}

	set := transform.Basic(img)
	if set.Cropped == nil {
		log.Printf("%sImage too small to crop %v, skipping", emoji("⚠️"), transform.BasicCrop)
	}
	named := set.Named()
	names := make([]string, 0, len(named))
	for name := range named {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := ws.save(ctx, "", s+"_"+name, named[name], imageio.DefaultSaveOptions); err != nil {
			return err
		}
	}

	log.Printf("%sBasic operations done (%d files)", emoji("✅"), len(names)+1)
	return nil
}

func runGradient(ctx context.Context, ws *workspace) error {
	log.Printf("%sGRADIENTS", emoji("🌈"))
	gradients := []struct {
		name       string
		size       image.Point
		start, end color.RGBA
	}{
		{"gradient_1.jpg", image.Pt(400, 300), color.RGBA{255, 100, 0, 255}, color.RGBA{0, 100, 255, 255}},
		{"gradient_2.jpg", image.Pt(300, 400), color.RGBA{100, 255, 100, 255}, color.RGBA{255, 100, 255, 255}},
	}
	for _, g := range gradients {
		if err := ws.save(ctx, "", g.name, render.Gradient(g.size, g.start, g.end), imageio.DefaultSaveOptions); err != nil {
			return err
		}
		log.Printf("%sSaved %s", emoji("🖼️"), g.name)
	}
	return nil
}

func logFailures(failed []batch.Result) {
	for _, r := range failed {
		log.Printf("%s%s", emoji("⚠️"), formatFileError(r.Input, r.Err))
	}
}

func runCollage(ctx context.Context, ws *workspace) error {
	log.Printf("%sCOLLAGE %dx%d", emoji("🧩"), cfg.Rows, cfg.Cols)

	images, failed, err := ws.processor("").LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("cannot list inputs: %w", err)
	}
	logFailures(failed)

	collage, err := render.Collage(images, cfg.Rows, cfg.Cols, render.DefaultCell)
	if err != nil {
		return fmt.Errorf("cannot build collage: %w", err)
	}
	if err := ws.save(ctx, "", "collage.jpg", collage, imageio.DefaultSaveOptions); err != nil {
		return err
	}
	log.Printf("%sCollage saved: collage.jpg", emoji("✅"))
	return nil
}

// analyzeInputs analyses every input. Files that fail keep a record with
// Error set. The returned files are in the same order as the records.
func analyzeInputs(ctx context.Context, ws *workspace) ([]imageRecord, []storage.FileInfo, error) {
	files, err := ws.processor("").Inputs(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot list inputs: %w", err)
	}

	progress := progressFunc()
	recs := make([]imageRecord, 0, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		recs = append(recs, analyzeOne(ctx, ws, f))
		progress(i+1, len(files))
	}
	return recs, files, nil
}

func analyzeOne(ctx context.Context, ws *workspace, f storage.FileInfo) imageRecord {
	img, format, err := ws.open(ctx, f)
	if err != nil {
		return imageRecord{File: f.Path, Size: f.Size, Error: formatFileError(f.Path, err)}
	}
	p, err := analysis.Analyze(img)
	if err != nil {
		return imageRecord{File: f.Path, Size: f.Size, Error: formatFileError(f.Path, err)}
	}
	return newRecord(f, imageio.Describe(img, format), p, analysis.Prominent(img))
}

func runAnalyze(ctx context.Context, ws *workspace) error {
	log.Printf("%sANALYSIS", emoji("🔍"))

	recs, _, err := analyzeInputs(ctx, ws)
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		return errNoInputs
	}

	for _, r := range recs {
		if r.Error != "" {
			log.Printf("%s%s", emoji("⚠️"), r.Error)
			continue
		}
		log.Printf("%s%s: %s (%.2f), %s (%.2f), mean %s, dominant %s -> %s",
			emoji("📊"), r.File, r.Temperature, r.WarmthIndex, r.Brightness, r.BrightnessScore,
			r.Mean, r.Dominant, r.Kind)
		if cfg.Verbose {
			log.Printf("   %dx%d %s %s, prominent %s, recipe %s", r.Width, r.Height, r.Format, r.Mode, r.Prominent, r.Recipe)
		}
	}

	exportReports(ctx, ws, recs)
	return nil
}

// smartJob analyses, classifies and enhances each input, writing
// smart_<name>.jpg.
func smartJob() batch.Job {
	jpeg := imageio.JPEG
	return batch.Job{
		Name:   "smart",
		Prefix: "smart_",
		Process: func(img image.Image) (image.Image, string, error) {
			res, err := analysis.SmartProcess(img)
			if err != nil {
				return nil, "", err
			}
			return res.Image, res.Kind.String(), nil
		},
		Format:  &jpeg,
		Options: imageio.DefaultSaveOptions,
		Flatten: true,
	}
}

func runSmart(ctx context.Context, ws *workspace) error {
	log.Printf("%sSMART PROCESSING", emoji("🧠"))
	rep, err := runJob(ctx, ws, smartJob(), "", cfg.Workers)
	if err != nil {
		return err
	}
	for _, r := range rep.Results {
		if r.OK {
			log.Printf("%s%s processed as %s: %s", emoji("✨"), r.Input, r.Note, r.Output)
		}
	}
	return nil
}

// fastJob is batch.Fast with the configured JPEG quality.
func fastJob() batch.Job {
	job := batch.Fast()
	if cfg.Quality > 0 {
		job.Options.Quality = cfg.Quality
	}
	return job
}

// runJob runs job over the inputs into the output subfolder sub. workers < 2
// runs sequentially.
func runJob(ctx context.Context, ws *workspace, job batch.Job, sub string, workers int) (batch.Report, error) {
	p := ws.processor(sub)
	p.Progress = progressFunc()

	var (
		rep batch.Report
		err error
	)
	if workers < 2 {
		rep, err = p.RunSequential(ctx, job)
	} else {
		rep, err = p.RunParallel(ctx, job, workers)
	}
	if err != nil {
		return rep, fmt.Errorf("%s job: %w", job.Name, err)
	}
	if len(rep.Results) == 0 {
		return rep, errNoInputs
	}

	for _, r := range rep.Results {
		if !r.OK {
			log.Printf("%s%s", emoji("⚠️"), formatFileError(r.Input, r.Err))
		} else if cfg.Verbose {
			log.Printf("%s%s -> %s (%v)", emoji("📄"), r.Input, r.Output, r.Elapsed.Round(time.Millisecond))
		}
	}
	log.Printf("%s%s: %d/%d files in %s with %d worker(s)", emoji("✅"), job.Name,
		rep.Succeeded(), len(rep.Results), formatDuration(rep.Elapsed.Seconds()), rep.Workers)
	return rep, nil
}

func runBatch(ctx context.Context, ws *workspace) error {
	if cfg.Compare {
		return runBatchCompare(ctx, ws)
	}
	log.Printf("%sBATCH PROCESSING", emoji("⚙️"))
	_, err := runJob(ctx, ws, fastJob(), "fast_results", cfg.Workers)
	return err
}

// runBatchCompare runs the filter pipeline sequentially and then with the
// worker pool, and reports the speed-up.
func runBatchCompare(ctx context.Context, ws *workspace) error {
	log.Printf("%sPERFORMANCE COMPARISON", emoji("⚙️"))

	slow, err := runJob(ctx, ws, batch.Slow(), "slow_results", 1)
	if err != nil {
		return err
	}
	fast, err := runJob(ctx, ws, fastJob(), "fast_results", cfg.Workers)
	if err != nil {
		return err
	}

	log.Printf("%sSequential: %.2f s", emoji("🐢"), slow.Elapsed.Seconds())
	log.Printf("%sParallel:   %.2f s", emoji("🐇"), fast.Elapsed.Seconds())
	if fast.Elapsed > 0 {
		log.Printf("%sSpeed-up:   %.1fx", emoji("🚀"), slow.Elapsed.Seconds()/fast.Elapsed.Seconds())
	}
	return nil
}

func parsePalette(s string) render.Palette {
	if strings.EqualFold(s, "harmonious") {
		return render.Harmonious
	}
	return render.RandomRGB
}

func runArt(ctx context.Context, ws *workspace) error {
	log.Printf("%sGENERATIVE ART", emoji("🎨"))
	for i := 0; i < 2; i++ {
		opts := render.DefaultArt
		opts.Seed = cfg.Seed + int64(i)
		opts.Palette = parsePalette(cfg.Palette)

		name := fmt.Sprintf("generative_art_%d.png", i+1)
		if err := ws.save(ctx, "", name, render.GenerativeArt(opts), imageio.DefaultSaveOptions); err != nil {
			return err
		}
		log.Printf("%sSaved %s (seed %d)", emoji("🖼️"), name, opts.Seed)
	}
	return nil
}

// fileSafe keeps letters, digits, dash and underscore.
func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, s)
}

func runWatermark(ctx context.Context, ws *workspace) error {
	log.Printf("%sWATERMARKS", emoji("💧"))

	users := demoUsers
	stampID, stampName := stampUserID, stampUsername
	if cfg.UserID != "" {
		users = []user{{cfg.UserID, cfg.Username}}
		stampID, stampName = cfg.UserID, cfg.Username
	}

	for _, u := range users {
		mark, err := watermark.Generate(u.id, u.name, watermark.DefaultSize)
		if err != nil {
			return fmt.Errorf("cannot generate watermark for %s: %w", u.id, err)
		}
		name := "watermark_" + fileSafe(u.id) + ".png"
		if err := ws.save(ctx, "", name, mark, imageio.DefaultSaveOptions); err != nil {
			return err
		}
		log.Printf("%sWatermark for %s (ID: %s, initials %s): %s", emoji("🔏"), u.name, u.id, watermark.Initials(u.name), name)
	}

	f, err := ws.input(ctx, cfg.ApplyTo)
	if errors.Is(err, errNoInputs) && cfg.ApplyTo == "" {
		log.Printf("%sNo input image to stamp, skipping", emoji("ℹ️"))
		return nil
	}
	if err != nil {
		return err
	}

	base, _, err := ws.open(ctx, f)
	if err != nil {
		return errors.New(formatFileError(f.Path, err))
	}
	mark, err := watermark.Generate(stampID, stampName, watermark.DefaultSize)
	if err != nil {
		return fmt.Errorf("cannot generate watermark for %s: %w", stampID, err)
	}
	pos := watermark.ParsePosition(cfg.Position)
	out, err := watermark.Composite(base, mark, pos, cfg.Opacity)
	if err != nil {
		return fmt.Errorf("cannot stamp %s: %w", f.Path, err)
	}

	name := stem(f.Name) + "_watermarked.jpg"
	if err := ws.save(ctx, "", name, out, imageio.DefaultSaveOptions); err != nil {
		return err
	}
	log.Printf("%sWatermark applied at %s: %s", emoji("✅"), pos, name)
	return nil
}

func tuiItems(recs []imageRecord) []tui.Item {
	items := make([]tui.Item, 0, len(recs))
	for _, r := range recs {
		if r.Error != "" {
			continue
		}
		items = append(items, tui.Item{
			Path:        r.File,
			Size:        r.Size,
			Kind:        r.Kind,
			Temperature: r.Temperature,
			Brightness:  r.Brightness,
			Warmth:      r.WarmthIndex,
			Score:       r.BrightnessScore,
			Mean:        r.Mean,
			Dominant:    r.Dominant,
			Recipe:      r.Recipe,
		})
	}
	return items
}

func runTUI(ctx context.Context, ws *workspace) error {
	recs, files, err := analyzeInputs(ctx, ws)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if r.Error != "" {
			log.Printf("%s%s", emoji("⚠️"), r.Error)
		}
	}

	selected, err := tui.Run("Image Automator - Smart Enhancement", tuiItems(recs))
	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	if len(selected) == 0 {
		log.Printf("%sNothing selected", emoji("👋"))
		return nil
	}

	byPath := make(map[string]storage.FileInfo, len(files))
	for _, f := range files {
		byPath[f.Path] = f
	}

	job := smartJob()
	done := 0
	for _, p := range selected {
		f := byPath[p]
		img, _, err := ws.open(ctx, f)
		if err != nil {
			log.Printf("%s%s", emoji("⚠️"), formatFileError(p, err))
			continue
		}
		res, err := analysis.SmartProcess(img)
		if err != nil {
			log.Printf("%s%s", emoji("⚠️"), formatFileError(p, err))
			continue
		}
		name := job.OutputName(f.Name)
		if err := ws.save(ctx, "", name, imageio.ToRGB(res.Image), job.Options); err != nil {
			log.Printf("%s%s", emoji("⚠️"), formatFileError(name, err))
			continue
		}
		done++
		log.Printf("%s%s enhanced as %s: %s", emoji("✨"), p, res.Kind, name)
	}
	log.Printf("%sEnhanced %d/%d images", emoji("✅"), done, len(selected))
	return nil
}
