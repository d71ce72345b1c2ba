// Package batch runs an image job over every input of a folder, either one
// file at a time or with a pool of workers.
package batch

import (
	"context"
	"fmt"
	"image"
	"io"
	"path"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/luinbytes/image-automator/enhance"
	"github.com/luinbytes/image-automator/imageio"
	"github.com/luinbytes/image-automator/storage"
)

// ProcessFunc transforms one decoded image. note is free text reported with
// the result, such as the class picked by smart processing.
type ProcessFunc func(img image.Image) (out image.Image, note string, err error)

// Job describes what to do with every input file.
type Job struct {
	Name    string
	Prefix  string
	Process ProcessFunc
	// Format forces the output format. Nil keeps the input format.
	Format  *imageio.Format
	Options imageio.SaveOptions
	// Flatten drops alpha before saving.
	Flatten bool
}

func complexFilters(img image.Image) (image.Image, string, error) {
	return enhance.Apply(img, enhance.ComplexFilters), "", nil
}

// Slow is the reference job: complex filters, outputs named slow_<name> in
// the input format.
func Slow() Job {
	return Job{
		Name:    "sequential",
		Prefix:  "slow_",
		Process: complexFilters,
		Options: imageio.DefaultSaveOptions,
	}
}

// Fast applies the same filters but saves RGB JPEGs at quality 85 named
// fast_<name>.jpg.
func Fast() Job {
	jpeg := imageio.JPEG
	return Job{
		Name:    "parallel",
		Prefix:  "fast_",
		Process: complexFilters,
		Format:  &jpeg,
		Options: imageio.SaveOptions{Quality: 85, Optimize: true},
		Flatten: true,
	}
}

// OutputName returns the file name job writes for input.
func (j Job) OutputName(input string) string {
	name := j.Prefix + path.Base(input)
	if j.Format != nil {
		name = strings.TrimSuffix(name, path.Ext(name)) + j.Format.Extension()
	}
	return name
}

// Result is the outcome for one input file.
type Result struct {
	Input   string
	Output  string
	Note    string
	OK      bool
	Err     error
	Elapsed time.Duration
}

// Report collects the results of one run, in input order.
type Report struct {
	Job     string
	Workers int
	Results []Result
	Elapsed time.Duration
}

// Succeeded counts the files that were written.
func (r Report) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.OK {
			n++
		}
	}
	return n
}

// Failed returns the results that have an error.
func (r Report) Failed() []Result {
	var out []Result
	for _, res := range r.Results {
		if !res.OK {
			out = append(out, res)
		}
	}
	return out
}

// Processor reads inputs from Source/InputDir and writes outputs to
// Dest/OutputDir.
type Processor struct {
	Source    storage.Provider
	InputDir  string
	Dest      storage.Provider
	OutputDir string
	// Progress, if set, is called after each file with the number of files
	// finished so far. It is always called from the goroutine running the
	// batch.
	Progress func(done, total int)
}

// Inputs lists the .jpg, .jpeg and .png files of the input folder.
func (p *Processor) Inputs(ctx context.Context) ([]storage.FileInfo, error) {
	files, err := storage.Files(ctx, p.Source, p.InputDir, imageio.IsBatchInput)
	return files, errors.Wrapf(err, "list %s", p.InputDir)
}

// RunSequential processes every input one after another.
func (p *Processor) RunSequential(ctx context.Context, job Job) (Report, error) {
	files, err := p.Inputs(ctx)
	if err != nil {
		return Report{}, err
	}
	start := time.Now()
	rep := Report{Job: job.Name, Workers: 1, Results: make([]Result, len(files))}
	for i, f := range files {
		rep.Results[i] = p.processOne(ctx, job, f)
		p.progress(i+1, len(files))
	}
	rep.Elapsed = time.Since(start)
	return rep, nil
}

type task struct {
	idx  int
	file storage.FileInfo
}

type finished struct {
	idx int
	res Result
}

// RunParallel processes the inputs with up to workers goroutines. A failing
// file never stops the others.
func (p *Processor) RunParallel(ctx context.Context, job Job, workers int) (Report, error) {
	files, err := p.Inputs(ctx)
	if err != nil {
		return Report{}, err
	}
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) && len(files) > 0 {
		workers = len(files)
	}

	start := time.Now()
	taskChan := make(chan task, workers)
	resultChan := make(chan finished, len(files))

	for i := 0; i < workers; i++ {
		go func() {
			for t := range taskChan {
				resultChan <- finished{idx: t.idx, res: p.processOne(ctx, job, t.file)}
			}
		}()
	}

	go func() {
		for i, f := range files {
			taskChan <- task{idx: i, file: f}
		}
		close(taskChan)
	}()

	rep := Report{Job: job.Name, Workers: workers, Results: make([]Result, len(files))}
	for n := 1; n <= len(files); n++ {
		d := <-resultChan
		rep.Results[d.idx] = d.res
		p.progress(n, len(files))
	}
	rep.Elapsed = time.Since(start)
	return rep, nil
}

func (p *Processor) progress(done, total int) {
	if p.Progress != nil {
		p.Progress(done, total)
	}
}

// processOne never panics out: a panicking ProcessFunc becomes a failed
// result.
func (p *Processor) processOne(ctx context.Context, job Job, f storage.FileInfo) (res Result) {
	start := time.Now()
	res = Result{Input: f.Path, Output: path.Join(p.OutputDir, job.OutputName(f.Name))}
	defer func() {
		if r := recover(); r != nil {
			res.OK = false
			res.Err = fmt.Errorf("%s: panic: %v", f.Name, r)
		}
		res.Elapsed = time.Since(start)
	}()

	if err := p.run(ctx, job, f, &res); err != nil {
		res.Err = err
		return res
	}
	res.OK = true
	return res
}

func (p *Processor) run(ctx context.Context, job Job, f storage.FileInfo, res *Result) error {
	img, err := p.Load(ctx, f)
	if err != nil {
		return err
	}

	out, note, err := job.Process(img)
	if err != nil {
		return errors.Wrapf(err, "process %s", f.Name)
	}
	res.Note = note
	if job.Flatten {
		out = imageio.ToRGB(out)
	}

	format, err := imageio.FormatFromPath(res.Output)
	if err != nil {
		return err
	}
	return storage.WriteFile(ctx, p.Dest, p.OutputDir, path.Base(res.Output), func(w io.Writer) error {
		return imageio.Encode(w, out, format, job.Options)
	})
}

// Load decodes one input file.
func (p *Processor) Load(ctx context.Context, f storage.FileInfo) (image.Image, error) {
	r, err := p.Source.OpenFile(ctx, f.ID)
	if err != nil {
		return nil, &imageio.DecodeError{Source: f.Path, Err: err}
	}
	defer r.Close()
	img, _, err := imageio.Decode(r, f.Path)
	return img, err
}

// LoadAll decodes every input, skipping files that fail. The failures are
// returned alongside.
func (p *Processor) LoadAll(ctx context.Context) ([]image.Image, []Result, error) {
	files, err := p.Inputs(ctx)
	if err != nil {
		return nil, nil, err
	}
	var (
		images []image.Image
		failed []Result
	)
	for _, f := range files {
		img, err := p.Load(ctx, f)
		if err != nil {
			failed = append(failed, Result{Input: f.Path, Err: err})
			continue
		}
		images = append(images, img)
	}
	return images, failed, nil
}
