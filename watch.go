package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/luinbytes/image-automator/analysis"
	"github.com/luinbytes/image-automator/imageio"
	"github.com/luinbytes/image-automator/storage"
)

// watchState tracks what watch mode has done so far
type watchState struct {
	mu        sync.Mutex
	processed int
	failed    int
	kinds     map[string]int
	started   time.Time
}

func newWatchState() *watchState {
	return &watchState{kinds: make(map[string]int), started: time.Now()}
}

func (s *watchState) record(kind string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.failed++
		return
	}
	s.processed++
	s.kinds[kind]++
}

// printSummary prints the watch mode summary
func (s *watchState) printSummary() {
	s.mu.Lock()
	defer s.mu.Unlock()

	log.Printf("")
	log.Printf("%s═══════════════════════════════════════════════════════════", emoji("📊"))
	log.Printf("%s  WATCH MODE SUMMARY", emoji("📊"))
	log.Printf("%s═══════════════════════════════════════════════════════════", emoji("📊"))
	log.Printf("%sImages enhanced: %d", emoji("✨"), s.processed)
	log.Printf("%sFailures: %d", emoji("⚠️"), s.failed)

	kinds := make([]string, 0, len(s.kinds))
	for k := range s.kinds {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		log.Printf("   %-10s %d", k, s.kinds[k])
	}
	log.Printf("%sWatched for %s", emoji("⏱️"), formatDuration(time.Since(s.started).Seconds()))
}

// watchable reports whether a file event should trigger processing. Our own
// outputs are skipped in case the output folder is the input folder.
func watchable(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || !imageio.IsBatchInput(base) {
		return false
	}
	if strings.HasPrefix(base, smartJob().Prefix) {
		return false
	}
	info, err := os.Stat(name)
	return err == nil && info.Mode().IsRegular()
}

// runWatchMode smart-processes every image dropped into the input folder
// until ctx is cancelled.
func runWatchMode(ctx context.Context) error {
	if storage.ProviderType(cfg.Source) == storage.ProviderGoogleDrive {
		return fmt.Errorf("watch mode needs a local input folder")
	}

	ws, err := openWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Close()

	local, ok := ws.src.(*storage.LocalProvider)
	if !ok {
		return fmt.Errorf("watch mode needs a local input folder")
	}
	absDir := local.Root()
	if info, err := os.Stat(absDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a valid directory", absDir)
	}

	log.Printf("%s═══════════════════════════════════════════════════════════", emoji("🔍"))
	log.Printf("%s  Image Automator v%s - WATCH MODE", emoji("👁️"), version)
	log.Printf("%s═══════════════════════════════════════════════════════════", emoji("🔍"))
	log.Printf("%sWatching: %s", emoji("📁"), absDir)
	log.Printf("%sResults:  %s", emoji("📁"), cfg.Output)
	log.Printf("%sDebounce: %v", emoji("⏱️"), cfg.WatchDebounce)
	log.Printf("%sPress Ctrl+C to stop watching...", emoji("💡"))

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(absDir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	state := newWatchState()
	pending := make(map[string]struct{})
	var debounceTimer *time.Timer
	debounceChan := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			log.Printf("")
			log.Printf("%sWatch mode stopped.", emoji("👋"))
			state.printSummary()
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !watchable(event.Name) {
				continue
			}
			pending[event.Name] = struct{}{}

			// Wait until the burst of writes for a file is over
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(cfg.WatchDebounce, func() {
				select {
				case debounceChan <- struct{}{}:
				default:
				}
			})

		case <-debounceChan:
			files := make([]string, 0, len(pending))
			for f := range pending {
				files = append(files, f)
			}
			sort.Strings(files)
			pending = make(map[string]struct{})
			processDropped(ctx, ws, state, files)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("%sWatcher error: %v", emoji("⚠️"), err)
		}
	}
}

// processDropped enhances files, which are absolute paths inside the input
// folder.
func processDropped(ctx context.Context, ws *workspace, state *watchState, files []string) {
	job := smartJob()
	for _, file := range files {
		base := filepath.Base(file)
		f := storage.FileInfo{ID: file, Name: base, Path: base}

		kind, err := enhanceDropped(ctx, ws, f, job.OutputName(base))
		state.record(kind, err)
		if err != nil {
			log.Printf("%s%s", emoji("⚠️"), formatFileError(base, err))
			continue
		}
		log.Printf("%s%s enhanced as %s: %s", emoji("✨"), base, kind, job.OutputName(base))
	}
}

func enhanceDropped(ctx context.Context, ws *workspace, f storage.FileInfo, out string) (string, error) {
	img, _, err := ws.open(ctx, f)
	if err != nil {
		return "", err
	}
	res, err := analysis.SmartProcess(img)
	if err != nil {
		return "", err
	}
	if err := ws.save(ctx, "", out, imageio.ToRGB(res.Image), imageio.DefaultSaveOptions); err != nil {
		return "", err
	}
	return res.Kind.String(), nil
}
