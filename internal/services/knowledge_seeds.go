package services

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

// seedEntry is one question/answer pair in a seeds file.
type seedEntry struct {
	Question string `yaml:"question"`
	Answer   string `yaml:"answer"`
}

// seedFile is the YAML shape of a knowledge seeds file.
type seedFile struct {
	Entries []seedEntry `yaml:"entries"`
}

// seedTarget is the slice of KnowledgeStore seeding writes through.
type seedTarget interface {
	InsertIfAbsent(ctx context.Context, question, answer string) (bool, error)
}

// builtinSeeds are the salon facts every fresh deployment starts with.
// Seeding never overwrites a learned answer.
var builtinSeeds = []seedEntry{
	{Question: "What are your hours?", Answer: "We are open from 9 AM to 5 PM, Tuesday to Sunday."},
	{Question: "Where are you located?", Answer: "We are located at 123 Main Street."},
	{Question: "What services do you offer?", Answer: "We offer haircuts, coloring, and styling."},
}

// SeedKnowledge loads seed entries into the knowledge store with
// insert-if-absent semantics. When path is empty the builtin seeds are used.
// Returns the number of newly inserted entries.
func SeedKnowledge(ctx context.Context, store seedTarget, path string) (int, error) {
	entries := builtinSeeds
	if path != "" {
		loaded, err := readSeedFile(path)
		if err != nil {
			return 0, err
		}
		entries = loaded
	}

	inserted := 0
	for _, entry := range entries {
		if entry.Question == "" || entry.Answer == "" {
			log.Printf("⚠️ [SEEDS] Skipping entry with empty question or answer")
			continue
		}
		created, err := store.InsertIfAbsent(ctx, entry.Question, entry.Answer)
		if err != nil {
			return inserted, err
		}
		if created {
			inserted++
		}
	}

	log.Printf("🌱 [SEEDS] Seeded knowledge base: %d new of %d entries", inserted, len(entries))
	return inserted, nil
}

func readSeedFile(path string) ([]seedEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seeds file: %w", err)
	}

	var file seedFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse seeds file: %w", err)
	}
	return file.Entries, nil
}

// WatchKnowledgeSeeds re-seeds the knowledge base whenever the seeds file
// changes, then invalidates the matcher snapshot. Blocks until ctx is done;
// run it in a goroutine.
func WatchKnowledgeSeeds(ctx context.Context, store seedTarget, matcher *Matcher, path string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("⚠️ [SEEDS] Failed to create file watcher: %v", err)
		return
	}
	defer watcher.Close()

	absPath, err := filepath.Abs(path)
	if err != nil {
		log.Printf("⚠️ [SEEDS] Failed to resolve %s: %v", path, err)
		return
	}

	// Watch the directory containing the file (more reliable than watching
	// the file directly - editors replace files on save).
	dir := filepath.Dir(absPath)
	filename := filepath.Base(absPath)

	if err := watcher.Add(dir); err != nil {
		log.Printf("⚠️ [SEEDS] Failed to watch %s: %v", dir, err)
		return
	}

	log.Printf("👁️ [SEEDS] Watching %s for changes (hot-reload enabled)", path)

	var debounce *time.Timer
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			// Editors fire several events per save; reload once.
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(500*time.Millisecond, func() {
				if _, err := SeedKnowledge(context.Background(), store, path); err != nil {
					log.Printf("⚠️ [SEEDS] Hot-reload failed: %v", err)
					return
				}
				matcher.Invalidate()
				log.Printf("🔄 [SEEDS] Reloaded seeds from %s", path)
			})
		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			log.Printf("⚠️ [SEEDS] Watcher error: %v", err)
		}
	}
}
