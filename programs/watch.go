package programs

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const reloadDebounce = 100 * time.Millisecond

// Watch reloads the shaders in dir whenever one of them is written and calls
// onChange with the new sources. Sources that fail to load are logged and
// skipped. It blocks until ctx is done.
func Watch(ctx context.Context, dir string, onChange func(Sources)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create shader watcher: %w", err)
	}
	defer watcher.Close()

	// editors often replace files rather than write them, so watch the directory
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %v: %w", dir, err)
	}

	debounce := time.NewTimer(0)
	<-debounce.C
	pending := false

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !isShader(event.Name) || event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = true
			debounce.Reset(reloadDebounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Println("shader watcher error:", err)

		case <-debounce.C:
			if !pending {
				continue
			}
			pending = false

			sources, err := Load(dir)
			if err != nil {
				log.Printf("shader reload: %v", err)
				continue
			}
			log.Printf("reloaded shaders from %v", dir)
			onChange(sources)
		}
	}
}

func isShader(path string) bool {
	name := filepath.Base(path)
	return name == VertexFile || name == FragmentFile
}
