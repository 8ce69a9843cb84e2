package runner

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/coreman2200/beacon/internal/op"
	"github.com/coreman2200/beacon/internal/script"
)

// Watch runs the script at Path and rebuilds it whenever the file
// changes. A reload that fails keeps the previous graph running.
// OnReload, if set, is called on the render goroutine after every reload
// attempt.
type Watch struct {
	Path     string
	Seed     uint64
	OnReload func(err error)
}

func (w Watch) Build(size, fps int) (Context, error) {
	g, err := script.Load(w.Path)
	if err != nil {
		return nil, err
	}
	child, err := NewScriptContext(g, size, fps, w.Seed)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("runner: watch %s: %w", w.Path, err)
	}
	// Editors often save by renaming over the file, so watch the directory.
	if err := watcher.Add(filepath.Dir(w.Path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("runner: watch %s: %w", w.Path, err)
	}

	c := &WatchContext{
		path:     filepath.Clean(w.Path),
		size:     size,
		fps:      fps,
		onReload: w.OnReload,
		child:    child,
		watcher:  watcher,
		reloads:  make(chan reload, 1),
		done:     make(chan struct{}),
	}
	go c.watch()
	return c, nil
}

type reload struct {
	graph *op.Graph
	err   error
}

// WatchContext parses on the watcher goroutine and swaps graphs on the
// render goroutine, at the start of Tick.
type WatchContext struct {
	path     string
	size     int
	fps      int
	onReload func(error)

	child   *ScriptContext
	watcher *fsnotify.Watcher
	reloads chan reload
	done    chan struct{}
}

func (c *WatchContext) watch() {
	defer close(c.done)
	for {
		select {
		case ev, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != c.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			g, err := script.Load(c.path)
			c.post(reload{graph: g, err: err})
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Str("path", c.path).Msg("watch error")
		}
	}
}

// post replaces any reload the render goroutine has not picked up yet.
func (c *WatchContext) post(r reload) {
	select {
	case <-c.reloads:
	default:
	}
	c.reloads <- r
}

func (c *WatchContext) Tick() {
	select {
	case r := <-c.reloads:
		c.apply(r)
	default:
	}
	c.child.Tick()
}

func (c *WatchContext) apply(r reload) {
	err := r.err
	if err == nil {
		var child *ScriptContext
		child, err = NewScriptContext(r.graph, c.size, c.fps, c.child.Seed())
		if err == nil {
			c.child = child
		}
	}
	if err != nil {
		log.Warn().Err(err).Str("path", c.path).Msg("script reload failed; keeping previous graph")
	} else {
		log.Info().Str("path", c.path).Int("nodes", len(r.graph.Order)).Msg("script reloaded")
	}
	if c.onReload != nil {
		c.onReload(err)
	}
}

func (c *WatchContext) Age() float64                { return c.child.Age() }
func (c *WatchContext) ApplyBuf(fn func(op.Buffer)) { c.child.ApplyBuf(fn) }
func (c *WatchContext) Done() bool                  { return c.child.Done() }

// Close stops watching and waits for the watcher goroutine to exit.
func (c *WatchContext) Close() error {
	err := c.watcher.Close()
	<-c.done
	return err
}
