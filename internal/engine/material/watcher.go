package material

import (
	"errors"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-gl/internal/logger"
)

// Watcher reports changes of a material file. Reloading is left to the render
// thread, which polls Changed once per frame.
type Watcher struct {
	path    string
	fs      *fsnotify.Watcher
	changed chan struct{}
	done    chan struct{}
	once    sync.Once
	log     *zap.Logger
}

// NewWatcher starts watching the directory containing path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// editors replace files on save, so watch the directory rather than the file
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, err
	}
	w := &Watcher{
		path:    abs,
		fs:      fsWatch,
		changed: make(chan struct{}, 1),
		done:    make(chan struct{}),
		log:     logger.Named("material"),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case e, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
				continue
			}
			w.log.Debug("material file changed", zap.String("path", e.Name), zap.Stringer("op", e.Op))
			select {
			case w.changed <- struct{}{}:
			default:
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn("material watcher error", zap.Error(err))

		case <-w.done:
			return
		}
	}
}

// Changed reports, without blocking, whether the file changed since the last call.
func (w *Watcher) Changed() bool {
	select {
	case <-w.changed:
		return true
	default:
		return false
	}
}

// C returns the change notification channel.
func (w *Watcher) C() <-chan struct{} {
	return w.changed
}

// Close stops watching.
func (w *Watcher) Close() error {
	err := errors.New("watcher already closed")
	w.once.Do(func() {
		close(w.done)
		err = w.fs.Close()
	})
	return err
}
