// Package credential supplies the bearer token used to open channel
// connections. Token issuance itself is out of scope; this package only
// makes whatever credential exists available to the sync layer, and
// picks up rotations without a restart.
package credential

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/sophiie/orbit/logging"
)

// Provider yields the current bearer token. An empty string means no
// credential is available yet; connection attempts are deferred, not
// failed.
type Provider interface {
	Token() string
}

// Static is a fixed token, typically from configuration or a flag.
type Static string

// Token returns the static token.
func (s Static) Token() string { return string(s) }

// FileProvider reads the token from a file and watches it for changes,
// so a rotated credential is used on the next reconnect. The watch
// covers the containing directory because most rotation schemes replace
// the file by rename rather than writing in place.
type FileProvider struct {
	path    string
	mu      sync.RWMutex
	token   string
	watcher *fsnotify.Watcher
	done    chan struct{}
	closeMu sync.Mutex
	closed  bool
	logger  *logrus.Entry
}

// NewFileProvider creates a provider for the given token file. A
// missing file is not an error: the provider reports an empty token
// until the file appears.
func NewFileProvider(path string) (*FileProvider, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	p := &FileProvider{
		path:    path,
		watcher: watcher,
		done:    make(chan struct{}),
		logger:  logging.NewLogger("credential"),
	}
	p.reload()

	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	go p.watch()
	return p, nil
}

// Token returns the most recently read token.
func (p *FileProvider) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

// Close stops the file watcher. Safe to call more than once.
func (p *FileProvider) Close() error {
	p.closeMu.Lock()
	defer p.closeMu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true
	close(p.done)
	return p.watcher.Close()
}

func (p *FileProvider) watch() {
	for {
		select {
		case <-p.done:
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(p.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				p.logger.WithField("path", p.path).Debug("Token file changed, reloading")
				p.reload()
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.WithError(err).Warn("Token file watcher error")
		}
	}
}

func (p *FileProvider) reload() {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if !os.IsNotExist(err) {
			p.logger.WithError(err).Warn("Failed to read token file")
		}
		return
	}

	p.mu.Lock()
	p.token = strings.TrimSpace(string(data))
	p.mu.Unlock()
}
