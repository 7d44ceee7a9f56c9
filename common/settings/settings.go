// Package settings stores user preferences and the signed-in user snapshot in
// a JSON file under the data directory. Both the embedding application process
// and auxiliary processes can read it; only the main process should write.
package settings

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/authlite/shellauth/app"
	"github.com/authlite/shellauth/common/atomicfile"
	"github.com/authlite/shellauth/events"
	"github.com/authlite/shellauth/internal"
)

// Keys for various settings.
const (
	LocaleKey      = "locale"
	DeviceIDKey    = "device_id"
	DataPathKey    = "data_path"
	LogPathKey     = "log_path"
	LogLevelKey    = "log_level"
	EmailKey       = "email"
	UserIDKey      = "user_id"
	NativeKey      = "native"
	GraceWindowKey = "grace_window"
	IssuerKey      = "issuer"
	ClientIDKey    = "client_id"
	RedirectURIKey = "redirect_uri"
	ScopesKey      = "scopes"
	filePathKey    = "file_path"
)

type settings struct {
	mu          sync.RWMutex
	k           *koanf.Koanf
	parser      koanf.Parser
	readOnly    atomic.Bool
	initialized atomic.Bool
	watcher     *internal.FileWatcher
}

// conf returns the live koanf tree. The watcher goroutine swaps it on reload,
// so access goes through the lock.
func (s *settings) conf() *koanf.Koanf {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.k
}

func (s *settings) swap(kk *koanf.Koanf) {
	s.mu.Lock()
	s.k = kk
	s.mu.Unlock()
}

var k = &settings{
	k:      koanf.New("."),
	parser: json.Parser(),
}

var ErrReadOnly = errors.New("read-only")

// ChangeEvent is emitted on the events bus whenever a setting is written.
type ChangeEvent struct {
	Key string
}

// Init initializes the settings store rooted at dataDir, creating the file
// with defaults on first run. Safe to call more than once; later calls are
// no-ops.
func Init(dataDir string) error {
	if k.initialized.Swap(true) {
		return nil
	}
	if err := initialize(dataDir); err != nil {
		k.initialized.Store(false)
		return fmt.Errorf("initializing settings: %w", err)
	}
	return nil
}

func initialize(dataDir string) error {
	k.swap(koanf.New("."))
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %v", err)
	}
	filePath := filepath.Join(dataDir, app.SettingsFileName)
	raw, err := atomicfile.ReadFile(filePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := setDefaults(filePath); err != nil {
			return fmt.Errorf("error setting defaults: %w", err)
		}
	case err != nil:
		return fmt.Errorf("error loading settings file: %w", err)
	default:
		if err := k.conf().Load(rawbytes.Provider(raw), k.parser); err != nil {
			return fmt.Errorf("error parsing settings file: %w", err)
		}
	}
	return Set(DataPathKey, dataDir)
}

func setDefaults(filePath string) error {
	// The file path has to land first or save has nowhere to write.
	if err := Set(filePathKey, filePath); err != nil {
		return fmt.Errorf("failed to set file path: %w", err)
	}
	if err := Set(LocaleKey, "en-US"); err != nil {
		return fmt.Errorf("failed to set default locale: %w", err)
	}
	if err := Set(ScopesKey, []string{"openid", "profile", "email"}); err != nil {
		return fmt.Errorf("failed to set default scopes: %w", err)
	}
	return nil
}

// InitReadOnly initializes the settings in read-only mode from the given directory. InitReadOnly
// does not create a file if it does not exist and instead returns an error. In read-only mode, no
// changes to settings can be made. If watchFile is true, changes to the file on disk will be
// reloaded automatically.
func InitReadOnly(fileDir string, watchFile bool) (err error) {
	if k.initialized.Swap(true) {
		return nil
	}
	defer func() {
		if err != nil {
			k.initialized.Store(false)
		}
	}()
	k.readOnly.Store(true)
	path := filepath.Join(fileDir, app.SettingsFileName)
	if err := reloadSettings(path); err != nil {
		return fmt.Errorf("initializing read-only settings: %w", err)
	}
	if watchFile {
		watcher := internal.NewFileWatcher(path, func() {
			if err := reloadSettings(path); err != nil {
				slog.Error("reloading settings file", "error", err)
			}
		})
		if err := watcher.Start(); err != nil {
			return fmt.Errorf("starting settings file watcher: %w", err)
		}
		k.watcher = watcher
	}
	return nil
}

func reloadSettings(path string) error {
	contents, err := atomicfile.ReadFile(path)
	if err != nil { // including os.ErrNotExist as we only want read-only here
		return fmt.Errorf("loading settings (read-only): %w", err)
	}
	kk := koanf.New(".")
	if err := kk.Load(rawbytes.Provider(contents), k.parser); err != nil {
		return fmt.Errorf("parsing settings: %w", err)
	}
	k.swap(kk)
	return nil
}

// StopWatching stops watching the settings file for changes. This is only relevant in read-only mode.
func StopWatching() {
	if k.initialized.Load() && k.watcher != nil {
		k.watcher.Close()
	}
}

func Get(key string) any {
	return k.conf().Get(key)
}

func GetString(key string) string {
	return k.conf().String(key)
}

func GetBool(key string) bool {
	return k.conf().Bool(key)
}

func GetInt64(key string) int64 {
	return k.conf().Int64(key)
}

func GetStringSlice(key string) []string {
	return k.conf().Strings(key)
}

func GetDuration(key string) time.Duration {
	return k.conf().Duration(key)
}

func GetStruct(key string, out any) error {
	return k.conf().Unmarshal(key, out)
}

func Set(key string, value any) error {
	if k.readOnly.Load() {
		return ErrReadOnly
	}
	if err := k.conf().Set(key, value); err != nil {
		return fmt.Errorf("could not set key %s: %w", key, err)
	}
	if err := save(); err != nil {
		return err
	}
	events.Emit(ChangeEvent{Key: key})
	return nil
}

func save() error {
	if k.readOnly.Load() {
		return ErrReadOnly
	}
	if GetString(filePathKey) == "" {
		return errors.New("settings file path is not set")
	}
	out, err := k.conf().Marshal(k.parser)
	if err != nil {
		return fmt.Errorf("could not marshal settings: %w", err)
	}
	if err := atomicfile.WriteFile(GetString(filePathKey), out, 0644); err != nil {
		return fmt.Errorf("could not write settings file: %w", err)
	}
	return nil
}
