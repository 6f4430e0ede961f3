package registry

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/GriffinCanCode/webtop/internal/shared/types"
	"github.com/GriffinCanCode/webtop/internal/shared/utils"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/goccy/go-yaml"
	"github.com/microcosm-cc/bluemonday"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

// DefaultPatterns match manifest files anywhere under the apps directory
var DefaultPatterns = []string{"**/*.{yaml,yml,toml,json}"}

// DefaultExcludes skip hidden entries and dependency trees
var DefaultExcludes = []string{"**/.*", "**/.*/**", "**/node_modules/**"}

// Target receives definitions loaded from disk. The window manager
// implements it so seeded apps are announced on the event bus.
type Target interface {
	RegisterApp(def types.AppDefinition) error
	UnregisterApp(id string) bool
}

// Manifest is the on-disk description of an app
type Manifest struct {
	ID           string          `json:"id" yaml:"id" toml:"id"`
	Title        string          `json:"title" yaml:"title" toml:"title"`
	Icon         string          `json:"icon" yaml:"icon" toml:"icon"`
	Entry        string          `json:"entry" yaml:"entry" toml:"entry"`
	Kind         string          `json:"kind" yaml:"kind" toml:"kind"`
	Category     string          `json:"category" yaml:"category" toml:"category"`
	DefaultPos   *types.Position `json:"default_pos" yaml:"default_pos" toml:"default_pos"`
	DefaultWidth int             `json:"default_width" yaml:"default_width" toml:"default_width"`
	DesktopPos   *types.Position `json:"desktop_pos" yaml:"desktop_pos" toml:"desktop_pos"`
}

// SeedResult summarises a seeding pass
type SeedResult struct {
	Loaded int      `json:"loaded"`
	Failed int      `json:"failed"`
	IDs    []string `json:"ids"`
}

// SeederOptions configures a Seeder
type SeederOptions struct {
	Patterns []string
	Excludes []string
	Logger   *zap.Logger
}

// Seeder loads app manifests from a directory
type Seeder struct {
	target   Target
	appsDir  string
	patterns []string
	excludes []string
	policy   *bluemonday.Policy
	logger   *zap.Logger

	mu     sync.Mutex
	byPath map[string]string // manifest path -> app id
}

// NewSeeder creates a seeder for appsDir
func NewSeeder(target Target, appsDir string, opts SeederOptions) (*Seeder, error) {
	if len(opts.Patterns) == 0 {
		opts.Patterns = DefaultPatterns
	}
	if opts.Excludes == nil {
		opts.Excludes = DefaultExcludes
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	for _, p := range append(append([]string{}, opts.Patterns...), opts.Excludes...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid manifest pattern %q", p)
		}
	}

	return &Seeder{
		target:   target,
		appsDir:  appsDir,
		patterns: opts.Patterns,
		excludes: opts.Excludes,
		policy:   bluemonday.StrictPolicy(),
		logger:   opts.Logger,
		byPath:   make(map[string]string),
	}, nil
}

// Dir returns the apps directory
func (s *Seeder) Dir() string {
	return s.appsDir
}

// SeedApps loads every manifest under the apps directory. Manifests are
// registered in path order so the start menu order is stable across runs.
// A missing directory is not an error.
func (s *Seeder) SeedApps() (SeedResult, error) {
	var result SeedResult

	if _, err := os.Stat(s.appsDir); errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("Apps directory not found", zap.String("dir", s.appsDir))
		return result, nil
	}

	paths, err := s.scan()
	if err != nil {
		return result, err
	}

	for _, path := range paths {
		def, err := s.Apply(path)
		if err != nil {
			s.logger.Warn("Failed to load app manifest", zap.String("path", path), zap.Error(err))
			result.Failed++
			continue
		}
		result.Loaded++
		result.IDs = append(result.IDs, def.ID)
	}

	s.logger.Info("Seeding complete",
		zap.String("dir", s.appsDir),
		zap.Int("loaded", result.Loaded),
		zap.Int("failed", result.Failed))
	return result, nil
}

// SeedDefaults registers the built-in catalogue
func (s *Seeder) SeedDefaults() (SeedResult, error) {
	var result SeedResult
	for _, def := range DefaultApps() {
		if err := s.target.RegisterApp(def); err != nil {
			result.Failed++
			continue
		}
		result.Loaded++
		result.IDs = append(result.IDs, def.ID)
	}
	return result, nil
}

// Apply loads the manifest at path and registers it
func (s *Seeder) Apply(path string) (types.AppDefinition, error) {
	def, err := s.LoadFile(path)
	if err != nil {
		return types.AppDefinition{}, err
	}

	s.mu.Lock()
	previous, known := s.byPath[path]
	s.byPath[path] = def.ID
	s.mu.Unlock()

	// The manifest was edited to carry a different id
	if known && previous != def.ID {
		s.target.UnregisterApp(previous)
	}

	if err := s.target.RegisterApp(def); err != nil {
		return types.AppDefinition{}, err
	}
	s.logger.Debug("Loaded app manifest", zap.String("path", path), zap.String("app_id", def.ID))
	return def, nil
}

// Forget unregisters the app loaded from path, if any
func (s *Seeder) Forget(path string) (string, bool) {
	s.mu.Lock()
	appID, ok := s.byPath[path]
	delete(s.byPath, path)
	s.mu.Unlock()

	if !ok {
		return "", false
	}
	s.target.UnregisterApp(appID)
	s.logger.Info("App manifest removed", zap.String("path", path), zap.String("app_id", appID))
	return appID, true
}

// Matches reports whether path is a manifest the seeder would load
func (s *Seeder) Matches(path string) bool {
	rel, err := filepath.Rel(s.appsDir, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, p := range s.excludes {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	for _, p := range s.patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

// LoadFile parses a manifest into a definition without registering it
func (s *Seeder) LoadFile(path string) (types.AppDefinition, error) {
	info, err := os.Stat(path)
	if err != nil {
		return types.AppDefinition{}, err
	}
	if info.Size() > utils.MaxManifestSize {
		return types.AppDefinition{}, fmt.Errorf("manifest is %d bytes, limit is %d", info.Size(), utils.MaxManifestSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return types.AppDefinition{}, err
	}

	var m Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &m)
	case ".toml":
		err = toml.Unmarshal(data, &m)
	case ".json":
		err = sonic.Unmarshal(data, &m)
	default:
		err = fmt.Errorf("unsupported manifest format %q", filepath.Ext(path))
	}
	if err != nil {
		return types.AppDefinition{}, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if err := utils.ValidateID(m.ID, "id", true); err != nil {
		return types.AppDefinition{}, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}

	return s.definition(m, filepath.Dir(path)), nil
}

func (s *Seeder) definition(m Manifest, baseDir string) types.AppDefinition {
	title := strings.TrimSpace(s.policy.Sanitize(m.Title))
	if title == "" {
		title = m.ID
	}

	entry := m.Entry
	if entry == "" {
		entry = m.ID
	}
	kind := m.Kind
	if kind == "" {
		kind = "web"
	}

	return types.AppDefinition{
		ID:           m.ID,
		Title:        title,
		Icon:         s.icon(m.Icon, baseDir),
		Content:      types.ContentRef{Entry: entry, Kind: kind},
		DefaultPos:   m.DefaultPos,
		DefaultWidth: m.DefaultWidth,
		DesktopPos:   m.DesktopPos,
		Category:     m.Category,
	}
}

// icon detects the MIME type of icons that resolve to a local file
func (s *Seeder) icon(src, baseDir string) types.Icon {
	icon := types.Icon{Src: src}
	if src == "" || strings.Contains(src, "://") {
		return icon
	}

	path := src
	if !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	if mt, err := mimetype.DetectFile(path); err == nil {
		icon.MIME = mt.String()
	}
	return icon
}

func (s *Seeder) scan() ([]string, error) {
	var (
		mu    sync.Mutex
		paths []string
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, s.appsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() || !s.Matches(path) {
			return nil
		}
		mu.Lock()
		paths = append(paths, path)
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk apps directory: %w", err)
	}

	sort.Strings(paths)
	return paths, nil
}

// DefaultApps returns the built-in desktop catalogue
func DefaultApps() []types.AppDefinition {
	app := func(id, title, icon string, desktopTop, top, left, width int) types.AppDefinition {
		return types.AppDefinition{
			ID:           id,
			Title:        title,
			Icon:         types.Icon{Src: icon},
			Content:      types.ContentRef{Entry: id, Kind: "web"},
			DefaultPos:   &types.Position{Top: top, Left: left},
			DefaultWidth: width,
			DesktopPos:   &types.Position{Top: desktopTop, Left: 16},
			Category:     "desktop",
		}
	}

	return []types.AppDefinition{
		app("about", "About Me", "assets/0047 - Text Document.ico", 20, 80, 140, 440),
		app("notepad", "Notepad", "assets/0199 - Notepad.ico", 96, 220, 260, 420),
		app("work", "Work Experience", "assets/0096 - Mail.ico", 172, 140, 420, 680),
		app("bio", "Bio (MSN)", "assets/msn_butterfly.png", 248, 160, 160, 640),
		app("contact", "Contact", "assets/address_book.png", 324, 180, 220, 520),
		app("pcm", "PCM Audio", "assets/0173 - Volume.ico", 400, 100, 200, 720),
		app("doom", "DOOM", "assets/doom.png", 476, 120, 360, 760),
	}
}
