package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"itemforge/server/internal/item"
)

type source interface {
	Load() ([]byte, error)
	Path() string
}

type fileSource struct {
	path string
}

func (f fileSource) Load() ([]byte, error) {
	return os.ReadFile(f.path)
}

func (f fileSource) Path() string {
	return f.path
}

// memorySource lets tests feed documents without touching disk.
type memorySource struct {
	name string
	data []byte
}

func (m memorySource) Load() ([]byte, error) {
	return m.data, nil
}

func (m memorySource) Path() string {
	return m.name
}

// MemorySource wraps raw document bytes as a loadable source.
func MemorySource(name string, data []byte) interface {
	Load() ([]byte, error)
	Path() string
} {
	return memorySource{name: name, data: data}
}

var keyPattern = regexp.MustCompile(`^[a-z0-9_]+$`)

// DefaultPaths returns the canonical catalog locations relative to the
// module root.
func DefaultPaths() []string {
	return []string{filepath.Join("config", "modifiers", "definitions.json")}
}

// Loader parses catalog sources into a Catalog. Call Reload to pick up
// on-disk changes; later sources override earlier ones so local overlays
// work during development.
type Loader struct {
	sources []source
	catalog *Catalog
}

// Load constructs a Loader backed by the given file paths and performs the
// initial parse.
func Load(paths ...string) (*Loader, error) {
	sources := make([]source, 0, len(paths))
	for _, path := range paths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		sources = append(sources, fileSource{path: trimmed})
	}
	return newLoader(sources...)
}

// LoadSources is the test entry point accepting in-memory sources.
func LoadSources(srcs ...interface {
	Load() ([]byte, error)
	Path() string
}) (*Loader, error) {
	sources := make([]source, 0, len(srcs))
	for _, s := range srcs {
		sources = append(sources, s)
	}
	return newLoader(sources...)
}

func newLoader(sources ...source) (*Loader, error) {
	l := &Loader{
		sources: append([]source(nil), sources...),
		catalog: &Catalog{},
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Catalog returns the live catalog. The pointer is stable across reloads.
func (l *Loader) Catalog() *Catalog {
	return l.catalog
}

// Reload re-parses every source and swaps the catalog contents. On error the
// previous contents stay in place.
func (l *Loader) Reload() error {
	documents := make(map[string]DescriptorDocument)
	for _, src := range l.sources {
		data, err := src.Load()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("catalog: failed loading %s: %w", src.Path(), err)
		}
		var file FileDefinitions
		if err := json.Unmarshal(data, &file); err != nil {
			return fmt.Errorf("catalog: failed parsing %s: %w", src.Path(), err)
		}
		seen := make(map[string]struct{}, len(file))
		for _, doc := range file {
			key := strings.TrimSpace(doc.Key)
			if key == "" {
				return fmt.Errorf("catalog: entry missing key in %s", src.Path())
			}
			if !keyPattern.MatchString(key) {
				return fmt.Errorf("catalog: invalid key %q in %s", key, src.Path())
			}
			if _, dup := seen[key]; dup {
				return fmt.Errorf("catalog: duplicate key %q in %s", key, src.Path())
			}
			seen[key] = struct{}{}
			doc.Key = key
			documents[key] = doc
		}
	}
	if len(documents) == 0 {
		return errors.New("catalog: no modifier definitions found")
	}

	descriptors := make(map[string]Descriptor, len(documents))
	for key, doc := range documents {
		d, err := buildDescriptor(doc)
		if err != nil {
			return err
		}
		descriptors[key] = d
	}

	// Conflicts must reference known keys; declarations are made symmetric
	// so either side of a pair can carry the declaration.
	for key, d := range descriptors {
		for other := range d.conflicts {
			peer, ok := descriptors[other]
			if !ok {
				return fmt.Errorf("catalog: %q conflicts with unknown modifier %q", key, other)
			}
			if _, back := peer.conflicts[key]; !back {
				peer.conflicts[key] = struct{}{}
				descriptors[other] = peer
			}
		}
	}

	l.catalog.replace(descriptors)
	return nil
}

func buildDescriptor(doc DescriptorDocument) (Descriptor, error) {
	if doc.Cap < 1 {
		return Descriptor{}, fmt.Errorf("catalog: %q has invalid cap %d", doc.Key, doc.Cap)
	}
	label := strings.TrimSpace(doc.Label)
	if label == "" {
		label = doc.Key
	}
	d := Descriptor{
		Key:      doc.Key,
		Label:    label,
		Cap:      doc.Cap,
		Treasure: doc.Treasure,
		Cursed:   doc.Cursed,
	}
	if len(doc.Applies) > 0 {
		d.applies = make(map[item.Class]struct{}, len(doc.Applies))
		for _, raw := range doc.Applies {
			class := item.Class(raw)
			if !item.ValidClass(class) {
				return Descriptor{}, fmt.Errorf("catalog: %q applies to unknown class %q", doc.Key, raw)
			}
			d.applies[class] = struct{}{}
		}
	}
	d.conflicts = make(map[string]struct{}, len(doc.Conflicts))
	for _, other := range doc.Conflicts {
		if other == doc.Key {
			return Descriptor{}, fmt.Errorf("catalog: %q declares a conflict with itself", doc.Key)
		}
		d.conflicts[other] = struct{}{}
	}
	return d, nil
}
