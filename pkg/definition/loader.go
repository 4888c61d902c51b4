package definition

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-domino/pkg/fieldtype"
	"github.com/goliatone/go-domino/pkg/form"
)

// Option configures LoadFS.
type Option func(*config)

type config struct {
	registry *fieldtype.Registry
	logger   *zap.Logger
}

// WithRegistry resolves type tags against reg instead of the default registry.
func WithRegistry(reg *fieldtype.Registry) Option {
	return func(c *config) {
		c.registry = reg
	}
}

// WithLogger is handed to every loaded definition.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// Store holds the definitions loaded from a set of files.
type Store struct {
	forms   map[string]*form.Definition
	sources map[string]string
}

// LoadDir loads every definition file below dir.
func LoadDir(dir string, options ...Option) (*Store, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("definition: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("definition: %s is not a directory", dir)
	}
	return LoadFS(os.DirFS(dir), options...)
}

// LoadFS walks fsys and parses JSON/YAML definition files. When fsys is nil or
// holds no definition files the returned store is empty.
func LoadFS(fsys fs.FS, options ...Option) (*Store, error) {
	cfg := config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	store := &Store{
		forms:   make(map[string]*form.Definition),
		sources: make(map[string]string),
	}
	if fsys == nil {
		return store, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isDefinitionFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("definition: read %s: %w", path, err)
		}
		doc, err := parseDocument(data, path)
		if err != nil {
			return err
		}

		for rawName, raw := range doc.Forms {
			name := strings.TrimSpace(rawName)
			if name == "" {
				return fmt.Errorf("definition: file %s defines a form with an empty name", path)
			}
			if previous, exists := store.sources[name]; exists {
				return fmt.Errorf("definition: duplicate form %q (files %s and %s)", name, previous, path)
			}
			def, err := build(name, raw, cfg)
			if err != nil {
				return fmt.Errorf("definition: file %s: %w", path, err)
			}
			store.forms[name] = def
			store.sources[name] = path
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

// Definition returns the named form definition.
func (s *Store) Definition(name string) (*form.Definition, bool) {
	if s == nil {
		return nil, false
	}
	def, ok := s.forms[name]
	return def, ok
}

// Source returns the file the named form was loaded from.
func (s *Store) Source(name string) (string, bool) {
	if s == nil {
		return "", false
	}
	source, ok := s.sources[name]
	return source, ok
}

// Names returns the loaded form names in sorted order.
func (s *Store) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.forms))
	for name := range s.forms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Empty reports whether the store holds any definitions.
func (s *Store) Empty() bool {
	return s == nil || len(s.forms) == 0
}

func build(name string, raw FormConfig, cfg config) (*form.Definition, error) {
	options := []form.Option{
		form.Name(name),
		form.Selector(raw.Selector),
		form.Key(raw.Key),
	}
	if strings.TrimSpace(raw.Submit) != "" {
		options = append(options, form.SubmitWith(raw.Submit))
	}
	if cfg.registry != nil {
		options = append(options, form.WithRegistry(cfg.registry))
	}
	if cfg.logger != nil {
		options = append(options, form.WithLogger(cfg.logger))
	}

	for idx, field := range raw.Fields {
		var fieldOptions []form.FieldOption
		if field.At != "" {
			fieldOptions = append(fieldOptions, form.At(field.At))
		}
		if field.As != "" {
			fieldOptions = append(fieldOptions, form.As(field.As))
		}
		if field.Multiple {
			fieldOptions = append(fieldOptions, form.Multiple())
		}
		if field.Convert != "" {
			convert, ok := form.ConverterByName(field.Convert)
			if !ok {
				return nil, fmt.Errorf("form %q field %d (%s): unknown converter %q", name, idx, field.Name, field.Convert)
			}
			fieldOptions = append(fieldOptions, form.Convert(convert))
		}
		options = append(options, form.Field(field.Name, fieldOptions...))
	}
	return form.Define(options...)
}

func parseDocument(data []byte, source string) (documentFile, error) {
	var doc documentFile
	if len(strings.TrimSpace(string(data))) == 0 {
		return documentFile{}, fmt.Errorf("definition: file %s is empty", source)
	}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, nil
	}
	doc = documentFile{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return documentFile{}, fmt.Errorf("definition: parse %s: %w", source, err)
	}
	return doc, nil
}

func isDefinitionFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
