// coding=utf-8
// @Project : chemfiles
// @Author  : chengxiang.luo
// @Email   : chengxiang.luo@foxmail.com
// @File    : registry.go
package format

import (
	"strings"
	"sync"

	"github.com/cx-luo/chemfiles/chem"
)

// Registry holds name->builder and extension->builder maps behind a
// single mutex, per spec.md §5's "single lock guarding registry and
// callback writes".
type Registry struct {
	mu         sync.Mutex
	byName     map[string]Builder
	byExt      map[string]Builder
	infoByName map[string]Info
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName:     make(map[string]Builder),
		byExt:      make(map[string]Builder),
		infoByName: make(map[string]Info),
	}
}

// Register adds a format under its name and canonical extension.
// Registration is idempotent within a registry's lifetime: a duplicate
// name or extension is a ConfigurationError.
func (r *Registry) Register(info Info, builder Builder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := strings.ToUpper(info.Name)
	if _, exists := r.byName[name]; exists {
		return chem.NewError(chem.ErrConfiguration, "format %q is already registered", info.Name)
	}
	ext := strings.ToLower(strings.TrimPrefix(info.Extension, "."))
	if ext != "" {
		if _, exists := r.byExt[ext]; exists {
			return chem.NewError(chem.ErrConfiguration, "extension %q is already registered", info.Extension)
		}
	}

	r.byName[name] = builder
	r.infoByName[name] = info
	if ext != "" {
		r.byExt[ext] = builder
	}
	return nil
}

// ByName returns the builder registered under name, case-insensitively.
func (r *Registry) ByName(name string) (Builder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.byName[strings.ToUpper(name)]
	return b, ok
}

// ByExtension returns the builder registered for ext (with or without
// a leading dot), case-insensitively.
func (r *Registry) ByExtension(ext string) (Builder, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	b, ok := r.byExt[ext]
	return b, ok
}

// Infos returns the metadata for every registered format.
func (r *Registry) Infos() []Info {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Info, 0, len(r.infoByName))
	for _, info := range r.infoByName {
		out = append(out, info)
	}
	return out
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the lazily-initialized, process-wide registry.
// Built-in format plug-ins register themselves into it from their own
// init() functions when their package is imported (see the blank
// imports in package chemfiles), avoiding an import cycle between
// format and format/formats/*.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}
