package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigEnv overrides the default configuration path.
const ConfigEnv = "GROUPWM_CONFIG"

// SourceFile marks a value that was read from a file.
const SourceFile SourceKind = "file"

type SourceKind string

// Source is where a YAML path was last set.
type Source struct {
	Kind   SourceKind
	File   string
	Line   int
	Column int
}

// LoadResult is a loaded configuration plus where its values came from.
type LoadResult struct {
	Config *Config
	// Sources maps dotted YAML paths ("groups.2.name") to the file position
	// that set them last.
	Sources map[string]Source
	// Files lists every file read, includes first, in merge order.
	Files []string
}

// DefaultConfigPath returns $GROUPWM_CONFIG, or config.yaml under
// $XDG_CONFIG_HOME/groupwm (~/.config/groupwm when unset).
func DefaultConfigPath() (string, error) {
	if p := os.Getenv(ConfigEnv); p != "" {
		return p, nil
	}
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "groupwm", "config.yaml"), nil
}

// Load reads the configuration from DefaultConfigPath.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources is Load, keeping the source map and file list.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes over the builtin defaults. A
// missing file yields the defaults. Validation errors carry the file
// position of the offending value.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &loader{merged: map[string]struct{}{}, sources: map[string]Source{}}
	var raw RawConfig
	if _, err := os.Stat(path); err == nil {
		if raw, err = l.load(path, nil); err != nil {
			return nil, err
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	cfg, err := BuildEffectiveConfig(raw)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, l.locate(err)
	}
	return &LoadResult{Config: cfg, Sources: l.sources, Files: l.files}, nil
}

// loader merges one file tree. Includes are merged before the including
// file, so the including file wins; a file reached twice is merged once.
type loader struct {
	merged  map[string]struct{}
	sources map[string]Source
	files   []string
}

func (l *loader) load(path string, chain []string) (RawConfig, error) {
	path = canonicalPath(path)
	if slices.Contains(chain, path) {
		return RawConfig{}, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(chain, " -> "), path)
	}
	if _, done := l.merged[path]; done {
		return RawConfig{}, nil
	}
	l.merged[path] = struct{}{}

	data, err := os.ReadFile(path)
	if err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to read: %w", path, err)
	}
	var raw RawConfig
	if err := decodeStrict(data, &raw); err != nil {
		return RawConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, fmt.Errorf("%s: failed to parse yaml: %w", path, err)
	}
	own := map[string]Source{}
	if len(doc.Content) > 0 {
		walkSources(doc.Content[0], path, "", own)
	}

	var out RawConfig
	for i, inc := range raw.Include {
		pos := own["include"]
		if p, ok := own["include."+strconv.Itoa(i)]; ok {
			pos = p
		}
		files, err := includeFiles(path, inc)
		if err != nil {
			return RawConfig{}, fmt.Errorf("%s:%d:%d: include %q: %w", path, pos.Line, pos.Column, inc, err)
		}
		for _, f := range files {
			sub, err := l.load(f, append(chain, path))
			if err != nil {
				return RawConfig{}, err
			}
			out = out.merge(sub)
		}
	}

	for k, v := range own {
		l.sources[k] = v
	}
	l.files = append(l.files, path)
	return out.merge(raw), nil
}

// locate attaches the closest known file position to a validation error,
// walking up the YAML path until a recorded key is found.
func (l *loader) locate(err error) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	for p := verr.Path; p != ""; {
		if src, ok := l.sources[p]; ok {
			verr.Source = src
			break
		}
		i := strings.LastIndexByte(p, '.')
		if i < 0 {
			break
		}
		p = p[:i]
	}
	return verr
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func canonicalPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if real, err := filepath.EvalSymlinks(path); err == nil {
		return real
	}
	return path
}

// includeFiles resolves an include entry relative to the including file. A
// directory expands to its *.yaml and *.yml files in name order.
func includeFiles(from, include string) ([]string, error) {
	if include == "" {
		return nil, errors.New("path is empty")
	}
	if include == "~" || strings.HasPrefix(include, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		include = filepath.Join(home, strings.TrimPrefix(include, "~"))
	}
	if !filepath.IsAbs(include) {
		include = filepath.Join(filepath.Dir(from), include)
	}

	info, err := os.Stat(include)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{include}, nil
	}
	entries, err := os.ReadDir(include)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			if !e.IsDir() {
				files = append(files, filepath.Join(include, e.Name()))
			}
		}
	}
	slices.Sort(files)
	return files, nil
}

// walkSources records the position of every mapping value and sequence item
// under prefix.
func walkSources(n *yaml.Node, file, prefix string, out map[string]Source) {
	at := func(path string, v *yaml.Node) {
		out[path] = Source{Kind: SourceFile, File: file, Line: v.Line, Column: v.Column}
		walkSources(v, file, path, out)
	}
	join := func(key string) string {
		if prefix == "" {
			return key
		}
		return prefix + "." + key
	}
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			at(join(n.Content[i].Value), n.Content[i+1])
		}
	case yaml.SequenceNode:
		for i, item := range n.Content {
			at(join(strconv.Itoa(i)), item)
		}
	}
}
