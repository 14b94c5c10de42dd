// Package config loads the TOML configuration document that drives Memory,
// Preprocessor, and Translator construction.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/afrim-go/afrim/internal/utils"
	"github.com/charmbracelet/log"
)

// FileSystem abstracts reading configuration and dataset files, so loading
// can be exercised against an in-memory filesystem in tests without
// touching disk — the same seam the original implementation's FileSystem
// trait provided.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

type osFileSystem struct{}

func (osFileSystem) ReadFile(path string) ([]byte, error) { return os.ReadFile(path) }

// OS is the default FileSystem, backed by the real filesystem.
var OS FileSystem = osFileSystem{}

// CoreConfig holds the [core] options.
type CoreConfig struct {
	BufferSize     int
	AutoCapitalize bool
	PageSize       int
	AutoCommit     bool
	FuzzyThreshold float64
	ScriptOpBudget int
	PauseWindowMs  int
}

// DataEntry is one ordered (code, outputs, autoCommit) row from a [data] or
// [translation] table.
type DataEntry struct {
	Code       string
	Texts      []string
	AutoCommit bool
}

// Config is the fully merged, ready-to-use configuration.
type Config struct {
	Core        CoreConfig
	Data        []DataEntry
	Translation []DataEntry
	Translators map[string]string // name -> script source path
}

// DefaultCore returns the documented default core options.
func DefaultCore() CoreConfig {
	return CoreConfig{
		BufferSize:     64,
		AutoCapitalize: true,
		PageSize:       10,
		AutoCommit:     false,
		FuzzyThreshold: 0.7,
		ScriptOpBudget: 10000,
		PauseWindowMs:  250,
	}
}

// Load reads and merges path (and any [languages] files it references) into
// a Config, using fs to read files. Malformed rows are skipped and reported
// as warnings rather than failing the whole load.
func Load(path string, fs FileSystem) (*Config, []string, error) {
	cfg := &Config{Core: DefaultCore(), Translators: map[string]string{}}
	var warnings []string

	if err := loadInto(path, fs, cfg, &warnings, map[string]bool{}); err != nil {
		return nil, warnings, err
	}
	if cfg.Core.AutoCapitalize {
		cfg.Data = applyAutoCapitalize(cfg.Data)
	}
	return cfg, warnings, nil
}

// loadInto reads one file and merges it into cfg. visited guards against a
// [languages] cycle.
func loadInto(path string, fs FileSystem, cfg *Config, warnings *[]string, visited map[string]bool) error {
	abs := absPath(path)
	if visited[abs] {
		return nil
	}
	visited[abs] = true

	raw, err := fs.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", path, err)
	}
	var doc map[string]any
	meta, err := toml.Decode(string(raw), &doc)
	if err != nil {
		return fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if coreSection, ok := utils.ExtractSection(doc, "core"); ok {
		extractCore(coreSection, &cfg.Core)
	}

	dataOrder := orderedKeys(meta, "data")
	dataSection, _ := utils.ExtractSection(doc, "data")
	entries, rowWarnings := parseDataSection(dataSection, dataOrder, cfg.Core.AutoCommit)
	*warnings = append(*warnings, rowWarnings...)
	cfg.Data = mergeEntries(cfg.Data, entries)

	translationOrder := orderedKeys(meta, "translation")
	translationSection, _ := utils.ExtractSection(doc, "translation")
	tentries, twarnings := parseDataSection(translationSection, translationOrder, cfg.Core.AutoCommit)
	*warnings = append(*warnings, twarnings...)
	cfg.Translation = mergeEntries(cfg.Translation, tentries)

	if translatorsSection, ok := utils.ExtractSection(doc, "translators"); ok {
		for name, v := range translatorsSection {
			if s, ok := v.(string); ok {
				cfg.Translators[name] = s
			}
		}
	}

	if langs, ok := doc["languages"].([]any); ok {
		dir := filepath.Dir(path)
		for _, l := range langs {
			rel, ok := l.(string)
			if !ok {
				continue
			}
			sub := rel
			if !filepath.IsAbs(sub) {
				sub = filepath.Join(dir, rel)
			}
			if err := loadInto(sub, fs, cfg, warnings, visited); err != nil {
				*warnings = append(*warnings, fmt.Sprintf("config: skipping unreadable language file %s: %v", sub, err))
			}
		}
	}
	return nil
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

func extractCore(data map[string]any, core *CoreConfig) {
	if v, ok := utils.ExtractInt64(data, "buffer_size"); ok {
		core.BufferSize = v
	}
	if v, ok := utils.ExtractBool(data, "auto_capitalize"); ok {
		core.AutoCapitalize = v
	}
	if v, ok := utils.ExtractInt64(data, "page_size"); ok {
		core.PageSize = v
	}
	if v, ok := utils.ExtractBool(data, "auto_commit"); ok {
		core.AutoCommit = v
	}
	if v, ok := data["fuzzy_threshold"].(float64); ok {
		core.FuzzyThreshold = v
	}
	if v, ok := utils.ExtractInt64(data, "script_op_budget"); ok {
		core.ScriptOpBudget = v
	}
	if v, ok := utils.ExtractInt64(data, "pause_window_ms"); ok {
		core.PauseWindowMs = v
	}
}

// orderedKeys returns the top-level keys of section (e.g. "data") in the
// order they appeared in the source document, using the position of each
// key's MetaData entry — BurntSushi/toml's Keys() preserves file order,
// unlike the map doc is decoded into.
func orderedKeys(meta toml.MetaData, section string) []string {
	var out []string
	seen := map[string]bool{}
	for _, k := range meta.Keys() {
		if len(k) != 2 || k[0] != section {
			continue
		}
		if !seen[k[1]] {
			seen[k[1]] = true
			out = append(out, k[1])
		}
	}
	return out
}

// parseDataSection turns a decoded [data]/[translation] table into ordered
// DataEntry rows, resolving each row's shape: a bare string, a list of
// strings, or a {value=..., alias=[...], auto_commit=...} table. Rows that
// don't specify auto_commit explicitly (every shape but the table shape's
// auto_commit key) fall back to defaultAutoCommit, the section's
// core.auto_commit value.
func parseDataSection(section map[string]any, order []string, defaultAutoCommit bool) ([]DataEntry, []string) {
	var entries []DataEntry
	var warnings []string
	for _, code := range order {
		v, ok := section[code]
		if !ok {
			continue
		}
		texts, autoCommit, aliases, ok := parseDataValue(v, defaultAutoCommit)
		if !ok || len(texts) == 0 {
			warnings = append(warnings, fmt.Sprintf("config: skipping malformed row %q", code))
			continue
		}
		entries = append(entries, DataEntry{Code: code, Texts: texts, AutoCommit: autoCommit})
		for _, alias := range aliases {
			entries = append(entries, DataEntry{Code: alias, Texts: texts, AutoCommit: autoCommit})
		}
	}
	return entries, warnings
}

func parseDataValue(v any, defaultAutoCommit bool) (texts []string, autoCommit bool, aliases []string, ok bool) {
	switch t := v.(type) {
	case string:
		return []string{t}, defaultAutoCommit, nil, true
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok {
				texts = append(texts, s)
			}
		}
		return texts, defaultAutoCommit, nil, len(texts) > 0
	case map[string]any:
		if val, ok := t["value"].(string); ok {
			texts = []string{val}
		} else if vals, ok := t["value"].([]any); ok {
			for _, e := range vals {
				if s, ok := e.(string); ok {
					texts = append(texts, s)
				}
			}
		}
		if len(texts) == 0 {
			return nil, defaultAutoCommit, nil, false
		}
		autoCommit = defaultAutoCommit
		if ac, ok := t["auto_commit"].(bool); ok {
			autoCommit = ac
		}
		if al, ok := t["alias"].([]any); ok {
			for _, e := range al {
				if s, ok := e.(string); ok {
					aliases = append(aliases, s)
				}
			}
		}
		return texts, autoCommit, aliases, true
	default:
		return nil, defaultAutoCommit, nil, false
	}
}

// mergeEntries appends overlay onto base, with later rows overwriting an
// earlier row of the same code in place (duplicate keys: later overrides
// earlier), matching the [languages] merge order.
func mergeEntries(base, overlay []DataEntry) []DataEntry {
	index := make(map[string]int, len(base))
	for i, e := range base {
		index[e.Code] = i
	}
	for _, e := range overlay {
		if i, exists := index[e.Code]; exists {
			base[i] = e
			continue
		}
		index[e.Code] = len(base)
		base = append(base, e)
	}
	return base
}

// applyAutoCapitalize duplicates every all-lowercase-letter code into an
// additional uppercase-coded entry with the same outputs, unless the
// uppercase code was already set explicitly.
func applyAutoCapitalize(entries []DataEntry) []DataEntry {
	existing := make(map[string]bool, len(entries))
	for _, e := range entries {
		existing[e.Code] = true
	}
	out := make([]DataEntry, 0, len(entries))
	out = append(out, entries...)
	for _, e := range entries {
		upper := strings.ToUpper(e.Code)
		if upper == e.Code || existing[upper] {
			continue
		}
		existing[upper] = true
		out = append(out, DataEntry{Code: upper, Texts: e.Texts, AutoCommit: e.AutoCommit})
	}
	return out
}

// LogWarnings writes each warning to logger at Warn level — the sink for
// the DatasetWarning error taxonomy entry.
func LogWarnings(logger *log.Logger, warnings []string) {
	for _, w := range warnings {
		logger.Warn(w)
	}
}
