package config

import "testing"

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	if s, ok := m[path]; ok {
		return []byte(s), nil
	}
	return nil, errNotFound(path)
}

type errNotFound string

func (e errNotFound) Error() string { return "not found: " + string(e) }

func TestLoadCoreAndData(t *testing.T) {
	fs := memFS{
		"/afrim.toml": `
[core]
buffer_size = 32
auto_capitalize = false
page_size = 5

[data]
a = "A"
b = ["B1", "B2"]
ri = { value = "RI", alias = ["rii"] }
`,
	}
	cfg, warnings, err := Load("/afrim.toml", fs)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", warnings)
	}
	if cfg.Core.BufferSize != 32 || cfg.Core.PageSize != 5 || cfg.Core.AutoCapitalize {
		t.Fatalf("unexpected core config: %+v", cfg.Core)
	}
	if len(cfg.Data) != 4 {
		t.Fatalf("expected 4 data rows (a, b, ri, rii alias), got %d: %+v", len(cfg.Data), cfg.Data)
	}
	codes := map[string][]string{}
	for _, e := range cfg.Data {
		codes[e.Code] = e.Texts
	}
	if codes["ri"][0] != "RI" || codes["rii"][0] != "RI" {
		t.Fatalf("alias expansion failed: %+v", codes)
	}
}

func TestAutoCapitalizeDuplicatesEntries(t *testing.T) {
	fs := memFS{
		"/afrim.toml": `
[core]
auto_capitalize = true

[data]
a = "A"
`,
	}
	cfg, _, err := Load("/afrim.toml", fs)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	var foundUpper bool
	for _, e := range cfg.Data {
		if e.Code == "A" {
			foundUpper = true
		}
	}
	if !foundUpper {
		t.Fatalf("expected auto-capitalize to add an uppercase 'A' entry, got %+v", cfg.Data)
	}
}

func TestLanguagesMergeOverrides(t *testing.T) {
	fs := memFS{
		"/afrim.toml": `
languages = ["extra.toml"]

[data]
a = "A"
`,
		"/extra.toml": `
[data]
a = "A-OVERRIDDEN"
c = "C"
`,
	}
	cfg, _, err := Load("/afrim.toml", fs)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	codes := map[string][]string{}
	for _, e := range cfg.Data {
		codes[e.Code] = e.Texts
	}
	if codes["a"][0] != "A-OVERRIDDEN" {
		t.Fatalf("expected language file to override 'a', got %+v", codes["a"])
	}
	if codes["c"][0] != "C" {
		t.Fatalf("expected language file to add 'c', got %+v", codes)
	}
}

func TestMalformedRowProducesWarning(t *testing.T) {
	fs := memFS{
		"/afrim.toml": `
[data]
a = "A"
b = 42
`,
	}
	cfg, warnings, err := Load("/afrim.toml", fs)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning for malformed row, got %v", warnings)
	}
	if len(cfg.Data) != 2 { // 'a' plus its auto-capitalized 'A'
		t.Fatalf("expected well-formed row to still load, got %+v", cfg.Data)
	}
}
