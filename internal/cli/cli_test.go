package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/geoprofile/pkg/cache"
	"github.com/matzehuels/geoprofile/pkg/errors"
	gpio "github.com/matzehuels/geoprofile/pkg/io"
	"github.com/matzehuels/geoprofile/pkg/pipeline"
)

const inputABC = `{"name": "dike", "line": [[0, 0], [10, 0]], "columns": [
	{"name": "C", "x": 10, "y": 0, "z": 0.5},
	{"name": "A", "x": 0, "y": 0, "z": 1.0, "groundwater_level": -0.5},
	{"name": "B", "x": 5, "y": 5, "z": 1.5}]}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// run executes the root command and returns its output.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	c := New(io.Discard, LogInfo)
	var out bytes.Buffer
	c.Out = &out
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func readDocument(t *testing.T, path string) gpio.SectionDocument {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc gpio.SectionDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	return doc
}

func docNames(doc gpio.SectionDocument) []string {
	names := make([]string, len(doc.Columns))
	for i, c := range doc.Columns {
		names[i] = c.Name
	}
	return names
}

func TestBuildCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "site.json", inputABC)

	out, err := run(t, "build", input, "--no-cache", "-f", "json,profile", "--table")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	for _, want := range []string{"Assembled section", "3 columns", "site.section.json", "site.section.profile.svg"} {
		if !strings.Contains(out, want) {
			t.Errorf("output lacks %q:\n%s", want, out)
		}
	}

	doc := readDocument(t, filepath.Join(dir, "site.section.json"))
	if diff := cmp.Diff([]string{"A", "B", "C"}, docNames(doc)); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(dir, "site.section.profile.svg")); err != nil {
		t.Errorf("profile not written: %v", err)
	}
}

func TestBuildSingleOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "site.json", inputABC)
	output := filepath.Join(dir, "out.geojson")

	if _, err := run(t, "build", input, "--no-cache", "-f", "geojson", "-o", output); err != nil {
		t.Fatalf("build: %v", err)
	}
	data, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(data, []byte("FeatureCollection")) {
		t.Errorf("geojson output = %.60s", data)
	}
}

func TestBuildConfigAndFlags(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "site.json", inputABC)
	cfg := writeFile(t, dir, "geoprofile.toml", "policy = \"input\"\nreproject = false\nformats = [\"json\"]\n")
	result := filepath.Join(dir, "site.section.json")

	if _, err := run(t, "--config", cfg, "build", input, "--no-cache"); err != nil {
		t.Fatalf("build with config: %v", err)
	}
	doc := readDocument(t, result)
	if diff := cmp.Diff([]string{"C", "A", "B"}, docNames(doc)); diff != "" {
		t.Errorf("config policy ignored (-want +got):\n%s", diff)
	}
	if doc.Reproject {
		t.Error("config reproject ignored")
	}

	if _, err := run(t, "--config", cfg, "build", input, "--no-cache", "--policy", "along-line", "--reproject"); err != nil {
		t.Fatalf("build with flags: %v", err)
	}
	doc = readDocument(t, result)
	if diff := cmp.Diff([]string{"A", "B", "C"}, docNames(doc)); diff != "" {
		t.Errorf("flag did not override config (-want +got):\n%s", diff)
	}
	if !doc.Reproject {
		t.Error("--reproject did not override config")
	}
}

func TestBuildErrors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "site.json", inputABC)
	empty := writeFile(t, dir, "empty.json", `{"line": [[0,0],[1,0]], "columns": []}`)
	badCfg := writeFile(t, dir, "bad.yaml", "policy: zigzag\n")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"missing input", []string{"build", filepath.Join(dir, "nope.json"), "--no-cache"}, errors.ErrCodeFileNotFound},
		{"bad format", []string{"build", input, "--no-cache", "-f", "pdf"}, errors.ErrCodeInvalidFormat},
		{"bad policy", []string{"build", input, "--no-cache", "--policy", "zigzag"}, errors.ErrCodeInvalidPolicy},
		{"empty columns", []string{"build", empty, "--no-cache"}, errors.ErrCodeEmptyColumnSet},
		{"bad config", []string{"--config", badCfg, "build", input, "--no-cache"}, errors.ErrCodeInvalidPolicy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, tt.args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestBuildUsesFileCache(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	input := writeFile(t, dir, "site.json", inputABC)

	if _, err := run(t, "build", input); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "build", input)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, iconCached) {
		t.Errorf("second build was not cached:\n%s", out)
	}

	out, err = run(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 2 cached entries") {
		t.Errorf("cache clear output:\n%s", out)
	}
}

func TestCachePath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)

	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(out), filepath.Join(dir, appName); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}

	cfg := writeFile(t, dir, "redis.yaml", "cache:\n  backend: redis\n")
	if _, err := run(t, "--config", cfg, "cache", "path"); err == nil {
		t.Error("cache path should refuse a non-file backend")
	}
}

func TestCacheClearEmpty(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	out, err := run(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("output = %q", out)
	}
}

func TestCacheClearRemovesEntries(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	fc, err := cache.NewFileCache(filepath.Join(dir, appName))
	if err != nil {
		t.Fatal(err)
	}
	_ = fc.Set(context.Background(), "section:abc", []byte("{}"), time.Hour)

	out, err := run(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 1 cached entries") {
		t.Errorf("output = %q", out)
	}
}

func TestCompletion(t *testing.T) {
	out, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "geoprofile") {
		t.Error("bash completion does not mention the command")
	}
	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell accepted")
	}
}

func TestArtifactPaths(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		input   string
		output  string
		want    map[string]string
	}{
		{
			name:    "derived from input",
			formats: []string{"json", "svg"},
			input:   "data/site.json",
			want:    map[string]string{"json": "data/site.section.json", "svg": "data/site.section.svg"},
		},
		{
			name:    "single explicit output",
			formats: []string{"png"},
			input:   "site.json",
			output:  "map.png",
			want:    map[string]string{"png": "map.png"},
		},
		{
			name:    "output as base",
			formats: []string{"json", "profile"},
			input:   "site.json",
			output:  "out/section.json",
			want:    map[string]string{"json": "out/section.json", "profile": "out/section.profile.svg"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, artifactPaths(tt.formats, tt.input, tt.output)); diff != "" {
				t.Errorf("paths (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFormats(t *testing.T) {
	def := []string{"json"}
	tests := []struct {
		in   string
		want []string
	}{
		{"", def},
		{"svg", []string{"svg"}},
		{"JSON, png,,profile", []string{"json", "png", "profile"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, parseFormats(tt.in, def)); diff != "" {
			t.Errorf("parseFormats(%q) (-want +got):\n%s", tt.in, diff)
		}
	}
}

func testResult(t *testing.T) *pipeline.Result {
	t.Helper()
	in, err := gpio.ReadInput(strings.NewReader(inputABC))
	if err != nil {
		t.Fatal(err)
	}
	res, err := pipeline.NewRunner(nil, nil, nil).Execute(context.Background(), in, pipeline.Options{Reproject: true})
	if err != nil {
		t.Fatal(err)
	}
	return res
}

func key(s string) tea.KeyMsg {
	switch s {
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestSectionModelNavigation(t *testing.T) {
	m := newSectionModel(testResult(t))

	steps := []struct {
		key    string
		cursor int
	}{
		{"down", 1},
		{"j", 2},
		{"down", 2}, // clamped
		{"up", 1},
		{"G", 2},
		{"g", 0},
		{"k", 0},
	}
	for _, st := range steps {
		next, _ := m.Update(key(st.key))
		m = next.(SectionModel)
		if m.Cursor != st.cursor {
			t.Fatalf("after %q cursor = %d, want %d", st.key, m.Cursor, st.cursor)
		}
	}

	next, _ := m.Update(key("enter"))
	if next.(SectionModel).Detail {
		t.Error("enter should toggle details off")
	}
	if _, cmd := m.Update(key("q")); cmd == nil {
		t.Error("q should quit")
	}
}

func TestSectionModelScrolls(t *testing.T) {
	m := newSectionModel(testResult(t))
	m.Height = 2
	for range 2 {
		next, _ := m.Update(key("down"))
		m = next.(SectionModel)
	}
	if m.Offset != 1 {
		t.Errorf("offset = %d, want 1", m.Offset)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 10})
	if got := next.(SectionModel).Height; got != 5 {
		t.Errorf("height = %d, want minimum 5", got)
	}
}

func TestSectionModelView(t *testing.T) {
	m := newSectionModel(testResult(t))
	next, _ := m.Update(key("down"))
	view := next.(SectionModel).View()

	for _, want := range []string{"along-line", "reprojected", "[2/3]", "column", "moved 5.000"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}

	first := newSectionModel(testResult(t)).View()
	if !strings.Contains(first, "groundwater") {
		t.Errorf("first column view lacks groundwater:\n%s", first)
	}
}

func TestBuildExample(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "examples", "sections", "dike-12.json"))
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	input := writeFile(t, dir, "dike-12.json", string(data))
	config := filepath.Join("..", "..", "examples", "geoprofile.toml")

	if _, err := run(t, "--config", config, "build", input, "--no-cache"); err != nil {
		t.Fatalf("build: %v", err)
	}
	doc := readDocument(t, filepath.Join(dir, "dike-12.section.json"))
	if diff := cmp.Diff([]string{"B-001", "CPT-002", "CPT-004", "B-003"}, docNames(doc)); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(filepath.Join(dir, "dike-12.section.profile.svg")); err != nil {
		t.Errorf("profile not written: %v", err)
	}
}
