package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestYamlSource_Lookup(t *testing.T) {
	src := &YamlSource{data: map[string]any{
		"model":  "openai/gpt-4o-mini",
		"models": []any{"a/one", "b/two"},
		"port":   8001,
	}}

	tests := []struct {
		key   string
		want  string
		found bool
	}{
		{"model", "openai/gpt-4o-mini", true},
		{"models", "a/one,b/two", true},
		{"port", "8001", true},
		{"missing", "", false},
	}
	for _, tt := range tests {
		src.key = tt.key
		got, ok := src.Lookup()
		if ok != tt.found || got != tt.want {
			t.Errorf("Lookup(%q) = (%q, %v), want (%q, %v)", tt.key, got, ok, tt.want, tt.found)
		}
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("TAXALERT_CONFIG", "")

	tests := []struct {
		args []string
		want string
	}{
		{[]string{"taxchat", "--config", "a.yml"}, "a.yml"},
		{[]string{"taxchat", "-b", "b.yml"}, "b.yml"},
		{[]string{"taxchat", "--config=c.yml"}, "c.yml"},
		{[]string{"taxchat", "--config"}, ""},
		{[]string{"taxchat"}, ""},
	}
	for _, tt := range tests {
		if got := getConfigPath(tt.args); got != tt.want {
			t.Errorf("getConfigPath(%v) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestGetConfigPath_Env(t *testing.T) {
	t.Setenv("TAXALERT_CONFIG", "env.yml")
	if got := getConfigPath([]string{"taxchat", "--config", "flag.yml"}); got != "env.yml" {
		t.Errorf("expected env.yml, got %q", got)
	}
}

func TestSources_ReadsYaml(t *testing.T) {
	t.Setenv("TAXALERT_CONFIG", "")
	path := filepath.Join(t.TempDir(), "taxalert.yml")
	if err := os.WriteFile(path, []byte("model: ollama/llama3.2\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	chain := sources([]string{"taxchat", "--config", path})("model")
	got, ok := chain.Lookup()
	if !ok || got != "ollama/llama3.2" {
		t.Errorf("expected yaml value, got (%q, %v)", got, ok)
	}
}

func TestMaskKey(t *testing.T) {
	tests := map[string]string{
		"":          "",
		"abc":       "abc",
		"sk-123456": "******456",
	}
	for in, want := range tests {
		if got := MaskKey(in); got != want {
			t.Errorf("MaskKey(%q) = %q, want %q", in, got, want)
		}
	}
}
