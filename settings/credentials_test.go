package settings

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFilePathUsesXDGDataHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	want := filepath.Join(tmp, "quicktrans", "auth.json")
	if got := FilePath(); got != want {
		t.Fatalf("FilePath() = %q, want %q", got, want)
	}
}

func TestSaveLoadRemoveLifecycle(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	store := Store{
		"groq":          {Key: "apikey123456"},
		"custom-openai": {Key: "k", BaseURL: "https://llm.example.com/v1"},
	}

	if err := Save(store); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	path := filepath.Join(tmp, "quicktrans", "auth.json")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat auth.json: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Fatalf("auth.json mode = %o, want 600", info.Mode().Perm())
	}

	if got := GetAPIKey("groq"); got != "apikey123456" {
		t.Fatalf("GetAPIKey(groq) = %q", got)
	}
	if got := GetBaseURL("custom-openai"); got != "https://llm.example.com/v1" {
		t.Fatalf("GetBaseURL(custom-openai) = %q", got)
	}

	if err := Remove("groq"); err != nil {
		t.Fatalf("Remove(groq) error: %v", err)
	}
	if got := GetAPIKey("groq"); got != "" {
		t.Fatalf("GetAPIKey after remove = %q, want empty", got)
	}
	if Get("custom-openai") == nil {
		t.Fatalf("custom-openai should remain after removing groq")
	}

	if err := Remove("missing-provider"); err != nil {
		t.Fatalf("Remove(missing) should be no-op, got: %v", err)
	}

	if err := RemoveAll(); err != nil {
		t.Fatalf("RemoveAll() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("auth.json should be removed, stat err=%v", err)
	}
	if got := Load(); len(got) != 0 {
		t.Fatalf("Load() after RemoveAll should be empty, got=%#v", got)
	}
}

func TestLoadInvalidFile(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)

	path := filepath.Join(tmp, "quicktrans", "auth.json")
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte("{broken"), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if got := Load(); got == nil || len(got) != 0 {
		t.Fatalf("Load(invalid) = %#v, want empty store", got)
	}
}

func TestResolveAPIKeyPriority(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_DATA_HOME", tmp)
	t.Setenv(EnvAPIKey, "")

	if err := SetAPIKey("groq", "stored-key", ""); err != nil {
		t.Fatalf("SetAPIKey() error: %v", err)
	}

	t.Setenv("GROQ_API_KEY", "env-key")

	if got := ResolveAPIKey("groq", "flag-key"); got != "flag-key" {
		t.Fatalf("flag should win, got %q", got)
	}
	if got := ResolveAPIKey("groq", ""); got != "env-key" {
		t.Fatalf("provider env should win over store, got %q", got)
	}

	t.Setenv(EnvAPIKey, "global-key")
	if got := ResolveAPIKey("groq", ""); got != "global-key" {
		t.Fatalf("QUICKTRANS_API_KEY should win over provider env, got %q", got)
	}

	t.Setenv(EnvAPIKey, "")
	t.Setenv("GROQ_API_KEY", "")
	if got := ResolveAPIKey("groq", ""); got != "stored-key" {
		t.Fatalf("stored key expected, got %q", got)
	}
}

func TestEnvVarForProviderAndMaskKey(t *testing.T) {
	cases := map[string]string{
		"gemini":        "GOOGLE_API_KEY",
		"groq":          "GROQ_API_KEY",
		"custom-openai": "OPENAI_API_KEY",
		"google":        "",
		"lingva":        "",
		"ollama":        "",
	}
	for provider, want := range cases {
		if got := EnvVarForProvider(provider); got != want {
			t.Fatalf("EnvVarForProvider(%q) = %q, want %q", provider, got, want)
		}
	}

	if got := MaskKey("12345678"); got != "****" {
		t.Fatalf("MaskKey(8 chars) = %q, want ****", got)
	}
	if got := MaskKey("123456789"); got != "1234...6789" {
		t.Fatalf("MaskKey(9 chars) = %q, want 1234...6789", got)
	}
}
