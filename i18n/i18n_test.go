package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("LANGUAGE", "")
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "")
}

func TestDetectLanguagePriorityAndNormalization(t *testing.T) {
	t.Run("LANGUAGE has highest priority", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "ru_RU.UTF-8:en_US")
		t.Setenv("LC_ALL", "de_DE.UTF-8")

		if got := detectLanguage(); got != "ru_RU" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "ru_RU")
		}
	})

	t.Run("C and POSIX are skipped", func(t *testing.T) {
		clearLocaleEnv(t)
		t.Setenv("LANGUAGE", "C")
		t.Setenv("LC_ALL", "POSIX")
		t.Setenv("LC_MESSAGES", "fr_FR.UTF-8")

		if got := detectLanguage(); got != "fr_FR" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "fr_FR")
		}
	})

	t.Run("falls back to en", func(t *testing.T) {
		clearLocaleEnv(t)
		if got := detectLanguage(); got != "en" {
			t.Fatalf("detectLanguage() = %q, want %q", got, "en")
		}
	})
}

func TestBaseLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{in: "pt_BR.UTF-8", want: "pt"},
		{in: "de-AT", want: "de"},
		{in: "fr", want: "fr"},
		{in: "C", want: ""},
		{in: "", want: ""},
		{in: "!!", want: ""},
	}
	for _, tc := range cases {
		if got := baseLanguage(tc.in); got != tc.want {
			t.Fatalf("baseLanguage(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestSystemLanguageIsTwoLetters(t *testing.T) {
	got := SystemLanguage()
	if len(got) < 2 || len(got) > 3 {
		t.Fatalf("SystemLanguage() = %q, want a base language code", got)
	}
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	old := po
	po = nil
	t.Cleanup(func() { po = old })

	if got := T("Hello"); got != "Hello" {
		t.Fatalf("T fallback = %q, want %q", got, "Hello")
	}

	if got := N("result", "results", 1); got != "result" {
		t.Fatalf("N singular fallback = %q, want %q", got, "result")
	}

	if got := N("result", "results", 2); got != "results" {
		t.Fatalf("N plural fallback = %q, want %q", got, "results")
	}
}

func TestInitLoadsEmbeddedLocale(t *testing.T) {
	old := po
	t.Cleanup(func() { po = old })

	Init("de")
	if got := T("Copy result to clipboard"); got != "Ergebnis in die Zwischenablage kopieren" {
		t.Fatalf("T() with de locale = %q", got)
	}
}
