package i18n

import "testing"

func clearLocaleEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"} {
		t.Setenv(name, "")
	}
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{
			name: "LANGUAGE list wins",
			env:  map[string]string{"LANGUAGE": "ru_RU.UTF-8:en_US", "LC_ALL": "de_DE.UTF-8"},
			want: "ru_RU",
		},
		{
			name: "C and POSIX are skipped",
			env:  map[string]string{"LANGUAGE": "C", "LC_ALL": "POSIX", "LC_MESSAGES": "fr_FR.UTF-8"},
			want: "fr_FR",
		},
		{
			name: "LANG as last resort",
			env:  map[string]string{"LANG": "uk_UA.UTF-8"},
			want: "uk_UA",
		},
		{
			name: "nothing set",
			want: "en",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			clearLocaleEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			if got := detectLanguage(); got != tc.want {
				t.Fatalf("detectLanguage() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestCatalogLanguage(t *testing.T) {
	tests := map[string]string{
		"ru":          "ru",
		"ru_RU":       "ru",
		"de-AT":       "de",
		"sr_RS@latin": "sr",
		"!!":          "en",
	}
	for in, want := range tests {
		if got := catalogLanguage(in); got != want {
			t.Fatalf("catalogLanguage(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTAndNFallbackWhenUninitialized(t *testing.T) {
	old := catalog
	catalog = nil
	t.Cleanup(func() { catalog = old })

	if got := T("Hello"); got != "Hello" {
		t.Fatalf("T fallback = %q, want %q", got, "Hello")
	}
	if got := N("file", "files", 1); got != "file" {
		t.Fatalf("N singular fallback = %q, want %q", got, "file")
	}
	if got := N("file", "files", 2); got != "files" {
		t.Fatalf("N plural fallback = %q, want %q", got, "files")
	}
}

func TestRussianCatalog(t *testing.T) {
	oldCat, oldCur := catalog, current
	t.Cleanup(func() { catalog, current = oldCat, oldCur })

	Init("ru_RU")
	if current != "ru" {
		t.Fatalf("current = %q, want ru", current)
	}
	if got := T("Dry run finished"); got != "Пробный запуск завершён" {
		t.Fatalf("T(ru) = %q, want Russian text", got)
	}

	Init("en")
	if got := T("Dry run finished"); got != "Dry run finished" {
		t.Fatalf("T(en) = %q, want passthrough", got)
	}
}
