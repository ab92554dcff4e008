package normalization

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  Maroc Télécom  ", "MAROCTELECOM"},
		{"MAROC TELEC0M", "MAROCTELECOM"}, // ноль вместо буквы O
		{"Société Générale", "SOCIETEGENERALE"},
		{"S.A.R.L. El-Amal", "SARLELAMAL"},
		{"", ""},
		{"   ", ""},
	}

	for _, tt := range tests {
		if got := NormalizeName(tt.in); got != tt.want {
			t.Errorf("NormalizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("Ste Maroc-Télécom internet")
	want := []string{"MAROC", "TELECOM", "INTERNET"}

	if len(got) != len(want) {
		t.Fatalf("Tokens() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Tokens()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"MAROCTELECOM", "MAROCTELECOM", 0},
		{"MAROCTELECOM", "MAROCTELECOME", 1},
	}

	for _, tt := range tests {
		if got := Levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("Levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNameMatcher_NormalizedEquality(t *testing.T) {
	m := NewNameMatcher(DefaultMatcherConfig())

	// Ноль вместо O сводится нормализацией к точному совпадению
	idx, ok := m.Match("MAROC TELEC0M", []string{"LYDEC", "MAROC TELECOM"})
	if !ok || idx != 1 {
		t.Errorf("Match() = (%d, %v), want (1, true)", idx, ok)
	}
}

func TestNameMatcher_Containment(t *testing.T) {
	m := NewNameMatcher(DefaultMatcherConfig())

	idx, ok := m.Match("ESSILOR INTERNATIONAL SAS", []string{"HOYA", "ESSILOR INTERNATIONAL"})
	if !ok || idx != 1 {
		t.Errorf("Match() = (%d, %v), want (1, true)", idx, ok)
	}

	// Короткие имена не матчатся по вхождению
	if _, ok := m.Match("STE", []string{"STELLA"}); ok {
		t.Error("Match() matched a short name by containment")
	}
}

func TestNameMatcher_TokenOverlap(t *testing.T) {
	m := NewNameMatcher(DefaultMatcherConfig())

	idx, ok := m.Match("STE HOYA LENS MAROC SARL", []string{"LYDEC", "HOYA LENS DISTRIBUTION"})
	if !ok || idx != 1 {
		t.Errorf("Match() = (%d, %v), want (1, true)", idx, ok)
	}
}

func TestNameMatcher_EditDistance(t *testing.T) {
	m := NewNameMatcher(DefaultMatcherConfig())

	// 1 правка на каждые 3 символа нормализованной формы
	idx, ok := m.Match("ESILOR", []string{"ESSILOR"})
	if !ok || idx != 0 {
		t.Errorf("Match() = (%d, %v), want (0, true)", idx, ok)
	}

	if _, ok := m.Match("ZARA", []string{"HOYA"}); ok {
		t.Error("Match() matched two unrelated short names")
	}
}

func TestNameMatcher_ExactBeatsFuzzy(t *testing.T) {
	m := NewNameMatcher(DefaultMatcherConfig())

	// Кандидат с точным нормализованным совпадением выигрывает у нечеткого,
	// стоящего раньше в списке
	idx, ok := m.Match("HOYA", []string{"HOLA OPTIQUE", "HOYA"})
	if !ok || idx != 1 {
		t.Errorf("Match() = (%d, %v), want (1, true)", idx, ok)
	}
}

func TestNameMatcher_NoMatch(t *testing.T) {
	m := NewNameMatcher(DefaultMatcherConfig())

	if _, ok := m.Match("BOULANGERIE CENTRALE", []string{"ESSILOR", "HOYA", "LYDEC"}); ok {
		t.Error("Match() matched an unrelated name")
	}

	if _, ok := m.Match("", []string{"ESSILOR"}); ok {
		t.Error("Match() matched an empty input")
	}
}

func TestAliasTable(t *testing.T) {
	table := DefaultSupplierAliases()

	if got := table.Resolve("Maroc Teleco Internet"); got != "MAROC TELECOM" {
		t.Errorf("Resolve() = %q, want MAROC TELECOM", got)
	}

	// Неизвестное имя возвращается как есть
	if got := table.Resolve("ACME"); got != "ACME" {
		t.Errorf("Resolve() = %q, want ACME", got)
	}
}
