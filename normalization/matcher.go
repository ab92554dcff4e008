package normalization

import "strings"

// MatcherConfig holds the fuzzy-matching thresholds. The defaults were tuned
// on real supplier exports; internal/config exposes environment overrides.
type MatcherConfig struct {
	// EditDivisor: allowed edits = len(normalized)/EditDivisor for names
	// longer than ShortNameLen.
	EditDivisor int
	// ShortNameLen: names at most this long (normalized) allow a single edit.
	ShortNameLen int
	// ContainmentMinLen: substring containment only applies when both
	// normalized names are strictly longer than this.
	ContainmentMinLen int
	// TokenOverlapMin: required shared tokens, capped by either side's token
	// count.
	TokenOverlapMin int
}

// DefaultMatcherConfig returns the empirically tuned thresholds.
func DefaultMatcherConfig() MatcherConfig {
	return MatcherConfig{
		EditDivisor:       3,
		ShortNameLen:      4,
		ContainmentMinLen: 5,
		TokenOverlapMin:   2,
	}
}

// NameMatcher сравнивает название с набором кандидатов по цепочке правил.
type NameMatcher struct {
	config MatcherConfig
}

// NewNameMatcher creates a matcher with the given thresholds; zero values
// fall back to the defaults.
func NewNameMatcher(config MatcherConfig) *NameMatcher {
	defaults := DefaultMatcherConfig()
	if config.EditDivisor <= 0 {
		config.EditDivisor = defaults.EditDivisor
	}
	if config.ShortNameLen <= 0 {
		config.ShortNameLen = defaults.ShortNameLen
	}
	if config.ContainmentMinLen <= 0 {
		config.ContainmentMinLen = defaults.ContainmentMinLen
	}
	if config.TokenOverlapMin <= 0 {
		config.TokenOverlapMin = defaults.TokenOverlapMin
	}
	return &NameMatcher{config: config}
}

// Match returns the index of the first candidate the input matches, applying
// the rules in fixed order: normalized equality, substring containment,
// token overlap, then edit distance. Rule order is the tie-break, so an
// exact normalized match always beats a fuzzy one.
func (m *NameMatcher) Match(input string, candidates []string) (int, bool) {
	normInput := NormalizeName(input)
	if normInput == "" {
		return 0, false
	}
	tokensInput := Tokens(input)

	type prepared struct {
		norm   string
		tokens []string
	}
	preps := make([]prepared, len(candidates))
	for i, c := range candidates {
		preps[i] = prepared{norm: NormalizeName(c), tokens: Tokens(c)}
	}

	// 1. Равенство нормализованных форм
	for i, p := range preps {
		if p.norm != "" && p.norm == normInput {
			return i, true
		}
	}

	// 2. Вхождение подстроки в обе стороны (только для достаточно длинных имён)
	for i, p := range preps {
		if m.containsEitherWay(normInput, p.norm) {
			return i, true
		}
	}

	// 3. Пересечение токенов
	for i, p := range preps {
		if m.tokenOverlap(tokensInput, p.tokens) {
			return i, true
		}
	}

	// 4. Расстояние редактирования с допуском, пропорциональным длине
	for i, p := range preps {
		if p.norm == "" {
			continue
		}
		if Levenshtein(normInput, p.norm) <= m.editTolerance(normInput, p.norm) {
			return i, true
		}
	}

	return 0, false
}

func (m *NameMatcher) containsEitherWay(a, b string) bool {
	if len(a) <= m.config.ContainmentMinLen || len(b) <= m.config.ContainmentMinLen {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func (m *NameMatcher) tokenOverlap(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}

	required := m.config.TokenOverlapMin
	if len(a) < required {
		required = len(a)
	}
	if len(b) < required {
		required = len(b)
	}

	set := make(map[string]bool, len(a))
	for _, t := range a {
		set[t] = true
	}

	shared := 0
	for _, t := range b {
		if set[t] {
			shared++
			if shared >= required {
				return true
			}
		}
	}
	return false
}

func (m *NameMatcher) editTolerance(a, b string) int {
	shorter := len(a)
	if len(b) < shorter {
		shorter = len(b)
	}
	if shorter <= m.config.ShortNameLen {
		return 1
	}
	return shorter / m.config.EditDivisor
}
