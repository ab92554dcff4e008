package normalization

// AliasTable отображает известные написания (опечатки, сокращения) на
// каноническое название. Применяется до любого поиска по базе.
type AliasTable map[string]string

// Resolve returns the canonical name for a known alias, or the input
// unchanged. Lookup is done on the normalized form.
func (t AliasTable) Resolve(name string) string {
	if len(t) == 0 {
		return name
	}
	if canonical, ok := t[NormalizeName(name)]; ok {
		return canonical
	}
	return name
}

// Add registers an alias under its normalized form.
func (t AliasTable) Add(alias, canonical string) {
	key := NormalizeName(alias)
	if key != "" {
		t[key] = canonical
	}
}

// DefaultSupplierAliases is the hand-curated table of supplier misspellings
// seen in real exports.
func DefaultSupplierAliases() AliasTable {
	table := AliasTable{}
	for alias, canonical := range map[string]string{
		"MAROC TELECO INTERNET":  "MAROC TELECOM",
		"MAROC TELECOME":         "MAROC TELECOM",
		"IAM":                    "MAROC TELECOM",
		"ESSILOR MAROC":          "ESSILOR",
		"ESSILORLUXOTTICA":       "ESSILOR",
		"HOYA VISION":            "HOYA",
		"STE LYDEC":              "LYDEC",
		"GENERALE OPTIQUE":       "GENERALE D'OPTIQUE",
	} {
		table.Add(alias, canonical)
	}
	return table
}
