package parsers

import "strings"

// ExpenseCategory классифицирует свободный текст описания расхода.
type ExpenseCategory string

const (
	CategorySalary        ExpenseCategory = "SALAIRE"
	CategorySocialCharges ExpenseCategory = "CHARGES_SOCIALES"
	CategoryInsurance     ExpenseCategory = "ASSURANCE"
	CategoryRent          ExpenseCategory = "LOYER"
	CategoryUtilities     ExpenseCategory = "EAU_ELECTRICITE"
	CategoryOther         ExpenseCategory = "AUTRE"
)

// categoryKeywords is an ordered list: the first keyword found in the
// description decides the category.
var categoryKeywords = []struct {
	keyword  string
	category ExpenseCategory
}{
	{"salaire", CategorySalary},
	{"paie", CategorySalary},
	{"prime", CategorySalary},
	{"cnss", CategorySocialCharges},
	{"amo", CategorySocialCharges},
	{"cotisation", CategorySocialCharges},
	{"charges sociales", CategorySocialCharges},
	{"assurance", CategoryInsurance},
	{"loyer", CategoryRent},
	{"location", CategoryRent},
	{"eau", CategoryUtilities},
	{"electricite", CategoryUtilities},
	{"lydec", CategoryUtilities},
	{"redal", CategoryUtilities},
	{"amendis", CategoryUtilities},
	{"telecom", CategoryUtilities},
	{"internet", CategoryUtilities},
	{"telephone", CategoryUtilities},
}

// InferCategory classifies a free-text expense description by
// case- and accent-insensitive keyword lookup. Unknown text maps to AUTRE.
func InferCategory(description string) ExpenseCategory {
	folded := foldASCII(description)
	if folded == "" {
		return CategoryOther
	}
	for _, entry := range categoryKeywords {
		if strings.Contains(folded, entry.keyword) {
			return entry.category
		}
	}
	return CategoryOther
}
