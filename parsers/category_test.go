package parsers

import "testing"

func TestInferCategory(t *testing.T) {
	tests := []struct {
		description string
		want        ExpenseCategory
	}{
		{"Salaire Mars 2023", CategorySalary},
		{"Virement CNSS T1", CategorySocialCharges},
		{"ASSURANCE LOCAUX", CategoryInsurance},
		{"Loyer magasin", CategoryRent},
		{"Facture électricité", CategoryUtilities},
		{"LYDEC 03/2023", CategoryUtilities},
		{"Achat fournitures", CategoryOther},
		{"", CategoryOther},
	}

	for _, tt := range tests {
		if got := InferCategory(tt.description); got != tt.want {
			t.Errorf("InferCategory(%q) = %s, want %s", tt.description, got, tt.want)
		}
	}
}

func TestInferCategory_FirstMatchWins(t *testing.T) {
	// "salaire" предшествует "assurance" в списке ключевых слов
	if got := InferCategory("Salaire + assurance"); got != CategorySalary {
		t.Errorf("InferCategory() = %s, want %s", got, CategorySalary)
	}
}
