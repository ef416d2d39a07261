package catalog

import (
	"sync"

	"releve/internal/core"
)

func euros(n int64) core.Money {
	return core.Cents(n * 100)
}

func debit(name string, lo, hi int64, maxPerPeriod int) core.Category {
	return core.Category{Name: name, Min: euros(lo), Max: euros(hi), Direction: core.Debit, MaxPerPeriod: maxPerPeriod}
}

func credit(name string, lo, hi int64, maxPerPeriod int) core.Category {
	return core.Category{Name: name, Min: euros(lo), Max: euros(hi), Direction: core.Credit, MaxPerPeriod: maxPerPeriod}
}

// defaultCategories is a typical French current account. Capacity is 47.
var defaultCategories = []core.Category{
	debit("Paiement carte - Supermarché", 5, 150, 4),
	credit("Virement reçu - Salaire", 1500, 3000, 1),
	debit("Retrait DAB", 20, 200, 2),
	debit("Prélèvement EDF", 30, 150, 1),
	debit("Paiement carte - Essence", 20, 100, 4),
	debit("Abonnement Netflix", 10, 20, 1),
	debit("Prélèvement Téléphone", 15, 50, 1),
	debit("Virement envoyé - Colocataire", 100, 800, 2),
	debit("Paiement carte - Restaurant", 15, 150, 3),
	debit("Prélèvement Mutuelle", 50, 200, 1),
	debit("Achat en ligne - Amazon", 5, 500, 3),
	credit("Remboursement Sécurité Sociale", 10, 100, 2),
	credit("Versement espèces", 10, 200, 2),
	credit("Virement reçu - Ami", 10, 100, 2),
	debit("Paiement carte - Boulangerie", 5, 20, 4),
	debit("Paiement carte - Pharmacie", 5, 100, 2),
	debit("Prélèvement Internet", 30, 100, 1),
	credit("Virement reçu - Assurance", 50, 200, 1),
	debit("Paiement carte - Cinéma", 10, 50, 2),
	credit("Récompense cashback", 1, 20, 2),
	debit("Prélèvement Gym", 20, 100, 2),
	credit("Remboursement impôts", 50, 200, 1),
	debit("Paiement carte - Librairie", 5, 50, 1),
	credit("Dépôt chèque", 50, 1000, 1),
	debit("Virement interne - Épargne", 10, 500, 1),
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog. The same instance is returned on every call.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New(defaultCategories...)
		if err != nil {
			panic("catalog: built-in table is invalid: " + err.Error())
		}
		defaultCatalog = c
	})
	return defaultCatalog
}
