package resolver

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"importserver/database"
	"importserver/normalization"
)

// UnknownSupplierName — имя поставщика-заглушки для строк без поставщика.
const UnknownSupplierName = "FOURNISSEUR INCONNU"

// SupplierStore is the slice of the store the supplier resolver needs.
type SupplierStore interface {
	CreateSupplier(name, phone, email string) (*database.Supplier, error)
	FindSupplierByName(name string) (*database.Supplier, error)
	FindSupplierByNormalizedName(normalized string) (*database.Supplier, error)
	ListSuppliers() ([]*database.Supplier, error)
}

// SupplierResolver разрешает сырое имя поставщика в запись базы, создавая
// недостающих. Цепочка: таблица алиасов, точное совпадение, нечеткое
// сопоставление по всем существующим, создание.
type SupplierResolver struct {
	db      SupplierStore
	matcher *normalization.NameMatcher
	aliases normalization.AliasTable
	logger  *slog.Logger
}

// NewSupplierResolver creates a resolver with the given matcher thresholds
// and alias table. A nil alias table disables alias lookup.
func NewSupplierResolver(db SupplierStore, matcher *normalization.NameMatcher, aliases normalization.AliasTable, logger *slog.Logger) *SupplierResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SupplierResolver{db: db, matcher: matcher, aliases: aliases, logger: logger}
}

// ResolveOrCreate returns the supplier for a raw name, creating it when no
// existing supplier matches. A blank name resolves to the shared
// FOURNISSEUR INCONNU placeholder. Results are memoized in the batch context,
// so repeated names within one import hit the database once.
func (r *SupplierResolver) ResolveOrCreate(rctx *Context, rawName string) (*database.Supplier, error) {
	name := canonicalName(r.aliases, rawName)

	s, err := r.Lookup(rctx, name)
	if err != nil {
		return nil, err
	}
	if s == nil {
		s, err = r.create(name)
		if err != nil {
			return nil, err
		}
		rctx.registerSupplier(normalization.NormalizeName(name), s)
		rctx.registerSupplier(s.NormalizedName, s)
	}
	return s, nil
}

// Lookup resolves an existing supplier without creating one: alias table,
// batch memo, exact match, then fuzzy matching. Returns nil when nothing
// matches.
func (r *SupplierResolver) Lookup(rctx *Context, rawName string) (*database.Supplier, error) {
	name := canonicalName(r.aliases, rawName)
	key := normalization.NormalizeName(name)

	if s, ok := rctx.supplier(key); ok {
		return s, nil
	}

	s, err := r.db.FindSupplierByName(name)
	if err != nil {
		return nil, fmt.Errorf("supplier lookup failed for %q: %w", name, err)
	}
	if s == nil {
		s, err = r.fuzzyFind(name)
		if err != nil {
			return nil, err
		}
	}
	if s != nil {
		rctx.registerSupplier(key, s)
		rctx.registerSupplier(s.NormalizedName, s)
	}
	return s, nil
}

// canonicalName приводит сырое имя к каноническому: трим, заглушка для
// пустого, таблица алиасов.
func canonicalName(aliases normalization.AliasTable, rawName string) string {
	name := strings.TrimSpace(rawName)
	if name == "" || normalization.NormalizeName(name) == "" {
		return UnknownSupplierName
	}
	return aliases.Resolve(name)
}

func (r *SupplierResolver) fuzzyFind(name string) (*database.Supplier, error) {
	existing, err := r.db.ListSuppliers()
	if err != nil {
		return nil, fmt.Errorf("supplier list failed: %w", err)
	}
	if len(existing) == 0 {
		return nil, nil
	}

	candidates := make([]string, len(existing))
	for i, s := range existing {
		candidates[i] = s.Name
	}
	idx, ok := r.matcher.Match(name, candidates)
	if !ok {
		return nil, nil
	}

	match := existing[idx]
	if !strings.EqualFold(strings.TrimSpace(match.Name), name) {
		r.logger.Debug("нечеткое совпадение поставщика",
			"input", name, "matched", match.Name, "supplier_id", match.ID)
	}
	return match, nil
}

func (r *SupplierResolver) create(name string) (*database.Supplier, error) {
	s, err := r.db.CreateSupplier(name, "", "")
	if err == nil {
		return s, nil
	}
	// Гонка двух батчей: кто-то успел создать того же поставщика
	if errors.Is(err, database.ErrDuplicate) {
		existing, findErr := r.db.FindSupplierByNormalizedName(normalization.NormalizeName(name))
		if findErr == nil && existing != nil {
			return existing, nil
		}
	}
	return nil, fmt.Errorf("supplier create failed for %q: %w", name, err)
}
