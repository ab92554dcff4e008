package importer

import (
	"errors"
	"log/slog"

	"importserver/database"
	"importserver/mapping"
	"importserver/normalization"
	"importserver/parsers"
	"importserver/resolver"
)

// Importer выполняет пакетный импорт строк таблиц во все домены. Обработка
// строк внутри одного вызова строго последовательная: поздние строки могут
// ссылаться на сущности, созданные ранними строками того же батча.
type Importer struct {
	db        *database.StoreDB
	suppliers *resolver.SupplierResolver
	clients   *resolver.ClientResolver
	logger    *slog.Logger
}

// New creates an importer over the store with the given fuzzy-matching
// thresholds.
func New(db *database.StoreDB, matcherConfig normalization.MatcherConfig, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	matcher := normalization.NewNameMatcher(matcherConfig)
	return &Importer{
		db:        db,
		suppliers: resolver.NewSupplierResolver(db, matcher, normalization.DefaultSupplierAliases(), logger),
		clients:   resolver.NewClientResolver(db, logger),
		logger:    logger,
	}
}

// isNoiseRow reports whether the row is an empty line or a repeated header
// embedded mid-file. Noise rows are skipped silently.
func isNoiseRow(row parsers.RawRow, fm mapping.FieldMapping) bool {
	cols := map[string]string(fm)
	return parsers.IsRowEmpty(row, cols) || parsers.IsHeaderRow(row, cols)
}

// isDuplicate: коллизия уникального ключа в хранилище — доброкачественный
// дубликат, не ошибка.
func isDuplicate(err error) bool {
	return errors.Is(err, database.ErrDuplicate)
}
