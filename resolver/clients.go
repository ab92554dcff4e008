package resolver

import (
	"fmt"
	"log/slog"
	"strings"

	"importserver/database"
)

// ClientStore is the slice of the store the client resolver needs.
type ClientStore interface {
	CreateClient(c *database.Client) (*database.Client, error)
	ListClients() ([]*database.Client, error)
}

// ClientResolver разрешает клиента по коду либо по паре имя+телефон поверх
// единожды загруженного снимка базы. Снимок грузится в начале батча; все
// созданные по ходу записи попадают в те же карты поиска.
type ClientResolver struct {
	db     ClientStore
	logger *slog.Logger
}

// NewClientResolver creates a client resolver.
func NewClientResolver(db ClientStore, logger *slog.Logger) *ClientResolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &ClientResolver{db: db, logger: logger}
}

// LoadExisting pre-fetches every client into the batch context lookup maps.
// The import is abandoned when this fails: without the snapshot every row
// would silently provision duplicates.
func (r *ClientResolver) LoadExisting(rctx *Context) error {
	clients, err := r.db.ListClients()
	if err != nil {
		return fmt.Errorf("client pre-fetch failed: %w", err)
	}
	for _, c := range clients {
		rctx.RegisterClient(c)
	}
	return nil
}

// Resolve looks a client up in the batch snapshot. A non-empty code is
// authoritative: when it is present only the code map is consulted, so two
// distinct codes never collapse onto one client through a shared name. Rows
// without a code fall back to name+phone, then to name or phone alone.
func (r *ClientResolver) Resolve(rctx *Context, code, name, phone string) (*database.Client, bool) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)

	if code != "" {
		c, ok := rctx.clientsByCode[code]
		return c, ok
	}

	if name != "" && phone != "" {
		if c, ok := rctx.clientsByNamePhone[namePhoneKey(name, phone)]; ok {
			return c, true
		}
	}
	if name != "" {
		if c, ok := rctx.clientsByName[strings.ToLower(name)]; ok {
			return c, true
		}
	}
	if phone != "" {
		if c, ok := rctx.clientsByPhone[phone]; ok {
			return c, true
		}
	}
	return nil, false
}

// ResolveOrProvision resolves the client or creates a minimal placeholder
// record so the referencing row can proceed. The placeholder is registered
// in every lookup map of the batch context.
func (r *ClientResolver) ResolveOrProvision(rctx *Context, code, name, phone string) (*database.Client, error) {
	if c, ok := r.Resolve(rctx, code, name, phone); ok {
		return c, nil
	}

	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	if code == "" && name == "" && phone == "" {
		return nil, fmt.Errorf("client reference is empty")
	}

	placeholder := &database.Client{
		Code:  code,
		Name:  placeholderName(code, name, phone),
		Phone: phone,
	}
	created, err := r.db.CreateClient(placeholder)
	if err != nil {
		return nil, fmt.Errorf("client provisioning failed for %q: %w", placeholder.Name, err)
	}

	r.logger.Debug("создан клиент-заглушка",
		"client_id", created.ID, "code", created.Code, "name", created.Name)
	rctx.RegisterClient(created)
	return created, nil
}

func placeholderName(code, name, phone string) string {
	switch {
	case name != "":
		return name
	case phone != "":
		return "CLIENT " + phone
	default:
		return "CLIENT " + code
	}
}
