package resolver

import (
	"strings"

	"importserver/database"
)

// Context — кэш разрешения сущностей одного батча. Создается в начале
// вызова импорта и отбрасывается в конце; между батчами не переиспользуется.
// Инвариант: как только сущность создана для ключа внутри батча, все
// последующие строки того же батча получают тот же id без повторного
// обращения к базе.
type Context struct {
	suppliersByKey     map[string]*database.Supplier
	clientsByCode      map[string]*database.Client
	clientsByNamePhone map[string]*database.Client
	clientsByName      map[string]*database.Client
	clientsByPhone     map[string]*database.Client
}

// NewContext creates an empty per-batch resolution context.
func NewContext() *Context {
	return &Context{
		suppliersByKey:     make(map[string]*database.Supplier),
		clientsByCode:      make(map[string]*database.Client),
		clientsByNamePhone: make(map[string]*database.Client),
		clientsByName:      make(map[string]*database.Client),
		clientsByPhone:     make(map[string]*database.Client),
	}
}

func namePhoneKey(name, phone string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.TrimSpace(phone)
}

// RegisterClient записывает клиента во все параллельные карты поиска,
// чтобы последующие строки батча находили его до нового запроса к базе.
func (c *Context) RegisterClient(client *database.Client) {
	if client == nil {
		return
	}
	if client.Code != "" {
		c.clientsByCode[client.Code] = client
	}
	name := strings.ToLower(strings.TrimSpace(client.Name))
	if name != "" && client.Phone != "" {
		c.clientsByNamePhone[namePhoneKey(client.Name, client.Phone)] = client
	}
	if name != "" {
		if _, exists := c.clientsByName[name]; !exists {
			c.clientsByName[name] = client
		}
	}
	if client.Phone != "" {
		if _, exists := c.clientsByPhone[client.Phone]; !exists {
			c.clientsByPhone[client.Phone] = client
		}
	}
}

func (c *Context) registerSupplier(key string, s *database.Supplier) {
	if key != "" && s != nil {
		c.suppliersByKey[key] = s
	}
}

func (c *Context) supplier(key string) (*database.Supplier, bool) {
	s, ok := c.suppliersByKey[key]
	return s, ok
}
