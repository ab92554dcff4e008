package resolver

import (
	"strings"
	"testing"

	"importserver/database"
	"importserver/normalization"
)

// fakeSupplierStore хранит поставщиков в памяти, имитируя уникальность
// нормализованного имени.
type fakeSupplierStore struct {
	suppliers []*database.Supplier
	creates   int
}

func (f *fakeSupplierStore) CreateSupplier(name, phone, email string) (*database.Supplier, error) {
	normalized := normalization.NormalizeName(name)
	for _, s := range f.suppliers {
		if s.NormalizedName == normalized {
			return nil, database.ErrDuplicate
		}
	}
	f.creates++
	s := &database.Supplier{
		ID:             int64(len(f.suppliers) + 1),
		Name:           name,
		NormalizedName: normalized,
		Phone:          phone,
		Email:          email,
	}
	f.suppliers = append(f.suppliers, s)
	return s, nil
}

func (f *fakeSupplierStore) FindSupplierByName(name string) (*database.Supplier, error) {
	for _, s := range f.suppliers {
		if strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(name)) {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSupplierStore) FindSupplierByNormalizedName(normalized string) (*database.Supplier, error) {
	for _, s := range f.suppliers {
		if s.NormalizedName == normalized {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeSupplierStore) ListSuppliers() ([]*database.Supplier, error) {
	return f.suppliers, nil
}

func newSupplierResolver(store *fakeSupplierStore) *SupplierResolver {
	return NewSupplierResolver(store,
		normalization.NewNameMatcher(normalization.DefaultMatcherConfig()),
		normalization.DefaultSupplierAliases(), nil)
}

func TestSupplierResolver_CreatesMissing(t *testing.T) {
	store := &fakeSupplierStore{}
	r := newSupplierResolver(store)
	rctx := NewContext()

	s, err := r.ResolveOrCreate(rctx, "Essilor")
	if err != nil {
		t.Fatalf("ResolveOrCreate() failed: %v", err)
	}
	if s.Name != "Essilor" || store.creates != 1 {
		t.Errorf("got %q, creates=%d; want Essilor created once", s.Name, store.creates)
	}
}

func TestSupplierResolver_FuzzyReusesExisting(t *testing.T) {
	store := &fakeSupplierStore{}
	if _, err := store.CreateSupplier("Maroc Telecom", "", ""); err != nil {
		t.Fatal(err)
	}
	store.creates = 0

	r := newSupplierResolver(store)
	rctx := NewContext()

	// Опечатка должна разрешиться в существующего поставщика
	s, err := r.ResolveOrCreate(rctx, "MAROC TELEC0M")
	if err != nil {
		t.Fatalf("ResolveOrCreate() failed: %v", err)
	}
	if s.Name != "Maroc Telecom" {
		t.Errorf("resolved to %q, want Maroc Telecom", s.Name)
	}
	if store.creates != 0 {
		t.Errorf("creates = %d, want 0", store.creates)
	}
}

func TestSupplierResolver_AliasBeforeLookup(t *testing.T) {
	store := &fakeSupplierStore{}
	r := newSupplierResolver(store)
	rctx := NewContext()

	s, err := r.ResolveOrCreate(rctx, "IAM")
	if err != nil {
		t.Fatalf("ResolveOrCreate() failed: %v", err)
	}
	if s.Name != "MAROC TELECOM" {
		t.Errorf("alias resolved to %q, want MAROC TELECOM", s.Name)
	}
}

func TestSupplierResolver_BlankNameSingleton(t *testing.T) {
	store := &fakeSupplierStore{}
	r := newSupplierResolver(store)
	rctx := NewContext()

	first, err := r.ResolveOrCreate(rctx, "   ")
	if err != nil {
		t.Fatalf("ResolveOrCreate() failed: %v", err)
	}
	second, err := r.ResolveOrCreate(rctx, "")
	if err != nil {
		t.Fatalf("ResolveOrCreate() failed: %v", err)
	}

	if first.Name != UnknownSupplierName {
		t.Errorf("Name = %q, want %q", first.Name, UnknownSupplierName)
	}
	if first.ID != second.ID || store.creates != 1 {
		t.Errorf("blank names must share one placeholder, creates=%d", store.creates)
	}
}

func TestSupplierResolver_MemoizesWithinBatch(t *testing.T) {
	store := &fakeSupplierStore{}
	r := newSupplierResolver(store)
	rctx := NewContext()

	first, _ := r.ResolveOrCreate(rctx, "Hoya")
	second, _ := r.ResolveOrCreate(rctx, "Hoya")

	if first.ID != second.ID || store.creates != 1 {
		t.Errorf("repeated name must reuse the batch result, creates=%d", store.creates)
	}
}

// fakeClientStore хранит клиентов в памяти.
type fakeClientStore struct {
	clients []*database.Client
	creates int
}

func (f *fakeClientStore) CreateClient(c *database.Client) (*database.Client, error) {
	if c.Code != "" {
		for _, existing := range f.clients {
			if existing.Code == c.Code {
				return nil, database.ErrDuplicate
			}
		}
	}
	f.creates++
	created := *c
	created.ID = int64(len(f.clients) + 1)
	f.clients = append(f.clients, &created)
	return &created, nil
}

func (f *fakeClientStore) ListClients() ([]*database.Client, error) {
	return f.clients, nil
}

func TestClientResolver_CodeIsAuthoritative(t *testing.T) {
	store := &fakeClientStore{clients: []*database.Client{
		{ID: 1, Code: "C001", Name: "Alami Hassan", Phone: "0600000001"},
		{ID: 2, Code: "C002", Name: "Alami Hassan", Phone: "0600000002"},
	}}
	r := NewClientResolver(store, nil)
	rctx := NewContext()
	if err := r.LoadExisting(rctx); err != nil {
		t.Fatalf("LoadExisting() failed: %v", err)
	}

	c, ok := r.Resolve(rctx, "C002", "Alami Hassan", "")
	if !ok || c.ID != 2 {
		t.Errorf("Resolve() = %v, want client 2 via code", c)
	}

	// Код есть, но не найден: общее имя не должно подменять клиента
	if _, ok := r.Resolve(rctx, "C999", "Alami Hassan", ""); ok {
		t.Error("unknown code must not fall back to the name")
	}
}

func TestClientResolver_NamePhoneFallback(t *testing.T) {
	store := &fakeClientStore{clients: []*database.Client{
		{ID: 1, Name: "Bennani Sara", Phone: "0611111111"},
	}}
	r := NewClientResolver(store, nil)
	rctx := NewContext()
	if err := r.LoadExisting(rctx); err != nil {
		t.Fatal(err)
	}

	if c, ok := r.Resolve(rctx, "", "BENNANI SARA", "0611111111"); !ok || c.ID != 1 {
		t.Errorf("name+phone resolve = %v, want client 1", c)
	}
	if c, ok := r.Resolve(rctx, "", "bennani sara", ""); !ok || c.ID != 1 {
		t.Errorf("name-only resolve = %v, want client 1", c)
	}
	if c, ok := r.Resolve(rctx, "", "", "0611111111"); !ok || c.ID != 1 {
		t.Errorf("phone-only resolve = %v, want client 1", c)
	}
}

func TestClientResolver_ProvisionsPlaceholder(t *testing.T) {
	store := &fakeClientStore{}
	r := NewClientResolver(store, nil)
	rctx := NewContext()

	c, err := r.ResolveOrProvision(rctx, "", "", "0622222222")
	if err != nil {
		t.Fatalf("ResolveOrProvision() failed: %v", err)
	}
	if c.Name != "CLIENT 0622222222" {
		t.Errorf("placeholder name = %q", c.Name)
	}

	// Повторная ссылка в том же батче находит ту же заглушку
	again, err := r.ResolveOrProvision(rctx, "", "", "0622222222")
	if err != nil {
		t.Fatalf("ResolveOrProvision() failed: %v", err)
	}
	if again.ID != c.ID || store.creates != 1 {
		t.Errorf("placeholder must be reused, creates=%d", store.creates)
	}
}

func TestClientResolver_EmptyReference(t *testing.T) {
	r := NewClientResolver(&fakeClientStore{}, nil)
	if _, err := r.ResolveOrProvision(NewContext(), "", "  ", ""); err == nil {
		t.Error("empty reference must fail")
	}
}
