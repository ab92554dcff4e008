package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Типы фишей.
const (
	FicheTypeFrame       = "MONTURE"
	FicheTypeContactLens = "LENTILLES"
	FicheTypeProduct     = "PRODUIT"
)

// EquipmentItem одна позиция оборудования (оправа) в фише.
type EquipmentItem struct {
	Brand     string  `json:"brand,omitempty"`
	Reference string  `json:"reference,omitempty"`
	Color     string  `json:"color,omitempty"`
	Price     float64 `json:"price,omitempty"`
}

// LensPrescription рецепт на одну линзу.
type LensPrescription struct {
	Sphere   string  `json:"sphere,omitempty"`
	Cylinder string  `json:"cylinder,omitempty"`
	Axis     string  `json:"axis,omitempty"`
	Addition string  `json:"addition,omitempty"`
	Price    float64 `json:"price,omitempty"`
}

// Lenses пара очковых линз.
type Lenses struct {
	Brand string            `json:"brand,omitempty"`
	Type  string            `json:"type,omitempty"`
	Right *LensPrescription `json:"right,omitempty"`
	Left  *LensPrescription `json:"left,omitempty"`
}

// ContactLenses контактные линзы.
type ContactLenses struct {
	Brand string            `json:"brand,omitempty"`
	Right *LensPrescription `json:"right,omitempty"`
	Left  *LensPrescription `json:"left,omitempty"`
}

// ExtraProduct сопутствующий товар в фише.
type ExtraProduct struct {
	Designation string  `json:"designation"`
	Quantity    int     `json:"quantity,omitempty"`
	Price       float64 `json:"price,omitempty"`
}

// Fiche клиентский файл одного визита: оборудование, линзы, сопутствующие
// товары и страховое покрытие.
type Fiche struct {
	ID            int64
	ExternalID    string
	DayKey        string
	ClientID      int64
	Date          *time.Time
	Type          string
	Status        string
	TotalTTC      float64
	Advance       float64
	Equipments    []EquipmentItem
	Lenses        *Lenses
	ContactLenses *ContactLenses
	ExtraProducts []ExtraProduct
	// Mutuelle — страховое покрытие: либо заполненный JSON-объект, либо nil.
	// Пустая строка недопустима.
	Mutuelle  json.RawMessage
	Notes     string
	CreatedAt time.Time
}

// CreateFiche inserts a composite fiche. (external_id, day_key) is the
// natural key when the external id is present.
func (db *StoreDB) CreateFiche(f *Fiche) (*Fiche, error) {
	if f.Type == "" {
		f.Type = FicheTypeProduct
	}
	if f.Status == "" {
		f.Status = SaleStatusDraft
	}

	equipments, err := json.Marshal(f.Equipments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal equipments: %w", err)
	}
	extraProducts, err := json.Marshal(f.ExtraProducts)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal extra products: %w", err)
	}

	var lenses, contactLenses, mutuelle interface{}
	if f.Lenses != nil {
		b, err := json.Marshal(f.Lenses)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal lenses: %w", err)
		}
		lenses = string(b)
	}
	if f.ContactLenses != nil {
		b, err := json.Marshal(f.ContactLenses)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal contact lenses: %w", err)
		}
		contactLenses = string(b)
	}
	if len(f.Mutuelle) > 0 {
		mutuelle = string(f.Mutuelle)
	}

	var clientID interface{}
	if f.ClientID > 0 {
		clientID = f.ClientID
	}

	res, err := db.conn.Exec(
		`INSERT INTO fiches (external_id, day_key, client_id, fiche_date, fiche_type, status,
		                     total_ttc, advance, equipments, lenses, contact_lenses, extra_products, mutuelle, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ExternalID, f.DayKey, clientID, timeOrNil(f.Date), f.Type, f.Status,
		f.TotalTTC, f.Advance, string(equipments), lenses, contactLenses, string(extraProducts), mutuelle, f.Notes,
	)
	if err != nil {
		return nil, wrapDuplicate(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read fiche id: %w", err)
	}
	f.ID = id
	return f, nil
}

const ficheColumns = `id, external_id, day_key, client_id, fiche_date, fiche_type, status,
	total_ttc, advance, equipments, lenses, contact_lenses, extra_products, mutuelle, notes, created_at`

func scanFiche(row interface{ Scan(...interface{}) error }) (*Fiche, error) {
	var f Fiche
	var clientID sql.NullInt64
	var date sql.NullTime
	var equipments, extraProducts string
	var lenses, contactLenses, mutuelle sql.NullString

	if err := row.Scan(&f.ID, &f.ExternalID, &f.DayKey, &clientID, &date, &f.Type, &f.Status,
		&f.TotalTTC, &f.Advance, &equipments, &lenses, &contactLenses, &extraProducts, &mutuelle,
		&f.Notes, &f.CreatedAt); err != nil {
		return nil, err
	}

	f.ClientID = nullInt(clientID)
	f.Date = nullTime(date)

	if err := json.Unmarshal([]byte(equipments), &f.Equipments); err != nil {
		return nil, fmt.Errorf("failed to unmarshal equipments: %w", err)
	}
	if err := json.Unmarshal([]byte(extraProducts), &f.ExtraProducts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal extra products: %w", err)
	}
	if lenses.Valid && lenses.String != "" {
		f.Lenses = &Lenses{}
		if err := json.Unmarshal([]byte(lenses.String), f.Lenses); err != nil {
			return nil, fmt.Errorf("failed to unmarshal lenses: %w", err)
		}
	}
	if contactLenses.Valid && contactLenses.String != "" {
		f.ContactLenses = &ContactLenses{}
		if err := json.Unmarshal([]byte(contactLenses.String), f.ContactLenses); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contact lenses: %w", err)
		}
	}
	if mutuelle.Valid && mutuelle.String != "" {
		f.Mutuelle = json.RawMessage(mutuelle.String)
	}

	return &f, nil
}

// FindFicheByExternalID ищет фиш по внешнему id и ключу дня.
func (db *StoreDB) FindFicheByExternalID(externalID, dayKey string) (*Fiche, error) {
	if externalID == "" {
		return nil, nil
	}
	row := db.conn.QueryRow(
		`SELECT `+ficheColumns+` FROM fiches WHERE external_id = ? AND day_key = ?`,
		externalID, dayKey)
	f, err := scanFiche(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find fiche: %w", err)
	}
	return f, nil
}

// BulkCreateFiches inserts fiches one by one. With skipExisting, duplicate
// natural keys are counted as skipped instead of failing the batch.
func (db *StoreDB) BulkCreateFiches(fiches []*Fiche, skipExisting bool) (created, skipped int, errs []error) {
	for _, f := range fiches {
		_, err := db.CreateFiche(f)
		switch {
		case err == nil:
			created++
		case skipExisting && errors.Is(err, ErrDuplicate):
			skipped++
		default:
			errs = append(errs, fmt.Errorf("fiche %q: %w", f.ExternalID, err))
		}
	}
	return created, skipped, errs
}
