package main

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
)

type roleRecord struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	IsSystem    bool     `json:"isSystem"`
	Permissions []string `json:"permissions"`
}

type sectorRecord struct {
	ID        string     `json:"id"`
	Nome      string     `json:"nome"`
	Descricao string     `json:"descricao"`
	Ativo     *bool      `json:"ativo"`
	CreatedAt *time.Time `json:"createdAt"`
}

type positionRecord struct {
	ID                string     `json:"id"`
	Nome              string     `json:"nome"`
	Descricao         string     `json:"descricao"`
	Escopo            string     `json:"escopo"`
	Ativo             *bool      `json:"ativo"`
	SetoresPermitidos []string   `json:"setoresPermitidos"`
	CreatedAt         *time.Time `json:"createdAt"`
}

type userRecord struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Email      string         `json:"email"`
	Password   string         `json:"password"`
	Active     *bool          `json:"active"`
	Roles      []string       `json:"roles"`
	Parametros map[string]any `json:"parametros"`
}

type employeeRecord struct {
	ID               string  `json:"id"`
	Nome             string  `json:"nome"`
	EmailCorporativo string  `json:"emailCorporativo"`
	SetorID          string  `json:"setorId"`
	CargoID          string  `json:"cargoId"`
	UsuarioID        *string `json:"usuarioId"`
	Ativo            *bool   `json:"ativo"`
}

// readRecords decodifica dir/name en out. Un archivo ausente no es error: devuelve false.
// Con latin1 el contenido se transcodifica desde ISO-8859-1 antes de decodificar.
func readRecords(dir, name string, latin1 bool, out any) (bool, error) {
	raw, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "leer %s", name)
	}
	var r io.Reader = bytes.NewReader(raw)
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	if err := json.NewDecoder(r).Decode(out); err != nil {
		return false, errors.Wrapf(err, "decodificar %s", name)
	}
	return true, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func stamp(t *time.Time, now time.Time) time.Time {
	if t == nil || t.IsZero() {
		return now
	}
	return t.UTC()
}

func (r sectorRecord) toEntity(now time.Time) *entity.Sector {
	created := stamp(r.CreatedAt, now)
	return &entity.Sector{
		ID:          r.ID,
		Name:        strings.TrimSpace(r.Nome),
		Description: strings.TrimSpace(r.Descricao),
		Active:      boolOr(r.Ativo, true),
		CreatedAt:   created,
		UpdatedAt:   now,
	}
}

// toEntity con escopo desconocido cae en INDIVIDUAL; los sectores permitidos se filtran a los existentes.
func (r positionRecord) toEntity(now time.Time, knownSectors map[string]bool) *entity.Position {
	scope := entity.Scope(strings.ToUpper(strings.TrimSpace(r.Escopo)))
	if !scope.Valid() {
		scope = entity.ScopeIndividual
	}
	allowed := make([]string, 0, len(r.SetoresPermitidos))
	for _, id := range r.SetoresPermitidos {
		if knownSectors[id] {
			allowed = append(allowed, id)
		}
	}
	return &entity.Position{
		ID:               r.ID,
		Name:             strings.TrimSpace(r.Nome),
		Description:      strings.TrimSpace(r.Descricao),
		Scope:            scope,
		Active:           boolOr(r.Ativo, true),
		AllowedSectorIDs: allowed,
		CreatedAt:        stamp(r.CreatedAt, now),
		UpdatedAt:        now,
	}
}

func (r employeeRecord) toEntity(now time.Time, knownUsers map[string]bool) *entity.Employee {
	var userID *string
	if r.UsuarioID != nil && knownUsers[*r.UsuarioID] {
		id := *r.UsuarioID
		userID = &id
	}
	return &entity.Employee{
		ID:             r.ID,
		Name:           strings.TrimSpace(r.Nome),
		CorporateEmail: entity.NormalizeEmail(r.EmailCorporativo),
		SectorID:       r.SetorID,
		PositionID:     r.CargoID,
		UserID:         userID,
		Active:         boolOr(r.Ativo, true),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}
