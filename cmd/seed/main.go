// seed carga datos iniciales de organización desde archivos JSON y asegura un administrador.
//
// Uso: go run ./cmd/seed [-data ./data] [-latin1] [-admin-email a@b.c -admin-password xxx]
// Archivos reconocidos en -data: roles.json, setores.json, cargos.json, users.json, funcionarios.json.
// Todo se escribe en una sola transacción; re-ejecutar actualiza los registros existentes.
package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/servicedesk-api/internal/domain/entity"
	"github.com/jhoicas/servicedesk-api/internal/infrastructure/postgres"
	"github.com/jhoicas/servicedesk-api/pkg/config"
	"github.com/jhoicas/servicedesk-api/pkg/logger"
)

type options struct {
	dataDir       string
	latin1        bool
	adminEmail    string
	adminPassword string
	adminName     string
	bcryptCost    int
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	opts := options{bcryptCost: cfg.Security.BcryptCost}
	flag.StringVar(&opts.dataDir, "data", "data", "directorio con los JSON de carga")
	flag.BoolVar(&opts.latin1, "latin1", false, "los JSON están en ISO-8859-1")
	flag.StringVar(&opts.adminEmail, "admin-email", os.Getenv("SEED_ADMIN_EMAIL"), "email del administrador inicial")
	flag.StringVar(&opts.adminPassword, "admin-password", os.Getenv("SEED_ADMIN_PASSWORD"), "contraseña del administrador inicial")
	flag.StringVar(&opts.adminName, "admin-name", "Administrador", "nombre del administrador inicial")
	flag.Parse()

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migraciones")
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("iniciar transacción")
	}
	defer func() { _ = tx.Rollback(ctx) }()

	s := &seeder{tx: tx, opts: opts, log: log, now: time.Now().UTC()}
	if err := s.run(ctx); err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	if err := tx.Commit(ctx); err != nil {
		log.Fatal().Err(err).Msg("commit")
	}
	log.Info().
		Int("roles", s.counts.roles).
		Int("sectors", s.counts.sectors).
		Int("positions", s.counts.positions).
		Int("users", s.counts.users).
		Int("employees", s.counts.employees).
		Int("skipped", s.counts.skipped).
		Msg("seed completado")
}

type seeder struct {
	tx     pgx.Tx
	opts   options
	log    *logger.Logger
	now    time.Time
	counts struct {
		roles, sectors, positions, users, employees, skipped int
	}
}

func (s *seeder) run(ctx context.Context) error {
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"roles", s.roles},
		{"sectors", s.sectors},
		{"positions", s.positions},
		{"users", s.users},
		{"admin", s.admin},
		{"employees", s.employees},
	}
	for _, st := range steps {
		if err := st.fn(ctx); err != nil {
			return errors.Wrap(err, st.name)
		}
	}
	return nil
}

func (s *seeder) read(name string, out any) (bool, error) {
	found, err := readRecords(s.opts.dataDir, name, s.opts.latin1, out)
	if err == nil && !found {
		s.log.Warn().Str("file", name).Msg("archivo no encontrado, se omite")
	}
	return found, err
}

func (s *seeder) roles(ctx context.Context) error {
	var records []roleRecord
	if ok, err := s.read("roles.json", &records); !ok {
		return err
	}
	repo := postgres.NewRoleRepository(s.tx)
	for _, r := range records {
		if r.Name == "" {
			s.counts.skipped++
			continue
		}
		existing, err := repo.GetByID(ctx, r.Name)
		if err != nil {
			return err
		}
		role := &entity.Role{ID: r.Name, Name: r.Name, Description: r.Description, IsSystem: r.IsSystem, CreatedAt: s.now, UpdatedAt: s.now}
		if existing == nil {
			err = repo.Create(ctx, role)
		} else {
			err = repo.Update(ctx, role)
		}
		if err != nil {
			return err
		}
		missing, err := repo.MissingPermissions(ctx, r.Permissions)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			s.log.Warn().Str("role", r.Name).Strs("permissions", missing).Msg("permisos desconocidos ignorados")
		}
		if err := repo.ReplacePermissions(ctx, r.Name, without(r.Permissions, missing)); err != nil {
			return err
		}
		s.counts.roles++
	}
	return nil
}

func (s *seeder) sectors(ctx context.Context) error {
	var records []sectorRecord
	if ok, err := s.read("setores.json", &records); !ok {
		return err
	}
	repo := postgres.NewSectorRepository(s.tx)
	for _, r := range records {
		if _, err := uuid.Parse(r.ID); err != nil || r.Nome == "" {
			s.log.Warn().Str("id", r.ID).Msg("setor inválido, se omite")
			s.counts.skipped++
			continue
		}
		existing, err := repo.GetByID(ctx, r.ID)
		if err != nil {
			return err
		}
		sector := r.toEntity(s.now)
		if existing == nil {
			err = repo.Create(ctx, sector)
		} else {
			err = repo.Update(ctx, sector)
		}
		if err != nil {
			return err
		}
		s.counts.sectors++
	}
	return nil
}

func (s *seeder) positions(ctx context.Context) error {
	var records []positionRecord
	if ok, err := s.read("cargos.json", &records); !ok {
		return err
	}
	sectors, err := postgres.NewSectorRepository(s.tx).List(ctx, false)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(sectors))
	for _, sec := range sectors {
		known[sec.ID] = true
	}
	repo := postgres.NewPositionRepository(s.tx)
	for _, r := range records {
		if _, err := uuid.Parse(r.ID); err != nil || r.Nome == "" {
			s.log.Warn().Str("id", r.ID).Msg("cargo inválido, se omite")
			s.counts.skipped++
			continue
		}
		existing, err := repo.GetByID(ctx, r.ID)
		if err != nil {
			return err
		}
		position := r.toEntity(s.now, known)
		if existing == nil {
			err = repo.Create(ctx, position)
		} else if err = repo.Update(ctx, position); err == nil {
			err = repo.ReplaceSectors(ctx, position.ID, position.AllowedSectorIDs)
		}
		if err != nil {
			return err
		}
		s.counts.positions++
	}
	return nil
}

// users sin contraseña en el archivo solo se actualizan si ya existen; nunca se inventa una contraseña.
func (s *seeder) users(ctx context.Context) error {
	var records []userRecord
	if ok, err := s.read("users.json", &records); !ok {
		return err
	}
	repo := postgres.NewUserRepository(s.tx)
	roles := postgres.NewRoleRepository(s.tx)
	for _, r := range records {
		if _, err := uuid.Parse(r.ID); err != nil {
			s.counts.skipped++
			continue
		}
		existing, err := repo.GetByID(ctx, r.ID)
		if err != nil {
			return err
		}
		if existing == nil && r.Password == "" {
			s.log.Warn().Str("email", r.Email).Msg("usuario nuevo sin contraseña, se omite")
			s.counts.skipped++
			continue
		}
		u := &entity.User{
			ID:         r.ID,
			Name:       r.Name,
			Email:      entity.NormalizeEmail(r.Email),
			Active:     boolOr(r.Active, true),
			Parameters: r.Parametros,
			CreatedAt:  s.now,
			UpdatedAt:  s.now,
		}
		if existing != nil {
			u.PasswordHash = existing.PasswordHash
			u.CreatedAt = existing.CreatedAt
		}
		if r.Password != "" {
			if u.PasswordHash, err = s.hash(r.Password); err != nil {
				return err
			}
		}
		if existing == nil {
			err = repo.Create(ctx, u)
		} else {
			err = repo.Update(ctx, u)
		}
		if err != nil {
			return errors.Wrapf(err, "usuario %s", u.Email)
		}
		missing, err := roles.MissingRoles(ctx, r.Roles)
		if err != nil {
			return err
		}
		if err := repo.SetRoles(ctx, u.ID, without(r.Roles, missing)); err != nil {
			return err
		}
		s.counts.users++
	}
	return nil
}

// admin asegura un ADMIN activo con las credenciales indicadas; sin email no hace nada.
func (s *seeder) admin(ctx context.Context) error {
	if s.opts.adminEmail == "" {
		return nil
	}
	if len(s.opts.adminPassword) < 8 {
		return errors.New("la contraseña del administrador debe tener al menos 8 caracteres")
	}
	repo := postgres.NewUserRepository(s.tx)
	email := entity.NormalizeEmail(s.opts.adminEmail)
	u, err := repo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	hash, err := s.hash(s.opts.adminPassword)
	if err != nil {
		return err
	}
	if u == nil {
		u = &entity.User{
			ID:        uuid.NewString(),
			Name:      s.opts.adminName,
			Email:     email,
			CreatedAt: s.now,
		}
		u.PasswordHash, u.Active, u.UpdatedAt = hash, true, s.now
		if err := repo.Create(ctx, u); err != nil {
			return err
		}
	} else {
		u.PasswordHash, u.Active, u.UpdatedAt = hash, true, s.now
		if err := repo.Update(ctx, u); err != nil {
			return err
		}
	}
	roles := u.Roles
	if !u.HasRole(entity.RoleAdmin) {
		roles = append(roles, entity.RoleAdmin)
	}
	if err := repo.SetRoles(ctx, u.ID, roles); err != nil {
		return err
	}
	s.log.Info().Str("email", email).Str("id", u.ID).Msg("administrador asegurado")
	return nil
}

func (s *seeder) employees(ctx context.Context) error {
	var records []employeeRecord
	if ok, err := s.read("funcionarios.json", &records); !ok {
		return err
	}
	sectors := postgres.NewSectorRepository(s.tx)
	positions := postgres.NewPositionRepository(s.tx)
	users := postgres.NewUserRepository(s.tx)
	repo := postgres.NewEmployeeRepository(s.tx)

	knownUsers := map[string]bool{}
	for _, r := range records {
		if r.UsuarioID == nil {
			continue
		}
		u, err := users.GetByID(ctx, *r.UsuarioID)
		if err != nil {
			return err
		}
		knownUsers[*r.UsuarioID] = u != nil
	}

	for _, r := range records {
		if _, err := uuid.Parse(r.ID); err != nil {
			s.counts.skipped++
			continue
		}
		sector, err := sectors.GetByID(ctx, r.SetorID)
		if err != nil {
			return err
		}
		position, err := positions.GetByID(ctx, r.CargoID)
		if err != nil {
			return err
		}
		if sector == nil || position == nil {
			s.log.Warn().Str("employee", r.Nome).Msg("setor o cargo inexistente, se omite")
			s.counts.skipped++
			continue
		}
		e := r.toEntity(s.now, knownUsers)
		existing, err := repo.GetByID(ctx, r.ID)
		if err != nil {
			return err
		}
		if existing == nil {
			err = repo.Create(ctx, e)
		} else {
			e.CreatedAt = existing.CreatedAt
			err = repo.Update(ctx, e)
		}
		if err != nil {
			return errors.Wrapf(err, "funcionario %s", r.Nome)
		}
		s.counts.employees++
	}
	return nil
}

func (s *seeder) hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.opts.bcryptCost)
	if err != nil {
		return "", errors.Wrap(err, "bcrypt")
	}
	return string(b), nil
}

func without(ids, drop []string) []string {
	if len(drop) == 0 {
		return ids
	}
	skip := make(map[string]bool, len(drop))
	for _, d := range drop {
		skip[d] = true
	}
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if !skip[id] {
			out = append(out, id)
		}
	}
	return out
}
