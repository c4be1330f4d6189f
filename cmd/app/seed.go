package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"cledumemoire/internal/config"
	"cledumemoire/internal/domain"
	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/domain/ports/adapter"
	"cledumemoire/internal/domain/ports/repository"
	pg "cledumemoire/internal/infra/db/postgres"
	"cledumemoire/internal/infra/logging"
	"cledumemoire/internal/infra/security"
)

// seedID derives a stable id so that running seed twice finds the same rows.
func seedID(name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://cledumemoire.sn/seed/"+name)).String()
}

func int64p(v int64) *int64 { return &v }

var seedPacks = []struct {
	slug         string
	name         string
	description  string
	price        int64
	inst1, inst2 *int64
	features     []string
}{
	{
		slug:        "pack-demarrage",
		name:        "Pack Démarrage",
		description: "Idéal pour bien démarrer votre mémoire. Inclut le choix du sujet, la problématique et le plan détaillé.",
		price:       50000,
		features: []string{
			"Aide au choix du sujet",
			"Formulation de la problématique",
			"Élaboration du plan détaillé",
			"Recherche bibliographique guidée",
			"2 séances de coaching",
		},
	},
	{
		slug:        "pack-redaction",
		name:        "Pack Rédaction",
		description: "Accompagnement complet de la rédaction. Paiement en 2 tranches : 75 000 FCFA + 25 000 FCFA.",
		price:       100000,
		inst1:       int64p(75000),
		inst2:       int64p(25000),
		features: []string{
			"Accompagnement rédactionnel complet",
			"Relecture de chaque chapitre",
			"Corrections et suggestions",
			"Mise en forme académique",
			"6 séances de coaching",
		},
	},
	{
		slug:        "pack-soutenance",
		name:        "Pack Soutenance",
		description: "Préparation intensive à la soutenance. Entraînement, slides et simulation.",
		price:       65000,
		features: []string{
			"Préparation des slides de présentation",
			"Simulation de soutenance",
			"Coaching prise de parole",
			"Anticipation des questions du jury",
			"3 séances de simulation",
		},
	},
	{
		slug:        "pack-complet",
		name:        "Pack Complet",
		description: "L'accompagnement du début à la fin. Paiement en 2 tranches : 100 000 FCFA + 50 000 FCFA.",
		price:       150000,
		inst1:       int64p(100000),
		inst2:       int64p(50000),
		features: []string{
			"Tout le Pack Démarrage",
			"Tout le Pack Rédaction",
			"Tout le Pack Soutenance",
			"Accompagnateur dédié",
			"Priorité de traitement",
		},
	},
}

type demoUser struct {
	email, password    string
	first, last, phone string
	role               model.Role
	university, field  string
	coachEmail         string // students only
}

var demoUsers = []demoUser{
	{email: "admin@cledumemoire.sn", password: "admin123", first: "Administrateur", last: "Système", phone: "+221 77 000 0000", role: model.RoleAdmin},
	{email: "coach1@cledumemoire.sn", password: "coach123", first: "Amadou", last: "Diallo", phone: "+221 77 111 1111", role: model.RoleAccompagnateur, university: "UCAD", field: "Sciences de Gestion"},
	{email: "etudiant1@test.sn", password: "student123", first: "Moussa", last: "Diop", phone: "+221 78 333 3333", role: model.RoleStudent, university: "UCAD", field: "Master Informatique", coachEmail: "coach1@cledumemoire.sn"},
}

func seedCmd(flags *rootFlags) *cobra.Command {
	var packsOnly bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the default packs and demo accounts",
		Long: `Insert the four default packs and one admin, one accompagnateur and
one student account. Existing rows are left untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(flags.configPath, flags.dev)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			logger := logging.Component(logging.New(cfg.Log, cfg.Runtime.Dev), "Seed")

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()

			pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 2)
			if err != nil {
				return fmt.Errorf("postgres: %w", err)
			}
			defer pool.Close()

			if err := seedPackRows(ctx, pg.NewPackRepo(pool), logger); err != nil {
				return err
			}
			if packsOnly {
				return nil
			}
			return seedDemoUsers(ctx, pg.NewUserRepo(pool), pg.NewMemoireRepo(pool),
				security.NewBcryptHasher(cfg.Auth.BcryptCost), logger)
		},
	}
	cmd.Flags().BoolVar(&packsOnly, "packs-only", false, "skip the demo accounts")
	return cmd
}

func seedPackRows(ctx context.Context, packs repository.PackRepository, logger *zerolog.Logger) error {
	for i, s := range seedPacks {
		id := seedID(s.slug)
		if _, err := packs.FindByID(ctx, repository.NoTX, id); err == nil {
			logger.Info().Str("pack", s.name).Msg("pack already present")
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("find pack %q: %w", s.name, err)
		}
		p, err := model.NewPack(id, s.name, s.description, s.price, s.inst1, s.inst2, s.features, i+1)
		if err != nil {
			return fmt.Errorf("build pack %q: %w", s.name, err)
		}
		if err := packs.Save(ctx, repository.NoTX, p); err != nil {
			return fmt.Errorf("save pack %q: %w", s.name, err)
		}
		logger.Info().Str("pack", p.Name).Str("pack_id", p.ID).Int64("price", p.Price).Msg("pack seeded")
	}
	return nil
}

func seedDemoUsers(ctx context.Context, users repository.UserRepository, memoires repository.MemoireRepository, hasher adapter.PasswordHasher, logger *zerolog.Logger) error {
	byEmail := make(map[string]*model.User, len(demoUsers))
	for _, d := range demoUsers {
		u, err := users.FindByEmail(ctx, repository.NoTX, d.email)
		switch {
		case err == nil:
			logger.Info().Str("email", d.email).Msg("account already present")
		case errors.Is(err, domain.ErrNotFound):
			if u, err = model.NewUser(seedID(d.email), d.email, d.first, d.last, d.role); err != nil {
				return fmt.Errorf("build user %q: %w", d.email, err)
			}
			if u.PasswordHash, err = hasher.Hash(d.password); err != nil {
				return err
			}
			u.Phone, u.University, u.Field = d.phone, d.university, d.field
			if err := users.Save(ctx, repository.NoTX, u); err != nil {
				return fmt.Errorf("save user %q: %w", d.email, err)
			}
			logger.Info().Str("email", d.email).Str("role", string(d.role)).Msg("account seeded")
		default:
			return fmt.Errorf("find user %q: %w", d.email, err)
		}
		byEmail[d.email] = u
	}

	for _, d := range demoUsers {
		if d.role != model.RoleStudent {
			continue
		}
		student := byEmail[d.email]
		if _, err := memoires.FindByStudent(ctx, repository.NoTX, student.ID); err == nil {
			continue
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		m, err := model.NewMemoireFor(seedID("memoire/"+d.email), student)
		if err != nil {
			return err
		}
		if coach := byEmail[d.coachEmail]; coach != nil {
			m.CoachID = &coach.ID
		}
		if err := memoires.Save(ctx, repository.NoTX, m); err != nil {
			return fmt.Errorf("save memoire for %q: %w", d.email, err)
		}
	}
	return nil
}
