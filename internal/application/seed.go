package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/idol-catalog/internal/domain/entity"
	repo "github.com/oksasatya/idol-catalog/internal/domain/repository"
	"github.com/oksasatya/idol-catalog/pkg/events"
	"github.com/oksasatya/idol-catalog/pkg/helpers"
)

const seedPassword = "1234"

// SeedIdol describes one group of the demo catalog.
type SeedIdol struct {
	Name    string
	Members []string
}

// DefaultCatalog is the demo data loaded on a fresh database.
var DefaultCatalog = []SeedIdol{
	{Name: "aespa", Members: []string{"karina", "giselle", "winter"}},
	{Name: "newJeans", Members: []string{"minzi", "haerin", "hani", "dainel", "hyein"}},
}

type SeedReport struct {
	IdolsCreated int
	IdolsSkipped int
	UsersCreated int
}

// Locker serializes seed runs across processes.
type Locker interface {
	WithLock(ctx context.Context, fn func(ctx context.Context) error) error
}

type Seeder struct {
	Idols   repo.IdolRepository
	Users   repo.UserRepository
	Events  EventPublisher
	Logger  *logrus.Logger
	Catalog []SeedIdol
	// Lock, when set, is held for the whole run so concurrent starts cannot
	// both insert the same idol.
	Lock Locker
}

func NewSeeder(idols repo.IdolRepository, users repo.UserRepository, events EventPublisher, logger *logrus.Logger) *Seeder {
	return &Seeder{Idols: idols, Users: users, Events: events, Logger: logger, Catalog: DefaultCatalog}
}

// Run loads the catalog. Idols whose name already exists are skipped and
// existing usernames are left untouched, so running twice is harmless.
func (s *Seeder) Run(ctx context.Context) (SeedReport, error) {
	if s.Lock == nil {
		return s.run(ctx)
	}
	var rep SeedReport
	err := s.Lock.WithLock(ctx, func(ctx context.Context) error {
		var err error
		rep, err = s.run(ctx)
		return err
	})
	return rep, err
}

func (s *Seeder) run(ctx context.Context) (SeedReport, error) {
	var rep SeedReport
	for _, g := range s.Catalog {
		hash, err := helpers.HashPassword(seedPassword)
		if err != nil {
			return rep, err
		}
		for _, name := range g.Members {
			_, created, err := s.Users.Create(ctx, &entity.User{
				Username: name,
				Password: hash,
				Roles:    []string{entity.RoleUser},
			})
			if err != nil {
				return rep, err
			}
			if created {
				rep.UsersCreated++
			}
		}

		existing, err := s.Idols.FindByName(ctx, g.Name)
		if err != nil {
			return rep, err
		}
		if existing != nil {
			rep.IdolsSkipped++
			continue
		}
		idol := entity.NewIdol(g.Name)
		now := time.Now().UTC()
		for _, name := range g.Members {
			m := &entity.Member{Name: name, CreatedAt: now, UserName: name, Password: hash}
			if err := idol.AddMember(m); err != nil {
				return rep, err
			}
		}
		saved, err := s.Idols.Save(ctx, idol)
		if err != nil {
			return rep, err
		}
		rep.IdolsCreated++
		if s.Events != nil {
			if err := s.Events.Publish(ctx, events.Upserted(saved)); err != nil && s.Logger != nil {
				s.Logger.WithError(err).Warn("publish seed event failed")
			}
		}
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{
			"idols_created": rep.IdolsCreated,
			"idols_skipped": rep.IdolsSkipped,
			"users_created": rep.UsersCreated,
		}).Info("seed finished")
	}
	return rep, nil
}
