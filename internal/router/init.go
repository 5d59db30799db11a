package router

import (
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/idol-catalog/internal/application"
	"github.com/oksasatya/idol-catalog/internal/container"
	repo "github.com/oksasatya/idol-catalog/internal/domain/repository"
	"github.com/oksasatya/idol-catalog/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/idol-catalog/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/idol-catalog/internal/interface/http"
	"github.com/oksasatya/idol-catalog/internal/router/modules"
	"github.com/oksasatya/idol-catalog/pkg/helpers"
)

// Repositories is the storage backend selected by STORAGE_DRIVER.
type Repositories struct {
	Idols   repo.IdolRepository
	Members repo.MemberRepository
	Users   repo.UserRepository
}

// BuildRepositories returns the memory store when configured, postgres otherwise.
func BuildRepositories() Repositories {
	if container.GetConfig().StorageDriver == "memory" {
		store := container.GetMemoryStore()
		if store == nil {
			store = memory.NewStore()
			container.SetMemoryStore(store)
		}
		return Repositories{Idols: store.Idols(), Members: store.Members(), Users: store.Users()}
	}
	pool := container.GetPGPool()
	return Repositories{
		Idols:   pginfra.NewIdolRepository(pool),
		Members: pginfra.NewMemberRepository(pool),
		Users:   pginfra.NewUserRepository(pool),
	}
}

// EventPublisher returns the RabbitMQ publisher, or nil when events are off.
func EventPublisher() application.EventPublisher {
	if pub := container.GetRabbitPub(); pub != nil {
		return application.NewRabbitEvents(pub)
	}
	return nil
}

// NewSeeder builds the catalog seeder. On postgres the run holds an advisory
// lock so replicas starting together seed once.
func NewSeeder(repos Repositories, logger *logrus.Logger) *application.Seeder {
	s := application.NewSeeder(repos.Idols, repos.Users, EventPublisher(), logger)
	if container.GetConfig().StorageDriver != "memory" {
		if pool := container.GetPGPool(); pool != nil {
			s.Lock = pginfra.NewAdvisoryLock(pool, pginfra.SeedLockKey)
		}
	}
	return s
}

func imageStore() application.ImageStore {
	cfg := container.GetConfig()
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		return application.NewGCSImages(gcs, cfg.GCSBucket)
	}
	return nil
}

type CatalogModuleDeps struct {
	Service *application.IdolService
	Handler *handlers.IdolHandler
}

func buildCatalogDeps(repos Repositories) CatalogModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	search := application.NewIdolIndexer(container.GetES(), cfg.ESIdolsIndex, logger)

	service := application.NewIdolService(
		repos.Idols,
		repos.Members,
		EventPublisher(),
		imageStore(),
		search,
		logger,
		cfg.RecentPageSize,
	)
	return CatalogModuleDeps{
		Service: service,
		Handler: handlers.NewIdolHandler(service, logger),
	}
}

type AuthModuleDeps struct {
	Service *application.AuthService
	Cookies *helpers.Manager
	Handler *handlers.AuthHandler
}

// BuildAuthDeps wires the session service; the engine-level session loader
// shares it with the login routes.
func BuildAuthDeps(repos Repositories) AuthModuleDeps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	service := application.NewAuthService(repos.Users, container.GetRedis(), container.GetTokens(), logger)
	cookies := helpers.NewCookie(cfg.SessionCookie, cfg.CookieDomain, cfg.CookieSecure)
	return AuthModuleDeps{
		Service: service,
		Cookies: cookies,
		Handler: handlers.NewAuthHandler(service, cookies, logger, cfg.LoginSuccessURL),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry, repos Repositories, auth AuthModuleDeps) {
	catalog := buildCatalogDeps(repos)
	r.Add(modules.NewCatalogModule(catalog.Handler))
	if container.GetConfig().DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
	r.AddWeb(modules.NewAuthModule(auth.Handler))
	r.AddWeb(modules.NewPageModule(handlers.NewPageHandler()))
}
