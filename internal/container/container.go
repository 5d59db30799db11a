package container

import (
	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/idol-catalog/config"
	"github.com/oksasatya/idol-catalog/internal/infrastructure/memory"
	"github.com/oksasatya/idol-catalog/pkg/helpers"
)

// app-level container to share constructed components across packages
// Router can auto-wire modules from these singletons.

var (
	cfg         *config.Config
	logger      *logrus.Logger
	pgPool      *pgxpool.Pool
	memStore    *memory.Store
	redisClient *redis.Client
	gcsClient   *storage.Client

	sessionTokens *helpers.SessionTokens

	rabbitPub *helpers.RabbitPublisher
	esClient  *elasticsearch.Client
)

func SetConfig(c *config.Config) { cfg = c }
func GetConfig() *config.Config  { return cfg }
func SetLogger(l *logrus.Logger) { logger = l }
func GetLogger() *logrus.Logger {
	if logger != nil {
		return logger
	}
	return helpers.NopLogger()
}
func SetPGPool(p *pgxpool.Pool)          { pgPool = p }
func GetPGPool() *pgxpool.Pool           { return pgPool }
func SetMemoryStore(s *memory.Store)     { memStore = s }
func GetMemoryStore() *memory.Store      { return memStore }
func SetRedis(r *redis.Client)           { redisClient = r }
func GetRedis() *redis.Client            { return redisClient }
func SetGCS(s *storage.Client)           { gcsClient = s }
func GetGCS() *storage.Client            { return gcsClient }
func SetTokens(t *helpers.SessionTokens) { sessionTokens = t }
func GetTokens() *helpers.SessionTokens {
	if sessionTokens != nil {
		return sessionTokens
	}
	if cfg != nil {
		return helpers.NewSessionTokens(cfg.SessionSecret, cfg.SessionTTL)
	}
	return nil
}

func SetRabbitPub(p *helpers.RabbitPublisher) { rabbitPub = p }
func GetRabbitPub() *helpers.RabbitPublisher  { return rabbitPub }
func SetES(c *elasticsearch.Client)           { esClient = c }
func GetES() *elasticsearch.Client            { return esClient }
