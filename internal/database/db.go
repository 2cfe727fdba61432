package database

import (
	"context"
	"fmt"
	"time"

	"paper_summaries_go_backend/internal/models"
	"paper_summaries_go_backend/internal/services"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type PostgresConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		c.Host,
		c.User,
		c.Password,
		c.Name,
		c.Port,
	)
}

// InitDB opens Postgres, migrates the papers table and creates the full-text
// index used by DefaultPaperServiceDB.
func InitDB(cfg PostgresConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		// Postgres keeps microseconds; match it so returned records equal stored ones.
		NowFunc: func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable pgcrypto: %w", err)
	}

	// Auto Migrate the schema
	if err := db.AutoMigrate(&models.Paper{}); err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %w", err)
	}

	searchIndex := fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_papers_search ON papers USING GIN (%s)`, services.PaperSearchVector)
	if err := db.Exec(searchIndex).Error; err != nil {
		return nil, fmt.Errorf("failed to create search index: %w", err)
	}

	return db, nil
}

// InitMongo connects to MongoDB and returns the named database.
func InitMongo(ctx context.Context, uri, databaseName string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}
	return client, client.Database(databaseName), nil
}

// InitRedis connects to Redis for the query cache.
func InitRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
