package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/hustlehub/authgate/config"
	"go.uber.org/zap"
)

// DB wraps the sql.DB connection pool
type DB struct {
	*sql.DB
	logger *zap.Logger
}

// NewDB creates a new database connection pool
func NewDB(cfg config.DatabaseConfig, logger *zap.Logger) (*DB, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("database connection established",
		zap.String("connection", cfg.LogString()))

	return &DB{
		DB:     db,
		logger: logger,
	}, nil
}

// NewDBFromSQL wraps an existing pool, e.g. one opened by sqlmock
func NewDBFromSQL(db *sql.DB, logger *zap.Logger) *DB {
	return &DB{DB: db, logger: logger}
}

// Close closes the database connection pool
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// HealthCheck performs a health check on the database
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	var result int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database query check failed: %w", err)
	}

	return nil
}

// profileSchema creates the profiles table and the trigger that fills it
// whenever the identity provider inserts into auth.users. Profiles are
// created by this trigger only.
const profileSchema = `
	DO $$ BEGIN
		CREATE TYPE user_type AS ENUM ('CUSTOMER', 'HUSTLER', 'ADMIN');
	EXCEPTION
		WHEN duplicate_object THEN NULL;
	END $$;

	CREATE TABLE IF NOT EXISTS public.profiles (
		id UUID PRIMARY KEY REFERENCES auth.users(id) ON DELETE CASCADE,
		email TEXT NOT NULL,
		first_name TEXT,
		last_name TEXT,
		user_type user_type NOT NULL DEFAULT 'CUSTOMER',
		rating NUMERIC(3, 2) NOT NULL DEFAULT 0,
		tasks_completed INTEGER NOT NULL DEFAULT 0,
		is_verified BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		last_active_at TIMESTAMPTZ
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_email ON public.profiles(email);
	CREATE INDEX IF NOT EXISTS idx_profiles_user_type ON public.profiles(user_type);

	CREATE OR REPLACE FUNCTION public.handle_new_user()
	RETURNS trigger
	LANGUAGE plpgsql
	SECURITY DEFINER SET search_path = public
	AS $$
	BEGIN
		INSERT INTO public.profiles (id, email, first_name, last_name, user_type)
		VALUES (
			NEW.id,
			NEW.email,
			NEW.raw_user_meta_data->>'first_name',
			NEW.raw_user_meta_data->>'last_name',
			CASE
				WHEN NEW.raw_user_meta_data->>'user_type' IN ('CUSTOMER', 'HUSTLER')
					THEN (NEW.raw_user_meta_data->>'user_type')::user_type
				ELSE 'CUSTOMER'
			END
		)
		ON CONFLICT (id) DO NOTHING;
		RETURN NEW;
	END;
	$$;

	DROP TRIGGER IF EXISTS on_auth_user_created ON auth.users;
	CREATE TRIGGER on_auth_user_created
		AFTER INSERT ON auth.users
		FOR EACH ROW EXECUTE FUNCTION public.handle_new_user();
`

// InitSchema creates the profiles table and its signup trigger. It is
// idempotent and expects the identity provider's auth schema to exist.
func (db *DB) InitSchema(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, profileSchema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	db.logger.Info("profile schema initialized successfully")
	return nil
}
