// Command migrate-passwords is the one-time migration path for legacy
// user rows whose password column still holds plaintext. It bcrypt-hashes
// every such row in place. The login path refuses plaintext comparison
// outright, so affected accounts stay locked out until this has run.
package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/iliyamo/civic-service-desk/internal/config"
	"github.com/iliyamo/civic-service-desk/internal/database"
	"github.com/iliyamo/civic-service-desk/internal/utils"
)

func main() {
	_ = godotenv.Load()
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// Bcrypt digests always start with the $2 version prefix; anything
	// else in that column is a legacy plaintext credential.
	rows, err := db.QueryContext(ctx,
		"SELECT id, password_hash FROM users WHERE password_hash NOT LIKE '$2%'")
	if err != nil {
		log.Fatal().Err(err).Msg("scan for legacy rows failed")
	}
	defer rows.Close()

	type legacy struct {
		id    uint64
		plain string
	}
	var pending []legacy
	for rows.Next() {
		var l legacy
		if err := rows.Scan(&l.id, &l.plain); err != nil {
			log.Fatal().Err(err).Msg("row scan failed")
		}
		pending = append(pending, l)
	}
	if err := rows.Err(); err != nil {
		log.Fatal().Err(err).Msg("row iteration failed")
	}

	migrated := 0
	for _, l := range pending {
		hash, err := utils.HashPassword(l.plain, cfg.BcryptCost)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", l.id).Msg("hashing failed, skipping")
			continue
		}
		// Conditional on the old value so a concurrent password change
		// is never overwritten.
		res, err := db.ExecContext(ctx,
			"UPDATE users SET password_hash=? WHERE id=? AND password_hash=?",
			hash, l.id, l.plain)
		if err != nil {
			log.Error().Err(err).Uint64("user_id", l.id).Msg("update failed, skipping")
			continue
		}
		if n, _ := res.RowsAffected(); n > 0 {
			migrated++
		}
	}

	log.Info().Int("found", len(pending)).Int("migrated", migrated).Msg("legacy password migration done")
}
