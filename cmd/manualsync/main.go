// Command manualsync runs one full fixture sync and exits.
// Useful for operators after provider outages or schema changes.
package main

import (
	"context"
	"fmt"

	"betpool/backend/internal/bets"
	"betpool/backend/internal/client"
	"betpool/backend/internal/config"
	"betpool/backend/internal/repository"
	matchsync "betpool/backend/internal/sync"

	"github.com/rs/zerolog/log"
)

func main() {
	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     fmt.Sprintf("%d", cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Validate database connectivity before calling the provider
	log.Info().Msg("Validating service health...")
	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	apiClient := client.NewClient(
		cfg.FootballAPIBaseURL,
		cfg.FootballAPIKey,
		cfg.FootballLeagueID,
		cfg.FootballSeason,
		cfg.FootballAPITimeout,
	)

	betService := bets.NewService(db.Matches, db.Bets)
	syncService := matchsync.NewService(apiClient, db.Matches, betService)

	result, err := syncService.SyncAllFixtures(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Full sync failed")
	}

	total, err := db.Matches.Count(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to count matches")
	}

	log.Info().
		Int("synced", result.Synced).
		Int("updated", result.Updated).
		Int("total_matches", total).
		Msg("Manual full sync complete")
}
