package main

import (
	"github.com/spf13/cobra"

	"github.com/Mr-Alvaro/Crediticio-System/config"
	"github.com/Mr-Alvaro/Crediticio-System/repository"
)

func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Crea la tabla solicitudes en PostgreSQL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			db, err := openMigrationDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repository.NewHistoryRepositoryPostgres(db).Migrate(cmd.Context()); err != nil {
				return err
			}
			logger := newLogger(cfg.Log, cmd.ErrOrStderr())
			logger.Info().Msg("Tabla solicitudes lista")
			return nil
		},
	}
}
