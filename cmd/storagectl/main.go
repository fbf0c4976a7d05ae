package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/andresuchdata/reactive-resume/backend-go/internal/config"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/storage"
	"github.com/andresuchdata/reactive-resume/backend-go/internal/types"
	"github.com/andresuchdata/reactive-resume/backend-go/pkg/logger"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func initStorage(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Configure(cfg.Log.Level, cfg.Log.Format)

	collaborators, err := storage.OpenCollaborators(cfg)
	if err != nil {
		return err
	}
	c.Context = context.WithValue(c.Context, types.CollaboratorsKey, collaborators)

	module, err := storage.NewModule(cfg, collaborators.Assets, collaborators.Presign)
	if err != nil {
		return fmt.Errorf("failed to configure storage: %w", err)
	}

	c.Context = context.WithValue(c.Context, types.StorageKey, module)
	return nil
}

// closeStorage runs after every storage command, including when initStorage
// failed part way.
func closeStorage(c *cli.Context) error {
	if collaborators, ok := c.Context.Value(types.CollaboratorsKey).(*storage.Collaborators); ok {
		return collaborators.Close()
	}
	return nil
}

func storageFrom(c *cli.Context) (*storage.Module, error) {
	module, ok := c.Context.Value(types.StorageKey).(*storage.Module)
	if !ok || module == nil {
		return nil, fmt.Errorf("storage is not initialised")
	}
	return module, nil
}

func initDB(c *cli.Context) error {
	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.PingContext(c.Context); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	c.Context = context.WithValue(c.Context, types.DBKey, db)
	return nil
}

func closeDB(c *cli.Context) error {
	if db, ok := c.Context.Value(types.DBKey).(*sql.DB); ok && db != nil {
		return db.Close()
	}
	return nil
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "storagectl",
		Usage: "Inspect and maintain the resume asset bucket",
		Commands: []*cli.Command{
			{
				Name:  "bucket",
				Usage: "Bucket lifecycle",
				Subcommands: []*cli.Command{
					{
						Name:   "ensure",
						Usage:  "Create the bucket with its public-read policy if it does not exist",
						Before: initStorage,
						After:  closeStorage,
						Action: runBucketEnsure,
					},
					{
						Name:   "check",
						Usage:  "Exit non-zero when the bucket is missing or unreachable",
						Before: initStorage,
						After:  closeStorage,
						Action: runBucketCheck,
					},
				},
			},
			{
				Name:      "ls",
				Usage:     "List objects under a prefix",
				ArgsUsage: "<prefix>",
				Before:    initStorage,
				After:     closeStorage,
				Action:    runList,
			},
			{
				Name:      "put",
				Usage:     "Upload files for a user",
				ArgsUsage: "<pictures|previews|resumes> <user-id> <files...>",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "concurrency",
						Usage: "Maximum parallel uploads",
						Value: 4,
					},
				},
				Before: initStorage,
				After:  closeStorage,
				Action: runPut,
			},
			{
				Name:      "rm",
				Usage:     "Delete every object under a prefix",
				ArgsUsage: "<prefix>",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "yes",
						Aliases: []string{"y"},
						Usage:   "Do not ask for confirmation",
					},
				},
				Before: initStorage,
				After:  closeStorage,
				Action: runRemove,
			},
			{
				Name:   "migrate",
				Usage:  "Create the asset ledger table",
				Flags:  []cli.Flag{newDBURLFlag()},
				Before: initDB,
				After:  closeDB,
				Action: runMigrate,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("storagectl failed")
	}
}
