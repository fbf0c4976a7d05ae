package types

type contextKey string

const (
	// DBKey stores the *sql.DB opened by a CLI command.
	DBKey contextKey = "db"
	// StorageKey stores the *storage.Module built by a CLI command.
	StorageKey contextKey = "storage"
	// CollaboratorsKey stores the *storage.Collaborators closed after a CLI command.
	CollaboratorsKey contextKey = "collaborators"
)
