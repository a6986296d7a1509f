package config

const (
	// DefaultStorePath is the default path for the key/value store file.
	DefaultStorePath = "./libro.db"

	// DefaultQuotaBytes mirrors the ~5 MB capacity of browser local
	// storage the persistence layer is modeled on.
	DefaultQuotaBytes = 5 << 20

	// DefaultUploadLimitBytes is the soft per-file upload ceiling.
	DefaultUploadLimitBytes = 3 << 20
)
