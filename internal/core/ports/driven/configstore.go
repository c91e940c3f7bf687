package driven

// ConfigStore exposes the pubminer config file as flat dot-separated keys,
// e.g. "storage.ner" for the ner key of the [storage] table.
type ConfigStore interface {
	// Get retrieves a raw value and whether the key exists.
	Get(key string) (any, bool)

	// GetString returns "" when the key is missing or not a string.
	GetString(key string) string

	// GetInt returns 0 when the key is missing or not an integer.
	GetInt(key string) int

	// GetBool returns false when the key is missing or not a boolean.
	GetBool(key string) bool

	// GetStringSlice accepts an array or a comma-separated string.
	// Returns nil when the key is missing.
	GetStringSlice(key string) []string

	// Set stores a value and persists it immediately.
	Set(key string, value any) error

	// Save writes the current values back as TOML tables.
	Save() error

	// Load re-reads the file. A missing file yields an empty store.
	Load() error

	// Keys lists every key in sorted order.
	Keys() []string

	// Path returns the configuration file path. Relative paths in the
	// file resolve against its directory.
	Path() string
}
