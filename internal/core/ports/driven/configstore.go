package driven

// ConfigStore provides persistent key-value configuration.
type ConfigStore interface {
	// Get retrieves a raw value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string value, empty if absent.
	GetString(key string) string

	// GetInt retrieves an integer value, zero if absent.
	GetInt(key string) int

	// GetBool retrieves a boolean value, false if absent.
	GetBool(key string) bool

	// Set stores a value and persists it.
	Set(key string, value any) error

	// Delete removes a key and persists the change.
	Delete(key string) error
}
