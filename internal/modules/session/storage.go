package session

// Storage is the local key/value cache the store persists the token and email
// into. localstate.FileStore and localstate.MemoryStore implement it.
type Storage interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(keys ...string) error
}
