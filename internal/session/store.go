package session

// Store persists the current user identity between runs. Implementations
// hold a single slot: there is no multi-account support and no expiry, a
// stale id is only discovered when the backend rejects it.
type Store interface {
	Set(userID, phone string) error
	Get() (string, error)
	Phone() (string, error)
	Clear() error
}
