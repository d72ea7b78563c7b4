package redis

const (
	// KeyPrefixFetch is the prefix for cached fetch outcomes
	KeyPrefixFetch = "linkstash:fetch:"
)

// FetchKey returns the Redis key for the outcome of fetching a normalized URL
func FetchKey(normalizedURL string) string {
	return KeyPrefixFetch + normalizedURL
}
