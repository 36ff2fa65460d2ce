// Package suggest turns raw trie completions into ranked suggestions and
// sequences queries against a dictionary that may still be loading.
package suggest

// ICompleter defines the interface for completion engines
type ICompleter interface {
	// Complete returns at most limit suggestions for prefix
	Complete(prefix string, limit int) []Suggestion

	// Initialize starts loading the dictionary without blocking
	Initialize() error

	// Stats returns statistics about the loaded dictionary and the cache
	Stats() map[string]int
}
