package suggest

// ShouldSuppress reports whether a result set only echoes the query back:
// exactly one result that equals the query byte for byte.
func ShouldSuppress(query string, results []string) bool {
	return len(results) == 1 && results[0] == query
}
