package scans

import (
	"regexp"
	"strings"
)

var githubRepoURL = regexp.MustCompile(`^https://github\.com/[a-zA-Z0-9-]+/[a-zA-Z0-9-._]+/?$`)

// IsValidGithubURL accepts https://github.com/{owner}/{repo} with an optional
// trailing slash. The whole string must match.
func IsValidGithubURL(url string) bool {
	return githubRepoURL.MatchString(url)
}

// IsApplicationURL reports whether a live application URL looks like an
// http(s) address. Only the prefix is checked.
func IsApplicationURL(url string) bool {
	return strings.HasPrefix(url, "http")
}
