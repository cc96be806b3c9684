package scans

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidGithubURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want bool
	}{
		{name: "owner and repo", url: "https://github.com/octocat/Hello-World", want: true},
		{name: "trailing slash", url: "https://github.com/octocat/Hello-World/", want: true},
		{name: "dots and underscores in repo", url: "https://github.com/my-org/repo_name.go", want: true},
		{name: "digits", url: "https://github.com/user123/42", want: true},
		{name: "missing repo", url: "https://github.com/octocat", want: false},
		{name: "missing repo with slash", url: "https://github.com/octocat/", want: false},
		{name: "http scheme", url: "http://github.com/octocat/Hello-World", want: false},
		{name: "no scheme", url: "github.com/octocat/Hello-World", want: false},
		{name: "ssh form", url: "git@github.com:octocat/Hello-World.git", want: false},
		{name: "other host", url: "https://gitlab.com/octocat/Hello-World", want: false},
		{name: "subdomain host", url: "https://api.github.com/octocat/Hello-World", want: false},
		{name: "extra path segment", url: "https://github.com/octocat/Hello-World/tree/main", want: false},
		{name: "double trailing slash", url: "https://github.com/octocat/Hello-World//", want: false},
		{name: "query string", url: "https://github.com/octocat/Hello-World?tab=readme", want: false},
		{name: "fragment", url: "https://github.com/octocat/Hello-World#readme", want: false},
		{name: "underscore in owner", url: "https://github.com/octo_cat/Hello-World", want: false},
		{name: "leading space", url: " https://github.com/octocat/Hello-World", want: false},
		{name: "ftp", url: "ftp://bad", want: false},
		{name: "empty", url: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidGithubURL(tt.url))
		})
	}
}

func TestIsApplicationURL(t *testing.T) {
	assert.True(t, IsApplicationURL("https://myapp.example.com"))
	assert.True(t, IsApplicationURL("http://localhost:3000"))
	assert.False(t, IsApplicationURL("not-a-url"))
	assert.False(t, IsApplicationURL("ftp://files.example.com"))
}

func TestStatusFinished(t *testing.T) {
	assert.True(t, Status("finished").Finished())
	assert.True(t, Status("FINISHED").Finished())
	assert.False(t, Status("pending").Finished())
}
