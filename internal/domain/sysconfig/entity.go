package sysconfig

// KeyGithubWebhookSecret is the entry the scan form reads and writes.
const KeyGithubWebhookSecret = "GITHUB_WEBHOOK_SECRET"

// Entry is one system config row. Secret values come back masked.
type Entry struct {
	Key      string `json:"key"`
	Value    string `json:"value"`
	IsSecret bool   `json:"is_secret"`
}

// Find returns the entry with the given key.
func Find(entries []Entry, key string) (Entry, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e, true
		}
	}
	return Entry{}, false
}
