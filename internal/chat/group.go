package chat

import "strings"

// GroupByAuthor buckets messages by author, preserving message order within
// each bucket.
func GroupByAuthor(messages []Message) map[string][]Message {
	grouped := make(map[string][]Message)
	for _, m := range messages {
		grouped[m.Author] = append(grouped[m.Author], m)
	}
	return grouped
}

// Corpus joins all non-empty message contents into one article-like string
// for the summarizer.
func Corpus(messages []Message) string {
	parts := make([]string, 0, len(messages))
	for _, m := range messages {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		parts = append(parts, content)
	}
	return strings.Join(parts, " ")
}
