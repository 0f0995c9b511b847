// Package chat fetches channel history from the Discord REST API and prepares
// it for summarization. The fetcher is an external collaborator: the core
// pipeline only sees the resulting message sequence.
package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/teampulse/teampulse/internal/config"
	"github.com/teampulse/teampulse/pkg/cerr"
)

// Message is one chat message, flattened to what the summarizer and the
// dashboard need.
type Message struct {
	ID        string    `json:"id"`
	Author    string    `json:"username"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const pageSize = 100

type Fetcher struct {
	baseURL   string
	token     string
	channelID string
	httpc     *http.Client
}

func NewFetcher(env *config.DiscordEnv) *Fetcher {
	return &Fetcher{
		baseURL:   env.BaseURL,
		token:     env.BotToken,
		channelID: env.ChannelID,
		httpc: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// History fetches the channel's messages, paginating backwards until the
// channel is exhausted or limit messages are collected (limit <= 0 means no
// cap). Messages are returned oldest first.
func (f *Fetcher) History(ctx context.Context, limit int) ([]Message, error) {
	if f.channelID == "" {
		return nil, cerr.NewError(cerr.FailedPrecondition, "no chat channel configured", nil)
	}

	var collected []Message
	before := ""
	for {
		page, err := f.page(ctx, before)
		if err != nil {
			return nil, err
		}
		if len(page) == 0 {
			break
		}
		collected = append(collected, page...)
		before = page[len(page)-1].ID
		if limit > 0 && len(collected) >= limit {
			collected = collected[:limit]
			break
		}
	}

	// The API returns newest first; flip to chronological order.
	for i, j := 0, len(collected)-1; i < j; i, j = i+1, j-1 {
		collected[i], collected[j] = collected[j], collected[i]
	}
	slog.Debug("fetched chat history", "channel_id", f.channelID, "count", len(collected))
	return collected, nil
}

func (f *Fetcher) page(ctx context.Context, before string) ([]Message, error) {
	endpoint := fmt.Sprintf("%s/channels/%s/messages", f.baseURL, f.channelID)
	query := url.Values{"limit": {fmt.Sprint(pageSize)}}
	if before != "" {
		query.Set("before", before)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to build request: %w", err))
	}
	req.Header.Set("Authorization", "Bot "+f.token)

	resp, err := f.httpc.Do(req)
	if err != nil {
		return nil, cerr.NewError(cerr.Unavailable, "chat service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("chat service returned %d: %s", resp.StatusCode, detail)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return nil, cerr.NewError(cerr.Unauthenticated, "chat service rejected credentials", err)
		case http.StatusNotFound:
			return nil, cerr.NewError(cerr.NotFound, "chat channel not found", err)
		default:
			return nil, cerr.NewError(cerr.Unavailable, "chat history fetch failed", err)
		}
	}

	var raw []struct {
		ID     string `json:"id"`
		Author struct {
			Username string `json:"username"`
		} `json:"author"`
		Content   string    `json:"content"`
		Timestamp time.Time `json:"timestamp"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, cerr.NewError(cerr.Internal, "server error", fmt.Errorf("failed to decode chat page: %w", err))
	}

	page := make([]Message, 0, len(raw))
	for _, m := range raw {
		page = append(page, Message{
			ID:        m.ID,
			Author:    m.Author.Username,
			Content:   m.Content,
			Timestamp: m.Timestamp.UTC(),
		})
	}
	return page, nil
}
