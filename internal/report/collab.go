package report

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/teampulse/teampulse/internal/digest"
	"github.com/teampulse/teampulse/pkg/storage"
)

const (
	// SummaryKey holds the latest chat summary document.
	SummaryKey = "reports/chat_summary.json"
	// DigestKey holds the latest work digest document.
	DigestKey = "reports/digest.json"
)

// ChatSummary is the persisted result of summarizing the chat corpus.
// Participants maps author name to message count.
type ChatSummary struct {
	Summary      string         `json:"summary"`
	Model        string         `json:"model,omitempty"`
	MessageCount int            `json:"message_count"`
	Participants map[string]int `json:"participants,omitempty"`
	GeneratedAt  time.Time      `json:"generated_at"`
}

// EmitSummary overwrites the chat summary document.
func (e *Emitter) EmitSummary(ctx context.Context, summary *ChatSummary) error {
	doc, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chat summary: %w", err)
	}
	if err := e.storage.Write(ctx, SummaryKey, doc); err != nil {
		return fmt.Errorf("failed to write chat summary report: %w", err)
	}
	return nil
}

// EmitDigest overwrites the work digest document.
func (e *Emitter) EmitDigest(ctx context.Context, d *digest.Digest) error {
	doc, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal digest: %w", err)
	}
	if err := e.storage.Write(ctx, DigestKey, doc); err != nil {
		return fmt.Errorf("failed to write digest report: %w", err)
	}
	return nil
}

// LoadSummary reads the chat summary back; absent loads as the zero summary.
func (l *Loader) LoadSummary(ctx context.Context) (*ChatSummary, error) {
	data, err := l.storage.Read(ctx, SummaryKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return &ChatSummary{}, nil
	case err != nil:
		return nil, fmt.Errorf("failed to load chat summary report: %w", err)
	}
	var summary ChatSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to parse chat summary report: %w", err)
	}
	return &summary, nil
}

// LoadDigest reads the work digest back; absent loads as the empty digest.
func (l *Loader) LoadDigest(ctx context.Context) (*digest.Digest, error) {
	data, err := l.storage.Read(ctx, DigestKey)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return digest.Empty(), nil
	case err != nil:
		return nil, fmt.Errorf("failed to load digest report: %w", err)
	}
	d := digest.Empty()
	if err := json.Unmarshal(data, d); err != nil {
		return nil, fmt.Errorf("failed to parse digest report: %w", err)
	}
	return d, nil
}
