package task

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Normalize converts a raw, loosely-typed task record (as decoded from JSON)
// into a canonical Task. It never fails: every missing or malformed field
// degrades to its documented default. The second return value is false when
// the record is not map-shaped at all, in which case the caller should skip
// the entry entirely.
func Normalize(raw any) (*Task, bool) {
	rec, ok := raw.(map[string]any)
	if !ok || rec == nil {
		return nil, false
	}

	t := &Task{
		ID:          stringField(rec, "id", ""),
		Name:        stringField(rec, "name", DefaultName),
		Description: stringField(rec, "description", ""),
		Status:      strings.ToLower(nestedString(rec, "status", "status", StatusUnknown)),
		Priority:    strings.ToLower(nestedString(rec, "priority", "priority", PriorityNormal)),
		Assignee:    assigneeKey(rec),
		Creator:     nestedString(rec, "creator", "username", UnknownUsername),
		URL:         stringField(rec, "url", ""),
		DueAt:       parseInstant(rec["due_date"]),
		CreatedAt:   parseInstant(rec["date_created"]),
		UpdatedAt:   parseInstant(rec["date_updated"]),
		ClosedAt:    parseInstant(rec["date_closed"]),
		Tags:        tagNames(rec["tags"]),
		TimeEstimate: intField(rec, "time_estimate"),
		TimeSpent:    intField(rec, "time_spent"),
		CustomFields: customFields(rec["custom_fields"]),
	}
	return t, true
}

// assigneeKey derives the grouping key: the first assignee's username, or the
// Unassigned sentinel when the record has no assignees at all.
func assigneeKey(rec map[string]any) string {
	list, ok := rec["assignees"].([]any)
	if !ok || len(list) == 0 {
		return UnassignedKey
	}
	first, ok := list[0].(map[string]any)
	if !ok {
		return UnassignedKey
	}
	return stringField(first, "username", UnknownUsername)
}

func stringField(rec map[string]any, key, fallback string) string {
	v, ok := rec[key].(string)
	if !ok {
		return fallback
	}
	return v
}

// nestedString reads rec[outer][inner], tolerating a missing, null, or
// non-map outer value.
func nestedString(rec map[string]any, outer, inner, fallback string) string {
	sub, ok := rec[outer].(map[string]any)
	if !ok {
		return fallback
	}
	return stringField(sub, inner, fallback)
}

func intField(rec map[string]any, key string) int64 {
	switch v := rec[key].(type) {
	case float64:
		return int64(v)
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func tagNames(raw any) []string {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	names := make([]string, 0, len(list))
	for _, entry := range list {
		tag, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		names = append(names, stringField(tag, "name", ""))
	}
	return names
}

// customFields converts the source's list of {name, value} pairs into a map.
// It returns nil when the record had no custom fields, so the field is
// omitted from serialized output entirely.
func customFields(raw any) map[string]any {
	list, ok := raw.([]any)
	if !ok || len(list) == 0 {
		return nil
	}
	fields := make(map[string]any, len(list))
	for _, entry := range list {
		field, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		fields[stringField(field, "name", "Unknown Field")] = field["value"]
	}
	return fields
}

// parseInstant accepts the timestamp shapes the source API emits: RFC3339
// strings, epoch-millisecond numbers, and epoch-millisecond digit strings.
// Anything else (including a malformed date string) yields nil rather than an
// error; the deadline classifier treats nil as not-applicable. All parsed
// instants are normalized to UTC.
func parseInstant(raw any) *time.Time {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return nil
		}
		if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
			ts := time.UnixMilli(ms).UTC()
			return &ts
		}
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			ts = ts.UTC()
			return &ts
		}
		return nil
	case float64:
		ts := time.UnixMilli(int64(v)).UTC()
		return &ts
	case json.Number:
		ms, err := v.Int64()
		if err != nil {
			return nil
		}
		ts := time.UnixMilli(ms).UTC()
		return &ts
	default:
		return nil
	}
}
