package trace

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Format represents the output format for trace events.
type Format uint8

const (
	FormatAuto   Format = iota // pick from the output path
	FormatText                 // human-readable text
	FormatNDJSON               // newline-delimited JSON
)

// ParseFormat converts a string to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson)", s)
	}
}

// FormatEvent formats an event according to the specified format.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		return formatNDJSON(ev)
	default:
		return formatText(ev)
	}
}

type jsonEvent struct {
	Time     string            `json:"time"`
	Seq      uint64            `json:"seq"`
	Kind     string            `json:"kind"`
	Scope    string            `json:"scope"`
	SpanID   uint64            `json:"span_id,omitempty"`
	ParentID uint64            `json:"parent_id,omitempty"`
	GID      uint64            `json:"gid,omitempty"`
	Name     string            `json:"name"`
	Cycle    int               `json:"cycle,omitempty"`
	File     string            `json:"file,omitempty"`
	Detail   string            `json:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty"`
}

// formatNDJSON formats an event as newline-delimited JSON.
func formatNDJSON(ev *Event) []byte {
	j := jsonEvent{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		GID:      ev.GID,
		Name:     ev.Name,
		Cycle:    ev.Cycle,
		File:     ev.File,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	}

	data, err := json.Marshal(j)
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

// formatText formats an event as human-readable text.
// Format: [hh:mm:ss.mmm] [indent]→/← name [cycle n file] (detail) {k=v}
func formatText(ev *Event) []byte {
	var sb strings.Builder

	sb.WriteString("[")
	sb.WriteString(ev.Time.Format("15:04:05.000"))
	sb.WriteString("] ")

	// coarser scopes sit further left
	if ev.Scope > ScopeDriver {
		sb.WriteString(strings.Repeat("  ", int(ev.Scope-ScopeDriver)))
	}

	switch ev.Kind {
	case KindSpanBegin:
		sb.WriteString("\u2192 ") // →
	case KindSpanEnd:
		sb.WriteString("\u2190 ") // ←
	case KindPoint:
		sb.WriteString("\u2022 ") // •
	case KindHeartbeat:
		sb.WriteString("\u2661 ") // ♡
	}

	sb.WriteString(ev.Name)
	writeWhere(&sb, ev)

	if ev.Detail != "" {
		sb.WriteString(" (")
		sb.WriteString(ev.Detail)
		sb.WriteString(")")
	}

	if len(ev.Extra) > 0 {
		sb.WriteString(" {")
		for i, k := range slices.Sorted(maps.Keys(ev.Extra)) {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString("=")
			sb.WriteString(ev.Extra[k])
		}
		sb.WriteString("}")
	}

	sb.WriteString("\n")
	return []byte(sb.String())
}

func writeWhere(sb *strings.Builder, ev *Event) {
	if ev.Cycle == 0 && ev.File == "" {
		return
	}
	sb.WriteString(" [")
	if ev.Cycle > 0 {
		sb.WriteString("cycle ")
		sb.WriteString(strconv.Itoa(ev.Cycle))
		if ev.File != "" {
			sb.WriteString(" ")
		}
	}
	sb.WriteString(ev.File)
	sb.WriteString("]")
}
