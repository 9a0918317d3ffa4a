package diag

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"fortio.org/safecast"
)

// maxLineSize bounds a single record; rustc embeds the rendered diagnostic in
// every line, so lines routinely exceed bufio's default.
const maxLineSize = 64 << 20

// DecodeError reports an output line that is not a valid record.
// It is fatal for the whole run: the build tool's output contract is assumed stable.
type DecodeError struct {
	Line int // 1-based
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode build output line %d: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

type wireRecord struct {
	Reason  string       `json:"reason"`
	Message *wireMessage `json:"message"`
}

type wireMessage struct {
	Code    *wireCode  `json:"code"`
	Level   string     `json:"level"`
	Message string     `json:"message"`
	Spans   []wireSpan `json:"spans"`
}

type wireCode struct {
	Code string `json:"code"`
}

type wireSpan struct {
	ByteStart int64  `json:"byte_start"`
	ByteEnd   int64  `json:"byte_end"`
	FileName  string `json:"file_name"`
	IsPrimary bool   `json:"is_primary"`
	Label     string `json:"label"`
}

// Parse decodes the complete output of one build tool invocation and returns
// the compiler messages in output order. Other records are dropped.
func Parse(output []byte) ([]*Message, error) {
	return ParseReader(bytes.NewReader(output))
}

// ParseReader is Parse over a stream.
func ParseReader(r io.Reader) ([]*Message, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var out []*Message
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		rec, err := DecodeRecord(line)
		if err != nil {
			return nil, &DecodeError{Line: lineNo, Err: err}
		}
		if rec.IsCompilerMessage() {
			out = append(out, rec.Message)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &DecodeError{Line: lineNo + 1, Err: err}
	}
	return out, nil
}

// DecodeRecord decodes one line into a Record.
func DecodeRecord(line []byte) (Record, error) {
	var w wireRecord
	if err := json.Unmarshal(line, &w); err != nil {
		return Record{}, err
	}
	if w.Reason != ReasonCompilerMessage {
		return Record{Reason: w.Reason}, nil
	}
	if w.Message == nil {
		return Record{}, fmt.Errorf("compiler-message record without message")
	}
	msg, err := w.Message.convert()
	if err != nil {
		return Record{}, err
	}
	return Record{Reason: w.Reason, Message: msg}, nil
}

func (w *wireMessage) convert() (*Message, error) {
	m := &Message{
		Level: ParseLevel(w.Level),
		Text:  w.Message,
		Spans: make([]Span, 0, len(w.Spans)),
	}
	if w.Code != nil {
		code := Code(w.Code.Code)
		m.Code = &code
	}
	for i, s := range w.Spans {
		start, err := safecast.Conv[uint32](s.ByteStart)
		if err != nil {
			return nil, fmt.Errorf("span %d: byte_start: %w", i, err)
		}
		end, err := safecast.Conv[uint32](s.ByteEnd)
		if err != nil {
			return nil, fmt.Errorf("span %d: byte_end: %w", i, err)
		}
		if end < start {
			return nil, fmt.Errorf("span %d: byte_end %d before byte_start %d", i, end, start)
		}
		m.Spans = append(m.Spans, Span{
			ByteStart: start,
			ByteEnd:   end,
			FileName:  s.FileName,
			IsPrimary: s.IsPrimary,
			Label:     s.Label,
		})
	}
	return m, nil
}
