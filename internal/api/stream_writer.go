package api

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
)

// SSEStreamWriter emits generation events as server-sent events. Headers are
// written with the first event, so a request that fails validation can still
// be answered with a plain JSON error.
type SSEStreamWriter struct {
	w       http.ResponseWriter
	flusher func()
	id      string
	seq     int
	begun   bool
}

func NewSSEStreamWriter(c *echo.Context) (*SSEStreamWriter, error) {
	res := c.Response()
	flusher, ok := res.(interface{ Flush() })
	if !ok {
		return nil, fmt.Errorf("streaming unsupported")
	}
	return &SSEStreamWriter{
		w:       res,
		flusher: flusher.Flush,
		seq:     1,
	}, nil
}

func (s *SSEStreamWriter) begin() {
	if s.begun {
		return
	}
	s.begun = true
	h := s.w.Header()
	h.Set(echo.HeaderContentType, "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	s.w.WriteHeader(http.StatusOK)
}

func (s *SSEStreamWriter) Started() bool {
	return s.begun
}

// SetID sets the generation id carried by token events.
func (s *SSEStreamWriter) SetID(id string) {
	s.id = id
}

func (s *SSEStreamWriter) EmitToken(index, id int, text string) error {
	return s.send("generation.token", TokenEvent{
		ID:    s.id,
		Index: index,
		Token: id,
		Text:  text,
	})
}

func (s *SSEStreamWriter) Complete(resp GenerateResponse) error {
	if err := s.send("generation.completed", resp); err != nil {
		return err
	}
	_, err := fmt.Fprint(s.w, "data: [DONE]\n\n")
	s.flush()
	return err
}

func (s *SSEStreamWriter) Failed(err error) error {
	_, errType := errorStatus(err)
	return s.send("generation.failed", map[string]any{
		"id": s.id,
		"error": ResponseError{
			Message: err.Error(),
			Type:    errType,
		},
	})
}

func (s *SSEStreamWriter) send(event string, payload any) error {
	s.begin()
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.w, "id: %d\nevent: %s\ndata: %s\n\n", s.seq, event, b)
	s.seq++
	s.flush()
	return err
}

func (s *SSEStreamWriter) flush() {
	if s.flusher != nil {
		s.flusher()
	}
}
