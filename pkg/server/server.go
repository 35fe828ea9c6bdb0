/*
Package server implements msgpack IPC for serving candidate batches.

The server wraps any provider.Provider and answers wire requests over
stdin/stdout, so editors can keep the candidate source out of process.
Each request carries an ID, the field text, and the cursor offset:

	{"id": "req_001", "t": "ame", "c": 3}

The response carries the base offset and the raw batch:

	{"id": "req_001", "b": 0, "i": [{"w": "amenity"}, {"w": "america"}], "tt": 145}

Messages are processed synchronously in arrival order with timing info
included in responses. A failed fetch produces a response with the "e"
field set instead of killing the stream.
*/
package server

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/anticomputer/corfu/pkg/provider"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Server answers wire requests from a single client connection.
type Server struct {
	provider provider.Provider
	dec      *msgpack.Decoder
	enc      *msgpack.Encoder
}

// NewServer creates a server using stdin/stdout for IPC.
func NewServer(p provider.Provider) *Server {
	return &Server{
		provider: p,
		dec:      msgpack.NewDecoder(os.Stdin),
		enc:      msgpack.NewEncoder(os.Stdout),
	}
}

// NewServerWith creates a server over explicit streams, mainly for
// tests.
func NewServerWith(p provider.Provider, r io.Reader, w io.Writer) *Server {
	return &Server{
		provider: p,
		dec:      msgpack.NewDecoder(r),
		enc:      msgpack.NewEncoder(w),
	}
}

// Start begins listening for IPC requests. It returns nil when the
// client closes its end.
func (s *Server) Start() error {
	log.Debug("Starting candidate server.")
	for {
		var req provider.WireRequest
		if err := s.dec.Decode(&req); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Reading request: %v", err)
			return err
		}
		s.handleRequest(req)
	}
}

// handleRequest fetches one batch and writes the response.
func (s *Server) handleRequest(req provider.WireRequest) {
	start := time.Now()
	result, err := s.provider.Fetch(context.Background(), req.Text, req.Cursor)
	if err != nil {
		log.Errorf("Fetch failed for %q: %v", req.Text, err)
		s.sendResponse(provider.WireResponse{ID: req.ID, Error: err.Error()})
		return
	}

	items := make([]provider.WireItem, len(result.Items))
	for i, c := range result.Items {
		items[i] = provider.WireItem{
			Text:       c.Text,
			Prefix:     c.Prefix,
			Suffix:     c.Suffix,
			Deprecated: c.Deprecated,
		}
	}

	s.sendResponse(provider.WireResponse{
		ID:        req.ID,
		Base:      result.Base,
		Items:     items,
		Category:  result.Meta.Category,
		TimeTaken: time.Since(start).Microseconds(),
	})
}

func (s *Server) sendResponse(resp provider.WireResponse) {
	if err := s.enc.Encode(resp); err != nil {
		log.Errorf("Encoding response: %v", err)
	}
}
