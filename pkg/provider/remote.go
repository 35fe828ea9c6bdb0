package provider

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"os/exec"

	"github.com/anticomputer/corfu/pkg/candidate"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Remote runs a candidate source as a subprocess and speaks the wire
// protocol over its stdin/stdout. One request is in flight at a time;
// a cancelled fetch orphans its response, which the reader loop drops
// by ID when the next fetch comes around.
type Remote struct {
	cmd       *exec.Cmd
	enc       *msgpack.Encoder
	responses chan wireResult

	mu     sync.Mutex
	seq    int
	closed bool
}

type wireResult struct {
	resp WireResponse
	err  error
}

// NewRemote starts the subprocess and wires up the pipes. The child
// inherits stderr so its diagnostics stay visible.
func NewRemote(command string, args ...string) (*Remote, error) {
	cmd := exec.Command(command, args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	log.Debugf("Remote provider started: %s (pid %d)", command, cmd.Process.Pid)

	r := &Remote{
		cmd:       cmd,
		enc:       msgpack.NewEncoder(stdin),
		responses: make(chan wireResult, 8),
	}
	go r.readLoop(msgpack.NewDecoder(stdout))
	return r, nil
}

// readLoop is the single reader of the child's stdout. It exits on
// the first decode error, delivering it to the waiting fetch.
func (r *Remote) readLoop(dec *msgpack.Decoder) {
	for {
		var resp WireResponse
		if err := dec.Decode(&resp); err != nil {
			r.responses <- wireResult{err: err}
			close(r.responses)
			return
		}
		r.responses <- wireResult{resp: resp}
	}
}

// Fetch sends one request and waits for its response. ctx cancellation
// aborts the wait immediately rather than returning stale data.
func (r *Remote) Fetch(ctx context.Context, text string, cursor int) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, errors.New("remote provider closed")
	}

	r.seq++
	id := strconv.Itoa(r.seq)
	if err := r.enc.Encode(WireRequest{ID: id, Text: text, Cursor: cursor}); err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case d, ok := <-r.responses:
			if !ok {
				r.closed = true
				return nil, errors.New("remote provider stream closed")
			}
			if d.err != nil {
				r.closed = true
				return nil, fmt.Errorf("decode response: %w", d.err)
			}
			if d.resp.ID != id {
				log.Debugf("Dropping stale response %s (want %s)", d.resp.ID, id)
				continue
			}
			return decodeResponse(d.resp)
		}
	}
}

func decodeResponse(resp WireResponse) (*Result, error) {
	if resp.Error != "" {
		return nil, errors.New(resp.Error)
	}
	items := make([]candidate.Candidate, len(resp.Items))
	for i, it := range resp.Items {
		items[i] = candidate.Candidate{
			Text:       it.Text,
			Prefix:     it.Prefix,
			Suffix:     it.Suffix,
			Deprecated: it.Deprecated,
		}
	}
	return &Result{
		Base:  resp.Base,
		Items: items,
		Meta:  Metadata{Category: resp.Category, PreserveOrder: true},
	}, nil
}

// Close terminates the subprocess.
func (r *Remote) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil
	}
	r.closed = true
	if r.cmd.Process != nil {
		_ = r.cmd.Process.Kill()
	}
	return r.cmd.Wait()
}
