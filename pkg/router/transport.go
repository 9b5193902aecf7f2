package router

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"sync"

	"tableflip.dev/momentum/pkg/failure"
	"tableflip.dev/momentum/pkg/logging"
)

const maxLine = 4 << 20

// ServeJSON reads one JSON request per line from in and writes one JSON
// response per line to out as each request completes. Requests run
// concurrently, so responses may come back out of order; match them by id.
// It returns once in is exhausted and every response has been written.
func (r *Router) ServeJSON(ctx context.Context, in io.Reader, out io.Writer) error {
	var mu sync.Mutex
	enc := json.NewEncoder(out)
	log := logging.OrNop(r.Logger)
	write := func(resp Response) {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(resp); err != nil {
			log.Printf("router: write response %s: %v", resp.ID, err)
		}
	}

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), maxLine)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			write(Response{Status: StatusError, Error: failure.Describe(failure.Invalid("decode request", err))})
			continue
		}
		r.Dispatch(ctx, req, write)
	}
	r.Wait()
	return sc.Err()
}
