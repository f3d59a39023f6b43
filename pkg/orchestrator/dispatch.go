package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/lionelberton/openvpn-auth-radius/pkg/client"
	"github.com/lionelberton/openvpn-auth-radius/pkg/log"
	"github.com/lionelberton/openvpn-auth-radius/pkg/packet"
)

const noWinner = -1

// Options configures both orchestrators.
type Options struct {
	NAS packet.NAS
	// Parallelism bounds the number of servers contacted at once. Zero means all of them.
	Parallelism int
}

// run is the state shared by the workers of one orchestrator call. The only
// field written by workers is winner, set once by the first successful server.
type run struct {
	id     string
	logger log.Logger
	winner atomic.Int32
}

func newRun(logger log.Logger) *run {
	id := uuid.New().String()
	r := &run{
		id:     id,
		logger: logger.WithField("trace_id", id),
	}
	r.winner.Store(noWinner)
	return r
}

// satisfied reports whether a server already succeeded. Workers consult it before
// starting new work; it never interrupts an exchange in flight.
func (r *run) satisfied() bool {
	return r.winner.Load() != noWinner
}

// succeed records server i as successful and reports whether it was the first.
func (r *run) succeed(i int) bool {
	return r.winner.CompareAndSwap(noWinner, int32(i))
}

func validateServers(servers []client.Server) error {
	if len(servers) == 0 {
		return ErrNoServers
	}
	for _, s := range servers {
		if len(s.Secret) == 0 {
			return fmt.Errorf("%w for server %s", ErrEmptySecret, s.Name)
		}
	}
	return nil
}

// dispatch runs work once per server on a pool of at most parallelism workers and
// returns when every started worker has finished. Each worker owns traces[i].
func (r *run) dispatch(ctx context.Context, servers []client.Server, parallelism int, work func(ctx context.Context, i int, s client.Server, trace *ServerTrace)) []ServerTrace {
	traces := make([]ServerTrace, len(servers))

	if parallelism <= 0 || parallelism > len(servers) {
		parallelism = len(servers)
	}
	sem := make(chan struct{}, parallelism)

	var wg sync.WaitGroup
	for i, s := range servers {
		wg.Add(1)
		go func(i int, s client.Server) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			trace := &traces[i]
			trace.Server = s.Name

			if r.satisfied() {
				trace.Skipped = true
				r.logger.WithField("server", s.Name).Debug("skipped, a server already succeeded")
				return
			}

			defer func() {
				if rec := recover(); rec != nil {
					o := AttemptOutcome{
						Server: s.Name,
						Round:  Round(len(trace.Outcomes) + 1),
						Kind:   OutcomeProtocolError,
						Err:    fmt.Errorf("%w: %v", ErrWorkerPanic, rec),
					}
					trace.add(o)
					r.logger.WithField("server", s.Name).Errorf("%v\n%s", o.Err, debug.Stack())
				}
			}()

			work(ctx, i, s, trace)
		}(i, s)
	}
	wg.Wait()

	return traces
}

func (r *run) result(traces []ServerTrace) *Result {
	res := &Result{
		TraceID: r.id,
		Verdict: Failure,
		Servers: traces,
	}

	for _, t := range traces {
		if t.MFAMismatch {
			res.MFAMismatch = true
		}
	}

	if w := r.winner.Load(); w != noWinner {
		res.Verdict = Success
		res.Winner = traces[w].Server
		res.Via = traces[w].Via
	}

	return res
}
