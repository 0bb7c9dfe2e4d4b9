// Package loader reads geometry feeds from files, URLs or memory. Fetching and decoding run on a
// worker pool; results are handed back through a Dispatcher so that GPU upload happens on the frame
// thread.
package loader

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-bim/engine/geometry"
)

// LoaderBackendType identifies the model file format backend to use.
type LoaderBackendType int

const (
	// BackendTypeFeed selects the binary geometry feed backend.
	BackendTypeFeed LoaderBackendType = iota
)

// Dispatcher runs completion callbacks on the thread that owns the GPU. Implemented by the viewer.
type Dispatcher interface {
	// Post queues a task and wakes the owning thread. Safe to call from any goroutine.
	Post(task func())
}

// Result is the outcome of one asynchronous load.
type Result struct {
	// RequestID is the value returned by Load.
	RequestID int
	// Source is the name of the source.
	Source string
	// Tag is the caller-supplied tag.
	Tag string
	// Payload is the decoded geometry, nil on error.
	Payload *geometry.Payload
	// Err wraps common.ErrLoad if the source was unreachable or malformed.
	Err error
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	backend    loaderBackend
	dispatcher Dispatcher
	pool       worker.DynamicWorkerPool
	workers    int

	cacheEnabled bool
	cache        map[string]*geometry.Payload

	nextID  atomic.Int64
	pending atomic.Int64
}

// Loader defines the public-facing interface for loading geometry feeds.
type Loader interface {
	// Load starts an asynchronous load and returns immediately. done is called exactly once, through
	// the Dispatcher if one is configured, otherwise on the worker goroutine.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - src: the feed source
	//   - tag: an opaque caller value copied into the Result
	//   - done: the completion callback
	//
	// Returns:
	//   - int: the request ID, also reported in the Result
	Load(ctx context.Context, src Source, tag string, done func(Result)) int

	// LoadSync fetches and decodes a source on the calling goroutine.
	//
	// Parameters:
	//   - ctx: cancels the fetch
	//   - src: the feed source
	//
	// Returns:
	//   - *geometry.Payload: the decoded payload
	//   - error: wraps common.ErrLoad on failure
	LoadSync(ctx context.Context, src Source) (*geometry.Payload, error)

	// Pending returns the number of loads whose callback has not run yet.
	Pending() int

	// Get retrieves a cached payload by source name. Returns nil if not found or caching is disabled.
	//
	// Parameters:
	//   - name: the source name
	//
	// Returns:
	//   - *geometry.Payload: the cached payload or nil
	Get(name string) *geometry.Payload

	// Evict removes a payload from the cache.
	//
	// Parameters:
	//   - name: the source name
	Evict(name string)
}

var _ Loader = &loader{}

// NewLoader creates a new Loader instance with the specified backend type and options applied.
//
// Parameters:
//   - backendType: the format backend, BackendTypeFeed
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader configured with the provided backend and options
func NewLoader(backendType LoaderBackendType, options ...LoaderBuilderOption) Loader {
	l := &loader{
		workers: max(runtime.NumCPU()/2, 1),
		cache:   make(map[string]*geometry.Payload),
	}

	switch backendType {
	case BackendTypeFeed:
		l.backend = feedLoaderBackend{}
	default:
		l.backend = feedLoaderBackend{}
	}

	for _, option := range options {
		option(l)
	}
	l.pool = worker.NewDynamicWorkerPool(l.workers, 64, 1*time.Second)
	return l
}

func (l *loader) Load(ctx context.Context, src Source, tag string, done func(Result)) int {
	id := int(l.nextID.Add(1))
	l.pending.Add(1)

	l.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			payload, err := l.LoadSync(ctx, src)
			if err != nil {
				log.Printf("[Loader] %s: %v", src.Name(), err)
			}
			res := Result{RequestID: id, Source: src.Name(), Tag: tag, Payload: payload, Err: err}

			deliver := func() {
				l.pending.Add(-1)
				if done != nil {
					done(res)
				}
			}
			if l.dispatcher != nil {
				l.dispatcher.Post(deliver)
			} else {
				deliver()
			}
			return nil, nil
		},
	})
	return id
}

func (l *loader) LoadSync(ctx context.Context, src Source) (*geometry.Payload, error) {
	if cached := l.Get(src.Name()); cached != nil {
		return cached, nil
	}

	rc, err := src.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	payload, err := l.backend.Decode(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", src.Name(), err)
	}

	if l.cacheEnabled {
		l.mu.Lock()
		l.cache[src.Name()] = payload
		l.mu.Unlock()
	}
	return payload, nil
}

func (l *loader) Pending() int {
	return int(l.pending.Load())
}

func (l *loader) Get(name string) *geometry.Payload {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[name]
}

func (l *loader) Evict(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, name)
}
