package loader

import "github.com/Carmen-Shannon/oxy-bim/engine/geometry"

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithDispatcher is an option builder that routes completion callbacks through d.
//
// Parameters:
//   - d: the dispatcher, usually the viewer's pending-task queue
//
// Returns:
//   - LoaderBuilderOption: a function that applies the dispatcher option to a loader
func WithDispatcher(d Dispatcher) LoaderBuilderOption {
	return func(l *loader) {
		l.dispatcher = d
	}
}

// WithWorkers is an option builder that sets the maximum number of concurrent loads.
//
// Parameters:
//   - n: the worker count, values below 1 are ignored
//
// Returns:
//   - LoaderBuilderOption: a function that applies the worker option to a loader
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loader) {
		if n >= 1 {
			l.workers = n
		}
	}
}

// WithCache is an option builder that keeps decoded payloads by source name, so that loading the
// same source twice decodes it once.
//
// Parameters:
//   - enabled: true to cache payloads
//
// Returns:
//   - LoaderBuilderOption: a function that applies the cache option to a loader
func WithCache(enabled bool) LoaderBuilderOption {
	return func(l *loader) {
		l.cacheEnabled = enabled
	}
}

// WithPayload is an option builder that pre-populates the cache with a payload and enables caching.
//
// Parameters:
//   - name: the source name the payload is served for
//   - payload: the payload to cache
//
// Returns:
//   - LoaderBuilderOption: a function that applies the payload option to a loader
func WithPayload(name string, payload *geometry.Payload) LoaderBuilderOption {
	return func(l *loader) {
		l.cacheEnabled = true
		l.cache[name] = payload
	}
}
