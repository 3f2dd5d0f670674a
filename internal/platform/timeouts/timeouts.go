// Package timeouts defines the deadlines shared by the web service.
package timeouts

import "time"

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second

// SessionLookup caps a single session store read. A lookup that runs past
// it leaves the request in the auth loading state.
const SessionLookup = 750 * time.Millisecond

// InitialRouteReady is the ceiling after which a shell visit forces its
// initial-route readiness even if the router never signalled it.
const InitialRouteReady = 2000 * time.Millisecond

// PreloaderFade is the fallback removal delay for the splash element when
// the browser never reports the end of its fade transition.
const PreloaderFade = 900 * time.Millisecond

// VisitIdle expires shell visits whose live channel has been gone for this
// long.
const VisitIdle = 2 * time.Minute

// VisitUnattached expires shell visits whose live channel never connected.
const VisitUnattached = 15 * time.Second

// LiveWrite caps a single live channel frame write.
const LiveWrite = 5 * time.Second
