// Package shutdown turns process termination signals into context
// cancellation for cmsadmin.
//
// The first SIGINT or SIGTERM cancels the context returned by
// Handler.Context, which aborts in-flight API requests, and runs the
// registered hooks. A second signal exits immediately.
//
//	h := shutdown.NewHandler(2 * time.Second)
//	ctx, stop := h.Context(context.Background())
//	defer stop()
package shutdown
