package web

import (
	"context"
	"net/http"

	"github.com/halcyonfield/pipeboard/internal/logging"
)

// WithRequestMetadata adds IP and User-Agent to context for audit logging.
// Batch ingest runs log through logging.FromContext, so the "batch ingested"
// audit line carries who sent the snapshot.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	ip := r.RemoteAddr // Already processed by the real-IP middleware
	ua := r.Header.Get("User-Agent")
	ctx = logging.ContextWithClientIP(ctx, ip)
	ctx = logging.ContextWithUserAgent(ctx, ua)
	return ctx
}
