package web

import (
	"context"
	"net/http"

	"github.com/JonMunkholm/barcodegen/internal/core"
	webmw "github.com/JonMunkholm/barcodegen/internal/web/middleware"
)

// WithRequestMetadata adds the client IP to ctx for job logging.
func WithRequestMetadata(ctx context.Context, r *http.Request) context.Context {
	return core.ContextWithClientIP(ctx, webmw.ClientIP(r))
}
