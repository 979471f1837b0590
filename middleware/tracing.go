package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aridlab/labsite/middleware"

// Tracing starts a server span per request, continuing any trace found in the
// incoming headers. A nil tp uses the global provider, which is a no-op until
// telemetry is configured.
func Tracing(tp trace.TracerProvider) gin.HandlerFunc {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	tracer := tp.Tracer(tracerName)

	return func(ctx *gin.Context) {
		parent := otel.GetTextMapPropagator().Extract(ctx.Request.Context(), propagation.HeaderCarrier(ctx.Request.Header))

		route := ctx.FullPath()
		if route == "" {
			route = "unmatched"
		}
		spanCtx, span := tracer.Start(parent, ctx.Request.Method+" "+route,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.request.method", ctx.Request.Method),
				attribute.String("http.route", route),
				attribute.String("url.path", ctx.Request.URL.Path),
				attribute.String("client.address", ctx.ClientIP()),
			),
		)
		defer span.End()

		ctx.Request = ctx.Request.WithContext(spanCtx)
		ctx.Next()

		status := ctx.Writer.Status()
		span.SetAttributes(attribute.Int("http.response.status_code", status))
		if uid, ok := ctx.Get(ContextUserIDKey); ok {
			span.SetAttributes(attribute.String("enduser.id", fmt.Sprint(uid)))
		}
		if status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", status))
		}
		if len(ctx.Errors) > 0 {
			span.RecordError(ctx.Errors.Last())
		}
	}
}
