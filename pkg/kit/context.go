package kit

import "context"

type contextKey string

const (
	TransportKey contextKey = "kit_transport" // "http", "mcp_quic"
	RequestIDKey contextKey = "kit_request_id"
	LocaleKey    contextKey = "kit_locale"
	CountryKey   contextKey = "kit_country"
)

func WithTransport(ctx context.Context, t string) context.Context {
	return context.WithValue(ctx, TransportKey, t)
}
func GetTransport(ctx context.Context) string {
	if v, ok := ctx.Value(TransportKey).(string); ok {
		return v
	}
	return "http"
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}
func GetRequestID(ctx context.Context) string {
	v, _ := ctx.Value(RequestIDKey).(string)
	return v
}

// WithLocale pins the caller's locale for nickname expansion.
func WithLocale(ctx context.Context, locale string) context.Context {
	return context.WithValue(ctx, LocaleKey, locale)
}
func GetLocale(ctx context.Context) string {
	v, _ := ctx.Value(LocaleKey).(string)
	return v
}

// WithCountry pins the caller's ISO country for phone normalization.
func WithCountry(ctx context.Context, iso string) context.Context {
	return context.WithValue(ctx, CountryKey, iso)
}
func GetCountry(ctx context.Context) string {
	v, _ := ctx.Value(CountryKey).(string)
	return v
}
