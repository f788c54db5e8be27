package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"

	"github.com/Conte777/NewsFlow/services/music-service/config"
	"github.com/Conte777/NewsFlow/services/music-service/pkg/httputil"
)

// Signature headers
const (
	HeaderAPIKey    = "X-API-KEY"
	HeaderSignature = "X-SIGNATURE"
	HeaderTimestamp = "X-TIMESTAMP"
	HeaderNonce     = "X-NONCE"
)

const (
	msgInvalidAPIKey      = "Invalid API Key"
	msgInvalidHeaders     = "Invalid Request Headers"
	msgSignatureIncorrect = "Signature Verification Failed"
)

var unsignedPrefixes = []string{"/api/authorization", "/health", "/metrics"}

// SignatureVerifier checks HMAC-SHA256 request signatures
type SignatureVerifier struct {
	keys   map[string]string
	window time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// NewSignatureVerifier creates a verifier from the security configuration
func NewSignatureVerifier(cfg *config.SecurityConfig, logger zerolog.Logger) *SignatureVerifier {
	return &SignatureVerifier{
		keys:   cfg.APIKeys,
		window: cfg.SignatureWindow,
		now:    time.Now,
		logger: logger.With().Str("component", "signature").Logger(),
	}
}

// Sign computes the hex signature of a request
func Sign(secret, apiKey, timestamp, nonce string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(apiKey + timestamp + nonce))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Middleware rejects unsigned requests with 401
func (v *SignatureVerifier) Middleware() httputil.Middleware {
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			if skipSignature(string(ctx.Path())) {
				next(ctx)
				return
			}

			if msg := v.verify(ctx); msg != "" {
				v.logger.Warn().
					Str("path", string(ctx.Path())).
					Str("reason", msg).
					Msg("Request rejected")
				writeUnauthorized(ctx, msg)
				return
			}

			next(ctx)
		}
	}
}

// verify returns the rejection message, empty when the request is valid
func (v *SignatureVerifier) verify(ctx *fasthttp.RequestCtx) string {
	apiKey := string(ctx.Request.Header.Peek(HeaderAPIKey))
	signature := string(ctx.Request.Header.Peek(HeaderSignature))
	timestamp := string(ctx.Request.Header.Peek(HeaderTimestamp))
	nonce := string(ctx.Request.Header.Peek(HeaderNonce))

	secret, ok := v.keys[apiKey]
	if !ok || strings.TrimSpace(secret) == "" {
		return msgInvalidAPIKey
	}

	if isBlank(apiKey, signature, timestamp, nonce) || v.timestampExpired(timestamp) {
		return msgInvalidHeaders
	}

	expected := Sign(secret, apiKey, timestamp, nonce, ctx.PostBody())
	if !strings.EqualFold(expected, signature) {
		return msgSignatureIncorrect
	}

	return ""
}

func (v *SignatureVerifier) timestampExpired(raw string) bool {
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return true
	}

	diff := v.now().Sub(time.UnixMilli(ms))
	if diff < 0 {
		diff = -diff
	}
	return diff > v.window
}

func skipSignature(path string) bool {
	for _, prefix := range unsignedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func isBlank(values ...string) bool {
	for _, value := range values {
		if strings.TrimSpace(value) == "" {
			return true
		}
	}
	return false
}

func writeUnauthorized(ctx *fasthttp.RequestCtx, message string) {
	body, _ := json.Marshal(map[string]string{"error": message})
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusUnauthorized)
	ctx.SetBody(body)
}
