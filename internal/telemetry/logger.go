package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/DewclawArchery/teri-gateway/internal/otel"
)

// sinkTimeout bounds the fire-and-forget side sink POST. It is deliberately
// short: a slow sink must never hold a goroutine hostage.
const sinkTimeout = 2 * time.Second

// Logger emits telemetry events. The zero value is a disabled logger.
type Logger struct {
	enabled    bool
	sinkURL    string
	signer     *Signer
	store      *Store
	httpClient *http.Client

	// wg tracks in-flight sink deliveries so Close can drain them on
	// shutdown without the response path ever waiting.
	wg sync.WaitGroup
}

// LoggerOption configures a Logger.
type LoggerOption func(*Logger)

// WithSink enables the HTTP side sink. Deliveries are signed with secret
// when it is non-empty.
func WithSink(url, secret string) LoggerOption {
	return func(l *Logger) {
		l.sinkURL = url
		if secret != "" {
			l.signer = NewSigner(secret)
		}
	}
}

// WithStore enables the local event store.
func WithStore(s *Store) LoggerOption {
	return func(l *Logger) { l.store = s }
}

// WithHTTPClient overrides the sink HTTP client (tests).
func WithHTTPClient(c *http.Client) LoggerOption {
	return func(l *Logger) { l.httpClient = c }
}

// NewLogger creates a telemetry logger. When enabled is false every call is
// a no-op.
func NewLogger(enabled bool, opts ...LoggerOption) *Logger {
	l := &Logger{
		enabled:    enabled,
		httpClient: &http.Client{Timeout: sinkTimeout},
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Log emits one event to every configured sink. Best-effort on all paths:
// sink and store errors are swallowed (logged at debug) and never propagate.
// The HTTP sink runs on a detached goroutine with its own deadline, so the
// caller's response is never delayed.
func (l *Logger) Log(ctx context.Context, e Event) {
	if l == nil || !l.enabled {
		return
	}

	e = newEvent(e)
	payload, err := json.Marshal(e)
	if err != nil {
		log.Debug().Err(err).Msg("telemetry: marshal failed")
		return
	}

	// Primary sink: one JSON line on the process log, correlated with the
	// active trace when tracing is on.
	log.Info().RawJSON("event", payload).Func(otel.LogTraceFields(ctx)).Msg("teri event")

	if l.store != nil {
		if err := l.store.Insert(ctx, e, payload); err != nil {
			log.Debug().Err(err).Msg("telemetry: store insert failed")
		}
	}

	if l.sinkURL != "" {
		l.wg.Add(1)
		go l.deliver(payload)
	}
}

// deliver posts the payload to the side sink. Detached from the request:
// fresh context, own timeout, all errors swallowed.
func (l *Logger) deliver(payload []byte) {
	defer l.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Interface("panic", r).Msg("telemetry: sink delivery panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.sinkURL, bytes.NewReader(payload))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")
	if l.signer != nil {
		req.Header.Set("X-Teri-Signature", l.signer.Sign(payload))
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Msg("telemetry: sink delivery failed")
		return
	}
	_ = resp.Body.Close()
}

// Close waits for in-flight sink deliveries. Called on shutdown only; the
// per-delivery timeout bounds the wait.
func (l *Logger) Close() {
	if l == nil {
		return
	}
	l.wg.Wait()
}
