package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/practix/internal/logger"
	"github.com/abhisek/practix/internal/metrics"
	"github.com/abhisek/practix/internal/store"
)

// LoggingProvider is a decorator that logs, measures and records every
// LLM request.
type LoggingProvider struct {
	inner     Provider
	eventRepo store.EventRepo
	log       *logger.Logger
}

// WithLogging wraps a Provider with request logging. repo may be nil, in
// which case no usage events are stored.
func WithLogging(p Provider, repo store.EventRepo, log *logger.Logger) Provider {
	return &LoggingProvider{inner: p, eventRepo: repo, log: logger.OrNop(log)}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)
	model := l.inner.ModelID()

	l.log.Debug("llm request", "model", model, "purpose", purpose, "body", serializeRequest(req))

	resp, err := l.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	data := store.LLMRequestEventData{
		Provider:  model,
		Model:     model,
		Purpose:   purpose,
		LatencyMs: elapsed.Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		data.InputTokens = resp.Usage.InputTokens
		data.OutputTokens = resp.Usage.OutputTokens
		if resp.Model != "" {
			data.Model = resp.Model
		}
	}

	status := "ok"
	if err != nil {
		status = "error"
		data.ErrorMessage = err.Error()
		l.log.Warn("llm request failed", "model", model, "purpose", purpose, "latency_ms", data.LatencyMs, "error", err)
	} else {
		l.log.Debug("llm response", "model", data.Model, "purpose", purpose, "latency_ms", data.LatencyMs,
			"input_tokens", data.InputTokens, "output_tokens", data.OutputTokens)
	}
	metrics.LLMRequests.WithLabelValues(model, purpose, status).Inc()
	metrics.LLMLatency.WithLabelValues(model, purpose).Observe(elapsed.Seconds())

	if l.eventRepo != nil {
		// The request context may already be done; the event is still worth keeping.
		evCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		if logErr := l.eventRepo.AppendLLMRequest(evCtx, data); logErr != nil {
			l.log.Warn("failed to record LLM request event", "error", logErr)
		}
		cancel()
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// serializeRequest builds a readable representation of the LLM request.
func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n", m.Role)
		b.WriteString(m.Content)
		b.WriteString("\n")
		for _, img := range m.Images {
			fmt.Fprintf(&b, "[image %s]\n", img.MediaType)
		}
		b.WriteString("\n")
	}

	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}

	return b.String()
}
