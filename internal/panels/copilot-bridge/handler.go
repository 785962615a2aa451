// internal/panels/copilot-bridge/handler.go
package copilotbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "billing-intelligence/internal/common/errors"
	"billing-intelligence/internal/common/logger"
	"billing-intelligence/internal/common/metrics"
	"billing-intelligence/internal/models"
)

const (
	PanelName      = "copilot-bridge"
	Subheader      = "Ask the Billing Copilot"
	EmptyWarning   = "Enter a question first."
	promptTemplate = "You are TelecomCorp's billing analyst assistant. Use the billing metrics table to answer questions.\nQuestion: %s"
)

var (
	ErrCompletionFailed  = apperrors.NewSentinel(apperrors.ErrCodeCompletionFailed)
	ErrCompletionTimeout = apperrors.NewSentinel(apperrors.ErrCodeCompletionTimeout)
)

type Handler struct {
	config    *Config
	completer Completer
	now       func() time.Time
	logger    logger.Logger
}

func NewHandler(config *Config, completer Completer, log logger.Logger) *Handler {
	return &Handler{
		config:    config,
		completer: completer,
		now:       time.Now,
		logger:    log.WithFields(map[string]interface{}{"panel": PanelName}),
	}
}

// WithClock replaces the clock used for the as_of date.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || !input.Submitted {
		return &Output{State: StateIdle}, nil
	}

	question := strings.TrimSpace(input.Question)
	if question == "" {
		metrics.CopilotValidationRejects.Inc()
		return &Output{State: StateValidating, Warning: EmptyWarning}, nil
	}

	payload := h.BuildPayload(question, input.Segment)
	prompt, err := RenderPrompt(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: encode payload: %v", ErrCompletionFailed, err)
	}

	out := &Output{
		State:   StateSubmitted,
		Payload: payload,
		Prompt:  prompt,
		Model:   h.config.Model,
		Backend: h.completer.Backend(),
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	start := time.Now()
	answer, err := h.completer.Complete(ctx, h.config.Model, prompt)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			metrics.CopilotCompletions.WithLabelValues(out.Backend, metrics.StatusTimeout).Inc()
			return nil, fmt.Errorf("%w: %s after %s", ErrCompletionTimeout, out.Backend, h.config.Timeout)
		}
		metrics.CopilotCompletions.WithLabelValues(out.Backend, metrics.StatusError).Inc()
		return nil, fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	metrics.CopilotCompletions.WithLabelValues(out.Backend, metrics.StatusSuccess).Inc()

	h.logger.Info("copilot answered", map[string]interface{}{
		"backend":    out.Backend,
		"model":      out.Model,
		"segment":    input.Segment,
		"durationMs": time.Since(start).Milliseconds(),
	})

	out.State = StateDisplaying
	out.Answer = answer
	return out, nil
}

// BuildPayload assembles the model context for an already trimmed question.
func (h *Handler) BuildPayload(question, segment string) *models.PromptPayload {
	payload := &models.PromptPayload{
		Question: question,
		AsOf:     h.now().Format("2006-01-02"),
	}
	if segment != "" {
		payload.Segment = &segment
	}
	return payload
}

// RenderPrompt embeds the JSON-encoded payload in the analyst template. The
// payload is compact JSON with non-ASCII text left as UTF-8, so the prompt is
// not byte-identical to one built with spaced separators and \uXXXX escapes.
// Both decode to the same object.
func RenderPrompt(payload *models.PromptPayload) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return "", err
	}
	return fmt.Sprintf(promptTemplate, strings.TrimRight(buf.String(), "\n")), nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
