package consult

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/Vansh545/bright-wellbeing-sub001/internal/domain"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/infrastructure/ai"
	"github.com/Vansh545/bright-wellbeing-sub001/internal/pkg/validate"
	"github.com/rs/zerolog"
)

const (
	consultPrompt = "You are a supportive wellbeing assistant. Give general, practical guidance " +
		"about sleep, nutrition, activity and stress based on the profile provided. " +
		"You are not a doctor: do not diagnose, and recommend seeing a healthcare professional " +
		"for anything that sounds serious."

	chatPrompt = "You are a friendly wellbeing coach in an ongoing conversation. Keep answers short " +
		"and practical, and recommend professional care for anything that sounds serious."
)

// Service forwards consultation and chat requests to the inference upstream.
type Service interface {
	Consult(ctx context.Context, req domain.ConsultRequest) (json.RawMessage, error)
	Chat(ctx context.Context, req domain.ChatRequest) (json.RawMessage, error)
}

type completer interface {
	Complete(ctx context.Context, messages []ai.Message) (json.RawMessage, error)
}

type service struct {
	upstream completer
	log      *zerolog.Logger
}

func NewService(upstream completer, log *zerolog.Logger) Service {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	return &service{upstream: upstream, log: log}
}

func (s *service) Consult(ctx context.Context, req domain.ConsultRequest) (json.RawMessage, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	messages := []ai.Message{
		{Role: "system", Content: consultPrompt},
		{Role: "user", Content: describeProfile(req.Profile) + "\n\nQuestion: " + strings.TrimSpace(req.Query)},
	}
	return s.forward(ctx, "consult", messages)
}

func (s *service) Chat(ctx context.Context, req domain.ChatRequest) (json.RawMessage, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, err
	}
	messages := make([]ai.Message, 0, len(req.Messages)+1)
	messages = append(messages, ai.Message{Role: "system", Content: chatPrompt})
	for _, m := range req.Messages {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}
	return s.forward(ctx, "chat", messages)
}

func (s *service) forward(ctx context.Context, kind string, messages []ai.Message) (json.RawMessage, error) {
	out, err := s.upstream.Complete(ctx, messages)
	if err == nil {
		return out, nil
	}

	var se *ai.StatusError
	if !errors.As(err, &se) {
		s.log.Error().Err(err).Str("kind", kind).Msg("inference request failed")
		return nil, fmt.Errorf("AI service request failed: %w", domain.ErrUpstream)
	}
	s.log.Warn().
		Int("status", se.Code).
		Str("kind", kind).
		Str("upstream_body", se.Body).
		Msg("inference upstream rejected request")
	switch se.Code {
	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("AI service is busy, please try again shortly: %w", domain.ErrUpstreamRateLimited)
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("AI service is not configured correctly: %w", domain.ErrUpstreamAuth)
	default:
		return nil, fmt.Errorf("AI service returned status %d: %w", se.Code, domain.ErrUpstream)
	}
}

// describeProfile renders only the fields the user filled in.
func describeProfile(p domain.HealthProfile) string {
	var lines []string
	if p.Age != nil {
		lines = append(lines, fmt.Sprintf("Age: %d", *p.Age))
	}
	if p.Gender != "" {
		lines = append(lines, "Gender: "+p.Gender)
	}
	if p.HeightCm != nil {
		lines = append(lines, fmt.Sprintf("Height: %.0f cm", *p.HeightCm))
	}
	if p.WeightKg != nil {
		lines = append(lines, fmt.Sprintf("Weight: %.1f kg", *p.WeightKg))
	}
	if len(p.Conditions) > 0 {
		lines = append(lines, "Conditions: "+strings.Join(p.Conditions, ", "))
	}
	if len(p.Medications) > 0 {
		lines = append(lines, "Medications: "+strings.Join(p.Medications, ", "))
	}
	if p.ActivityLevel != "" {
		lines = append(lines, "Activity level: "+strings.ReplaceAll(p.ActivityLevel, "_", " "))
	}
	if len(lines) == 0 {
		return "Profile: not provided"
	}
	return "Profile:\n" + strings.Join(lines, "\n")
}
