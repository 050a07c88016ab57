package ai

import (
	"encoding/json"
	"errors"
	"strings"
)

// ErrUnrecognizedShape reports that a provider response matched none of the
// known envelopes. Callers decide how to degrade.
var ErrUnrecognizedShape = errors.New("unrecognized response shape")

// extractText pulls the reply text out of a provider response. The envelope
// is not consistent across model families, so each known shape is tried in
// order: a direct text field, candidate content parts joined by newline, and
// a legacy nested output field.
func extractText(raw []byte) (string, error) {
	var direct struct {
		Text string `json:"text"`
	}
	if json.Unmarshal(raw, &direct) == nil && strings.TrimSpace(direct.Text) != "" {
		return strings.TrimSpace(direct.Text), nil
	}

	var envelope struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
			Output string `json:"output"`
		} `json:"candidates"`
	}
	if json.Unmarshal(raw, &envelope) == nil && len(envelope.Candidates) > 0 {
		c := envelope.Candidates[0]
		var parts []string
		for _, p := range c.Content.Parts {
			if strings.TrimSpace(p.Text) != "" {
				parts = append(parts, strings.TrimSpace(p.Text))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "\n"), nil
		}
		if strings.TrimSpace(c.Output) != "" {
			return strings.TrimSpace(c.Output), nil
		}
	}

	return "", ErrUnrecognizedShape
}
