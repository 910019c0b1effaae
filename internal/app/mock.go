package app

import (
	"context"
	"errors"
)

// ScriptedGenerator replays canned segments in order. It backs --mock runs
// and the session tests.
type ScriptedGenerator struct {
	Responses []string
	Errors    []error
	Prompts   []string
	Calls     int
}

var errScriptExhausted = errors.New("no scripted response left")

func (g *ScriptedGenerator) Stream(ctx context.Context, prompt string, onChunk func(string)) (string, error) {
	g.Prompts = append(g.Prompts, prompt)
	i := g.Calls
	g.Calls++
	if i < len(g.Errors) && g.Errors[i] != nil {
		return "", g.Errors[i]
	}
	if i >= len(g.Responses) {
		return "", errScriptExhausted
	}
	text := g.Responses[i]
	if onChunk != nil {
		// Deliver in small chunks so stream handling sees realistic input.
		const chunkSize = 7
		for start := 0; start < len(text); start += chunkSize {
			end := start + chunkSize
			if end > len(text) {
				end = len(text)
			}
			onChunk(text[start:end])
		}
	}
	return text, nil
}
