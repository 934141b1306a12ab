package main

import (
	"fmt"
	"net/http"

	"ghostwriter/config"
	"ghostwriter/generator"
	"ghostwriter/metrics"
	"ghostwriter/scrape"
	"ghostwriter/search"
)

// buildPipeline wires search, fetch and the three model tiers from cfg.
// Offline runs swap every model for MockLLM and search for an empty result
// set so nothing leaves the machine.
func buildPipeline(cfg *config.Config, m *metrics.Metrics, offline bool) (*generator.Pipeline, error) {
	var (
		searcher search.Searcher
		tiers    *generator.Tiers
		err      error
	)
	if offline {
		searcher = search.Static{}
		tiers, err = generator.NewTiers(map[generator.Tier]generator.TierClient{
			generator.TierFast:  {Client: generator.MockLLM{}, Model: "mock"},
			generator.TierLocal: {Client: generator.MockLLM{}, Model: "mock"},
			generator.TierFinal: {Client: generator.MockLLM{}, Model: "mock"},
		}, m)
	} else {
		searcher, err = search.New(search.Provider(cfg.Search.Provider), cfg.Search.APIKey, cfg.Search.MaxResults,
			&http.Client{Timeout: cfg.Search.Timeout})
		if err != nil {
			return nil, err
		}
		tiers, err = buildTiers(cfg.LLM, m)
	}
	if err != nil {
		return nil, err
	}

	fetcher, err := scrape.New(scrape.Options{
		Timeout:   cfg.Fetch.Timeout,
		MaxChars:  cfg.Fetch.MaxChars,
		Transport: cfg.Fetch.Transport,
		Extractor: cfg.Fetch.Extractor,
		Metrics:   m,
	})
	if err != nil {
		return nil, err
	}

	researcher, err := generator.NewResearcher(searcher, fetcher, tiers, generator.ResearchOptions{
		TopK:         cfg.Research.TopK,
		SnippetChars: cfg.Research.SnippetChars,
	})
	if err != nil {
		return nil, err
	}
	writer, err := generator.NewWriter(tiers)
	if err != nil {
		return nil, err
	}
	editor, err := generator.NewEditor(tiers)
	if err != nil {
		return nil, err
	}
	return generator.NewPipeline(researcher, writer, editor, m)
}

func buildTiers(cfg config.LLMConfig, m *metrics.Metrics) (*generator.Tiers, error) {
	clients := make(map[generator.Tier]generator.TierClient, 3)
	for tier, mc := range map[generator.Tier]config.ModelConfig{
		generator.TierFast:  cfg.Fast,
		generator.TierLocal: cfg.Local,
		generator.TierFinal: cfg.Final,
	} {
		llm, err := buildLLM(mc)
		if err != nil {
			return nil, fmt.Errorf("llm.%s: %w", tier, err)
		}
		clients[tier] = generator.TierClient{Client: llm, Model: mc.Model, Timeout: mc.Timeout}
	}
	return generator.NewTiers(clients, m)
}

func buildLLM(mc config.ModelConfig) (generator.LLMClient, error) {
	settings := &generator.LLMSettings{
		Provider:    mc.Provider,
		Model:       mc.Model,
		APIKey:      mc.APIKey,
		BaseURL:     mc.BaseURL,
		Temperature: mc.Temperature,
	}
	switch mc.Provider {
	case "openai":
		return generator.NewOpenAILLMFromConfig(settings)
	case "ollama":
		// Ollama serves an OpenAI-compatible API and ignores the key.
		if settings.BaseURL == "" {
			settings.BaseURL = "http://localhost:11434/v1/"
		}
		if settings.APIKey == "" {
			settings.APIKey = "ollama"
		}
		return generator.NewOpenAILLMFromConfig(settings)
	case "mock":
		return generator.MockLLM{}, nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", mc.Provider)
	}
}
