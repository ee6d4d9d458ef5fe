package main

import (
	"context"
	"log/slog"

	"newshub/internal/domain/entity"
	"newshub/internal/infra/guardian"
	"newshub/internal/infra/newsapi"
	"newshub/internal/infra/nytimes"
	"newshub/internal/infra/provider"
	"newshub/internal/usecase/aggregate"
	"newshub/internal/usecase/catalog"
	"newshub/pkg/config"
)

type clients struct {
	aggregator *aggregate.Service
	catalog    *catalog.Service
}

// buildClients wires the three provider adapters into an aggregator and a
// filter catalog. Providers without a key stay wired and report auth failures.
func buildClients(logger *slog.Logger, cfg config.App) (*clients, error) {
	newsClient, err := provider.New(providerConfig(cfg, entity.ProviderNewsAPI, cfg.NewsAPI, newsapi.KeyHeader, provider.KeyInHeader), provider.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	guardianClient, err := provider.New(providerConfig(cfg, entity.ProviderGuardian, cfg.Guardian, guardian.KeyParam, provider.KeyInQuery), provider.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	nytClient, err := provider.New(providerConfig(cfg, entity.ProviderNYTimes, cfg.NYTimes, nytimes.KeyParam, provider.KeyInQuery), provider.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	news := newsapi.New(newsClient)
	guard := guardian.New(guardianClient)
	nyt := nytimes.New(nytClient)

	return &clients{
		aggregator: aggregate.NewService(logger, news, guard, nyt),
		catalog: catalog.NewService(logger,
			[]catalog.Loader{{
				Provider: entity.ProviderNewsAPI,
				Load: func(ctx context.Context) ([]entity.ReferenceItem, error) {
					return news.Sources(ctx, newsapi.SourceFilter{})
				},
			}},
			[]catalog.Loader{
				{Provider: entity.ProviderNYTimes, Load: nyt.Sections},
				{Provider: entity.ProviderGuardian, Load: guard.Sections},
			},
		),
	}, nil
}

func providerConfig(cfg config.App, id entity.ProviderID, s config.ProviderSettings, keyName string, keyIn provider.KeyPlacement) provider.Config {
	return provider.Config{
		Provider:          id,
		BaseURL:           s.BaseURL,
		APIKey:            s.APIKey,
		KeyName:           keyName,
		KeyIn:             keyIn,
		Timeout:           s.Timeout,
		RequestsPerSecond: s.RequestsPerSecond,
		Burst:             s.Burst,
		UserAgent:         "newsctl/" + cfg.Version,
	}
}
