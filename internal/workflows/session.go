package workflows

import (
	"github.com/cleanroom-sh/cleanroom/internal/configs"
	"github.com/cleanroom-sh/cleanroom/internal/orchestrator"
)

// session bundles the loaded config with an orchestrator client. Every
// operation starts by opening one.
type session struct {
	config *configs.ClientConfig
	client *orchestrator.Client
}

func newSession() (*session, error) {
	config, err := configs.EnsureClientConfig()
	if err != nil {
		return nil, err
	}

	return &session{
		config: config,
		client: orchestrator.NewClient(config.Client.OrchestratorURL, config.HTTPTimeout()),
	}, nil
}
