package plugin

import (
	"context"

	"github.com/fystack/rooch-wallet-plugin/internal/assets"
	"github.com/fystack/rooch-wallet-plugin/internal/keys"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/logger"
)

// AssetsProvider reports the holdings of the configured wallet.
type AssetsProvider struct {
	clients ClientFactory
}

func NewAssetsProvider(clients ClientFactory) *AssetsProvider {
	return &AssetsProvider{clients: clients}
}

func (p *AssetsProvider) Name() string { return "assets" }

// Get returns the formatted asset report. Key and client errors are
// returned; fetch errors become the fallback report text.
func (p *AssetsProvider) Get(ctx context.Context, runtime Runtime, _ *Memory, _ State) (string, error) {
	owner, err := keys.ParseBitcoinAddress(runtime)
	if err != nil {
		return "", err
	}

	client, err := p.clients(runtime)
	if err != nil {
		logger.Error("Error in assets provider", "error", err)
		return "", err
	}

	return assets.NewReader(client).Report(ctx, runtime.AgentName(), owner.String()), nil
}
