package plugin

import (
	"time"

	"github.com/fystack/rooch-wallet-plugin/internal/keys"
	"github.com/fystack/rooch-wallet-plugin/internal/rpc/rooch"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/config"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/constant"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/logger"
	"github.com/fystack/rooch-wallet-plugin/pkg/ratelimiter"
)

// ClientFactory opens a Rooch client for the network the runtime is set to.
type ClientFactory func(runtime Runtime) (rooch.RoochAPI, error)

// NewClientFactory resolves the node URL from ROOCH_RPC_URL, or from the
// ROOCH_NETWORK preset, on every call.
func NewClientFactory(timeout time.Duration, limiter *ratelimiter.RateLimiter, opts ...rooch.Option) ClientFactory {
	if timeout <= 0 {
		timeout = config.DefaultTimeout
	}
	return func(runtime Runtime) (rooch.RoochAPI, error) {
		url := runtime.GetSetting(constant.SettingRPCURL)
		if url == "" {
			preset, err := config.Preset(keys.NetworkFromSettings(runtime))
			if err != nil {
				return nil, err
			}
			url = preset.RPCURL
		}
		logger.Info("Using Rooch node", "url", url)
		return rooch.NewRoochClient(url, nil, timeout, limiter, opts...), nil
	}
}

// StaticClientFactory always hands out the same client.
func StaticClientFactory(client rooch.RoochAPI) ClientFactory {
	return func(Runtime) (rooch.RoochAPI, error) {
		return client, nil
	}
}
