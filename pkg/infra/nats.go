package infra

import (
	"errors"
	"path/filepath"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fystack/rooch-wallet-plugin/pkg/common/config"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/constant"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/logger"
)

var ErrNatsDisabled = errors.New("nats is not configured")

func GetNATSConnection(natsConfig config.NatsConfig, environment string) (*nats.Conn, error) {
	if !natsConfig.Enabled() {
		return nil, ErrNatsDisabled
	}

	opts := []nats.Option{
		nats.MaxReconnects(-1), // retry forever
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectHandler(func(nc *nats.Conn) {
			logger.Warn("Disconnected from NATS")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("Reconnected to NATS", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
		nats.ErrorHandler(NatsErrHandler),
	}

	if environment != constant.EnvProduction {
		return nats.Connect(natsConfig.URL, opts...)
	}

	clientCert := natsConfig.TLS.ClientCert
	clientKey := natsConfig.TLS.ClientKey
	caCert := natsConfig.TLS.CACert

	if clientCert == "" {
		clientCert = filepath.Join(".", "certs", "client-cert.pem")
	}
	if clientKey == "" {
		clientKey = filepath.Join(".", "certs", "client-key.pem")
	}
	if caCert == "" {
		caCert = filepath.Join(".", "certs", "rootCA.pem")
	}

	opts = append(opts,
		nats.ClientCert(clientCert, clientKey),
		nats.RootCAs(caCert),
		nats.UserInfo(natsConfig.Username, natsConfig.Password),
	)
	return nats.Connect(natsConfig.URL, opts...)
}

func NatsErrHandler(nc *nats.Conn, sub *nats.Subscription, natsErr error) {
	logger.Error("NATS error", "error", natsErr)
	if errors.Is(natsErr, nats.ErrSlowConsumer) && sub != nil {
		pending, _, err := sub.Pending()
		if err != nil {
			logger.Error("Error getting pending messages", "error", err)
			return
		}
		logger.Error("Falling behind with pending messages on subject", "pending", pending, "subject", sub.Subject)
	}
}
