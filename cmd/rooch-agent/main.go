package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/fystack/rooch-wallet-plugin/internal/keys"
	"github.com/fystack/rooch-wallet-plugin/internal/plugin"
	"github.com/fystack/rooch-wallet-plugin/internal/rpc/rooch"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/config"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/enum"
	"github.com/fystack/rooch-wallet-plugin/pkg/common/logger"
	"github.com/fystack/rooch-wallet-plugin/pkg/events"
	"github.com/fystack/rooch-wallet-plugin/pkg/infra"
	"github.com/fystack/rooch-wallet-plugin/pkg/ratelimiter"
)

var errTransferFailed = errors.New("transfer did not succeed")

// --- CLI definitions --- //

type Globals struct {
	ConfigPath string `help:"Path to config file." default:"configs/config.yaml" name:"config"`
	EnvFile    string `help:"Dotenv file to load before reading settings." default:".env" name:"env-file"`
	Debug      bool   `help:"Enable debug logs." name:"debug"`
}

type CLI struct {
	Globals

	Assets   AssetsCmd   `cmd:"" help:"Print the wallet asset report."`
	Transfer TransferCmd `cmd:"" help:"Transfer coins to a Rooch address."`
	Address  AddressCmd  `cmd:"" help:"Print the wallet addresses."`
	Check    CheckCmd    `cmd:"" help:"Validate the plugin settings."`
	Keygen   KeygenCmd   `cmd:"" help:"Generate a new WIF private key."`
}

type AssetsCmd struct{}

type TransferCmd struct {
	To     string `help:"Recipient Rooch address." required:"" name:"to"`
	Amount string `help:"Amount in human units." required:"" name:"amount"`
	Symbol string `help:"Coin symbol." default:"RGAS" name:"symbol"`
	Index  int    `help:"1-based index when several coins share the symbol." name:"index"`
}

type AddressCmd struct{}

type CheckCmd struct{}

type KeygenCmd struct {
	Uncompressed bool `help:"Encode the key without the compression flag." name:"uncompressed"`
	Testnet      bool `help:"Use the testnet WIF version byte." name:"testnet"`
}

func (c *AssetsCmd) Run(g *Globals) error {
	app, err := setup(g)
	if err != nil {
		return err
	}
	defer app.Close()

	provider, _ := app.plugin.Provider("assets")
	report, err := provider.Get(app.ctx, app.runtime, nil, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, report)
	return nil
}

func (c *TransferCmd) Run(g *Globals) error {
	app, err := setup(g)
	if err != nil {
		return err
	}
	defer app.Close()

	reply, err := transferReply(c.To, c.Amount, c.Symbol, c.Index)
	if err != nil {
		return err
	}
	app.runtime.reply = reply

	action, _ := app.plugin.Action(plugin.SendCoinActionName)
	message := &plugin.Memory{Content: plugin.Content{
		Text: fmt.Sprintf("Send %s %s to %s", c.Amount, c.Symbol, c.To),
	}}
	ok, err := action.Handler(app.ctx, app.runtime, message, nil, app.callback(os.Stdout, action.Name))
	if err != nil {
		return err
	}
	if !ok {
		return errTransferFailed
	}
	return nil
}

func (c *AddressCmd) Run(g *Globals) error {
	app, err := setup(g)
	if err != nil {
		return err
	}
	defer app.Close()

	kp, err := keys.FromSettings(app.runtime)
	if err != nil {
		return err
	}
	btcAddr, err := kp.BitcoinAddress()
	if err != nil {
		return err
	}
	roochAddr := kp.RoochAddress()
	bech, err := roochAddr.Bech32()
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "bitcoin: %s\nrooch:   %s\n         %s\n", btcAddr.String(), roochAddr.Hex(), bech)
	return nil
}

func (c *CheckCmd) Run(g *Globals) error {
	app, err := setup(g)
	if err != nil {
		return err
	}
	defer app.Close()

	cfg, err := plugin.ValidateConfig(app.runtime)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Rooch configuration OK (network %s)\n", cfg.Network)
	return nil
}

func (c *KeygenCmd) Run(g *Globals) error {
	initLogger(g.Debug, "")

	network := enum.NetworkMainnet
	if c.Testnet {
		network = enum.NetworkTestnet
	}
	key, err := keys.GenerateWIF(!c.Uncompressed, network)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "wif:        %s\npublic key: %s\n", key.WIF, key.PublicKey)
	return nil
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("rooch-agent"),
		kong.Description("Rooch wallet plugin: asset reports and coin transfers."),
		kong.UsageOnError(),
		kong.Bind(&cli.Globals),
	)
	err := ctx.Run()
	ctx.FatalIfErrorf(err)
}

// --- wiring --- //

type app struct {
	ctx     context.Context
	cancel  context.CancelFunc
	cfg     *config.Config
	runtime *cliRuntime
	client  *rooch.Client
	plugin  plugin.Plugin
	emitter events.Emitter
}

func setup(g *Globals) (*app, error) {
	if err := godotenv.Load(g.EnvFile); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load %s: %w", g.EnvFile, err)
	}

	cfg, err := config.Load(g.ConfigPath)
	if err != nil {
		return nil, err
	}
	initLogger(g.Debug, cfg.LogLevel)
	logger.Info("Config loaded", "network", cfg.Rooch.Network, "rpc", cfg.Rooch.RPCURL)

	limiter := ratelimiter.New(cfg.Rooch.Throttle.RPS, cfg.Rooch.Throttle.Burst)
	client, err := newRoochClient(cfg.Rooch, limiter)
	if err != nil {
		return nil, err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	a := &app{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		runtime: newCLIRuntime(cfg),
		client:  client,
		plugin:  plugin.New(plugin.StaticClientFactory(client)),
	}

	if cfg.Nats.Enabled() {
		nc, err := infra.GetNATSConnection(cfg.Nats, cfg.Environment)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect nats: %w", err)
		}
		a.emitter = events.NewEmitter(infra.NewNATSPublisher(nc), cfg.Nats.SubjectPrefix)
		logger.Info("Publishing action events", "subject_prefix", cfg.Nats.SubjectPrefix)
	}
	return a, nil
}

// callback prints the action response and mirrors it to NATS when enabled.
func (a *app) callback(out io.Writer, action string) plugin.HandlerCallback {
	return func(_ context.Context, content plugin.Content) error {
		fmt.Fprintln(out, content.Text)
		if a.emitter == nil {
			return nil
		}
		if err := a.emitter.EmitAction(a.cfg.Agent.Name, action, content.Text, content.Content); err != nil {
			logger.Warn("Publish action event failed", "error", err)
		}
		return nil
	}
}

func (a *app) Close() {
	if a.emitter != nil {
		a.emitter.Close()
	}
	if a.client != nil {
		_ = a.client.Close()
	}
	a.cancel()
}

func newRoochClient(cfg config.RoochConfig, limiter *ratelimiter.RateLimiter) (*rooch.Client, error) {
	gas := rooch.WithMaxGasAmount(cfg.MaxGasAmount)
	if len(cfg.FallbackURLs) == 0 {
		return rooch.NewRoochClient(cfg.RPCURL, cfg.Headers, cfg.Timeout, limiter, gas), nil
	}
	return rooch.NewFailoverRoochClient(cfg.NodeURLs(), cfg.Headers, cfg.Timeout, limiter, gas)
}

func initLogger(debug bool, configured string) {
	level := logger.ParseLevel(configured)
	if debug {
		level = slog.LevelDebug
	}
	logger.Init(&logger.Options{Level: level})
}
