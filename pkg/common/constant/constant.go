package constant

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	// Runtime setting names.
	SettingPrivateKey = "BITCOIN_PRIVATE_KEY"
	SettingNetwork    = "ROOCH_NETWORK"
	SettingRPCURL     = "ROOCH_RPC_URL"

	GasCoinSymbol = "RGAS"
	GasCoinType   = "0x3::gas_coin::RGAS"

	PageLimit = 100

	DefaultMaxGasAmount = 50_000_000

	MainnetRPCURL = "https://main-seed.rooch.network"
	TestnetRPCURL = "https://test-seed.rooch.network"
)
