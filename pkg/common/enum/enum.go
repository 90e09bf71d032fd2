package enum

type NetworkType string
type KeySchema string
type ExecutionStatus string

const (
	NetworkMainnet NetworkType = "mainnet"
	NetworkTestnet NetworkType = "testnet"
)

func (n NetworkType) IsValid() bool {
	return n == NetworkMainnet || n == NetworkTestnet
}

const (
	KeySchemaSecp256k1 KeySchema = "Secp256k1"
)

// Execution status tags reported by rooch_executeRawTransaction.
const (
	ExecutionStatusExecuted        ExecutionStatus = "executed"
	ExecutionStatusOutOfGas        ExecutionStatus = "outofgas"
	ExecutionStatusMoveAbort       ExecutionStatus = "moveabort"
	ExecutionStatusExecutionFailed ExecutionStatus = "executionfailure"
	ExecutionStatusMiscellaneous   ExecutionStatus = "miscellaneouserror"
)
