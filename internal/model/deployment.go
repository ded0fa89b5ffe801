package model

const (
	DeploymentSucceeded = "succeeded"
	DeploymentFailed    = "failed"
)

// DeploymentRecord is the persisted outcome of one orchestrator run.
type DeploymentRecord struct {
	RunID        string   `json:"run_id"`
	Network      string   `json:"network"`
	ChainID      uint64   `json:"chain_id"`
	Deployer     string   `json:"deployer,omitempty"`
	PoolAddress  string   `json:"pool_address,omitempty"`
	PoolID       string   `json:"pool_id,omitempty"`
	Tokens       []string `json:"tokens"`
	Amounts      []string `json:"amounts,omitempty"`
	OraclePrice  string   `json:"oracle_price,omitempty"`
	TotalSupply  string   `json:"total_supply,omitempty"`
	Status       string   `json:"status"`
	FailedStage  string   `json:"failed_stage,omitempty"`
	Error        string   `json:"error,omitempty"`
	Transactions []TxRef  `json:"transactions"`
	StartedAt    string   `json:"started_at"`
	FinishedAt   string   `json:"finished_at"`
}

// TxRef records a submitted transaction. Pending marks a broadcast transaction whose
// receipt was never obtained; its status, gas and block are unknown.
type TxRef struct {
	Kind    string `json:"kind"`
	Hash    string `json:"hash"`
	Status  uint64 `json:"status"`
	GasUsed uint64 `json:"gas_used"`
	Block   uint64 `json:"block_number"`
	Pending bool   `json:"pending,omitempty"`
}
