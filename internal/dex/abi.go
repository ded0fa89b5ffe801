package dex

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const weightedPoolFactoryABIJSON = `[
  {
    "anonymous": false,
    "inputs": [
      {"indexed": true, "internalType": "address", "name": "pool", "type": "address"}
    ],
    "name": "PoolCreated",
    "type": "event"
  },
  {
    "inputs": [
      {"internalType": "string", "name": "name", "type": "string"},
      {"internalType": "string", "name": "symbol", "type": "string"},
      {"internalType": "contract IERC20[]", "name": "tokens", "type": "address[]"},
      {"internalType": "uint256[]", "name": "weights", "type": "uint256[]"},
      {"internalType": "uint256", "name": "swapFeePercentage", "type": "uint256"},
      {"internalType": "bool", "name": "oracleEnabled", "type": "bool"},
      {"internalType": "address", "name": "owner", "type": "address"}
    ],
    "name": "create",
    "outputs": [{"internalType": "address", "name": "", "type": "address"}],
    "stateMutability": "nonpayable",
    "type": "function"
  }
]`

const vaultABIJSON = `[
  {
    "inputs": [
      {"internalType": "bytes32", "name": "poolId", "type": "bytes32"},
      {"internalType": "address", "name": "sender", "type": "address"},
      {"internalType": "address", "name": "recipient", "type": "address"},
      {
        "components": [
          {"internalType": "contract IAsset[]", "name": "assets", "type": "address[]"},
          {"internalType": "uint256[]", "name": "maxAmountsIn", "type": "uint256[]"},
          {"internalType": "bytes", "name": "userData", "type": "bytes"},
          {"internalType": "bool", "name": "fromInternalBalance", "type": "bool"}
        ],
        "internalType": "struct IVault.JoinPoolRequest",
        "name": "request",
        "type": "tuple"
      }
    ],
    "name": "joinPool",
    "outputs": [],
    "stateMutability": "payable",
    "type": "function"
  }
]`

const weightedPoolABIJSON = `[
  {
    "inputs": [],
    "name": "getPoolId",
    "outputs": [{"internalType": "bytes32", "name": "", "type": "bytes32"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [],
    "name": "totalSupply",
    "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

const erc20ABIJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "account", "type": "address"}], "name": "balanceOf", "outputs": [{"internalType": "uint256", "name": "", "type": "uint256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [{"internalType": "address", "name": "spender", "type": "address"}, {"internalType": "uint256", "name": "amount", "type": "uint256"}], "name": "approve", "outputs": [{"internalType": "bool", "name": "", "type": "bool"}], "stateMutability": "nonpayable", "type": "function"},
  {"inputs": [], "name": "deposit", "outputs": [], "stateMutability": "payable", "type": "function"}
]`

const aggregatorABIJSON = `[
  {"inputs": [], "name": "latestAnswer", "outputs": [{"internalType": "int256", "name": "", "type": "int256"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "decimals", "outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}], "stateMutability": "view", "type": "function"}
]`

type lazyABI struct {
	json   string
	once   sync.Once
	parsed abi.ABI
	err    error
}

func (l *lazyABI) get() (abi.ABI, error) {
	l.once.Do(func() {
		l.parsed, l.err = abi.JSON(strings.NewReader(l.json))
	})
	return l.parsed, l.err
}

var (
	factoryABI    = &lazyABI{json: weightedPoolFactoryABIJSON}
	vaultABI      = &lazyABI{json: vaultABIJSON}
	poolABI       = &lazyABI{json: weightedPoolABIJSON}
	erc20ABI      = &lazyABI{json: erc20ABIJSON}
	aggregatorABI = &lazyABI{json: aggregatorABIJSON}
)

// FactoryABI returns the parsed weighted pool factory ABI.
func FactoryABI() (abi.ABI, error) { return factoryABI.get() }

// VaultABI returns the parsed vault ABI.
func VaultABI() (abi.ABI, error) { return vaultABI.get() }

// PoolABI returns the parsed weighted pool ABI.
func PoolABI() (abi.ABI, error) { return poolABI.get() }

// ERC20ABI returns the parsed ERC20 ABI, including the wrapped-native deposit method.
func ERC20ABI() (abi.ABI, error) { return erc20ABI.get() }

// AggregatorABI returns the parsed price aggregator ABI.
func AggregatorABI() (abi.ABI, error) { return aggregatorABI.get() }
