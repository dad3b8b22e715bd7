package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// HTTPListeningPortKey is the port where the REST interface will listen on
	HTTPListeningPortKey = "HTTP_LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of the daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// PlatformAddressKey is the address receiving the platform fee output of every payment
	PlatformAddressKey = "PLATFORM_ADDRESS"
	// PlatformFeeKey is the flat platform fee in nanoERG added on top of the item prices
	PlatformFeeKey = "PLATFORM_FEE_NANOERG"
	// MinBoxValueKey is the ledger floor in nanoERG below which an output cannot exist
	MinBoxValueKey = "MIN_BOX_VALUE"
	// NetworkFeeKey is the miner fee in nanoERG paid on top of the intent total
	NetworkFeeKey = "NETWORK_FEE_NANOERG"
	// MinConfirmationsKey is the confirmation depth required before verifying a payment
	MinConfirmationsKey = "MIN_CONFIRMATIONS"
	// ExplorerEndpointKey is the base url of the chain explorer API
	ExplorerEndpointKey = "EXPLORER_ENDPOINT"
	// NodeEndpointKey is the base url of the local node, used for broadcasting and for the wallet API
	NodeEndpointKey = "NODE_ENDPOINT"
	// NodeAPIKeyKey authenticates against the node wallet API. Leaving it empty disables the custodial payment path
	NodeAPIKeyKey = "NODE_API_KEY"
	// StrictVerificationKey requires the on-chain commitment to match the recomputed one. Disable only for payments settled before the commitment scheme existed
	StrictVerificationKey = "STRICT_VERIFICATION"
	// CommitmentRegisterKey names the output register carrying the intent commitment
	CommitmentRegisterKey = "COMMITMENT_REGISTER"
	// MetadataRegisterKey names the output register carrying the composition id and item-id lists
	MetadataRegisterKey = "METADATA_REGISTER"

	DbLocation = "db"
)

var vip *viper.Viper

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("PROMPTPAY")
	vip.AutomaticEnv()

	vip.SetDefault(HTTPListeningPortKey, 9945)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DatadirKey, defaultDatadir())
	vip.SetDefault(PlatformFeeKey, 5000000)
	vip.SetDefault(MinBoxValueKey, 1000000)
	vip.SetDefault(NetworkFeeKey, 1000000)
	vip.SetDefault(MinConfirmationsKey, 1)
	vip.SetDefault(ExplorerEndpointKey, "https://api.ergoplatform.com")
	vip.SetDefault(NodeEndpointKey, "http://127.0.0.1:9053")
	vip.SetDefault(StrictVerificationKey, true)
	vip.SetDefault(CommitmentRegisterKey, "R4")
	vip.SetDefault(MetadataRegisterKey, "R5")

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetUint64(key string) uint64 {
	return vip.GetUint64(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if !vip.IsSet(PlatformAddressKey) {
		return fmt.Errorf("missing platform address")
	}

	minBoxValue := GetUint64(MinBoxValueKey)
	if minBoxValue <= 0 {
		return fmt.Errorf("%s must be positive", MinBoxValueKey)
	}
	if GetUint64(PlatformFeeKey) < minBoxValue {
		return fmt.Errorf(
			"%s must be equal or greater than %s", PlatformFeeKey, MinBoxValueKey,
		)
	}
	if GetUint64(NetworkFeeKey) <= 0 {
		return fmt.Errorf("%s must be positive", NetworkFeeKey)
	}
	if GetInt(MinConfirmationsKey) <= 0 {
		return fmt.Errorf("%s must be positive", MinConfirmationsKey)
	}

	return nil
}

func initDatadir() error {
	return makeDirectoryIfNotExists(filepath.Join(GetDatadir(), DbLocation))
}

func defaultDatadir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".promptpay-daemon"
	}
	return filepath.Join(home, ".promptpay-daemon")
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
