package nodewallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/promptpage/promptpay-daemon/pkg/circuitbreaker"
	"github.com/promptpage/promptpay-daemon/pkg/util"
	"github.com/sony/gobreaker"
)

var (
	// ErrWalletLocked is thrown when the node wallet must be unlocked before
	// signing a transaction.
	ErrWalletLocked = errors.New("node wallet is locked")
	// ErrMissingAPIKey ...
	ErrMissingAPIKey = errors.New("node api key is required")
)

// Status reports the state of the node wallet.
type Status struct {
	IsInitialized bool   `json:"isInitialized"`
	IsUnlocked    bool   `json:"isUnlocked"`
	ChangeAddress string `json:"changeAddress"`
	WalletHeight  uint32 `json:"walletHeight"`
}

// Balance reports the spendable funds of the node wallet.
type Balance struct {
	Height  uint32            `json:"height"`
	Balance uint64            `json:"balance"`
	Assets  map[string]uint64 `json:"assets"`
}

// Recipient is one destination of a wallet payment.
type Recipient struct {
	Address string `json:"address"`
	Value   uint64 `json:"value"`
}

// Client talks to the REST wallet API of a local Ergo node. The node builds,
// signs and broadcasts transactions on behalf of the platform, which makes it
// the custodial signing path of the protocol.
type Client struct {
	baseURL string
	apiKey  string
	breaker *gobreaker.CircuitBreaker
}

// NewClient returns a wallet client for the given node.
func NewClient(nodeURL, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Client{
		baseURL: strings.TrimSuffix(nodeURL, "/"),
		apiKey:  apiKey,
		breaker: circuitbreaker.NewCircuitBreaker("node-wallet"),
	}, nil
}

// GetStatus returns the wallet status.
func (c *Client) GetStatus() (*Status, error) {
	resp, err := c.doRequest("GET", "/wallet/status", "")
	if err != nil {
		return nil, err
	}

	status := &Status{}
	if err := json.Unmarshal([]byte(resp), status); err != nil {
		return nil, fmt.Errorf("parsing wallet status: %w", err)
	}
	return status, nil
}

// GetBalance returns the confirmed wallet balance.
func (c *Client) GetBalance() (*Balance, error) {
	resp, err := c.doRequest("GET", "/wallet/balances", "")
	if err != nil {
		return nil, err
	}

	balance := &Balance{}
	if err := json.Unmarshal([]byte(resp), balance); err != nil {
		return nil, fmt.Errorf("parsing wallet balance: %w", err)
	}
	return balance, nil
}

// Unlock unlocks the wallet with the given passphrase.
func (c *Client) Unlock(passphrase string) error {
	body, _ := json.Marshal(map[string]string{"pass": passphrase})
	_, err := c.doRequest("POST", "/wallet/unlock", string(body))
	return err
}

// SendTransaction asks the node wallet to build, sign and broadcast a
// payment to the given recipients, returning the resulting transaction id.
// The wallet must be unlocked.
func (c *Client) SendTransaction(
	recipients []Recipient, fee uint64,
) (string, error) {
	status, err := c.GetStatus()
	if err != nil {
		return "", err
	}
	if !status.IsUnlocked {
		return "", ErrWalletLocked
	}

	body, _ := json.Marshal(map[string]interface{}{
		"requests": recipients,
		"fee":      fee,
	})
	resp, err := c.doRequest("POST", "/wallet/payment/send", string(body))
	if err != nil {
		return "", err
	}

	// The node answers with the plain txid, possibly quoted.
	return strings.Trim(strings.TrimSpace(resp), `"`), nil
}

func (c *Client) doRequest(method, path, body string) (string, error) {
	headers := map[string]string{
		"api_key": c.apiKey,
	}
	if body != "" {
		headers["Content-Type"] = "application/json"
	}

	resp, err := c.breaker.Execute(func() (interface{}, error) {
		status, resp, err := util.NewHTTPRequest(
			method, c.baseURL+path, body, headers,
		)
		if err != nil {
			return nil, err
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("node wallet: %s", resp)
		}
		return resp, nil
	})
	if err != nil {
		return "", err
	}

	return resp.(string), nil
}
