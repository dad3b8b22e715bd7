package ergo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/promptpage/promptpay-daemon/pkg/explorer"
)

func (e *ergoExplorer) GetTransaction(txid string) (explorer.Transaction, error) {
	url := fmt.Sprintf("%s/api/v1/transactions/%s", e.apiURL, txid)
	status, resp, err := e.doRequest("GET", url, "", nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, explorer.ErrTransactionNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("explorer: %s", resp)
	}

	var payload txPayload
	if err := json.Unmarshal([]byte(resp), &payload); err != nil {
		return nil, fmt.Errorf("parsing transaction: %w", err)
	}

	return payload.toTransaction(), nil
}

func (e *ergoExplorer) GetBlockHeight() (uint32, error) {
	url := fmt.Sprintf("%s/api/v1/blocks?limit=1", e.apiURL)
	status, resp, err := e.doRequest("GET", url, "", nil)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("explorer: %s", resp)
	}

	var payload itemsPayload
	if err := json.Unmarshal([]byte(resp), &payload); err != nil {
		return 0, fmt.Errorf("parsing blocks: %w", err)
	}
	if len(payload.Items) <= 0 {
		return 0, fmt.Errorf("explorer returned no blocks")
	}

	var block blockPayload
	if err := json.Unmarshal(payload.Items[0], &block); err != nil {
		return 0, fmt.Errorf("parsing block: %w", err)
	}

	return block.Height, nil
}

func (e *ergoExplorer) GetTransactionsForAddress(
	addr string,
) ([]explorer.Transaction, error) {
	url := fmt.Sprintf("%s/api/v1/addresses/%s/transactions", e.apiURL, addr)
	status, resp, err := e.doRequest("GET", url, "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("explorer: %s", resp)
	}

	var payload itemsPayload
	if err := json.Unmarshal([]byte(resp), &payload); err != nil {
		return nil, fmt.Errorf("parsing transactions: %w", err)
	}

	txs := make([]explorer.Transaction, 0, len(payload.Items))
	for _, item := range payload.Items {
		var tx txPayload
		if err := json.Unmarshal(item, &tx); err != nil {
			return nil, fmt.Errorf("parsing transaction: %w", err)
		}
		txs = append(txs, tx.toTransaction())
	}

	return txs, nil
}

func (e *ergoExplorer) BroadcastTransaction(txJSON string) (string, error) {
	if e.nodeURL == "" {
		return "", fmt.Errorf("broadcasting requires a node url")
	}

	url := fmt.Sprintf("%s/transactions", e.nodeURL)
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	status, resp, err := e.doRequest("POST", url, txJSON, headers)
	if err != nil {
		return "", err
	}
	if status != http.StatusOK {
		return "", fmt.Errorf("broadcast: %s", resp)
	}

	// The node answers with the plain txid, possibly quoted.
	return strings.Trim(strings.TrimSpace(resp), `"`), nil
}
