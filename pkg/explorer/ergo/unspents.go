package ergo

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/promptpage/promptpay-daemon/pkg/explorer"
	"golang.org/x/sync/errgroup"
)

func (e *ergoExplorer) GetUnspents(addr string) ([]explorer.Utxo, error) {
	url := fmt.Sprintf(
		"%s/api/v1/boxes/unspent/byAddress/%s?limit=100", e.apiURL, addr,
	)
	status, resp, err := e.doRequest("GET", url, "", nil)
	if err != nil {
		return nil, fmt.Errorf("error on retrieving utxos: %w", err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("explorer: %s", resp)
	}

	var payload itemsPayload
	if err := json.Unmarshal([]byte(resp), &payload); err != nil {
		return nil, fmt.Errorf("parsing utxos: %w", err)
	}

	unspents := make([]explorer.Utxo, 0, len(payload.Items))
	for _, item := range payload.Items {
		var box outputPayload
		if err := json.Unmarshal(item, &box); err != nil {
			return nil, fmt.Errorf("parsing utxo: %w", err)
		}
		unspents = append(unspents, box.toUtxo())
	}

	return unspents, nil
}

func (e *ergoExplorer) GetUnspentsForAddresses(
	addresses []string,
) ([]explorer.Utxo, error) {
	var mtx sync.Mutex
	unspents := make([]explorer.Utxo, 0)

	eg := errgroup.Group{}
	for i := range addresses {
		addr := addresses[i]
		eg.Go(func() error {
			utxos, err := e.GetUnspents(addr)
			if err != nil {
				return err
			}
			mtx.Lock()
			defer mtx.Unlock()
			unspents = append(unspents, utxos...)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	return unspents, nil
}

func (e *ergoExplorer) GetBalance(addr string) (*explorer.Balance, error) {
	url := fmt.Sprintf(
		"%s/api/v1/addresses/%s/balance/total", e.apiURL, addr,
	)
	status, resp, err := e.doRequest("GET", url, "", nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("explorer: %s", resp)
	}

	var payload struct {
		Confirmed explorer.Balance `json:"confirmed"`
	}
	if err := json.Unmarshal([]byte(resp), &payload); err != nil {
		return nil, fmt.Errorf("parsing balance: %w", err)
	}

	return &payload.Confirmed, nil
}
