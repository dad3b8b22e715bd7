package ergo

import (
	"fmt"
	"net/http"

	"github.com/promptpage/promptpay-daemon/pkg/circuitbreaker"
	"github.com/promptpage/promptpay-daemon/pkg/explorer"
	"github.com/promptpage/promptpay-daemon/pkg/util"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
)

// The public explorer instances throttle aggressively; stay well below their
// documented request budget.
const requestsPerSecond = 4

type ergoExplorer struct {
	apiURL  string
	nodeURL string
	breaker *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter
}

// NewService returns a new Ergo explorer as an explorer.Service interface.
// The apiURL points to an explorer REST API, the optional nodeURL to a node
// used for broadcasting signed transactions.
func NewService(apiURL, nodeURL string) (explorer.Service, error) {
	service := &ergoExplorer{
		apiURL:  apiURL,
		nodeURL: nodeURL,
		breaker: circuitbreaker.NewCircuitBreaker("ergo-explorer"),
		limiter: ratelimit.New(requestsPerSecond),
	}

	if err := service.healthCheck(); err != nil {
		return nil, fmt.Errorf("health check: %w", err)
	}

	return service, nil
}

func (e *ergoExplorer) healthCheck() error {
	_, err := e.GetBlockHeight()
	return err
}

func (e *ergoExplorer) doRequest(
	method, url, body string, headers map[string]string,
) (int, string, error) {
	e.limiter.Take()

	type response struct {
		status int
		body   string
	}
	res, err := e.breaker.Execute(func() (interface{}, error) {
		status, resp, err := util.NewHTTPRequest(method, url, body, headers)
		if err != nil {
			return nil, err
		}
		if status >= http.StatusInternalServerError {
			return nil, fmt.Errorf("explorer unavailable: %s", resp)
		}
		return response{status, resp}, nil
	})
	if err != nil {
		return 0, "", err
	}

	r := res.(response)
	return r.status, r.body, nil
}
