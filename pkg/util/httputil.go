package util

import (
	"io"
	"net/http"
	"strings"
	"time"
)

var client = &http.Client{Timeout: 30 * time.Second}

// NewHTTPRequest performs an HTTP call with the given verb and returns the
// response status code along with the raw body.
func NewHTTPRequest(
	method, url, bodyString string, headers map[string]string,
) (int, string, error) {
	var body io.Reader
	if bodyString != "" {
		body = strings.NewReader(bodyString)
	}

	req, err := http.NewRequest(method, url, body)
	if err != nil {
		return 0, "", err
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, "", err
	}

	return resp.StatusCode, string(bodyBytes), nil
}
