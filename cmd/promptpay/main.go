package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/promptpage/promptpay-daemon/pkg/util"
)

func main() {
	app := cli.NewApp()

	app.Version = "0.1.0"
	app.Name = "promptpay CLI"
	app.Usage = "Command line interface for the promptpay daemon"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "daemon",
			Usage: "base url of the promptpay daemon",
			Value: "http://localhost:9945",
		},
		&cli.StringFlag{
			Name:  "address",
			Usage: "wallet address acting as the caller identity",
		},
	}
	app.Commands = append(
		app.Commands,
		&propose,
		&get,
		&list,
		&lock,
		&pay,
		&confirm,
		&balance,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func callDaemon(ctx *cli.Context, method, path, body string) (string, error) {
	url := strings.TrimSuffix(ctx.String("daemon"), "/") + path

	headers := map[string]string{
		"X-User-Address": ctx.String("address"),
	}
	if body != "" {
		headers["Content-Type"] = "application/json"
	}

	status, resp, err := util.NewHTTPRequest(method, url, body, headers)
	if err != nil {
		return "", err
	}
	if status >= http.StatusBadRequest {
		return "", fmt.Errorf("daemon replied %d: %s", status, resp)
	}
	return resp, nil
}

func printRespJSON(resp string) {
	var pretty map[string]interface{}
	if err := json.Unmarshal([]byte(resp), &pretty); err != nil {
		fmt.Println(resp)
		return
	}
	out, _ := json.MarshalIndent(pretty, "", "  ")
	fmt.Println(string(out))
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[promptpay] %v\n", err)
	os.Exit(1)
}
