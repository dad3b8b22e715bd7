package main

import (
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"
)

var pay = cli.Command{
	Name:      "pay",
	Usage:     "pay a locked composition through the node wallet",
	ArgsUsage: "<id>",
	Action:    payAction,
}

var confirm = cli.Command{
	Name:      "confirm",
	Usage:     "check a submitted transaction against a composition",
	ArgsUsage: "<id> <txid>",
	Action:    confirmAction,
}

func payAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("missing composition id")
	}

	resp, err := callDaemon(
		ctx, http.MethodPost,
		"/v1/compositions/"+ctx.Args().First()+"/pay", "",
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func confirmAction(ctx *cli.Context) error {
	if ctx.NArg() < 2 {
		return fmt.Errorf("missing composition id or txid")
	}

	resp, err := callDaemon(
		ctx, http.MethodPost,
		"/v1/compositions/"+ctx.Args().First()+"/confirm",
		fmt.Sprintf(`{"txId":%q}`, ctx.Args().Get(1)),
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
