package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/urfave/cli/v2"
)

var propose = cli.Command{
	Name:      "propose",
	Usage:     "propose a new composition from a json file of line items",
	ArgsUsage: "<items.json>",
	Action:    proposeAction,
}

var get = cli.Command{
	Name:      "get",
	Usage:     "return a composition by id",
	ArgsUsage: "<id>",
	Action:    getAction,
}

var list = cli.Command{
	Name:   "list",
	Usage:  "return all the compositions owned by the caller address",
	Action: listAction,
}

var lock = cli.Command{
	Name:      "lock",
	Usage:     "lock a composition and return its payment intent",
	ArgsUsage: "<id>",
	Action:    lockAction,
}

func proposeAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("missing items file")
	}

	items, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return err
	}

	resp, err := callDaemon(
		ctx, http.MethodPost, "/v1/compositions",
		fmt.Sprintf(`{"items":%s}`, string(items)),
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func getAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("missing composition id")
	}

	resp, err := callDaemon(
		ctx, http.MethodGet, "/v1/compositions/"+ctx.Args().First(), "",
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func listAction(ctx *cli.Context) error {
	resp, err := callDaemon(ctx, http.MethodGet, "/v1/compositions", "")
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}

func lockAction(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("missing composition id")
	}

	resp, err := callDaemon(
		ctx, http.MethodPost,
		"/v1/compositions/"+ctx.Args().First()+"/lock", "",
	)
	if err != nil {
		return err
	}

	printRespJSON(resp)
	return nil
}
