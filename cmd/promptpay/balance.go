package main

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/promptpage/promptpay-daemon/pkg/explorer/ergo"
)

var balance = cli.Command{
	Name:      "balance",
	Usage:     "return the confirmed balance of an address, straight from the explorer",
	ArgsUsage: "<address>",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "explorer",
			Usage: "base url of the chain explorer",
			Value: "https://api.ergoplatform.com",
		},
	},
	Action: balanceAction,
}

func balanceAction(ctx *cli.Context) error {
	address := ctx.Args().First()
	if address == "" {
		address = ctx.String("address")
	}
	if address == "" {
		return fmt.Errorf("missing address")
	}

	endpoint := ctx.String("explorer")
	svc, err := ergo.NewService(endpoint, endpoint)
	if err != nil {
		return err
	}

	confirmed, err := svc.GetBalance(address)
	if err != nil {
		return err
	}

	nanoErg := decimal.NewFromInt(int64(confirmed.NanoErgs))
	erg := nanoErg.Div(decimal.NewFromInt(1000000000))
	fmt.Printf("%s nanoERG (%s ERG)\n", nanoErg, erg)
	return nil
}
