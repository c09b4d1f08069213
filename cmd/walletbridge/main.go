package main

import (
	"fmt"
	"os"

	"github.com/tlinera/wallet-bridge/common"
	"github.com/urfave/cli"
)

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var configFlag = cli.StringFlag{
	Name:     "config, c",
	Usage:    "Path to the YAML configuration file",
	Required: true,
}

var deliverFlag = cli.BoolFlag{
	Name:  "deliver",
	Usage: "Deliver all cross-chain messages after the scenario",
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "walletbridge"
	app.Usage = "Run wallet bridge chains locally"
	app.Version = common.VersionString()
	app.Commands = []cli.Command{
		{
			Name:   "run",
			Usage:  "Execute configured scenario and print the resulting state",
			Flags:  []cli.Flag{configFlag, deliverFlag, cli.BoolFlag{Name: "metrics", Usage: "Print collected metrics"}},
			Action: runScenario,
		},
		{
			Name:   "balances",
			Usage:  "Print genesis balances of configured chains",
			Flags:  []cli.Flag{configFlag},
			Action: printGenesis,
		},
		{
			Name:  "dump",
			Usage: "Execute configured scenario and dump chain ledgers",
			Flags: []cli.Flag{
				configFlag,
				deliverFlag,
				cli.StringFlag{Name: "out", Usage: "Output directory", Value: "testdata"},
				cli.StringFlag{Name: "label", Usage: "Label of the dump (e.g. scenario name)", Required: true},
			},
			Action: dumpScenario,
		},
	}
	return app
}
