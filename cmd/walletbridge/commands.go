package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/tlinera/wallet-bridge/internal/dump"
	"github.com/urfave/cli"
)

func withEnv(c *cli.Context, f func(context.Context, *env) error) error {
	e, err := loadEnv(c.String("config"))
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	err = f(ctx, e)
	if cErr := e.close(); err == nil {
		err = cErr
	}
	return err
}

// play executes the scenario and delivers messages if requested.
func play(ctx context.Context, c *cli.Context, e *env) error {
	w := c.App.Writer

	err := e.execute(ctx, w)
	if err != nil {
		return err
	}

	if c.Bool("deliver") {
		if err = e.deliver(ctx, w); err != nil {
			return fmt.Errorf("deliver messages: %w", err)
		}
	}

	return nil
}

func runScenario(c *cli.Context) error {
	return withEnv(c, func(ctx context.Context, e *env) error {
		err := play(ctx, c, e)
		if err != nil {
			return err
		}

		e.printSent(c.App.Writer)

		if err = e.printBalances(c.App.Writer); err != nil {
			return err
		}

		if c.Bool("metrics") {
			return e.printMetrics(c.App.Writer)
		}
		return nil
	})
}

func printGenesis(c *cli.Context) error {
	return withEnv(c, func(_ context.Context, e *env) error {
		return e.printBalances(c.App.Writer)
	})
}

func dumpScenario(c *cli.Context) error {
	return withEnv(c, func(ctx context.Context, e *env) error {
		err := play(ctx, c, e)
		if err != nil {
			return err
		}

		rootDir := c.String("out")

		err = os.MkdirAll(rootDir, 0700)
		if err != nil {
			return fmt.Errorf("create root dir: %w", err)
		}

		id := dump.ID{Label: c.String("label"), Height: e.net.Height()}

		d, err := dump.NewCreator(rootDir, id)
		if err != nil {
			return fmt.Errorf("init local dumper: %w", err)
		}

		defer d.Close()

		for i := range e.cfg.Chains {
			ch := e.cfg.Chains[i]
			chainID, _ := ch.ChainID()

			s, err := e.net.Service(chainID)
			if err != nil {
				return err
			}

			entries, err := s.Accounts().Entries()
			if err != nil {
				return fmt.Errorf("read balances of chain %q: %w", ch.Label, err)
			}

			bw := d.AddChain(ch.Label, chainID)
			for _, entry := range entries {
				if err = bw.Write(entry.Key, entry.Value); err != nil {
					return err
				}
			}
		}

		err = d.Flush()
		if err != nil {
			return fmt.Errorf("flush dump: %w", err)
		}

		fmt.Fprintf(c.App.Writer, "dump %s written to %s\n", id, rootDir)

		return nil
	})
}
