//
// main.go
//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Command astra-party runs one party of the three-party ring MPC
// protocols. The offline mode produces the preprocessing files the
// online mode consumes:
//
//	astra-party --prep --player 0 &
//	astra-party --prep --player 1 &
//	astra-party --prep --player 2
//	astra-party --player 0 &
//	astra-party --player 1
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/markkurossi/astra"
	"github.com/markkurossi/astra/p2p"
	"github.com/markkurossi/astra/ring"
	"github.com/markkurossi/astra/share"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "astra-party",
		Short: "Run one party of the three-party ring MPC protocols",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
		SilenceUsage: true,
	}

	flags := cmd.Flags()
	flags.Int("player", 0, "player number")
	flags.Bool("prep", false, "run the offline (preprocessing) phase")
	flags.String("protocol", "astra", "protocol variant (astra, trio)")
	flags.Int("ring", 64, "cleartext ring bit width")
	flags.StringSlice("addrs", []string{
		"localhost:7000", "localhost:7001", "localhost:7002",
	}, "player listen addresses")
	flags.Int("trunc-error", astra.DefaultTruncError,
		"probabilistic truncation error (2^-x)")
	flags.Bool("rep3-prep", false,
		"use the replicated generator for daBits and edaBits")
	flags.String("prep-dir", ".", "preprocessing file directory")
	flags.StringSlice("options", nil,
		"diagnostic options (verbose_astra, verbose_and, "+
			"always_check, code_locations)")
	flags.Bool("verbose", false, "verbose output")
	flags.String("config", "", "configuration file")

	viper.BindPFlags(flags)
	return cmd
}

func options() *astra.Options {
	opts := astra.NewOptions()
	opts.RingSize = viper.GetInt("ring")
	opts.TruncError = viper.GetInt("trunc-error")
	opts.Rep3Prep = viper.GetBool("rep3-prep")
	opts.PrepDir = viper.GetString("prep-dir")
	for _, option := range viper.GetStringSlice("options") {
		switch option {
		case "verbose_astra":
			opts.VerboseAstra = true
		case "verbose_and":
			opts.VerboseAnd = true
		case "always_check":
			opts.AlwaysCheck = true
		case "code_locations":
			opts.CodeLocations = true
		}
	}
	return opts
}

func logger() (*zap.SugaredLogger, error) {
	cfg := zap.NewDevelopmentConfig()
	if !viper.GetBool("verbose") {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}

func run() error {
	if file := viper.GetString("config"); len(file) > 0 {
		viper.SetConfigFile(file)
		if err := viper.ReadInConfig(); err != nil {
			return err
		}
	}

	log, err := logger()
	if err != nil {
		return err
	}
	defer log.Sync()

	opts := options()
	if err := opts.Validate(); err != nil {
		return err
	}

	player := viper.GetInt("player")
	prep := viper.GetBool("prep")
	protocol := viper.GetString("protocol")
	addrs := viper.GetStringSlice("addrs")

	numPlayers := 2
	if prep {
		numPlayers = 3
	}

	p, err := p2p.NewNetwork(addrs, player, numPlayers, log)
	if err != nil {
		return err
	}
	defer p.Close()

	log.Infof("%v: running %s %s phase", p, protocol,
		phase(prep))

	switch opts.RingSize {
	case 64:
		return runRing[ring.Z64](p, opts, log, protocol, prep)
	case 128:
		return runRing[ring.Z128](p, opts, log, protocol, prep)
	default:
		return fmt.Errorf("unsupported ring width %d", opts.RingSize)
	}
}

func phase(prep bool) string {
	if prep {
		return "offline"
	}
	return "online"
}

func runRing[T ring.Elem[T]](p *p2p.Player, opts *astra.Options,
	log *zap.SugaredLogger, protocol string, prep bool) error {

	timing := astra.NewTiming()

	var err error
	switch {
	case protocol == "astra" && prep:
		var e *astra.PrepEngine[T]
		e, err = astra.NewPrepEngine[T](p, opts, log, 0)
		if err != nil {
			return err
		}
		defer e.Close()
		err = demo[T](e, astra.NewPrepInput(e), nil, timing)

	case protocol == "astra":
		var e *astra.Engine[T]
		e, err = astra.NewEngine[T](p, opts, log, 0)
		if err != nil {
			return err
		}
		defer e.Close()
		mc := astra.NewOpener[T](share.KindAstra)
		err = demo[T](e, astra.NewInput(e), mc, timing)

	case protocol == "trio" && prep:
		var e *astra.TrioPrepEngine[T]
		e, err = astra.NewTrioPrepEngine[T](p, opts, log, 0)
		if err != nil {
			return err
		}
		defer e.Close()
		err = demo[T](e, astra.NewPrepInput(&e.PrepEngine), nil, timing)

	case protocol == "trio":
		var e *astra.TrioEngine[T]
		e, err = astra.NewTrioEngine[T](p, opts, log, 0)
		if err != nil {
			return err
		}
		defer e.Close()
		mc := astra.NewOpener[T](share.KindTrio)
		err = demo[T](e, astra.NewTrioInput(e), mc, timing)

	default:
		return fmt.Errorf("unknown protocol %s", protocol)
	}
	if err != nil {
		return err
	}

	timing.Print(p.Stats(), p.Comm())
	return nil
}

// demo runs a small benchmark program: private inputs, a
// multiplication batch, and a dot product. The online parties open
// and print the results; the offline run produces the matching
// preprocessing.
func demo[T ring.Elem[T]](e astra.Protocol[T], in astra.InputProtocol[T],
	mc *astra.Opener[T], timing *astra.Timing) error {

	const batch = 16

	p := e.Player()

	// Private inputs: player 0 inputs 0..15, player 1 inputs 16..31.
	in.ResetAll()
	for owner := 0; owner < 2; owner++ {
		for i := 0; i < batch; i++ {
			if p.MyNum() == owner && mc != nil {
				in.AddMine(ring.FromUint64[T](
					uint64(owner*batch + i)))
			} else {
				in.AddOther(owner)
			}
		}
	}
	if err := in.Exchange(); err != nil {
		return err
	}
	var xs, ys []share.Share[T]
	for i := 0; i < batch; i++ {
		x, err := in.Finalize(0)
		if err != nil {
			return err
		}
		xs = append(xs, x)
	}
	for i := 0; i < batch; i++ {
		y, err := in.Finalize(1)
		if err != nil {
			return err
		}
		ys = append(ys, y)
	}
	timing.Sample("Input", []string{strconv.Itoa(2 * batch)})

	// Multiplication batch.
	if err := e.InitMul(); err != nil {
		return err
	}
	for i := 0; i < batch; i++ {
		e.PrepareMul(xs[i], ys[i])
	}
	if err := e.Exchange(); err != nil {
		return err
	}
	products := make([]share.Share[T], batch)
	for i := 0; i < batch; i++ {
		products[i] = e.FinalizeMul()
	}
	timing.Sample("Multiply", []string{strconv.Itoa(batch)})

	// Dot product.
	if err := e.InitDotprod(); err != nil {
		return err
	}
	for i := 0; i < batch; i++ {
		e.PrepareDotprod(xs[i], ys[i])
	}
	e.NextDotprod()
	if err := e.Exchange(); err != nil {
		return err
	}
	dot := e.FinalizeDotprod(batch)
	timing.Sample("DotProd", []string{strconv.Itoa(batch)})

	if mc == nil {
		// The offline phase has nothing to open.
		return nil
	}

	values, err := mc.Open(p, append(append([]share.Share[T]{},
		products...), dot))
	if err != nil {
		return err
	}
	timing.Sample("Open", []string{strconv.Itoa(len(values))})

	for i := 0; i < batch; i++ {
		fmt.Printf("x%d*y%d=%v\n", i, i, values[i])
	}
	fmt.Printf("dot=%v\n", values[batch])

	return nil
}
