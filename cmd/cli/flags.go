package main

import (
	"drawlab/internal/config"

	"github.com/spf13/cobra"
)

// engineFlags binds one flag per engine setting. Only flags the user set
// become overrides, so environment defaults survive.
type engineFlags struct {
	k, n, target, block, maxAttempts int
	sumTol, parityTol, bias, z       float64
	seed                             int64
}

func addEngineFlags(cmd *cobra.Command) *engineFlags {
	f := &engineFlags{}
	fs := cmd.Flags()
	fs.IntVarP(&f.k, "k", "k", 0, "numbers per draw")
	fs.IntVarP(&f.n, "n", "n", 0, "size of the number universe")
	fs.IntVarP(&f.target, "count", "c", 0, "candidates to generate")
	fs.IntVar(&f.block, "block-size", 0, "return records per block")
	fs.IntVar(&f.maxAttempts, "max-attempts", 0, "total generation attempts allowed")
	fs.Float64Var(&f.sumTol, "sum-tolerance", 0, "allowed distance from the mean draw sum")
	fs.Float64Var(&f.parityTol, "parity-tolerance", 0, "allowed distance from the mean even count")
	fs.Float64Var(&f.bias, "bias", 0, "frequency bias strength in [0,1]")
	fs.Int64Var(&f.seed, "seed", 0, "random seed")
	fs.Float64Var(&f.z, "z-threshold", 0, "z-score threshold for pattern detection")
	return f
}

func (f *engineFlags) overrides(cmd *cobra.Command) config.Overrides {
	var o config.Overrides
	changed := cmd.Flags().Changed
	if changed("k") {
		o.K = &f.k
	}
	if changed("n") {
		o.N = &f.n
	}
	if changed("count") {
		o.TargetCount = &f.target
	}
	if changed("block-size") {
		o.BlockSize = &f.block
	}
	if changed("max-attempts") {
		o.MaxAttempts = &f.maxAttempts
	}
	if changed("sum-tolerance") {
		o.SumTolerance = &f.sumTol
	}
	if changed("parity-tolerance") {
		o.ParityTolerance = &f.parityTol
	}
	if changed("bias") {
		o.BiasStrength = &f.bias
	}
	if changed("seed") {
		o.Seed = &f.seed
	}
	if changed("z-threshold") {
		o.ZThreshold = &f.z
	}
	return o
}

func (e *cliEnv) engine(cmd *cobra.Command, f *engineFlags) (config.EngineConfig, error) {
	return e.config.Engine.Apply(f.overrides(cmd))
}
