// SPDX-License-Identifier: MIT

// Command splinterstat loads a serialized container from a file (or
// generates a synthetic one) and reports its cardinality and per-class
// node breakdown.
package main

import (
	"fmt"
	"math/rand/v2"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	splinter "github.com/splinter-rs/splinter-go"
)

var (
	verbose bool
	synth   int
)

var rootCmd = &cobra.Command{
	Use:   "splinterstat [file]",
	Short: "Report cardinality and storage-class stats for a splinter blob",
	Args:  cobra.MaximumNArgs(1),
	RunE:  run,
}

func init() {
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "dump the full node tree")
	rootCmd.Flags().IntVar(&synth, "synth", 0, "ignore file arg, generate a synthetic container with this many random members")
}

func main() {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("splinterstat failed")
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	var s *splinter.Splinter

	switch {
	case synth > 0:
		log.Info().Int("count", synth).Msg("generating synthetic container")
		s = splinter.New()
		prng := rand.New(rand.NewPCG(42, 42))
		for s.Cardinality() < synth {
			s.Insert(prng.Uint32())
		}
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		ref, err := splinter.ParseStrict(data)
		if err != nil {
			return fmt.Errorf("parsing %s: %w", args[0], err)
		}
		s = ref.IntoOwned()
	default:
		return fmt.Errorf("either a file argument or --synth is required")
	}

	stats := s.Stats()
	fmt.Printf("cardinality: %d\n", s.Cardinality())
	fmt.Printf("partitions:  %d\n", stats.Partitions)
	fmt.Printf("blocks:      %d\n", stats.Blocks)
	fmt.Printf("vec:         %d\n", stats.Vec)
	fmt.Printf("bitmap:      %d\n", stats.Bitmap)
	fmt.Printf("run:         %d\n", stats.Run)
	fmt.Printf("tree:        %d\n", stats.Tree)
	fmt.Printf("full:        %d\n", stats.Full)
	fmt.Printf("bytes:       %d\n", len(s.Serialize()))

	if verbose {
		s.Dump(os.Stdout)
	}

	return nil
}
