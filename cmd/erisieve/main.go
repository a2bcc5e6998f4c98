package main

import (
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/chemkit/erisieve"
	"github.com/chemkit/erisieve/basis"
	"github.com/chemkit/erisieve/integral"
	"github.com/chemkit/erisieve/integral/gaussian"
)

var (
	nShells   int
	spacing   float64
	threshold float64
	csam      bool
	parallel  int
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "erisieve",
	Short: "Integral screening over a model hydrogen chain",
	Long: `Builds a Cauchy-Schwarz integral sieve over a linear chain of STO-3G
hydrogen atoms and reports which shell and function pairs survive the
screening threshold.`,
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print sieve statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		sv, err := buildSieve()
		if err != nil {
			return err
		}

		stats := sv.Stats()

		outputJSON, _ := cmd.Flags().GetBool("json")
		if outputJSON {
			data, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		fmt.Printf("Shells:          %d\n", stats.NShells)
		fmt.Printf("Functions:       %d\n", stats.NFunctions)
		fmt.Printf("Threshold:       %g\n", stats.Threshold)
		fmt.Printf("Max pair value:  %g\n", stats.MaxPairValue)
		fmt.Printf("CSAM:            %v\n", stats.CSAM)
		fmt.Printf("Shell pairs:     %d of %d\n", stats.ShellPairs, stats.ShellPairsTotal)
		fmt.Printf("Function pairs:  %d of %d\n", stats.FunctionPairs, stats.FunctionPairsTotal)
		return nil
	},
}

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "List significant pairs at the threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		sv, err := buildSieve()
		if err != nil {
			return err
		}

		pairs := sv.ShellPairs()
		label := "shell"
		if functions, _ := cmd.Flags().GetBool("functions"); functions {
			pairs = sv.FunctionPairs()
			label = "function"
		}

		outputJSON, _ := cmd.Flags().GetBool("json")
		if outputJSON {
			data, err := json.MarshalIndent(pairs, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		}

		for _, pair := range pairs {
			fmt.Printf("(%d,%d|\n", pair.M, pair.N)
		}
		fmt.Printf("%d significant %s pairs\n", len(pairs), label)
		return nil
	},
}

var dumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Dump every table, list and map",
	RunE: func(cmd *cobra.Command, args []string) error {
		sv, err := buildSieve()
		if err != nil {
			return err
		}

		return sv.DumpTo(os.Stdout)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check <m> <n> [<r> <s>]",
	Short: "Test a shell pair, or a shell quartet with CSAM",
	Args:  cobra.RangeArgs(2, 4),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 3 {
			return fmt.Errorf("expected 2 or 4 shell indices, got 3")
		}

		shells := make([]int, len(args))
		for i, a := range args {
			v, err := strconv.Atoi(a)
			if err != nil {
				return fmt.Errorf("invalid shell index %q: %w", a, err)
			}
			shells[i] = v
		}

		sv, err := buildSieve()
		if err != nil {
			return err
		}

		if len(shells) == 2 {
			ok := sv.ShellPairSignificant(shells[0], shells[1])
			fmt.Printf("(%d %d| significant: %v\n", shells[0], shells[1], ok)
			return nil
		}

		ok, err := sv.ShellSignificantCSAM(shells[0], shells[1], shells[2], shells[3])
		if err != nil {
			return err
		}
		fmt.Printf("(%d %d|%d %d) significant: %v\n", shells[0], shells[1], shells[2], shells[3], ok)
		return nil
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <file>",
	Short: "Build the sieve and save a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		compression, err := parseCompression(cmd)
		if err != nil {
			return err
		}

		sv, err := buildSieve(erisieve.WithSnapshotCompression(compression))
		if err != nil {
			return err
		}

		if err := sv.SaveSnapshotFile(args[0]); err != nil {
			return err
		}

		fmt.Printf("Snapshot saved to %s\n", args[0])
		return nil
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Restore a snapshot and print its statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bs, err := chainBasis()
		if err != nil {
			return err
		}

		sv, err := erisieve.LoadSnapshotFile(args[0], bs, loggerOption())
		if err != nil {
			return err
		}

		stats := sv.Stats()
		fmt.Printf("Threshold:       %g\n", stats.Threshold)
		fmt.Printf("CSAM:            %v\n", stats.CSAM)
		fmt.Printf("Shell pairs:     %d of %d\n", stats.ShellPairs, stats.ShellPairsTotal)
		fmt.Printf("Function pairs:  %d of %d\n", stats.FunctionPairs, stats.FunctionPairsTotal)
		return nil
	},
}

// chainBasis builds the model system: STO-3G hydrogens on the z axis.
func chainBasis() (*basis.Set, error) {
	if nShells < 1 {
		return nil, fmt.Errorf("need at least 1 shell, got %d", nShells)
	}

	shells := make([]basis.Shell, nShells)
	for i := range shells {
		shells[i] = basis.Shell{
			Center: [3]float64{0, 0, float64(i) * spacing},
			Primitives: []basis.Primitive{
				{Exponent: 3.42525091, Coefficient: 0.15432897},
				{Exponent: 0.62391373, Coefficient: 0.53532814},
				{Exponent: 0.16885540, Coefficient: 0.44463454},
			},
		}
	}

	return basis.New(shells)
}

func loggerOption() func(o *erisieve.Options) {
	if verbose {
		return erisieve.WithLogLevel(slog.LevelDebug)
	}
	return nil
}

func buildSieve(extra ...func(o *erisieve.Options)) (*erisieve.Sieve, error) {
	bs, err := chainBasis()
	if err != nil {
		return nil, err
	}

	eng, err := gaussian.New(bs)
	if err != nil {
		return nil, err
	}

	optFns := []func(o *erisieve.Options){
		erisieve.WithThreshold(threshold),
		loggerOption(),
	}
	if csam {
		optFns = append(optFns, erisieve.WithCSAM())
	}
	if parallel > 1 {
		optFns = append(optFns,
			erisieve.WithParallelism(parallel),
			erisieve.WithEngineFactory(func() (integral.Engine, error) {
				return gaussian.New(bs)
			}),
		)
	}
	optFns = append(optFns, extra...)

	return erisieve.New(bs, eng, optFns...)
}

func parseCompression(cmd *cobra.Command) (erisieve.SnapshotCompression, error) {
	name, _ := cmd.Flags().GetString("compression")
	switch name {
	case "none":
		return erisieve.SnapshotCompressionNone, nil
	case "lz4":
		return erisieve.SnapshotCompressionLZ4, nil
	case "zstd":
		return erisieve.SnapshotCompressionZstd, nil
	default:
		return 0, fmt.Errorf("unknown compression %q (none/lz4/zstd)", name)
	}
}

func init() {
	rootCmd.PersistentFlags().IntVarP(&nShells, "shells", "n", 8, "Number of hydrogen shells in the chain")
	rootCmd.PersistentFlags().Float64Var(&spacing, "spacing", 1.4, "Spacing between atoms in bohr")
	rootCmd.PersistentFlags().Float64VarP(&threshold, "threshold", "t", 1e-10, "Screening threshold")
	rootCmd.PersistentFlags().BoolVar(&csam, "csam", false, "Build the CSAM exchange tables")
	rootCmd.PersistentFlags().IntVarP(&parallel, "parallel", "p", 1, "Worker count for the table build")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	statsCmd.Flags().Bool("json", false, "Output as JSON")

	pairsCmd.Flags().Bool("functions", false, "List basis function pairs instead of shell pairs")
	pairsCmd.Flags().Bool("json", false, "Output as JSON")

	saveCmd.Flags().String("compression", "zstd", "Snapshot compression (none/lz4/zstd)")

	rootCmd.AddCommand(
		statsCmd,
		pairsCmd,
		dumpCmd,
		checkCmd,
		saveCmd,
		loadCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
