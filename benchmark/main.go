// Command benchmark compares seen-sets against maps that store the values.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/yangl1996/seenset/hasher"
)

type flags struct {
	cfgFile    string
	verbose    bool
	runs       int
	hasher     string
	key        string
	strategies []string
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config file, if any, and applies the flags the user
// set explicitly.
func loadConfig(cmd *cobra.Command, f *flags) (Config, error) {
	cfg := DefaultConfig()
	if f.cfgFile != "" {
		var err error
		cfg, err = LoadConfig(f.cfgFile)
		if err != nil {
			return cfg, err
		}
	}
	fs := cmd.Flags()
	if fs.Changed("runs") {
		cfg.Runs = f.runs
	}
	if fs.Changed("hasher") {
		cfg.Hasher = f.hasher
	}
	if fs.Changed("key") {
		cfg.Key = f.key
	}
	if fs.Changed("strategy") {
		cfg.Strategies = f.strategies
	}
	return cfg, cfg.Validate()
}

func newRunCmd(f *flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the configured scenarios and print timing summaries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), f.verbose)
			r, err := newRunner(cfg, log, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			return r.run()
		},
	}
	cmd.Flags().StringVar(&f.cfgFile, "config", "", "YAML config file")
	cmd.Flags().IntVar(&f.runs, "runs", 0, "number of runs per strategy")
	cmd.Flags().StringSliceVar(&f.strategies, "strategy", nil, "strategies to compare (seenset, map-clone, map-ref)")
	return cmd
}

// newHashersCmd prints digests of the arguments under every hasher. Apart
// from random, the digests are the same in every run with the same key.
func newHashersCmd(f *flags) *cobra.Command {
	return &cobra.Command{
		Use:   "hashers [value...]",
		Short: "Print the digest of each value under every hasher",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			key, _ := cfg.HasherKey()
			if len(args) == 0 {
				args = []string{"/etc/hosts"}
			}
			b2, err := hasher.NewBlake2b[string](key[:], hasher.String)
			if err != nil {
				return fmt.Errorf("creating blake2b hasher: %w", err)
			}
			hs := []struct {
				name string
				h    hasher.Hasher[string]
			}{
				{"random", hasher.NewRandom[string]()},
				{"siphash", hasher.NewSipHash[string](key, hasher.String)},
				{"xxhash", hasher.NewXXHash[string](hasher.String)},
				{"blake2b", b2},
			}
			out := cmd.OutOrStdout()
			for _, v := range args {
				for _, h := range hs {
					fmt.Fprintf(out, "%s\t%s\t0x%016x\n", v, h.name, h.h.Sum64(v))
				}
			}
			return nil
		},
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	root := &cobra.Command{
		Use:           "benchmark",
		Short:         "Compare seen-sets with value-storing maps",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "log every run")
	root.PersistentFlags().StringVar(&f.hasher, "hasher", "", "value hasher (random, siphash, xxhash, blake2b)")
	root.PersistentFlags().StringVar(&f.key, "key", "", "hex key for keyed hashers")
	root.AddCommand(newRunCmd(f), newHashersCmd(f))
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		newLogger(os.Stderr, false).Error("benchmark failed", "err", err)
		os.Exit(1)
	}
}
