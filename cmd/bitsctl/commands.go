package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/danmuck/bitsctl/internal/config"
	"github.com/danmuck/bitsctl/internal/logging"
	"github.com/danmuck/bitsctl/internal/protocol"
	"github.com/danmuck/bitsctl/internal/render"
	"github.com/danmuck/bitsctl/internal/solve"
)

type app struct {
	configPath string
	logLevel   string
	inputPath  string
	format     string
	workers    int
	outputPath string
	force      bool

	cfg config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "bitsctl",
		Short: "Decode and evaluate BITS transmissions",
		Long: `bitsctl reads hex-encoded BITS transmissions, decodes the packet
hierarchy and reports the version sum (part 1) and expression value (part 2).`,
		Args:              noArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runSolve,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "path to a bitsctl TOML config")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: trace|debug|info|warn|error|off")
	pf.StringVarP(&a.inputPath, "input", "i", "", "read transmissions from `FILE` instead of stdin")
	pf.StringVarP(&a.format, "format", "f", "", "output format: text|json|yaml|tree")

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "Print the version sum and expression value of the first transmission",
		Args:  noArgs,
		RunE:  a.runSolve,
	}
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the decoded packet tree of the first transmission",
		Args:  noArgs,
		RunE:  a.runDump,
	}
	batchCmd := &cobra.Command{
		Use:   "batch",
		Short: "Solve every line of the input as its own transmission",
		Args:  noArgs,
		RunE:  a.runBatch,
	}
	batchCmd.Flags().IntVarP(&a.workers, "workers", "w", 0, "concurrent decodes (default from config)")
	encodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a JSON or YAML packet tree as a hex transmission",
		Args:  noArgs,
		RunE:  a.runEncode,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Write or check a bitsctl config file",
	}
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config template",
		Args:  noArgs,
		RunE:  a.runConfigInit,
	}
	initCmd.Flags().StringVarP(&a.outputPath, "output", "o", "bitsctl.toml", "template destination")
	initCmd.Flags().BoolVar(&a.force, "force", false, "overwrite an existing file")
	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Load and validate the file given by --config",
		Args:  noArgs,
		RunE:  a.runConfigValidate,
	}
	configCmd.AddCommand(initCmd, validateCmd)

	root.AddCommand(solveCmd, dumpCmd, batchCmd, encodeCmd, configCmd)
	return root
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError{err}
	}
	return nil
}

// setup resolves config, flags and log level. Flags win over the file.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg := config.Default()
	if a.configPath != "" {
		loaded, err := config.Load(a.configPath)
		if err != nil {
			return usageError{err}
		}
		cfg = loaded
	}
	if a.format != "" {
		cfg.Format = strings.ToLower(strings.TrimSpace(a.format))
	}
	if a.workers != 0 {
		cfg.Workers = a.workers
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return usageError{err}
	}
	// Without --log-level or [log] level the profile and env level stand.
	if cfg.LogLevel != "" {
		logging.SetLevel(cfg.LogLevel)
	}
	a.cfg = cfg

	log.Debug().
		Str("command", cmd.Name()).
		Str("format", cfg.Format).
		Int("max_bytes", cfg.Decode.MaxBytes).
		Int("max_depth", cfg.Decode.MaxDepth).
		Msg("configured")
	return nil
}

func (a *app) input(cmd *cobra.Command) (io.ReadCloser, error) {
	if a.inputPath == "" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	f, err := os.Open(a.inputPath)
	if err != nil {
		return nil, usageError{err}
	}
	return f, nil
}

func (a *app) first(cmd *cobra.Command) (*solve.Result, error) {
	r, err := a.input(cmd)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	in, err := solve.ReadFirst(r)
	if err != nil {
		return nil, &solve.StageError{Stage: solve.StageRead, Err: err}
	}
	return solve.New(a.cfg.Decode).Solve(in)
}

func (a *app) runSolve(cmd *cobra.Command, _ []string) error {
	res, err := a.first(cmd)
	if err != nil {
		return err
	}
	return render.Solution(cmd.OutOrStdout(), a.cfg.Format, res)
}

func (a *app) runDump(cmd *cobra.Command, _ []string) error {
	res, err := a.first(cmd)
	if err != nil {
		return err
	}
	return render.Dump(cmd.OutOrStdout(), a.cfg.Format, res)
}

func (a *app) runBatch(cmd *cobra.Command, _ []string) error {
	r, err := a.input(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	inputs, err := solve.ReadAll(r)
	if err != nil {
		return &solve.StageError{Stage: solve.StageRead, Err: err}
	}
	outcomes := solve.New(a.cfg.Decode).All(cmd.Context(), inputs, a.cfg.Workers)
	if err := render.Batch(cmd.OutOrStdout(), a.cfg.Format, outcomes); err != nil {
		return err
	}

	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d transmissions failed", failed, len(outcomes))
	}
	return nil
}

func (a *app) runEncode(cmd *cobra.Command, _ []string) error {
	r, err := a.input(cmd)
	if err != nil {
		return err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	n, err := render.ParseNode(data)
	if err != nil {
		return err
	}
	p, err := n.Packet()
	if err != nil {
		return err
	}
	if err := protocol.Validate(p); err != nil {
		return err
	}
	out, err := protocol.EncodeHex(p)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
	return err
}

func (a *app) runConfigInit(cmd *cobra.Command, _ []string) error {
	if err := config.WriteTemplate(a.outputPath, a.force); err != nil {
		return usageError{err}
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", a.outputPath)
	return err
}

// runConfigValidate relies on setup having loaded --config already.
func (a *app) runConfigValidate(cmd *cobra.Command, _ []string) error {
	if a.configPath == "" {
		return usageError{fmt.Errorf("--config is required")}
	}
	_, err := fmt.Fprintf(cmd.OutOrStdout(), "validated %s\n", a.configPath)
	return err
}
