package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/piwi3910/LayCut/internal/config"
	"github.com/piwi3910/LayCut/internal/engine"
	"github.com/piwi3910/LayCut/internal/export"
	"github.com/piwi3910/LayCut/internal/importer"
	"github.com/piwi3910/LayCut/internal/model"
	"github.com/piwi3910/LayCut/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// skipConfigLoad marks commands that must run even when the config file is
// unreadable.
const skipConfigLoad = "laycut/skip-config-load"

// cli holds global flag values and the state built in PersistentPreRunE.
type cli struct {
	configPath string
	verbose    bool

	cfg    config.Config
	logger *zap.Logger
}

// planFlags are shared by the plan and compare commands.
type planFlags struct {
	orders    string
	maxBlocks int
	maxStack  int
	priority  string
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.orders, "orders", "o", "", "Order sheet (.csv, .xlsx or .json)")
	cmd.Flags().IntVar(&f.maxBlocks, "max-blocks", 0, "Maximum marker blocks per cut")
	cmd.Flags().IntVar(&f.maxStack, "max-stack", 0, "Maximum cloth layers per cut")
	cmd.Flags().StringVar(&f.priority, "priority", "", "Optimization priority: min-waste or min-cuts (default from config)")
	_ = cmd.MarkFlagRequired("orders")
	_ = cmd.MarkFlagRequired("max-blocks")
	_ = cmd.MarkFlagRequired("max-stack")
}

func (f *planFlags) request(log *zap.Logger) (model.PlanRequest, error) {
	result := importer.ImportFile(f.orders)
	for _, w := range result.Warnings {
		log.Warn("Order import warning", zap.String("file", f.orders), zap.String("warning", w))
	}
	if !result.OK() {
		if len(result.Errors) == 0 {
			return model.PlanRequest{}, fmt.Errorf("no orders found in %s", f.orders)
		}
		return model.PlanRequest{}, fmt.Errorf("failed to import %s: %s", f.orders, strings.Join(result.Errors, "; "))
	}
	return model.PlanRequest{
		Orders:           result.Orders,
		MaxBlocksPerCut:  f.maxBlocks,
		MaxStackingCloth: f.maxStack,
		Priority:         model.Priority(f.priority),
	}, nil
}

func newRootCmd() *cobra.Command {
	app := &cli{}

	root := &cobra.Command{
		Use:   "laycut",
		Short: "LayCut - garment cutting lay planner",
		Long: `LayCut plans the cuts needed to fulfil a garment size-run order.

Each cut stacks cloth layers on the cutting table and lays out marker blocks,
one block per garment of a size per layer. LayCut chooses the stack height and
block allocation of every cut so that the whole order is produced within the
table's block and stacking limits, with as little excess as possible.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if cmd.Annotations[skipConfigLoad] == "" {
				var err error
				if cfg, err = config.Load(app.configPath); err != nil {
					return err
				}
			}
			app.cfg = cfg

			zc, err := cfg.ZapConfig(app.verbose)
			if err != nil {
				return err
			}
			app.logger, err = zc.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app.logger != nil {
				_ = app.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&app.configPath, "config", "c", config.DefaultConfigPath(), "Config file")
	root.PersistentFlags().BoolVarP(&app.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(newServeCmd(app))
	root.AddCommand(newPlanCmd(app))
	root.AddCommand(newCompareCmd(app))
	root.AddCommand(newConfigCmd(app))
	return root
}

func newServeCmd(app *cli) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return server.New(cfg, app.logger).Run(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func newPlanCmd(app *cli) *cobra.Command {
	var (
		flags                       planFlags
		pdfOut, xlsxOut, ticketsOut string
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Compute a cutting plan and print it as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(app.logger)
			if err != nil {
				return err
			}
			opt := engine.New(app.cfg.ApplyToSettings(model.DefaultSettings()))
			plan, err := opt.Plan(req)
			if err != nil {
				return err
			}
			app.logger.Info("Cutting plan computed",
				zap.String("plan_id", plan.PlanID),
				zap.String("priority", string(plan.Priority)),
				zap.Int("cuts", plan.TotalCuts),
				zap.Int("waste", plan.TotalWaste))

			exports := []struct {
				path  string
				write func(string, model.PlanResponse) error
			}{
				{pdfOut, export.ExportPDF},
				{xlsxOut, export.ExportXLSX},
				{ticketsOut, export.ExportTickets},
			}
			for _, e := range exports {
				if e.path == "" {
					continue
				}
				path := app.cfg.ExportPath(e.path)
				if err := e.write(path, plan); err != nil {
					return err
				}
				app.logger.Info("Export written", zap.String("path", path))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(plan)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&pdfOut, "pdf", "", "Write the plan report PDF to this file")
	cmd.Flags().StringVar(&xlsxOut, "xlsx", "", "Write the plan workbook to this file")
	cmd.Flags().StringVar(&ticketsOut, "tickets", "", "Write bundle tickets PDF to this file")
	return cmd
}

func newCompareCmd(app *cli) *cobra.Command {
	var flags planFlags
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the plan against what-if scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(app.logger)
			if err != nil {
				return err
			}
			settings := app.cfg.ApplyToSettings(model.DefaultSettings()).WithPriority(req.Priority)
			results, err := engine.CompareScenarios(engine.BuildDefaultScenarios(settings, req.Constraints()), req.Orders)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "SCENARIO\tCUTS\tWASTE\tCLOTH EFF %\tBLOCK UTIL %\tSTACK UTIL %")
			for _, r := range results {
				fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", r.Scenario.Name, r.TotalCuts, r.TotalWaste,
					r.ClothEfficiencyPercent, r.BlockUtilization, r.StackUtilization)
			}
			return tw.Flush()
		},
	}
	flags.register(cmd)
	return cmd
}

func newConfigCmd(app *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:         "init [path]",
		Short:       "Write a default configuration file",
		Args:        cobra.MaximumNArgs(1),
		Annotations: map[string]string{skipConfigLoad: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Save(path, config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing file")
	cmd.AddCommand(initCmd)
	return cmd
}
