package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/qiotoolkit/qiotoolkit/config"
	internalsignal "github.com/qiotoolkit/qiotoolkit/internal/signal"
	"github.com/qiotoolkit/qiotoolkit/qerrors"
	"github.com/qiotoolkit/qiotoolkit/runner"
	"github.com/qiotoolkit/qiotoolkit/telemetry"
)

var (
	paramFile         string
	target            string
	inputDataURI      string
	seed              int64
	stepLimit         int64
	costLimit         float64
	hasCostLimit      bool
	timeLimitSeconds  float64
	numberOfSolutions int
	maxMemoryBytes    int64
)

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Run a solver against a problem document",
	RunE: func(cmd *cobra.Command, args []string) error {
		defer internalsignal.RecoverFPE()

		doc, err := loadDocument()
		if err != nil {
			return emitAndReturn(err)
		}
		if err := doc.Validate(); err != nil {
			return emitAndReturn(err)
		}

		clock := telemetry.NewClock(telemetry.Limits{})
		watcher := internalsignal.NewWatcher(clock, func() string {
			return fmt.Sprintf("running target=%s elapsed=%s", doc.Target, clock.Elapsed())
		})
		go watcher.Run()
		defer watcher.Close()

		logrus.Infof("solving %s with target=%s seed=%d", doc.InputDataURI, doc.Target, doc.Params.Seed)
		result, err := runner.Run(doc)
		if err != nil {
			return emitAndReturn(err)
		}

		logrus.Infof("best cost: %v", result.BestCost)
		result.Telemetry.Print()
		return nil
	},
}

// loadDocument builds a config.Document either from --params (a YAML
// parameter document, spec §6) or from the individual --target/--input
// flags, letting a short CLI invocation skip writing a document to disk.
func loadDocument() (*config.Document, error) {
	if paramFile != "" {
		return config.LoadDocument(paramFile)
	}
	doc := &config.Document{
		Target:       target,
		InputDataURI: inputDataURI,
		Params: config.Params{
			Seed:              seed,
			StepLimit:         stepLimit,
			NumberOfSolutions: numberOfSolutions,
			TimeLimitSeconds:  timeLimitSeconds,
			MaxMemoryBytes:    maxMemoryBytes,
		},
	}
	if hasCostLimit {
		doc.Params.CostLimit = &costLimit
	}
	return doc, nil
}

// emitAndReturn prints the "_QTK<code>" tagged line for user errors (spec
// §6/§7) before returning the error to Cobra for the non-zero exit.
func emitAndReturn(err error) error {
	if qerr, ok := err.(*qerrors.Error); ok {
		if qerrors.IsUserError(qerr.Kind) {
			fmt.Fprintln(os.Stderr, qerrors.Tag(qerr))
		} else {
			logrus.WithError(qerr).Error("runtime error")
		}
	}
	return err
}

func init() {
	solveCmd.Flags().StringVar(&paramFile, "params", "", "Path to a YAML parameter document")
	solveCmd.Flags().StringVar(&target, "target", "", "Solver identifier, e.g. simulatedannealing.qiotoolkit")
	solveCmd.Flags().StringVar(&inputDataURI, "input", "", "Path to a JSON problem document")
	solveCmd.Flags().Int64Var(&seed, "seed", 0, "RNG seed")
	solveCmd.Flags().Int64Var(&stepLimit, "step-limit", 1000, "Max macro-steps")
	solveCmd.Flags().Float64Var(&costLimit, "cost-limit", 0, "Early stop once best cost reaches this value")
	solveCmd.Flags().BoolVar(&hasCostLimit, "cost-limit-set", false, "Set to enable --cost-limit (zero is a valid target cost)")
	solveCmd.Flags().Float64Var(&timeLimitSeconds, "time-limit", 0, "Wall-clock time limit in seconds")
	solveCmd.Flags().IntVar(&numberOfSolutions, "number-of-solutions", 1, "Number of distinct best solutions to report (1-1000)")
	solveCmd.Flags().Int64Var(&maxMemoryBytes, "max-memory-bytes", 0, "Reject (and retry compact where possible) models estimated to exceed this many bytes; 0 disables the check")
}
