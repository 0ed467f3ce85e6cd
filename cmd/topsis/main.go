// Command topsis ranks the alternatives in a CSV file and writes the table,
// extended with Score and Rank columns, to a new CSV file.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/MikeSquared-Agency/Topsis/internal/config"
	"github.com/MikeSquared-Agency/Topsis/internal/tableio"
)

const usage = "Usage: topsis [-log-level level] <InputDataFile> <Weights> <Impacts> <OutputResultFile>"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("topsis", flag.ContinueOnError)
	fs.SetOutput(stderr)
	logLevel := fs.String("log-level", "warn", "diagnostic log level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintln(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 1
	}

	logger := config.NewLogger(config.LoggingConfig{Level: *logLevel, Format: "text"}, stderr)

	if fs.NArg() != 4 {
		fmt.Fprintln(stderr, usage)
		return 1
	}
	in, weights, impacts, out := fs.Arg(0), fs.Arg(1), fs.Arg(2), fs.Arg(3)

	logger.Debug("ranking", "input", in, "weights", weights, "impacts", impacts, "output", out)
	res, err := tableio.RunFile(in, weights, impacts, out)
	if err != nil {
		logger.Debug("ranking failed", "error", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	logger.Info("ranking complete", "alternatives", len(res.Scores), "best", res.Best())

	fmt.Fprintf(stdout, "Result written to %s\n", out)
	return 0
}
