// Copyright 2021 FerretDB Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command spilltool writes and dumps spill files.
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlekSi/pointer"
	"github.com/alecthomas/kong"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/FerretDB/docvalue/build/version"
	"github.com/FerretDB/docvalue/internal/sorter"
	"github.com/FerretDB/docvalue/internal/util/lazyerrors"
	"github.com/FerretDB/docvalue/internal/util/logging"
	"github.com/FerretDB/docvalue/internal/util/must"
)

// The cli struct represents all command-line commands, fields and flags.
// It's used for parsing the user input.
//
//nolint:lll // some tags are long
var cli struct {
	Version  kong.VersionFlag `help:"Print version to stdout and exit."`
	LogLevel string           `default:"info"  help:"${help_log_level}" enum:"${enum_log_level}"`
	Metrics  bool             `default:"false" help:"Dump Prometheus metrics to stderr on exit."`

	Write struct {
		File         string `arg:""          help:"Spill file path."                            type:"path"`
		Compression  string `default:"zstd"  help:"${help_compression}"                         enum:"${enum_compression}"`
		Level        int    `default:"0"     help:"Compression level; 0 means the default one."`
		BlockSize    int    `default:"65536" help:"Raw block size in bytes."`
		SkipMetadata bool   `default:"false" help:"Do not store metadata fields."`
	} `cmd:"" help:"Write extended JSON documents (one per line) from stdin to the spill file."`

	Dump struct {
		File      string `arg:""          help:"Spill file path."                                    type:"existingfile"`
		Metadata  bool   `default:"false" help:"Include metadata as $-prefixed fields."`
		Canonical bool   `default:"false" help:"Use canonical extended JSON instead of relaxed one."`
		Limit     int    `default:"0"     help:"Maximum number of documents to print; 0 means all."`
	} `cmd:"" help:"Print spill file documents to stdout as extended JSON, one per line."`
}

// Additional variables for the kong parsers.
var (
	logLevels = []string{
		zap.DebugLevel.String(),
		zap.InfoLevel.String(),
		zap.WarnLevel.String(),
		zap.ErrorLevel.String(),
	}

	compressions = []string{
		sorter.CompressionNone.String(),
		sorter.CompressionZstd.String(),
		sorter.CompressionLZ4.String(),
	}

	kongOptions = []kong.Option{
		kong.Vars{
			"enum_compression": strings.Join(compressions, ","),
			"enum_log_level":   strings.Join(logLevels, ","),

			"help_compression": fmt.Sprintf("Block compression: '%s'.", strings.Join(compressions, "', '")),
			"help_log_level":   fmt.Sprintf("Log level: '%s'.", strings.Join(logLevels, "', '")),

			"version": fmt.Sprintf("version: %s\ncommit: %s\ndirty: %t", version.Get().Version, version.Get().Commit, version.Get().Dirty),
		},
		kong.DefaultEnvars("SPILLTOOL"),
	}
)

func main() {
	kongCtx := kong.Parse(&cli, kongOptions...)

	level, err := zapcore.ParseLevel(cli.LogLevel)
	if err != nil {
		kongCtx.FatalIfErrorf(err)
	}

	logger := logging.Setup(level, false)

	if _, err = maxprocs.Set(maxprocs.Logger(logger.Sugar().Debugf)); err != nil {
		logger.Sugar().Warnf("Failed to set GOMAXPROCS: %s.", err)
	}

	var metrics *sorter.Metrics
	if cli.Metrics {
		metrics = sorter.NewMetrics()
		prometheus.DefaultRegisterer.MustRegister(metrics)
	}

	cmd := kongCtx.Command()
	logger.Debug("Running", zap.String("command", cmd))

	switch cmd {
	case "write <file>":
		err = runWrite(logger, metrics)
	case "dump <file>":
		err = runDump(logger, metrics)
	default:
		err = fmt.Errorf("unknown command: %s", cmd)
	}

	if cli.Metrics {
		dumpMetrics(os.Stderr, must.NotFail(prometheus.DefaultGatherer.Gather()))
	}

	if err != nil {
		logger.Fatal(
			"Failed",
			zap.String("command", cmd),
			zap.Error(err),
			zap.NamedError("cause", lazyerrors.UnwrapAll(err)),
		)
	}
}

// runWrite implements write command.
func runWrite(logger *zap.Logger, metrics *sorter.Metrics) (err error) {
	c, err := sorter.ParseCompression(cli.Write.Compression)
	if err != nil {
		return err
	}

	f, err := os.Create(cli.Write.File)
	if err != nil {
		return err
	}

	defer func() {
		if e := f.Close(); err == nil {
			err = e
		}
	}()

	n, err := writeSpill(os.Stdin, f, &sorter.WriterOpts{
		BlockSize:   cli.Write.BlockSize,
		Compression: c,
		Level:       pointer.ToIntOrNil(cli.Write.Level),
		Settings:    sorter.Settings{SkipMetadata: cli.Write.SkipMetadata},
		Logger:      logger.Named("spill"),
		Metrics:     metrics,
	})

	logger.Info("Documents written", zap.String("file", cli.Write.File), zap.Int("documents", n))

	return err
}

// runDump implements dump command.
func runDump(logger *zap.Logger, metrics *sorter.Metrics) error {
	f, err := os.Open(cli.Dump.File)
	if err != nil {
		return err
	}

	defer f.Close() //nolint:errcheck // read-only file

	opts := &dumpOpts{
		metadata:  cli.Dump.Metadata,
		canonical: cli.Dump.Canonical,
		limit:     cli.Dump.Limit,
	}

	ropts := &sorter.ReaderOpts{
		Logger:  logger.Named("spill"),
		Metrics: metrics,
	}

	n, err := dumpSpill(f, os.Stdout, opts, ropts)

	logger.Debug("Documents dumped", zap.String("file", cli.Dump.File), zap.Int("documents", n))

	return err
}

// dumpMetrics writes metric families to w in the text format.
func dumpMetrics(w io.Writer, mfs []*dto.MetricFamily) {
	for _, mf := range mfs {
		must.NotFail(expfmt.MetricFamilyToText(w, mf))
	}
}
