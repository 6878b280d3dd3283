// Консольная утилита редактора: загружает HTML-документ в дерево, применяет к нему форматирование
// (флагами или Lua-скриптом), проверяет операции скриптом правил и выводит результат.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aisa-it/redactor.go/internal/redactor/blot"
	"github.com/aisa-it/redactor.go/internal/redactor/config"
	"github.com/aisa-it/redactor.go/internal/redactor/editor"
	"github.com/aisa-it/redactor.go/internal/redactor/formats"
	"github.com/aisa-it/redactor.go/internal/redactor/metrics"
	policy "github.com/aisa-it/redactor.go/internal/redactor/redactor-policy"
	"github.com/aisa-it/redactor.go/internal/redactor/rules"
	stack_error "github.com/aisa-it/redactor.go/internal/redactor/stack-error"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/html"
)

var version string = "DEV"

var minifier *minify.M = minify.New()

func init() {
	minifier.AddFunc("text/html", html.Minify)
}

// main читает документ, применяет операции и печатает HTML.
//
// Пример запуска: redactor -in doc.html -format 0:5:bold=true -format 0:1:header=2 -sanitize -outline
func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		slog.Error("Read config", "err", err)
		os.Exit(1)
	}

	var ops formatOps
	in := flag.String("in", "", "Input HTML file, stdin if empty")
	script := flag.String("script", "", "Lua script editing the document through the doc table")
	flag.Var(&ops, "format", "Format operation index:length:name=value, may be repeated")
	flag.StringVar(&cfg.RulesScript, "rules", cfg.RulesScript, "Lua rules script with BeforeFormat")
	flag.IntVar(&cfg.MaxOptimize, "maxOptimize", cfg.MaxOptimize, "Optimize pass limit per operation")
	flag.BoolVar(&cfg.Sanitize, "sanitize", cfg.Sanitize, "Sanitize output with the registry policy")
	flag.BoolVar(&cfg.Minify, "minify", cfg.Minify, "Minify output HTML")
	flag.BoolVar(&cfg.Trace, "trace", cfg.Trace, "Verbose logs")
	text := flag.Bool("text", false, "Print plain text instead of HTML")
	outline := flag.Bool("outline", false, "Print document lines with their formats as JSON")
	dumpMetrics := flag.Bool("metrics", false, "Dump collected metrics to stderr")
	flag.Parse()

	if cfg.Trace {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}
	if version != "DEV" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{})))
	}

	if err := config.Validate(cfg); err != nil {
		slog.Error("Invalid config", "err", err)
		os.Exit(1)
	}

	promRegistry := prometheus.NewRegistry()
	if err := metrics.Register(promRegistry); err != nil {
		slog.Error("Register metrics", "err", err)
		os.Exit(1)
	}

	if err := run(cfg, *in, *script, ops, *text, *outline, os.Stdout); err != nil {
		stack_error.LogError(err)
		os.Exit(1)
	}

	if *dumpMetrics {
		if err := writeMetrics(os.Stderr, promRegistry); err != nil {
			slog.Error("Dump metrics", "err", err)
		}
	}
}

func run(cfg *config.Config, in, script string, ops formatOps, text, outline bool, out io.Writer) error {
	var src io.Reader = os.Stdin
	if in != "" {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		defer f.Close()
		src = f
	}

	reg, err := formats.NewRegistry()
	if err != nil {
		return err
	}

	opts := []blot.ScrollOption{blot.WithMaxOptimizeIterations(cfg.MaxOptimize)}
	var engine *rules.Engine
	if cfg.RulesScript != "" {
		engine, err = rules.Load(cfg.RulesScript, rules.WithTimeout(cfg.RulesTimeoutDuration()))
		if err != nil {
			return err
		}
		opts = append(opts, blot.WithFormatHook(engine))
	}

	s, err := editor.ParseDocument(src, reg, opts...)
	if err != nil {
		return err
	}
	defer s.Close()
	slog.Debug("Document loaded", "scroll", s.ID().String(), "length", s.Length())

	for _, op := range ops {
		if err := s.FormatAt(op.Index, op.Length, op.Name, op.Value); err != nil {
			return stack_error.TrackErrorStack(err).AddContext("op", op.String())
		}
	}

	if script != "" {
		data, err := os.ReadFile(script)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.RulesTimeoutDuration())
		defer cancel()
		messages, err := rules.Run(ctx, s, string(data))
		for _, m := range messages {
			slog.Info("Script output", "msg", m.Msg, "time", m.Time.Format(time.RFC3339Nano))
		}
		if err != nil {
			return err
		}
	}

	if engine != nil {
		for _, l := range engine.Logs() {
			slog.Info("Rules log", "type", l.Type, "code", l.Code, "msg", l.Msg)
		}
	}

	res, err := editor.RenderString(s)
	if err != nil {
		return err
	}
	if cfg.Sanitize {
		res = policy.Sanitize(reg, res)
	}
	if cfg.Minify {
		if res, err = minifier.String("text/html", res); err != nil {
			return err
		}
	}
	if text {
		res = policy.PlainText(res)
	}
	if _, err := fmt.Fprintln(out, res); err != nil {
		return err
	}

	if outline {
		enc := json.NewEncoder(out)
		for _, line := range editor.Outline(s) {
			if err := enc.Encode(line); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
