package calc

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"mathcalc/api/internal/util"
)

// Engine is the remote multimodal model.
type Engine interface {
	Name() string
	Generate(ctx context.Context, prompt string, img Image) (string, error)
	Ping(ctx context.Context) error
}

type AnalyzerOptions struct {
	// Strict turns an unparsable response or an empty record list into an
	// error. When false both yield an empty result.
	Strict  bool
	Timeout time.Duration
}

type Analyzer struct {
	engine     Engine
	log        *zap.Logger
	opts       AnalyzerOptions
	strategies []Strategy
}

func NewAnalyzer(engine Engine, log *zap.Logger, opts AnalyzerOptions) *Analyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Analyzer{
		engine:     engine,
		log:        log.Named("analyzer"),
		opts:       opts,
		strategies: DefaultStrategies(),
	}
}

func (a *Analyzer) Engine() Engine { return a.engine }

// Analyze sends the image and variables to the model and returns the records
// it could recover from the answer.
func (a *Analyzer) Analyze(ctx context.Context, img Image, vars Variables) ([]ResultRecord, error) {
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("%w: image is empty", ErrInvalidInput)
	}
	if err := vars.Validate(); err != nil {
		return nil, err
	}
	prompt, err := BuildPrompt(vars)
	if err != nil {
		return nil, err
	}

	if a.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.opts.Timeout)
		defer cancel()
	}

	sugar := a.log.Sugar()
	start := time.Now()
	raw, err := a.engine.Generate(ctx, prompt, img)
	if err != nil {
		if !errors.Is(err, ErrModelUnavailable) && !errors.Is(err, ErrEmptyModelResponse) {
			err = fmt.Errorf("%w: %s: %w", ErrModelUnavailable, a.engine.Name(), err)
		}
		return nil, &AnalysisError{Cause: err}
	}
	if strings.TrimSpace(raw) == "" {
		return nil, &AnalysisError{Cause: fmt.Errorf("%w: %s", ErrEmptyModelResponse, a.engine.Name())}
	}
	sugar.Debugw("model response",
		"engine", a.engine.Name(),
		"elapsed", time.Since(start),
		"raw", util.Truncate(raw, 2000),
	)

	outcome, err := ParseResponse(CleanResponse(raw), a.strategies)
	if err != nil {
		if !a.opts.Strict {
			sugar.Warnw("model response not parsable, returning no records", "error", err)
			return []ResultRecord{}, nil
		}
		return nil, &AnalysisError{Cause: err}
	}

	records := Normalize(outcome.Value)
	if len(records) == 0 && a.opts.Strict {
		return nil, &AnalysisError{Cause: fmt.Errorf("%w (parsed by %s)", ErrNoValidRecords, outcome.Strategy)}
	}
	sugar.Debugw("model response parsed",
		"strategy", outcome.Strategy,
		"records", len(records),
	)
	return records, nil
}
