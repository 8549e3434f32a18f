// internal/engine/model/wrapper.go

// Package model owns the trainable dropout classifier and its lifecycle.
// When no fitted parameters are available the wrapper degrades to the
// deterministic rule-based estimate instead of failing.
package model

import (
	"context"
	"math"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"edurisk-engine/internal/common/config"
	"edurisk-engine/internal/common/errors"
	"edurisk-engine/internal/common/logger"
	"edurisk-engine/internal/common/metrics"
	"edurisk-engine/internal/engine/features"
	"edurisk-engine/internal/engine/rules"
	"edurisk-engine/internal/models"
)

// State is the wrapper lifecycle state.
type State int32

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateFallbackReady
)

func (s State) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFallbackReady:
		return "fallback-ready"
	default:
		return "unknown"
	}
}

// ParamStore persists fitted classifier parameters. Load returns (nil, nil)
// when no parameters have been saved yet.
type ParamStore interface {
	Load(ctx context.Context) (*Parameters, error)
	Save(ctx context.Context, params *Parameters) error
}

// Wrapper owns the classifier handle. Predict calls are safe concurrently:
// the active parameters are swapped atomically, never mutated in place, so
// readers during a training run keep the previous model.
type Wrapper struct {
	scorer  Scorer
	store   ParamStore
	cfg     config.TrainingConfig
	workers int
	logger  logger.Logger

	state  atomic.Int32
	params atomic.Pointer[Parameters]

	initMu  sync.Mutex
	trainMu sync.Mutex
}

// Scorer is the slice of the rule engine the wrapper depends on.
type Scorer interface {
	Score(p *models.StudentProfile, prev *models.RiskAssessment) (*models.RiskAssessment, error)
}

func NewWrapper(scorer Scorer, store ParamStore, cfg config.TrainingConfig, batchWorkers int, log logger.Logger) *Wrapper {
	if batchWorkers <= 0 {
		batchWorkers = 1
	}
	return &Wrapper{
		scorer:  scorer,
		store:   store,
		cfg:     cfg,
		workers: batchWorkers,
		logger:  log.WithFields(map[string]interface{}{"component": "model-wrapper"}),
	}
}

// State returns the current lifecycle state.
func (w *Wrapper) State() State {
	return State(w.state.Load())
}

// Init loads persisted parameters. It is idempotent: once the wrapper is
// Ready or FallbackReady further calls return immediately. A failed or
// empty load lands in FallbackReady, never in an error the caller must
// handle before predicting.
func (w *Wrapper) Init(ctx context.Context) {
	w.initMu.Lock()
	defer w.initMu.Unlock()

	switch w.State() {
	case StateReady, StateFallbackReady:
		return
	}
	w.state.Store(int32(StateLoading))

	if w.store == nil {
		w.logger.Warn("no parameter store configured, using rule-based fallback", nil)
		w.state.Store(int32(StateFallbackReady))
		return
	}

	params, err := w.store.Load(ctx)
	if err != nil {
		w.logger.WithError(err).Warn("model parameter load failed, using rule-based fallback", nil)
		w.state.Store(int32(StateFallbackReady))
		return
	}
	if params == nil || !params.valid() {
		w.logger.Info("no usable trained parameters, using rule-based fallback", nil)
		w.state.Store(int32(StateFallbackReady))
		return
	}

	w.params.Store(params)
	w.state.Store(int32(StateReady))
	w.logger.Info("model parameters loaded", map[string]interface{}{
		"version":   params.Version,
		"trainedAt": params.TrainedAt,
	})
}

// Predict returns the dropout prediction for one student. It only errors on
// invalid input; an unavailable or misbehaving model silently degrades to
// the rule-based estimate with Method "rule-based".
func (w *Wrapper) Predict(p *models.StudentProfile) (*models.DropoutPrediction, error) {
	assessment, err := w.scorer.Score(p, nil)
	if err != nil {
		return nil, err
	}

	vector := features.Extract(p)
	completeness := features.Completeness(vector)
	confidence := clamp(completeness*100, 0, 100)
	factors := rules.TopFactors(assessment.SubScores, 5)

	// Sparse profiles are still scored; the gap surfaces as low confidence.
	if completeness < 0.5 {
		w.logger.Warn("profile data incomplete", map[string]interface{}{
			"studentId":    p.StudentID,
			"completeness": completeness,
		})
	}

	if params := w.params.Load(); params != nil && w.State() == StateReady {
		probability := params.score(vector) * 100
		if !math.IsNaN(probability) && !math.IsInf(probability, 0) {
			metrics.PredictionsByMethod.WithLabelValues(models.MethodModel).Inc()
			return &models.DropoutPrediction{
				Probability: clamp(probability, 0, 100),
				Confidence:  confidence,
				Method:      models.MethodModel,
				Factors:     factors,
			}, nil
		}
		w.logger.Warn("model produced a non-finite probability, falling back", map[string]interface{}{
			"studentId": p.StudentID,
		})
	}

	metrics.PredictionsByMethod.WithLabelValues(models.MethodRuleBased).Inc()
	metrics.ModelFallbacks.Inc()
	return &models.DropoutPrediction{
		Probability: rules.DropoutProbability(assessment.SubScores),
		Confidence:  confidence,
		Method:      models.MethodRuleBased,
		Factors:     factors,
	}, nil
}

// PredictBatch runs independent per-student predictions concurrently.
// Failed entries are omitted, not aborted: one bad profile never affects
// the rest of the batch.
func (w *Wrapper) PredictBatch(profiles []*models.StudentProfile) []*models.DropoutPrediction {
	results := make([]*models.DropoutPrediction, len(profiles))

	sem := make(chan struct{}, w.workers)
	var wg sync.WaitGroup
	for i, p := range profiles {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, p *models.StudentProfile) {
			defer wg.Done()
			defer func() { <-sem }()

			pred, err := w.Predict(p)
			if err != nil {
				id := ""
				if p != nil {
					id = p.StudentID
				}
				w.logger.WithError(err).Warn("batch prediction skipped", map[string]interface{}{
					"studentId": id,
				})
				return
			}
			results[i] = pred
		}(i, p)
	}
	wg.Wait()

	out := make([]*models.DropoutPrediction, 0, len(profiles))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// Train fits the classifier on labeled outcomes, reserving a validation
// split, and atomically swaps the new parameters in on success. At most one
// training run may be in flight; a concurrent call is rejected immediately
// with TRAINING_IN_PROGRESS. Predictions issued during training keep using
// the previous parameters.
func (w *Wrapper) Train(ctx context.Context, samples []models.OutcomeSample) (*models.TrainingReport, error) {
	if !w.trainMu.TryLock() {
		return nil, errors.NewTrainingInProgressError()
	}
	defer w.trainMu.Unlock()

	if len(samples) < w.cfg.MinSamples {
		metrics.TrainingRuns.WithLabelValues("rejected").Inc()
		return nil, errors.NewInsufficientTrainingDataError(len(samples), w.cfg.MinSamples)
	}

	start := time.Now()

	train, validation := w.split(samples)

	params := &Parameters{
		Version:   time.Now().UTC().Format("20060102T150405Z"),
		TrainedAt: time.Now().UTC(),
	}

	var trace []float64
	prevLoss := math.Inf(1)
	stoppedEarly := false
	epochs := 0

	for epoch := 0; epoch < w.cfg.MaxEpochs; epoch++ {
		// Best-effort cooperative stop between epochs.
		if err := ctx.Err(); err != nil {
			metrics.TrainingRuns.WithLabelValues("canceled").Inc()
			return nil, err
		}

		loss := fitEpoch(params, train, w.cfg.LearningRate)
		trace = append(trace, loss)
		epochs = epoch + 1

		if math.Abs(prevLoss-loss) < w.cfg.EarlyStopDelta {
			stoppedEarly = true
			break
		}
		prevLoss = loss
	}

	accuracy, _ := evaluateSet(params, validation)
	finalLoss := trace[len(trace)-1]

	if w.store != nil {
		if err := w.store.Save(ctx, params); err != nil {
			metrics.TrainingRuns.WithLabelValues("persist_failed").Inc()
			return nil, errors.NewPersistenceError("save model parameters", err)
		}
	}

	// Swap, not in-place mutation: in-flight predictions never observe a
	// partially-updated model.
	w.params.Store(params)
	w.state.Store(int32(StateReady))

	duration := time.Since(start)
	metrics.TrainingRuns.WithLabelValues("success").Inc()
	metrics.TrainingDuration.Observe(duration.Seconds())

	report := &models.TrainingReport{
		SampleCount:     len(train),
		ValidationCount: len(validation),
		Epochs:          epochs,
		FinalLoss:       finalLoss,
		ValidationAcc:   accuracy,
		LossTrace:       trace,
		StoppedEarly:    stoppedEarly,
		Duration:        duration,
		TrainedAt:       params.TrainedAt,
	}

	w.logger.Info("training completed", map[string]interface{}{
		"samples":      report.SampleCount,
		"validation":   report.ValidationCount,
		"epochs":       report.Epochs,
		"finalLoss":    report.FinalLoss,
		"accuracy":     report.ValidationAcc,
		"stoppedEarly": report.StoppedEarly,
		"duration":     duration.String(),
	})

	return report, nil
}

// Evaluate measures the current model on a labeled test set. Read-only: it
// never touches the active parameters or lifecycle state.
func (w *Wrapper) Evaluate(samples []models.OutcomeSample) (*models.EvaluationReport, error) {
	params := w.params.Load()
	if params == nil {
		return nil, errors.NewModelUnavailableError("no trained parameters loaded")
	}

	set := toTrainSamples(samples)
	accuracy, loss := evaluateSet(params, set)

	return &models.EvaluationReport{
		Accuracy:    accuracy,
		Loss:        loss,
		SampleCount: len(set),
	}, nil
}

// split shuffles deterministically and reserves the configured validation
// fraction.
func (w *Wrapper) split(samples []models.OutcomeSample) (train, validation []trainSample) {
	all := toTrainSamples(samples)

	rng := rand.New(rand.NewSource(int64(len(all))))
	rng.Shuffle(len(all), func(i, j int) {
		all[i], all[j] = all[j], all[i]
	})

	holdout := int(float64(len(all)) * w.cfg.ValidationSplit)
	if holdout < 1 {
		holdout = 1
	}
	return all[holdout:], all[:holdout]
}

func toTrainSamples(samples []models.OutcomeSample) []trainSample {
	out := make([]trainSample, 0, len(samples))
	for _, s := range samples {
		label := 1.0
		if s.IsActive {
			label = 0
		}
		out = append(out, trainSample{
			vector: features.Extract(&s.Profile),
			label:  label,
		})
	}
	return out
}

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
