// internal/engine/engine.go

// Package engine is the risk assessment facade: it turns student profiles
// into explainable risk assessments, dropout predictions and intervention
// effectiveness estimates. The engine itself is side-effect free with
// respect to storage; callers persist what it returns.
package engine

import (
	"context"
	"sync"
	"time"

	"edurisk-engine/internal/common/config"
	"edurisk-engine/internal/common/errors"
	"edurisk-engine/internal/common/logger"
	"edurisk-engine/internal/common/metrics"
	"edurisk-engine/internal/engine/history"
	"edurisk-engine/internal/engine/intervention"
	"edurisk-engine/internal/engine/model"
	"edurisk-engine/internal/engine/rules"
	"edurisk-engine/internal/models"
)

// ProfileSource reads student profiles from the records collaborator.
type ProfileSource interface {
	Profile(ctx context.Context, studentID string) (*models.StudentProfile, error)
	StudentIDs(ctx context.Context) ([]string, error)
}

// InterventionSource reads completed interventions with known outcomes.
type InterventionSource interface {
	CompletedByType(ctx context.Context, interventionType string) ([]models.CompletedIntervention, error)
}

// OutcomeSource reads historical (profile, outcome) pairs for training.
type OutcomeSource interface {
	TrainingOutcomes(ctx context.Context) ([]models.OutcomeSample, error)
}

// AssessmentHistory reads the latest persisted assessment per student.
// Implementations return (nil, nil) when a student has no history yet.
type AssessmentHistory interface {
	LatestAssessment(ctx context.Context, studentID string) (*models.RiskAssessment, error)
}

// Engine wires the scorer, model wrapper, estimator and trend tracker into
// the caller-facing operations.
type Engine struct {
	profiles      ProfileSource
	interventions InterventionSource
	outcomes      OutcomeSource
	assessments   AssessmentHistory

	scorer    *rules.Scorer
	wrapper   *model.Wrapper
	estimator *intervention.Estimator
	tracker   *history.Tracker

	workers int
	logger  logger.Logger
}

type Deps struct {
	Profiles      ProfileSource
	Interventions InterventionSource
	Outcomes      OutcomeSource
	Assessments   AssessmentHistory
	ParamStore    model.ParamStore
}

// New constructs the engine and all its components from configuration.
// The model wrapper starts Unloaded; call Init before serving predictions.
func New(cfg *config.Config, deps Deps, log logger.Logger) *Engine {
	scorer := rules.NewScorer(rules.DefaultThresholds(cfg.Engine), log)
	wrapper := model.NewWrapper(scorer, deps.ParamStore, cfg.Training, cfg.Engine.BatchWorkers, log)

	return &Engine{
		profiles:      deps.Profiles,
		interventions: deps.Interventions,
		outcomes:      deps.Outcomes,
		assessments:   deps.Assessments,
		scorer:        scorer,
		wrapper:       wrapper,
		estimator:     intervention.NewEstimator(cfg.Engine.SimilarityThreshold, log),
		tracker:       history.NewTracker(cfg.Engine.TrendTolerance),
		workers:       cfg.Engine.BatchWorkers,
		logger:        log.WithFields(map[string]interface{}{"component": "risk-engine"}),
	}
}

// Init brings the predictive model to a servable state. Idempotent; a
// failed model load leaves the engine fully functional on the rule-based
// path.
func (e *Engine) Init(ctx context.Context) {
	e.wrapper.Init(ctx)
}

// ModelState reports the model wrapper lifecycle state, for health surfaces.
func (e *Engine) ModelState() model.State {
	return e.wrapper.State()
}

// Assess computes a full risk assessment for one student: rule-based score,
// dropout prediction, recommendations and trend versus the prior record.
func (e *Engine) Assess(ctx context.Context, studentID string) (*models.RiskAssessment, error) {
	start := time.Now()

	profile, err := e.profiles.Profile(ctx, studentID)
	if err != nil {
		metrics.AssessmentsFailed.WithLabelValues(string(errors.CodeOf(err))).Inc()
		return nil, err
	}
	if profile == nil {
		metrics.AssessmentsFailed.WithLabelValues(string(errors.ErrCodeStudentNotFound)).Inc()
		return nil, errors.NewStudentNotFoundError(studentID)
	}

	previous := e.previousAssessment(ctx, studentID)

	assessment, err := e.scorer.Score(profile, previous)
	if err != nil {
		metrics.AssessmentsFailed.WithLabelValues(string(errors.CodeOf(err))).Inc()
		return nil, err
	}

	// The scorer validated the profile, so prediction cannot fail here;
	// keep the check anyway so a future validation split stays safe.
	prediction, err := e.wrapper.Predict(profile)
	if err != nil {
		metrics.AssessmentsFailed.WithLabelValues(string(errors.CodeOf(err))).Inc()
		return nil, err
	}
	assessment.Prediction = prediction

	e.tracker.AttachTrend(assessment, previous)

	metrics.AssessmentsComputed.WithLabelValues(string(assessment.RiskLevel)).Inc()
	metrics.AssessmentDuration.WithLabelValues("single").Observe(time.Since(start).Seconds())

	e.logger.Info("student assessed", map[string]interface{}{
		"studentId": studentID,
		"score":     assessment.TotalRiskScore,
		"level":     assessment.RiskLevel,
		"method":    prediction.Method,
		"trend":     assessment.RiskTrend,
	})

	return assessment, nil
}

// AssessBatch assesses students concurrently. Entries that fail, including
// invalid profiles, are omitted from the result; the rest succeed.
func (e *Engine) AssessBatch(ctx context.Context, studentIDs []string) []*models.RiskAssessment {
	results := make([]*models.RiskAssessment, len(studentIDs))

	sem := make(chan struct{}, e.workers)
	var wg sync.WaitGroup
	for i, id := range studentIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, id string) {
			defer wg.Done()
			defer func() { <-sem }()

			assessment, err := e.Assess(ctx, id)
			if err != nil {
				e.logger.WithError(err).Warn("batch assessment skipped", map[string]interface{}{
					"studentId": id,
				})
				return
			}
			results[i] = assessment
		}(i, id)
	}
	wg.Wait()

	out := make([]*models.RiskAssessment, 0, len(studentIDs))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// EstimateIntervention estimates how effective an intervention type would be
// for a student, based on outcomes of similar historical cases.
func (e *Engine) EstimateIntervention(ctx context.Context, studentID, interventionType string) (*models.InterventionEstimate, error) {
	profile, err := e.profiles.Profile(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, errors.NewStudentNotFoundError(studentID)
	}

	completed, err := e.interventions.CompletedByType(ctx, interventionType)
	if err != nil {
		// Degraded but successful: no history behaves like empty history.
		e.logger.WithError(err).Warn("intervention history unavailable", map[string]interface{}{
			"type": interventionType,
		})
		completed = nil
	}

	return e.estimator.EstimateEffectiveness(profile, interventionType, completed)
}

// TrainModel fits the dropout classifier on the historical outcomes feed.
// Administrative operation: heavy, explicitly invoked, never part of the
// request-serving path.
func (e *Engine) TrainModel(ctx context.Context) (*models.TrainingReport, error) {
	samples, err := e.outcomes.TrainingOutcomes(ctx)
	if err != nil {
		return nil, err
	}
	return e.wrapper.Train(ctx, samples)
}

// EvaluateModel measures the current classifier on the outcomes feed
// without touching model state.
func (e *Engine) EvaluateModel(ctx context.Context) (*models.EvaluationReport, error) {
	samples, err := e.outcomes.TrainingOutcomes(ctx)
	if err != nil {
		return nil, err
	}
	return e.wrapper.Evaluate(samples)
}

// previousAssessment reads the prior record if any. History being
// unavailable degrades to a trend-less assessment, not a failure.
func (e *Engine) previousAssessment(ctx context.Context, studentID string) *models.RiskAssessment {
	if e.assessments == nil {
		return nil
	}
	previous, err := e.assessments.LatestAssessment(ctx, studentID)
	if err != nil {
		e.logger.WithError(err).Warn("previous assessment lookup failed", map[string]interface{}{
			"studentId": studentID,
		})
		return nil
	}
	return previous
}
