// internal/engine/model/logistic.go
package model

import (
	"math"
	"time"

	"edurisk-engine/internal/engine/features"
)

// Parameters are the fitted classifier weights. They round-trip through the
// ParamStore as JSON; the feature order in features.Vector is part of this
// contract.
type Parameters struct {
	Weights   [features.Dim]float64 `json:"weights"`
	Bias      float64               `json:"bias"`
	Version   string                `json:"version"`
	TrainedAt time.Time             `json:"trainedAt"`
}

// score returns the dropout probability in [0,1] for a feature vector.
func (p *Parameters) score(v features.Vector) float64 {
	z := p.Bias
	for i := range v {
		z += p.Weights[i] * v[i]
	}
	return sigmoid(z)
}

// valid reports whether the parameters produce finite outputs.
func (p *Parameters) valid() bool {
	if math.IsNaN(p.Bias) || math.IsInf(p.Bias, 0) {
		return false
	}
	for _, w := range p.Weights {
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return false
		}
	}
	return true
}

// trainSample is one labeled feature vector; label 1 means dropout.
type trainSample struct {
	vector features.Vector
	label  float64
}

// fitEpoch runs one full-batch gradient descent step and returns the mean
// cross-entropy loss before the update.
func fitEpoch(p *Parameters, samples []trainSample, learningRate float64) float64 {
	n := float64(len(samples))

	var gradW [features.Dim]float64
	gradB := 0.0
	loss := 0.0

	for _, s := range samples {
		pred := p.score(s.vector)
		loss += crossEntropy(pred, s.label)

		diff := pred - s.label
		for i := range s.vector {
			gradW[i] += diff * s.vector[i]
		}
		gradB += diff
	}

	for i := range gradW {
		p.Weights[i] -= learningRate * gradW[i] / n
	}
	p.Bias -= learningRate * gradB / n

	return loss / n
}

// evaluateSet returns accuracy (0.5 decision boundary) and mean loss.
func evaluateSet(p *Parameters, samples []trainSample) (accuracy, loss float64) {
	if len(samples) == 0 {
		return 0, 0
	}
	correct := 0
	for _, s := range samples {
		pred := p.score(s.vector)
		loss += crossEntropy(pred, s.label)
		predicted := 0.0
		if pred >= 0.5 {
			predicted = 1
		}
		if predicted == s.label {
			correct++
		}
	}
	return float64(correct) / float64(len(samples)), loss / float64(len(samples))
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

// crossEntropy with predictions nudged away from 0 and 1 to keep the log
// finite.
func crossEntropy(pred, label float64) float64 {
	const eps = 1e-12
	pred = math.Min(math.Max(pred, eps), 1-eps)
	return -(label*math.Log(pred) + (1-label)*math.Log(1-pred))
}
