// internal/models/training.go
package models

import "time"

// OutcomeSample is one historical (profile, outcome) pair used for training
// and evaluation. IsActive false means the student dropped out.
type OutcomeSample struct {
	Profile  StudentProfile `json:"profile"`
	IsActive bool           `json:"isActive"`
}

// TrainingReport summarizes one completed training run.
type TrainingReport struct {
	SampleCount     int           `json:"sampleCount"`
	ValidationCount int           `json:"validationCount"`
	Epochs          int           `json:"epochs"`
	FinalLoss       float64       `json:"finalLoss"`
	ValidationAcc   float64       `json:"validationAccuracy"`
	LossTrace       []float64     `json:"lossTrace,omitempty"`
	StoppedEarly    bool          `json:"stoppedEarly"`
	Duration        time.Duration `json:"duration"`
	TrainedAt       time.Time     `json:"trainedAt"`
}

// EvaluationReport summarizes a read-only evaluation pass.
type EvaluationReport struct {
	Accuracy    float64 `json:"accuracy"`
	Loss        float64 `json:"loss"`
	SampleCount int     `json:"sampleCount"`
}
