package prediction

import "github.com/goliatone/go-workforce-insights/pkg/employee"

// Service identifies one of the three remote prediction services.
type Service string

const (
	ServiceLogisticRegression Service = "assignment1"
	ServiceRandomForest       Service = "assignment2"
	ServiceProductivity       Service = "assignment3"
)

// Services lists every service in display order.
func Services() []Service {
	return []Service{ServiceLogisticRegression, ServiceRandomForest, ServiceProductivity}
}

// Label returns the human-readable name used in status badges.
func (s Service) Label() string {
	switch s {
	case ServiceLogisticRegression:
		return "Assignment 1"
	case ServiceRandomForest:
		return "Assignment 2"
	case ServiceProductivity:
		return "Assignment 3"
	default:
		return string(s)
	}
}

// Title returns the heading of the panel rendering the service result.
func (s Service) Title() string {
	switch s {
	case ServiceLogisticRegression:
		return "Assignment 1: Logistic Regression Model"
	case ServiceRandomForest:
		return "Assignment 2: Random Forest Model"
	case ServiceProductivity:
		return "Productivity Prediction Result"
	default:
		return string(s)
	}
}

// Valid reports whether s names a known service.
func (s Service) Valid() bool {
	switch s {
	case ServiceLogisticRegression, ServiceRandomForest, ServiceProductivity:
		return true
	}
	return false
}

// Action levels returned by the logistic regression service.
const (
	ActionHighRisk = "HIGH_RISK"
	ActionLowRisk  = "LOW_RISK"
)

// Risk levels returned by the random forest service.
const (
	RiskHighActionRequired = "HIGH_RISK_ACTION_REQUIRED"
	RiskLowMonitor         = "LOW_RISK_MONITOR"
)

// LogisticRegression is the response of the logistic regression service. The
// service echoes the submitted record in InputData.
type LogisticRegression struct {
	InputData              *employee.Data `json:"input_data,omitempty"`
	ProbabilityOfAttrition float64        `json:"probability_of_attrition"`
	RecommendedActionLevel string         `json:"recommended_action_level"`
	PredictionBinary       int            `json:"logreg_prediction_binary"`
}

// RandomForest is the response of the random forest service.
type RandomForest struct {
	ProbabilityOfAttrition float64 `json:"probability_of_attrition"`
	RecommendedRiskLevel   string  `json:"recommended_risk_level"`
	BinaryPrediction       int     `json:"binary_prediction"`
}

// Productivity is the response of the productivity service. Engineered
// features are open-ended and rendered by name.
type Productivity struct {
	PredictedProductivityScore float64            `json:"predicted_productivity_score"`
	EngineeredFeatures         map[string]float64 `json:"engineered_features"`
}

// Attrition pairs the two attrition results. Both are set or neither is.
type Attrition struct {
	LogisticRegression LogisticRegression `json:"assignment1"`
	RandomForest       RandomForest       `json:"assignment2"`
}
