package types

// JDConfidence carries the top classifier scores of a parsed job description.
type JDConfidence struct {
	Role       float64 `json:"role"`
	Experience float64 `json:"experience"`
}

// JDResult is the structured view of a job description.
type JDResult struct {
	Skills     []string     `json:"skills"`
	Role       string       `json:"role"`
	Experience string       `json:"experience"`
	Confidence JDConfidence `json:"confidence"`
}

// Question is one multiple-choice question. Answer indexes Options.
type Question struct {
	Prompt  string   `json:"question"`
	Options []string `json:"options"`
	Answer  int      `json:"answer"`
}

// QuestionSet is the validated generator output plus the raw text it came from.
type QuestionSet struct {
	Skill      string     `json:"skill"`
	Difficulty string     `json:"difficulty"`
	Questions  []Question `json:"questions"`
	Raw        string     `json:"raw"`
}

// GradeResult scores a candidate answer out of 10.
type GradeResult struct {
	Score       float64 `json:"score"`
	Similarity  float64 `json:"similarity"`
	Explanation string  `json:"explanation"`
}

// Plagiarism flags.
const (
	FlagHighRisk = "high_risk"
	FlagLowRisk  = "low_risk"
)

// PlagiarismResult reports the most similar pair among the submitted texts.
type PlagiarismResult struct {
	Similarity float64 `json:"similarity"`
	Flag       string  `json:"flag"`
	// Indices of the most similar pair.
	Pair [2]int `json:"pair"`
}

// Anomaly risk labels.
const (
	RiskHigh = "high"
	RiskLow  = "low"
)

// AnomalyResult classifies a feature vector against the baseline.
type AnomalyResult struct {
	Risk  string  `json:"risk"`
	Score float64 `json:"score"`
}
