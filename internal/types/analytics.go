package types

type (
	// One finalized grade as seen by analytics
	GradeSample struct {
		// Optional, feeds the confidence buckets
		Confidence *float64 `json:"confidence,omitempty"`
		StudentID  string   `json:"student_id"`
		Score      float64  `json:"score"`
	}

	Outlier struct {
		StudentID string  `json:"student_id"`
		Score     float64 `json:"score"`
		// Score minus the mean
		Deviation float64 `json:"deviation"`
		// Distance from the centre in units of the spread estimate used for detection
		ZScore float64 `json:"z_score"`
	}

	ConfidenceBuckets struct {
		High   int `json:"high"`
		Medium int `json:"medium"`
		Low    int `json:"low"`
	}

	// Derived on demand from a set of grades, never stored
	AssignmentAnalytics struct {
		Distribution map[string]int `json:"grade_distribution"`
		// Percentage buckets such as "80-89"
		Deciles           map[string]int    `json:"deciles"`
		Outliers          []Outlier         `json:"outliers"`
		ConfidenceBuckets ConfidenceBuckets `json:"confidence"`
		Count             int               `json:"count"`
		Mean              float64           `json:"mean"`
		Median            float64           `json:"median"`
		Min               float64           `json:"min"`
		Max               float64           `json:"max"`
		StdDev            float64           `json:"std_dev"`
	}
)
