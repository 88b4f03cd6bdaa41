package types

type BatchItemStatus string

const (
	BatchItemSuccess BatchItemStatus = "success"
	BatchItemError   BatchItemStatus = "error"
)

type (
	// One slot of a batch, aligned with the input position
	BatchItem struct {
		Record       *GradeRecord    `json:"record,omitempty"`
		SubmissionID string          `json:"submission_id"`
		Status       BatchItemStatus `json:"status"`
		Error        string          `json:"error,omitempty"`
		Index        int             `json:"index"`
	}

	BatchResult struct {
		Items []BatchItem `json:"items"`
	}

	// Queue message requesting a batch to be graded
	GradeBatchMsg struct {
		BatchID     string       `json:"batch_id"    validate:"required"`
		Submissions []Submission `json:"submissions" validate:"required"`
	}

	// Queue message carrying the result of a GradeBatchMsg
	GradeBatchResultMsg struct {
		BatchID string      `json:"batch_id"`
		Error   string      `json:"error,omitempty"`
		Items   []BatchItem `json:"items"`
	}
)

func (r BatchResult) Counts() (succeeded, failed int) {
	for _, item := range r.Items {
		if item.Status == BatchItemSuccess {
			succeeded++
		} else {
			failed++
		}
	}

	return succeeded, failed
}
