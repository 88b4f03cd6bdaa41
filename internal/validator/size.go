package validator

// Largest text submission accepted for grading
const MaxContentBytes = 1 << 21

// Largest batch accepted in one request or queue message
const MaxBatchSize = 500

func ValidateContentSize(dataLen int) bool {
	return dataLen <= MaxContentBytes
}

func ValidateBatchSize(n int) bool {
	return n > 0 && n <= MaxBatchSize
}
