package domain

// Canned responses returned without calling a provider.
const (
	RefusalMessage = "I cannot respond to this query as it violates our content policy."

	InsufficientMaterialMessage = "I don't have enough information in the course materials to answer this question. " +
		"Please ask your teacher to upload relevant materials."
)

// Quiz context queries used when gathering material.
const (
	QuizTopicQueryFormat = "Provide information about %s"
	QuizSummaryQuery     = "Provide a summary of the main topics in this course"
	QuizDefaultFocus     = "Cover main concepts from the material"
)
