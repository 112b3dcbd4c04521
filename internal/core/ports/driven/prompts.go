package driven

// PromptStore provides access to LLM prompt templates.
// Implementations may load prompts from files or embed them in the binary.
type PromptStore interface {
	// Load returns the prompt template for the given name.
	// If the prompt is not found, implementations should return a sensible default
	// or an error, depending on whether the prompt is required.
	Load(name string) (string, error)

	// Reload clears any cached prompts, forcing fresh loads on next access.
	// This is useful when prompts may have been edited on disk.
	Reload()
}

// Well-known prompt names used throughout the application.
// These constants define the contract between prompt consumers and providers.
// Each name is also the file stem of a user-editable prompt.
const (
	// PromptAnswerSystem is the instructional prelude for answering course questions.
	// This prompt has no format placeholders.
	PromptAnswerSystem = "answer_system"

	// PromptAnswer wraps the prelude, retrieved context and question.
	// The template expects %[1]s (prelude), %[2]s (context) and %[3]s (question).
	PromptAnswer = "answer"

	// PromptQuiz asks for a quiz as JSON.
	// The template expects %[1]d (question count), %[2]s (course material),
	// %[3]s (difficulty) and %[4]s (topic focus).
	PromptQuiz = "quiz"
)

// PromptStoreAware is an optional interface for services that can use custom prompts.
type PromptStoreAware interface {
	// SetPromptStore sets the prompt store for loading customisable prompts.
	// If not set, the service should use hardcoded default prompts.
	SetPromptStore(store PromptStore)
}

// DefaultPrompts returns the built-in prompt templates.
// Prompt stores fall back to these when a user file is missing.
//
//nolint:lll // Prompt content is intentionally long and should not be wrapped.
func DefaultPrompts() map[string]string {
	return map[string]string{
		PromptAnswerSystem: `You are a helpful AI Co-Instructor. Your role is to:
1. Answer questions based on the provided course materials
2. Be clear, concise, and educational
3. Cite sources when possible
4. Admit when you don't know something
5. Encourage critical thinking

Use the following context to answer the student's question:`,

		PromptAnswer: `%[1]s

Context from course materials:
%[2]s

Student Question: %[3]s

Please provide a helpful, accurate answer based on the course materials.`,

		PromptQuiz: `You are an expert educator. Generate EXACTLY %[1]d quiz questions based on the following course material.

Course Material:
%[2]s

Instructions:
- Difficulty level: %[3]s
- Topic focus: %[4]s
- Create multiple choice questions with 4 options each
- Make sure ALL questions are directly based on the material above
- Each correct answer must be factually accurate based on the material
- Write clear, specific questions

IMPORTANT: You MUST respond with ONLY valid JSON in this exact format (no other text):

{
    "questions": [
        {
            "question_text": "What is the main concept of...?",
            "question_type": "multiple_choice",
            "options": ["First option", "Second option", "Third option", "Fourth option"],
            "correct_answer": "First option",
            "explanation": "Brief explanation based on the material",
            "difficulty": "%[3]s"
        }
    ]
}

Generate %[1]d questions now as JSON only:`,
	}
}
