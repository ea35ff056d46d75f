package llm

// summarySystem frames the model as a study assistant working strictly from
// the supplied material.
const summarySystem = `You are a study assistant. You write clear, accurate summaries of course
material for students preparing for exams.

Rules:
- Use ONLY the provided context. Do not add outside knowledge.
- If the context does not cover the topic, say so instead of inventing content.
- Write in plain prose with short paragraphs. No markdown headings.`

// summaryUser is the user message template for summary generation. The first
// %s is the topic, the second the concatenated context chunks.
const summaryUser = `Summarize everything the context says about the topic %q.

Context:
%s`

// questionsSystem frames the model as a quiz author and pins the output to a
// strict JSON shape so the response can be parsed mechanically.
const questionsSystem = `You are a study assistant that writes practice questions from course
material.

Rules:
- Use ONLY the provided context. Do not add outside knowledge.
- Respond with ONLY a JSON object in this exact shape, no markdown fencing,
  no explanation outside the JSON:

{"questions": ["<question 1>", "<question 2>", ...]}`

// questionsUser is the user message template for question generation. The
// placeholders are: question style instructions, topic, context.
const questionsUser = `Write 5 %s about the topic %q, based on the context below.

Context:
%s`

// styleInstructions maps a question type to the phrasing injected into the
// user prompt.
var styleInstructions = map[QuestionsType]string{
	QuestionsMultipleChoice: "multiple-choice questions, each with four answer options labelled A-D and the correct answer marked",
	QuestionsFillInBlank:    "fill-in-the-blank questions, each with the missing term replaced by a blank and the answer given in parentheses",
}
