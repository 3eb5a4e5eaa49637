package ai

import (
	"fmt"
	"strings"
)

func scoringSystemPrompt() string {
	return "You are an expert English language evaluator for educational assessments. " +
		"Respond with a single JSON object and nothing else."
}

func buildScorePrompt(req ScoreRequest) string {
	info := req.Level.expectation()

	builder := strings.Builder{}
	fmt.Fprintf(&builder, "You are evaluating a %s CEFR level student's %s submission.\n\n", req.Level, req.ContentType)
	fmt.Fprintf(&builder, "=== STUDENT'S CEFR LEVEL: %s ===\n", req.Level)
	fmt.Fprintf(&builder, "Expected Grammar: %s\n", info.Grammar)
	fmt.Fprintf(&builder, "Expected Vocabulary: %s\n", info.Vocabulary)
	fmt.Fprintf(&builder, "Expected Structure: %s\n", info.Structure)
	fmt.Fprintf(&builder, "Level Expectations: %s\n\n", info.Expectations)
	fmt.Fprintf(&builder, "IMPORTANT: Evaluate this submission RELATIVE TO the %s level expectations.\n", req.Level)
	fmt.Fprintf(&builder, "- A submission that perfectly meets %s expectations should score 80-90\n", req.Level)
	fmt.Fprintf(&builder, "- A submission that exceeds %s expectations should score 90-100\n", req.Level)
	fmt.Fprintf(&builder, "- A submission that partially meets %s expectations should score 60-80\n", req.Level)
	fmt.Fprintf(&builder, "- A submission below %s expectations should score below 60\n\n", req.Level)
	builder.WriteString("=== SUBMISSION ===\n")
	builder.WriteString(req.Content)
	builder.WriteString("\n\n=== RUBRIC CRITERIA ===\n")
	if len(req.Rubric) > 0 {
		for _, criterion := range req.Rubric {
			fmt.Fprintf(&builder, "- %s (weight: %g): %s\n", criterion.Name, criterion.Weight, criterion.Description)
		}
	} else {
		fmt.Fprintf(&builder, "Use standard language assessment criteria adjusted for %s level: grammar, vocabulary, structure, clarity\n", req.Level)
	}
	builder.WriteString("\n=== TASK ===\n")
	fmt.Fprintf(&builder, "Provide a detailed evaluation considering the student's %s level.\n", req.Level)
	builder.WriteString("Be encouraging but honest. Identify specific strengths and areas for improvement.\n\n")
	builder.WriteString(`Return ONLY valid JSON (no markdown, no code blocks):

{
  "overallScore": <number 0-100>,
  "grammarScore": <number 0-100>,
  "vocabularyScore": <number 0-100>,
  "structureScore": <number 0-100>,
  "clarityScore": <number 0-100>,
  "pronunciationScore": <number 0-100>,
  "confidence": <number 0.0-1.0>,
  "reasoning": "<detailed explanation including: what the student did well for their level, specific mistakes made, and what they should focus on to improve>"
}`)
	return builder.String()
}

func buildErrorDetectionPrompt(req ErrorDetectionRequest) string {
	builder := strings.Builder{}
	fmt.Fprintf(&builder, "You are an expert English language evaluator helping a %s level student improve.\n", req.Level)
	fmt.Fprintf(&builder, "Analyze this %s submission and identify errors APPROPRIATE to their level.\n\n", req.ContentType)
	fmt.Fprintf(&builder, "=== STUDENT LEVEL: %s ===\n%s\n\n", req.Level, req.Level.errorFocus())
	builder.WriteString("=== SUBMISSION ===\n")
	builder.WriteString(req.Content)
	builder.WriteString("\n\n=== TASK ===\n")
	fmt.Fprintf(&builder, "Identify errors that are important for a %s level student to learn from.\n", req.Level)
	builder.WriteString(`- Prioritize errors that are essential at this level
- For each error, explain WHY it's wrong in simple terms the student can understand
- Provide helpful corrections and learning tips

Return ONLY valid JSON (no markdown, no code blocks):

{
  "errors": [
    {
      "type": "<grammar|spelling|vocabulary|punctuation|logic|pronunciation>",
      "severity": "<critical|major|minor>",
      "originalText": "<the exact incorrect text>",
      "correctedText": "<the corrected version>",
      "description": "<clear explanation of the error>",
      "suggestion": "<actionable tip to avoid this mistake in the future>",
      "position": <character offset of the error in the submission>
    }
  ]
}

If there are no errors, return: {"errors": []}`)
	return builder.String()
}

func buildChallengesPrompt(samples []SubmissionSample) string {
	builder := strings.Builder{}
	fmt.Fprintf(&builder, "You are an expert education analyst. Analyze these %d submissions from the same student to identify recurring learning challenges.\n\n", len(samples))
	builder.WriteString("=== STUDENT SUBMISSIONS ===\n")
	for i, sample := range samples {
		content := sample.Content
		if content == "" {
			content = "No content"
		}
		fmt.Fprintf(&builder, "Submission %d (%s): %s\n\n", i+1, sample.ContentType, content)
	}
	builder.WriteString(`=== TASK ===
Identify patterns of recurring mistakes, learning difficulties, and knowledge gaps.

Return ONLY valid JSON (no markdown, no code blocks):

{
  "challenges": [
    {
      "type": "<grammar|vocabulary|spelling|punctuation|logic|comprehension>",
      "pattern": "<description of the recurring issue>",
      "frequency": "<how often it appears, e.g., '60%'>",
      "severity": "<high|medium|low>",
      "recommendation": "<specific actionable advice to improve>"
    }
  ]
}

If no clear patterns exist, return: {"challenges": []}`)
	return builder.String()
}

func buildFeedbackPrompt(req FeedbackRequest) string {
	mistakeSummary := "No significant errors detected"
	if len(req.MistakeSummary) > 0 {
		mistakeSummary = "- " + strings.Join(req.MistakeSummary, "\n- ")
	}

	builder := strings.Builder{}
	fmt.Fprintf(&builder, "You are a supportive English language teacher providing personalized feedback to a %s level student.\n\n", req.Level)
	fmt.Fprintf(&builder, "=== STUDENT LEVEL: %s ===\nFeedback Guidance: %s\n\n", req.Level, req.Level.feedbackGuidance())
	builder.WriteString("=== EVALUATION RESULTS ===\n")
	fmt.Fprintf(&builder, "Overall Score: %.0f/100\n", req.OverallScore)
	fmt.Fprintf(&builder, "Grammar: %.0f/100\n", req.GrammarScore)
	fmt.Fprintf(&builder, "Vocabulary: %.0f/100\n", req.VocabularyScore)
	fmt.Fprintf(&builder, "Structure: %.0f/100\n\n", req.StructureScore)
	fmt.Fprintf(&builder, "=== ERRORS FOUND ===\n%s\n\n", mistakeSummary)
	builder.WriteString("=== TASK ===\n")
	fmt.Fprintf(&builder, "Generate encouraging, constructive feedback for this %s submission.\n", req.ContentType)
	fmt.Fprintf(&builder, `IMPORTANT:
- Write feedback that a %s level student can understand
- Be specific about what they did well FOR THEIR LEVEL
- Point out the most important areas for improvement
- Give 3-5 actionable recommendations appropriate for %s level
- If they made mistakes, explain them in a helpful, non-discouraging way

Return ONLY valid JSON (no markdown, no code blocks):

{
  "feedbackText": "<complete personalized feedback message, 150-250 words>",
  "strengths": ["<specific strength 1>", "<specific strength 2>"],
  "improvements": ["<clear area for improvement 1>", "<clear area for improvement 2>"],
  "recommendations": ["<specific actionable tip 1>", "<specific actionable tip 2>", "<specific actionable tip 3>"],
  "nextSteps": "<what the student should focus on next to progress from %s level>",
  "tone": "encouraging"
}`, req.Level, req.Level, req.Level)
	return builder.String()
}

func buildShortAnswerPrompt(req ShortAnswerRequest) string {
	builder := strings.Builder{}
	builder.WriteString("You are evaluating a student's short answer response.\n\n")
	fmt.Fprintf(&builder, "Question: %s\n", req.QuestionText)
	fmt.Fprintf(&builder, "Expected Answer: %s\n", req.ExpectedAnswer)
	fmt.Fprintf(&builder, "Student's Answer: %s\n\n", req.StudentAnswer)
	builder.WriteString(`Evaluate if the student's answer is correct. Consider:
- Semantic equivalence (same meaning, different words)
- Partial correctness
- Minor spelling variations

Return ONLY a JSON object (no markdown):
{
  "score": <number 0.0-1.0>,
  "reasoning": "<brief explanation>"
}

Score guide: 1.0 = fully correct, 0.75 = mostly correct, 0.5 = partially correct, 0.25 = slightly relevant, 0 = incorrect`)
	return builder.String()
}

func buildQuestionsPrompt(req QuestionRequest) string {
	builder := strings.Builder{}
	builder.WriteString("You are an expert English language teacher creating quiz questions.\n\n")
	builder.WriteString("=== PARAMETERS ===\n")
	fmt.Fprintf(&builder, "Student Level: %s (%s)\n", req.Level, req.Level.description())
	fmt.Fprintf(&builder, "Topic: %s\n", req.Topic)
	fmt.Fprintf(&builder, "Number of Questions: %d\n\n", req.QuestionCount)
	builder.WriteString("=== TASK ===\n")
	fmt.Fprintf(&builder, "Generate %d multiple-choice questions appropriate for a %s level student.\n", req.QuestionCount, req.Level)
	fmt.Fprintf(&builder, `Each question must have exactly 4 options with only one correct answer.

Requirements:
- Vocabulary and grammar MUST match %s CEFR level
- Questions should test understanding, not trick the student
- Options should be plausible but clearly distinguishable
- Include a mix of vocabulary, grammar, and comprehension questions

Return ONLY valid JSON (no markdown, no code blocks):

{
  "questions": [
    {
      "questionText": "<clear question>",
      "questionType": "multiple-choice",
      "options": ["<option A>", "<option B>", "<option C>", "<option D>"],
      "correctAnswer": "<exact text of correct option>",
      "points": 1,
      "explanation": "<why this answer is correct>"
    }
  ]
}`, req.Level)
	return builder.String()
}

func buildActivityPromptPrompt(req PromptRequest) string {
	expectedLength := "150-250 words"
	timeLimit := "30 minutes"
	if req.ActivityType == ContentTypeSpeaking {
		expectedLength = "1-2 minutes of speaking"
		timeLimit = "2 minutes"
	}

	builder := strings.Builder{}
	fmt.Fprintf(&builder, "You are an expert English teacher creating a %s prompt for a %s English learner.\n\n", req.ActivityType, req.Level)
	builder.WriteString("=== PARAMETERS ===\n")
	fmt.Fprintf(&builder, "Activity Type: %s\n", req.ActivityType)
	fmt.Fprintf(&builder, "Student Level: %s (%s)\n", req.Level, req.Level.description())
	fmt.Fprintf(&builder, "Topic: %s\n\n", req.Topic)
	builder.WriteString("=== TASK ===\n")
	fmt.Fprintf(&builder, "Create an engaging %s prompt that is appropriate for %s level.\n\n", req.ActivityType, req.Level)
	fmt.Fprintf(&builder, `Return ONLY valid JSON (no markdown, no code blocks):

{
  "prompt": "<the main prompt/question for the student>",
  "instructions": "<clear instructions on what to do, 2-3 sentences>",
  "guideQuestions": ["<helpful question 1>", "<helpful question 2>", "<helpful question 3>"],
  "vocabularyHints": ["<useful word or phrase 1>", "<useful word or phrase 2>", "<useful word or phrase 3>"],
  "timeLimit": "%s",
  "expectedLength": "%s",
  "tips": ["<helpful tip 1>", "<helpful tip 2>"]
}`, timeLimit, expectedLength)
	return builder.String()
}

func buildSummarizePrompt(feedbackText string) string {
	builder := strings.Builder{}
	builder.WriteString("Summarize this feedback in 2-3 sentences, keeping the key strengths and areas for improvement:\n\n")
	builder.WriteString(feedbackText)
	builder.WriteString("\n\nReturn ONLY the summary text, no JSON.")
	return builder.String()
}
