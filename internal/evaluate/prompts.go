package evaluate

import (
	"fmt"

	"vetter/internal/services/llm"
)

const judgementSystemPrompt = "You are Assistant. You will judge the given parsed answer to the question asked.\n\n" +
	"Your judgement will be written in an explanatory format, highlighting both the good and the bad. The judgement must cover:\n" +
	"1. How relevant the answer is to the question asked\n" +
	"2. How much it highlights the applicant's experience, or whether it leans on theory\n" +
	"3. How honest it sounds, or whether it reads as overly glorified or made up\n" +
	"DO NOT comment on resume formatting or structure."

const scoringSystemPrompt = "You are Assistant. You will score the result of a technical test based on a given explanatory judgement. " +
	"The score must be formatted between `[ ]` like for example: [Score: 87]. The scoring criteria is simply based on the judgement given."

func judgementConversation(question, answer string) []llm.Message {
	return []llm.Message{
		{Role: "system", Content: judgementSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("<parsed_question> %s </parsed_question>\n<parsed_answer>%s</parsed_answer> Based on the given data, write down your judgement", question, answer)},
		{Role: "assistant", Content: "Understood, here's my detailed judgement on the answer."},
	}
}

func scoringConversation(judgement string) []llm.Message {
	return []llm.Message{
		{Role: "system", Content: scoringSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("<parsed_commentary> %s </parsed_commentary>\nWrite down the score based on the judgement", judgement)},
		{Role: "assistant", Content: "Understood, here's the score:"},
	}
}
