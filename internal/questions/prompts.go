package questions

import (
	"fmt"

	"vetter/internal/services/llm"
)

const commentarySystemPrompt = "You are Assistant. Compare the given parsed resume with the desired job position and write a commentary and summary on it.\n\n" +
	"The commentary must cover:\n" +
	"1. The applicant's background\n" +
	"2. The applicant's experience related to the position they are applying for, if any\n" +
	"3. Additional or adjacent experience with similar work\n" +
	"4. Any critique or praise for the resume\n" +
	"5. Missing information, if any\n\n" +
	"Important: DO NOT make any decision on job acceptance. Assistant only comments and never makes acceptance-related remarks. Also DO NOT comment on resume formatting or structure."

const questionSystemPrompt = "You are Assistant. Create 5 interview questions from the given resume summary and commentary.\n\n" +
	"The 5 interview questions must:\n" +
	"1. Ask for missing details in the resume, if any\n" +
	"2. Ask in more detail about the applicant's experience\n" +
	"3. Ask in more detail about the applicant's prior experience\n" +
	"4. Ask in more detail about the applicant's motivation\n" +
	"5. All questions must refer to the applicant's resume and desired job position\n\n" +
	"Each question MUST be written between brackets like in the following format:\n" +
	"[1. What is your full name?]\n" +
	"[2. This is an example question]\n" +
	"[3. Also an example question?]"

// commentaryConversation primes the model with an assistant acknowledgement
// so the completion continues the commentary directly.
func commentaryConversation(resume, position string) []llm.Message {
	return []llm.Message{
		{Role: "system", Content: commentarySystemPrompt},
		{Role: "user", Content: fmt.Sprintf("<parsed_resume> %s </parsed_resume>\n<parsed_job_position>%s</parsed_job_position> Based on the given data, write down your commentary", resume, position)},
		{Role: "assistant", Content: "Understood, here's my detailed commentary on the resume."},
	}
}

func questionConversation(commentary string) []llm.Message {
	return []llm.Message{
		{Role: "system", Content: questionSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("<parsed_commentary> %s </parsed_commentary>\nWrite down 5 interview questions based on the resume commentary", commentary)},
		{Role: "assistant", Content: "Understood, here's 5 related interview questions:"},
	}
}
