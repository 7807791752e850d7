package research

import "fmt"

const grantsTemplate = `Your task is to act as a research assistant for a small business owner in %[1]s, USA.
Find currently active small business grants. You must include:
1. Federal grants available nationwide.
2. Grants specific to the state of %[1]s.

Return your findings as a JSON array of objects. Each object must represent a distinct grant program.
The JSON structure for each object is:
{
  "name": "The official name of the grant.",
  "description": "A brief, one to two sentence summary of the grant's purpose.",
  "type": "Must be one of: 'Federal', 'State', 'Corporate', 'Other'. Classify correctly based on the funding source.",
  "awardAmount": "The award amount or range, if specified (e.g., '$10,000').",
  "eligibility": "A concise summary of key eligibility requirements.",
  "deadline": "The application deadline, if specified (e.g., 'October 31, 2024' or 'Varies').",
  "website": "A direct URL to the grant application or information page."
}

IMPORTANT RULES:
- Base your information on up-to-date search results.
- Do NOT include expired grants or programs that are no longer accepting applications.
- Ensure the 'website' URL is a direct and valid link.
- Provide ONLY the raw JSON array in your response. Do not include any other text, markdown formatting, or explanations.`

const newsTemplate = `Find recent news articles about small business grants, funding opportunities, or economic programs in %s.
Focus on official announcements, reputable news sources, and new program launches from the last month.
Provide a list of these web pages.`

func grantsPrompt(state string) string {
	return fmt.Sprintf(grantsTemplate, state)
}

func newsPrompt(state string) string {
	return fmt.Sprintf(newsTemplate, state)
}
