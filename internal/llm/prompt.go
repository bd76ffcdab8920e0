package llm

// PromptVersion identifies ExtractionPrompt. Bump it whenever the prompt text
// changes so logs can be tied to the wording that produced a record.
const PromptVersion = "id-extract/v1"

// ExtractionPrompt is sent with every page image.
const ExtractionPrompt = `You are an identity document data extraction expert. Analyze this image of the front page of an identity document (for example an Aadhaar card, a national ID card or a driving licence).

Extract the following details and return ONLY a single JSON object with exactly these keys:

{
  "name": "Full name exactly as printed",
  "date_of_birth": "DD/MM/YYYY, or null if only the year is printed",
  "date_of_birth_year": "YYYY",
  "gender": "Male, Female or Transgender, exactly as printed",
  "id_number": "Document number",
  "address": "Complete address including PIN or postal code",
  "parent_name": "Father's, mother's or guardian's name if printed (S/O, D/O, C/O, W/O), otherwise null",
  "confidence": 0
}

GUIDELINES:
- Copy every value exactly as printed; do not translate, correct or reformat names
- For an Aadhaar card the id_number is the 12 digit number written WITHOUT spaces
- If the full date of birth is not visible, set date_of_birth to null and fill date_of_birth_year only
- Include the complete address with house, street, locality, district, state and PIN code
- Use null for any field that is not present or not legible
- confidence is an integer from 0 to 100 describing how clearly the text could be read

OUTPUT RULES:
- Output ONLY the JSON object
- No markdown, no code fences, no commentary before or after the JSON`
