package config

const defaultSymptomsPrompt = `You extract symptoms from a patient's own description.
Allowed symptoms (use these exact strings only):
%s

Description:
%s

Return a JSON object with key "symptoms" holding the list of allowed symptoms mentioned.
Example: {"symptoms": ["fever", "headache"]}
Do not output any other text.`

const defaultNarrativePrompt = `You are a public health assistant. Explain the following disease risk
assessment to a non-specialist in three or four sentences. Mention the strongest
contributing factors and one practical precaution per disease. Do not give a diagnosis.

%s

Return a JSON object with key "narrative" holding the explanation.`
