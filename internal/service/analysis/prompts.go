package analysis

const systemPrompt = `You are an expert educational psychologist. Your task is to analyze a middle school student's self-reported assessment answers to provide a holistic personality and learning profile. The output must be a valid JSON object with the specified structure. Do not include any text outside of the JSON object.`

const userPromptTemplate = `Here are the student's assessment answers:

%s

Please analyze these responses and provide a detailed profile in the following JSON format:

{
  "personality_summary": "A detailed summary of the student's personality, social, and collaborative style.",
  "learning_style": {
    "primary": "The primary VARK learning style (Visual, Auditory, Reading/Writing, or Kinesthetic).",
    "secondary": "The secondary VARK learning style.",
    "description": "A description of how they learn best."
  },
  "trait_scores": [
    { "trait": "Leadership", "score": 0-100, "fullMark": 100 },
    { "trait": "Collaboration", "score": 0-100, "fullMark": 100 },
    { "trait": "Empathy", "score": 0-100, "fullMark": 100 },
    { "trait": "Problem Solving", "score": 0-100, "fullMark": 100 },
    { "trait": "Digital Literacy", "score": 0-100, "fullMark": 100 },
    { "trait": "Growth Mindset", "score": 0-100, "fullMark": 100 }
  ],
  "strengths": [
    "A list of 3-4 key strengths as strings."
  ],
  "areas_for_growth": [
    "A list of 2-3 areas for growth as strings."
  ],
  "pod_recommendation": "A specific recommendation for the type of pod this student would thrive in."
}`
