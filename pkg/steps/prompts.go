package steps

const translateSystemPrompt = "You are a PostgreSQL expert. Translate the user's natural language question " +
	"into a single safe SQL SELECT query in PostgreSQL dialect using the given schema. " +
	"Rules: only SELECT queries, never modify data, prefer explicit columns, include LIMIT %d if not present, " +
	"and ensure valid identifiers. Return ONLY the SQL, no prose, no code fences."

const translateUserPrompt = "Schema (approx):\n%s\n\nQuestion: %s\n\nOutput: a single SQL SELECT statement."

const answerSystemPrompt = "You answer questions about civic incident data (crime reports and 311 service requests). " +
	"Use only the rows provided. Be concise, cite counts and places from the data, and say so when the data is insufficient."

const answerUserPrompt = "Question: %s\n\nSQL:\n%s\n\nData (%d of %d rows):\n%s\n\nAnswer:"
