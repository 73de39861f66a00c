package main

import (
	"strings"

	"github.com/muhammadolammi/cvboard/internal/prompt"
)

const (
	achievementsCount = 3
	maxSuggestedSkill = 8
	alternativesCount = 3

	suggestedMarker   = "SUGERIDAS:"
	improvementMarker = "MEJORAS:"
)

// fallbackAlternatives is returned when the provider's alternatives cannot be
// used as three separate summaries.
var fallbackAlternatives = [alternativesCount]string{
	"Profesional orientado a resultados con experiencia demostrable en su área y capacidad para aportar valor desde el primer día.",
	"Perfil versátil que combina conocimientos técnicos sólidos con buenas habilidades de comunicación y trabajo en equipo.",
	"Profesional comprometido con la mejora continua, acostumbrado a asumir responsabilidades y a cumplir objetivos.",
}

func achievementsPrompt(position, description string) prompt.Request {
	ctx := prompt.NewContext()
	ctx.Add("Puesto", position).Add("Descripción del trabajo", description)
	return prompt.Request{
		Task:    "Eres un experto en redacción de currículums. Propón logros para la experiencia laboral descrita.",
		Context: ctx,
		Directives: []string{
			"Sugiere 3 logros cuantificables y específicos para este puesto.",
			"Empieza cada logro con un verbo de acción en primera persona del pasado.",
			"Incluye métricas realistas (porcentajes, tiempos, volumen) cuando aplique.",
			"Escribe un logro por línea, sin introducciones ni comentarios.",
		},
		Examples: []string{
			"Reduje el tiempo de respuesta de la API en un 40% optimizando consultas SQL.",
			"Automaticé el despliegue de 12 servicios, eliminando 6 horas semanales de trabajo manual.",
		},
	}
}

func skillsPrompt(position string, skills []string) prompt.Request {
	ctx := prompt.NewContext()
	ctx.Add("Puesto", position).Add("Habilidades actuales", strings.Join(skills, ", "))
	return prompt.Request{
		Task:    "Eres un asesor de carrera. Revisa las habilidades de un currículum para el puesto indicado.",
		Context: ctx,
		Directives: []string{
			"Responde con dos secciones separadas por una línea en blanco.",
			"La primera sección empieza con la línea " + suggestedMarker + " y lista hasta 8 habilidades nuevas relevantes, una por línea.",
			"La segunda sección empieza con la línea " + improvementMarker + " y contiene una línea por habilidad actual con el formato 'Habilidad: cómo describirla mejor'.",
			"No añadas texto fuera de esas dos secciones.",
		},
	}
}

func alternativesPrompt(summary, position string) prompt.Request {
	ctx := prompt.NewContext()
	if position != "" {
		ctx.Add("Puesto", position)
	}
	ctx.Add("Resumen actual", summary)
	return prompt.Request{
		Task:    "Eres un experto en redacción de currículums. Reescribe el resumen profesional de tres formas distintas.",
		Context: ctx,
		Directives: []string{
			"Cada alternativa debe tener entre 2 y 4 frases.",
			"Mantén los datos del resumen original; no inventes experiencia.",
			"Devuelve únicamente un array JSON con exactamente 3 cadenas de texto.",
		},
	}
}

func improvePrompt(section, text, tone string) prompt.Request {
	if tone == "" {
		tone = "profesional"
	}
	ctx := prompt.NewContext()
	ctx.Add("Sección", section).Add("Tono", tone).Add("Texto", text)
	return prompt.Request{
		Task:    "Eres un editor de currículums. Mejora el texto de la sección indicada.",
		Context: ctx,
		Directives: []string{
			"Corrige ortografía y gramática.",
			"Haz el texto más claro y conciso sin cambiar los hechos.",
			"Devuelve solo el texto mejorado.",
		},
	}
}

func matcherInstruction() string {
	return `
	You are an expert AI recruiting assistant that evaluates how well a candidate's CV matches a job posting.

Your goal is to:
- Analyze the CV in detail.
- Compare it with the provided job title, company and job description.
- Identify relevant experience, skills, and education.
- Point out missing or weak areas.
- Assign an overall match score from 0 to 100.

Return your result as a structured JSON object in this format:

{
"candidate_email":string,
  "match_score": number,
  "relevant_experiences": [string],
  "relevant_skills": [string],
  "missing_skills": [string],
  "summary": string,
  "recommendation": string
}


Be concise and professional. Base all reasoning only on the provided text.
Answer in the language the CV is written in.
Do not make up data or assume experience not explicitly mentioned.
Return only valid JSON. Do not include explanations, markdown, or text before or after the JSON.
Your response must be a single JSON object.
	`
}
