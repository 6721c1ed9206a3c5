package ai

import "google.golang.org/genai"

var stageSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"stage": {
			Type: genai.TypeString,
			Enum: []string{"topo", "meio", "fundo", "pos_conversao"},
		},
		"status": {
			Type: genai.TypeString,
			Enum: []string{"green", "amber", "red"},
		},
		"analysis": {Type: genai.TypeString},
		"actions": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"stage", "status", "analysis", "actions"},
}

var diagnosisSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"stages": {
			Type:        genai.TypeArray,
			Items:       stageSchema,
			Description: "Exactly four sections, one per funnel stage, in pipeline order.",
		},
	},
	Required: []string{"stages"},
}

var planSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {Type: genai.TypeString},
		"milestones": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"title":       {Type: genai.TypeString},
					"description": {Type: genai.TypeString},
					"priority": {
						Type: genai.TypeString,
						Enum: []string{"high", "medium", "low"},
					},
					"dueWeeks": {Type: genai.TypeInteger},
				},
				Required: []string{"title", "description", "priority", "dueWeeks"},
			},
		},
	},
	Required: []string{"summary", "milestones"},
}

var creativesSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"creatives": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"headline":     {Type: genai.TypeString},
					"primaryText":  {Type: genai.TypeString},
					"description":  {Type: genai.TypeString},
					"callToAction": {Type: genai.TypeString},
				},
				Required: []string{"headline", "primaryText", "description", "callToAction"},
			},
		},
	},
	Required: []string{"creatives"},
}

var weeklySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"summary": {Type: genai.TypeString},
		"highlights": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"risks": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
		"focus": {Type: genai.TypeString},
	},
	Required: []string{"summary", "highlights", "risks", "focus"},
}

var detailSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"explanation": {Type: genai.TypeString},
		"benchmarks": {
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		},
	},
	Required: []string{"explanation", "benchmarks"},
}
