package catalog

// Seed returns the built-in Ashley catalog used when no remote provider
// is configured. The relationship personas pin explicit model ids; the
// professional personas derive theirs from model categories.
func Seed() Catalog {
	return Catalog{
		Personas: []PersonaOption{
			{
				ID:          "ashley-data-analyst",
				Label:       "Ashley - Data Analyst",
				Description: "Professional Ashley persona specialised in reporting, dashboards, automation, and enterprise analytics workflows.",
				Tags:        []string{"SQL", "Excel", "Automation"},
				Category:    "Professional",
				DefaultModel: AutoModelID,
				AllowedModelIDs: []string{AutoModelID, "qwen-2.5-7b"},
			},
			{
				ID:          "ashley-data-scientist",
				Label:       "Ashley - Data Scientist & ML/AI",
				Description: "Technical Ashley persona focused on Python, machine learning research, model deployment, and automation.",
				Tags:        []string{"Python", "ML", "Automation"},
				Category:    "Professional",
				DefaultModel: AutoModelID,
				AllowedModelCategories: []string{"general", "data-analytics", "ml-ai"},
			},
			{
				ID:          "ashley-girlfriend",
				Label:       "Ashley - Girlfriend",
				Description: "Warm, affectionate companion persona for everyday conversation.",
				Tags:        []string{"Romance", "Supportive"},
				Category:    "Relationship",
				DefaultModel: AutoModelID,
				AllowedModelIDs: []string{AutoModelID, "nous-hermes-2-mistral-7b-gptq"},
			},
			{
				ID:          "ashley-girlfriend-explicit",
				Label:       "Ashley - Girlfriend (Explicit)",
				Description: "Explicit, uncensored companion persona. Restricted to NSFW models.",
				Tags:        []string{"NSFW", "Explicit"},
				Category:    "Relationship",
				NSFW:        true,
				DefaultModel: AutoModelID,
				AllowedModelCategories: []string{"nsfw"},
			},
		},
		Models: []ModelOption{
			{
				ID:          AutoModelID,
				Name:        "Auto",
				Description: "Let the gateway pick the best model for the request.",
				Categories:  []string{"general", "data-analytics", "ml-ai", "nsfw"},
			},
			{
				ID:           "qwen-2.5-7b",
				Name:         "Qwen 2.5 7B Instruct",
				Description:  "Balanced instruct model suited for analytics and reporting work.",
				Categories:   []string{"general", "data-analytics"},
				Capabilities: []string{"chat", "code"},
			},
			{
				ID:           "deepseek-coder-6.7b-gptq",
				Name:         "DeepSeek Coder 6.7B",
				Description:  "Code-centric model for ML engineering and automation tasks.",
				Categories:   []string{"ml-ai"},
				Capabilities: []string{"chat", "code"},
			},
			{
				ID:           "nous-hermes-2-mistral-7b-gptq",
				Name:         "Nous Hermes 2 Mistral 7B",
				Description:  "Conversational model tuned for companion dialogue.",
				Categories:   []string{"general"},
				Capabilities: []string{"chat"},
			},
			{
				ID:           "openhermes-2.5-mistral-7b-gptq",
				Name:         "OpenHermes 2.5 Mistral 7B",
				Description:  "Unfiltered relationship model. Restricted to adult personas.",
				Categories:   []string{"nsfw"},
				Capabilities: []string{"chat"},
			},
		},
		PersonaCategories: map[string]CategoryMeta{
			"Professional": {
				Label:       "Professional Ashley",
				Description: "Specialised work personas for analytics, engineering, and automation.",
			},
			"Relationship": {
				Label:       "Relationship Ashley",
				Description: "Companion personas focused on emotional support and intimacy.",
			},
		},
		ModelCategories: map[string]CategoryMeta{
			"general":        {Label: "General Purpose", Description: "Balanced conversation models suited for everyday dialogue."},
			"data-analytics": {Label: "Data & Analytics", Description: "Excel, SQL, reporting, and analytical reasoning models."},
			"ml-ai":          {Label: "ML & Engineering", Description: "Machine learning research, coding, and systems models."},
			"nsfw":           {Label: "NSFW / Unfiltered", Description: "Unfiltered relationship models. Restricted to adult personas."},
		},
	}
}
