// Package persona holds the static registry of customer-behavior personas
// the judge evaluates calls against.
package persona

// Persona describes one customer archetype and what a good agent response
// to it looks like. ExpectedBehavior and SuccessCriteria are deliberately
// open documents: persona authors extend them without schema changes.
type Persona struct {
	Name              string         `json:"name"`
	Description       string         `json:"description"`
	PersonalityTraits []string       `json:"personality_traits"`
	ExpectedBehavior  map[string]any `json:"expected_behavior"`
	SuccessCriteria   map[string]any `json:"success_criteria"`
	RiskLevel         string         `json:"risk_level"`
	DifficultyScore   float64        `json:"difficulty_score"`
}

// Catalog is the fixed, name-keyed persona set.
type Catalog struct {
	personas map[string]Persona
	order    []string
}

// ByName returns the persona with the given unique name.
func (c *Catalog) ByName(name string) (Persona, bool) {
	p, ok := c.personas[name]
	return p, ok
}

// All returns every persona in registration order.
func (c *Catalog) All() []Persona {
	out := make([]Persona, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.personas[name])
	}
	return out
}

// ByRiskLevel returns personas with the given risk level, in registration order.
func (c *Catalog) ByRiskLevel(level string) []Persona {
	var out []Persona
	for _, p := range c.All() {
		if p.RiskLevel == level {
			out = append(out, p)
		}
	}
	return out
}

// ByDifficulty returns personas whose difficulty score lies in [min, max].
func (c *Catalog) ByDifficulty(min, max float64) []Persona {
	var out []Persona
	for _, p := range c.All() {
		if p.DifficultyScore >= min && p.DifficultyScore <= max {
			out = append(out, p)
		}
	}
	return out
}

func newCatalog(personas []Persona) *Catalog {
	c := &Catalog{personas: make(map[string]Persona, len(personas))}
	for _, p := range personas {
		c.personas[p.Name] = p
		c.order = append(c.order, p.Name)
	}
	return c
}
