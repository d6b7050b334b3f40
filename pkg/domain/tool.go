package domain

// Capability names known to the engine.
const (
	CapWebSearch       = "web_search"
	CapEvaluateSource  = "evaluate_source"
	CapGenerateArticle = "generate_article"
	CapCheckFact       = "check_fact"
	CapGenerateReport  = "generate_report"
	CapScrapeWebsite   = "scrape_website"
	CapSuggestArticles = "suggest_articles"
)

// Parameter describes one argument of a capability.
type Parameter struct {
	Name        string `json:"name" yaml:"name" mapstructure:"name"`
	Description string `json:"description" yaml:"description" mapstructure:"description"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty" mapstructure:"required"`
}

// Tool is the contract of a capability as advertised to the decision model.
type Tool struct {
	Name        string      `json:"name" yaml:"name" mapstructure:"name"`
	Description string      `json:"description" yaml:"description" mapstructure:"description"`
	Parameters  []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty" mapstructure:"parameters"`
}

// RequiredParams returns the names of the required parameters.
func (t Tool) RequiredParams() []string {
	var out []string
	for _, p := range t.Parameters {
		if p.Required {
			out = append(out, p.Name)
		}
	}
	return out
}
