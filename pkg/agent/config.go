package agent

// MissingToolPolicy controls what happens when the model requests a tool
// that is not in the registry.
type MissingToolPolicy string

const (
	// MissingToolFail aborts the run with an error.
	MissingToolFail MissingToolPolicy = "fail"
	// MissingToolReport feeds a failure tool-result back to the model so it
	// can recover.
	MissingToolReport MissingToolPolicy = "report"
)

// Config is the per-run configuration every node can read.
type Config struct {
	// SystemPrompt seeds the conversation as the first system message.
	SystemPrompt string `yaml:"system_prompt" json:"system_prompt"`

	// Model is the model identifier handed to the executor.
	Model string `yaml:"model" json:"model"`

	// MaxIterations caps the number of model round-trips in one run.
	MaxIterations int `yaml:"max_iterations" json:"max_iterations"`

	// MaxRefusals caps corrective retries when the model will not call a
	// required tool.
	MaxRefusals int `yaml:"max_refusals" json:"max_refusals"`

	// MissingTools selects the policy for unknown tool requests.
	MissingTools MissingToolPolicy `yaml:"missing_tools" json:"missing_tools"`
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{
		MaxIterations: 50,
		MaxRefusals:   3,
		MissingTools:  MissingToolReport,
	}
}

// withDefaults fills zero-valued fields from DefaultConfig.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxIterations <= 0 {
		c.MaxIterations = def.MaxIterations
	}
	if c.MaxRefusals <= 0 {
		c.MaxRefusals = def.MaxRefusals
	}
	if c.MissingTools == "" {
		c.MissingTools = def.MissingTools
	}
	return c
}
