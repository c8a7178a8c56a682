package internal

// Option configures the Ansuz application before Run starts serving.
type Option func(*application)

type application struct {
	config *Config
}

// WithConfig supplies the application configuration. Run fails without one.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}
