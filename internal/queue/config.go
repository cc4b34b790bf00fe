package queue

// Concurrency bounds for the download pool.
const (
	DefaultMaxConcurrent = 2
	MinConcurrent        = 1
	MaxConcurrent        = 10
)

// Config is the read-only settings snapshot used when dispatching items.
type Config struct {
	DownloadDir   string
	MaxConcurrent int
	CookiesFile   string
}

// Normalize clamps MaxConcurrent into [MinConcurrent, MaxConcurrent];
// zero selects the default.
func (c Config) Normalize() Config {
	switch {
	case c.MaxConcurrent == 0:
		c.MaxConcurrent = DefaultMaxConcurrent
	case c.MaxConcurrent < MinConcurrent:
		c.MaxConcurrent = MinConcurrent
	case c.MaxConcurrent > MaxConcurrent:
		c.MaxConcurrent = MaxConcurrent
	}
	return c
}
