package alerts

import "fmt"

const (
	DefaultDueSoonDays           = 7
	DefaultOverdueMaxDays        = 90
	DefaultHighPriorityThreshold = 3
	DefaultHighPriorityMaxDays   = 30
)

// Config holds the time windows used to bucket action plans.
type Config struct {
	DueSoonDays           int `json:"due_soon_days"`
	OverdueMaxDays        int `json:"overdue_max_days"`
	HighPriorityThreshold int `json:"high_priority_threshold"`
	HighPriorityMaxDays   int `json:"high_priority_max_days"`
}

func DefaultConfig() Config {
	return Config{
		DueSoonDays:           DefaultDueSoonDays,
		OverdueMaxDays:        DefaultOverdueMaxDays,
		HighPriorityThreshold: DefaultHighPriorityThreshold,
		HighPriorityMaxDays:   DefaultHighPriorityMaxDays,
	}
}

// Validate rejects negative windows.
func (c Config) Validate() error {
	switch {
	case c.DueSoonDays < 0:
		return fmt.Errorf("due_soon_days must be >= 0, got %d", c.DueSoonDays)
	case c.OverdueMaxDays < 0:
		return fmt.Errorf("overdue_max_days must be >= 0, got %d", c.OverdueMaxDays)
	case c.HighPriorityMaxDays < 0:
		return fmt.Errorf("high_priority_max_days must be >= 0, got %d", c.HighPriorityMaxDays)
	}
	return nil
}

// Overrides holds optional replacements for Config fields.
type Overrides struct {
	DueSoonDays           *int
	OverdueMaxDays        *int
	HighPriorityThreshold *int
	HighPriorityMaxDays   *int
}

// With returns c with every set field of o applied.
func (c Config) With(o Overrides) Config {
	if o.DueSoonDays != nil {
		c.DueSoonDays = *o.DueSoonDays
	}
	if o.OverdueMaxDays != nil {
		c.OverdueMaxDays = *o.OverdueMaxDays
	}
	if o.HighPriorityThreshold != nil {
		c.HighPriorityThreshold = *o.HighPriorityThreshold
	}
	if o.HighPriorityMaxDays != nil {
		c.HighPriorityMaxDays = *o.HighPriorityMaxDays
	}
	return c
}
