package postgres

// StoreConfig holds directory specific configuration for the PostgreSQL store.
// Pool configuration is handled separately via PoolConfig.
type StoreConfig struct {
	// QueryTimeoutSeconds bounds each read transaction.
	// Default: 10 seconds
	// Set to a negative value to rely on context timeouts only.
	QueryTimeoutSeconds int32

	// PoolStatsIntervalSeconds controls how often pool statistics are logged.
	// Default: 30 seconds
	PoolStatsIntervalSeconds int32
}

// ApplyDefaults applies default values to unset configuration fields.
func (c *StoreConfig) ApplyDefaults() {
	if c.QueryTimeoutSeconds == 0 {
		c.QueryTimeoutSeconds = 10 // 10 seconds
	}
	if c.PoolStatsIntervalSeconds == 0 {
		c.PoolStatsIntervalSeconds = 30
	}
}
