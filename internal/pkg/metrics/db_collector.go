package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecordDBPoolMetrics updates pool gauges for the named database.
func RecordDBPoolMetrics(database string, pool *pgxpool.Pool) {
	stats := pool.Stat()

	DBPoolConnections.WithLabelValues(database, "in_use").Set(float64(stats.AcquiredConns()))
	DBPoolConnections.WithLabelValues(database, "idle").Set(float64(stats.IdleConns()))
	DBPoolConnections.WithLabelValues(database, "max").Set(float64(stats.MaxConns()))
}
