package httptransport

import "expvar"

var (
	metricMiningStartTotal  = expvar.NewInt("mining_start_total")
	metricMiningStartErrors = expvar.NewInt("mining_start_errors_total")

	metricMiningStopTotal  = expvar.NewInt("mining_stop_total")
	metricMiningStopErrors = expvar.NewInt("mining_stop_errors_total")

	metricMiningEstimateTotal = expvar.NewInt("mining_estimate_total")

	metricPlayerRegisterTotal = expvar.NewInt("player_register_total")
)
