package httptransport

import "expvar"

var (
	metricActionSubmitTotal  = expvar.NewInt("action_submit_total")
	metricActionSubmitErrors = expvar.NewInt("action_submit_errors_total")

	metricHandsStartedTotal = expvar.NewInt("hands_started_total")

	metricStreamConnectionsTotal = expvar.NewInt("stream_connections_total")
)
