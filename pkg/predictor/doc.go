/*
Package predictor maintains placement history and forecasts near-term
resource demand.

Placements are recorded per workload class (the "workload-class" label, or
the image name when unlabeled) and per node. PredictDemand combines the mean
request size of the matched history with the observed placement rate over the
forecast horizon. With fewer than five samples the predictor returns a fixed
conservative default with zero confidence instead of failing.

The predictor is strictly advisory. Its forecasts feed the autoscaler's
scale-up decisions; a prediction failure never blocks or rolls back a
placement.
*/
package predictor
