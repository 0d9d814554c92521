package scoring

import "errors"

// ErrUnknownMetric is returned when a metric name cannot be parsed.
var ErrUnknownMetric = errors.New("unknown metric")
