// Package loggy is a client-side event aggregator: it normalizes log
// calls into canonical events, buffers them, and ships them to a
// collector in throttled batches.
//
// Quick start:
//
//	lg, err := loggy.New("myapp",
//	    loggy.WithEndpoint("http://collector:1065/"),
//	    loggy.WithDefaults(loggy.Fields{"module": "api"}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer lg.Close()
//
//	lg.Info("started", loggy.With(loggy.Fields{"port": 8080}))
//	lg.Log(loggy.Err(err))
//
// Events accumulate for the throttle interval (default 100ms) or until
// the batch limit is hit, then go out as one JSON batch. Fatal-class
// severities flush synchronously and terminate the process unless
// disabled with WithExitOnFatal(false).
package loggy
