// Package metrics provides Prometheus metrics for summarization requests.
//
// All metrics are registered with the default registry through promauto and
// exposed on /metrics. HTTP level metrics live next to the HTTP middleware and
// per-attempt upstream metrics live in the llm package.
//
// Example usage:
//
//	start := time.Now()
//	res, err := svc.Summarize(ctx, texts)
//	metrics.RecordSummary(err == nil, len(texts), res.Parts, time.Since(start))
package metrics
