package metrics

import "time"

// RecordJobEnqueued counts a newly inserted report generation job.
func RecordJobEnqueued() {
	JobsEnqueued.Inc()
}

// RecordJobResult records a finished job and how long it ran.
// status is "completed" or "failed".
func RecordJobResult(status string, duration time.Duration) {
	JobsTotal.WithLabelValues(status).Inc()
	JobDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordJobsRecovered counts stale jobs requeued at worker startup.
func RecordJobsRecovered(count int64) {
	JobsRecovered.Add(float64(count))
}

// RecordPDFRender records one render attempt against the headless browser.
// status is "success" or "error".
func RecordPDFRender(status string, duration time.Duration) {
	PDFRendersTotal.WithLabelValues(status).Inc()
	PDFRenderDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordPDFRepair counts a corrupt artifact recovered by the given method
// ("base64" or "regenerated").
func RecordPDFRepair(method string) {
	PDFRepairsTotal.WithLabelValues(method).Inc()
}
