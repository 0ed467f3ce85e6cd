package hermes

const (
	StreamName     = "TOPSIS_EVENTS"
	StreamSubjects = "topsis.run.>"
	StreamMaxAge   = "720h" // 30 days
)

func SubjectRunCompleted(runID string) string { return "topsis.run." + runID + ".completed" }
func SubjectRunDelivered(runID string) string { return "topsis.run." + runID + ".delivered" }
func SubjectRunFailed(runID string) string    { return "topsis.run." + runID + ".failed" }
