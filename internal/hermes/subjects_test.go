package hermes

import (
	"strings"
	"testing"
)

func TestRunSubjects(t *testing.T) {
	id := "7f1c"
	cases := map[string]string{
		SubjectRunCompleted(id): "topsis.run.7f1c.completed",
		SubjectRunDelivered(id): "topsis.run.7f1c.delivered",
		SubjectRunFailed(id):    "topsis.run.7f1c.failed",
	}
	for got, want := range cases {
		if got != want {
			t.Errorf("expected %s, got %s", want, got)
		}
		if !strings.HasPrefix(got, strings.TrimSuffix(StreamSubjects, ">")) {
			t.Errorf("subject %s is not captured by stream %s", got, StreamSubjects)
		}
	}
}
