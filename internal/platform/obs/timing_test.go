package obs

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestTimeLogsRunIDAndError(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.DebugLevel)

	ctx, id := WithRunID(context.Background())
	if RunID(ctx) != id {
		t.Fatalf("RunID = %q, want %q", RunID(ctx), id)
	}

	err := errors.New("boom")
	Time(ctx, log, "lookup")(&err)

	out := buf.String()
	if !strings.Contains(out, id) {
		t.Errorf("log output missing run id: %s", out)
	}
	if !strings.Contains(out, "boom") {
		t.Errorf("log output missing error: %s", out)
	}
}
