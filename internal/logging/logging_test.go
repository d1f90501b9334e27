package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer
	quiet := New(&buf, false)
	quiet.Debug().Msg("hidden")
	quiet.Info().Msg("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug event written without verbose: %s", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("info event missing: %s", out)
	}

	buf.Reset()
	loud := New(&buf, true)
	loud.Debug().Str("clip", "clip_1").Msg("seek")
	if !strings.Contains(buf.String(), `"clip":"clip_1"`) {
		t.Errorf("verbose logger dropped debug event: %s", buf.String())
	}
}

func TestWithComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false).With().Str("component", "sync").Logger()
	logger.Info().Msg("tick")
	if !strings.Contains(buf.String(), `"component":"sync"`) {
		t.Errorf("component field missing: %s", buf.String())
	}

	// the global logger is usable before Init
	engine := WithComponent("engine")
	engine.Debug().Msg("noop")
}
