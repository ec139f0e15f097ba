package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/titanic-chat/backend/internal/model/chat"
	"github.com/zhouzirui/titanic-chat/backend/internal/service/router"
)

type fakeAnswerer struct{}

func (fakeAnswerer) Route(q string) router.Answer {
	if strings.Contains(q, "chart") {
		// 1x1 transparent PNG
		return router.Answer{Intent: router.IntentAgeHistogram, Text: "chart", Image: "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="}
	}
	return router.Answer{Intent: router.IntentUnrecognized, Text: router.FallbackText}
}

func TestRunREPLRecordsTranscript(t *testing.T) {
	chdir(t, t.TempDir())

	in := strings.NewReader("hello\n\nshow a chart\nexit\nnever asked\n")
	var out bytes.Buffer
	transcript := chat.NewTranscript("repl")

	require.NoError(t, runREPL(in, &out, fakeAnswerer{}, transcript))

	turns := transcript.AllTurns()
	require.Len(t, turns, 4)
	assert.Equal(t, "hello", turns[0].Content)
	assert.Equal(t, router.FallbackText, turns[1].Content)
	assert.Equal(t, "show a chart", turns[2].Content)
	assert.True(t, turns[3].HasImage())

	assert.Contains(t, out.String(), "Ask me anything about the Titanic passengers!")
	assert.Contains(t, out.String(), "chart saved to answer-2.png")
	_, err := os.Stat(filepath.Join(".", "answer-2.png"))
	assert.NoError(t, err)
}

func TestPrintAnswerWithoutImagePath(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printAnswer(&out, router.Answer{Text: "line\n"}, ""))
	assert.Equal(t, "line\n", out.String())
}

func TestAskCommandRequiresDataset(t *testing.T) {
	chdir(t, t.TempDir())

	cmd := newRootCmd()
	cmd.SetArgs([]string{"ask", "--data", "missing.csv", "average ticket fare"})
	cmd.SetOut(&bytes.Buffer{})
	assert.Error(t, cmd.Execute())
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
