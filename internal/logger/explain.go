package logger

import (
	"io"
	"log"
	"strings"
	"sync"
)

var (
	explainMu  sync.Mutex
	explainLog *log.Logger
)

// SetExplainWriter routes explanation request/response dumps to w. nil disables them.
func SetExplainWriter(w io.Writer) {
	explainMu.Lock()
	defer explainMu.Unlock()
	if w == nil {
		explainLog = nil
		return
	}
	explainLog = log.New(w, "", log.LstdFlags)
}

type explainSection struct {
	Title string
	Body  string
}

func logExplain(kind, provider string, sections []explainSection) {
	explainMu.Lock()
	l := explainLog
	explainMu.Unlock()
	if l == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[EXPLAIN]")
	for _, tag := range []string{kind, provider} {
		if tag == "" {
			continue
		}
		b.WriteString("[")
		b.WriteString(tag)
		b.WriteString("]")
	}
	b.WriteString("\n")
	for _, sec := range sections {
		t := strings.TrimSpace(sec.Title)
		if t == "" {
			t = "CONTENT"
		}
		b.WriteString("--- ")
		b.WriteString(t)
		b.WriteString(" ---\n")
		b.WriteString(sec.Body)
		if !strings.HasSuffix(sec.Body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	l.Print(b.String())
}

func LogExplainRequest(provider, systemPrompt, record string) {
	logExplain("request", provider, []explainSection{
		{Title: "SYSTEM", Body: systemPrompt},
		{Title: "RECORD", Body: record},
	})
}

func LogExplainResponse(provider, text string) {
	logExplain("response", provider, []explainSection{{Title: "TEXT", Body: text}})
}
