package engine

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// rpict -t emits periodic reports like "rpict: 4.00% done after 0.13 hours".
// These markers are observability only; they never influence scheduling.
var progressRE = regexp.MustCompile(`(\d+(?:\.\d+)?)% done`)

// progressWriter line-splits a process's diagnostic stream, logging progress
// markers and retaining a short tail of other lines for failure context.
type progressWriter struct {
	log     *zap.Logger
	output  string
	partial strings.Builder
	tail    []string
}

const tailLines = 5

func newProgressWriter(log *zap.Logger, output string) *progressWriter {
	return &progressWriter{log: log, output: output}
}

func (w *progressWriter) Write(p []byte) (int, error) {
	for _, b := range p {
		if b == '\n' {
			w.handle(w.partial.String())
			w.partial.Reset()
			continue
		}
		w.partial.WriteByte(b)
	}
	return len(p), nil
}

func (w *progressWriter) handle(line string) {
	line = strings.TrimRight(line, "\r")
	if line == "" {
		return
	}
	if m := progressRE.FindStringSubmatch(line); m != nil {
		if pct, err := strconv.ParseFloat(m[1], 64); err == nil {
			w.log.Debug("render progress",
				zap.String("output", w.output),
				zap.Float64("percent", pct))
			return
		}
	}
	if len(w.tail) == tailLines {
		w.tail = w.tail[1:]
	}
	w.tail = append(w.tail, line)
}

// flush handles a trailing unterminated line.
func (w *progressWriter) flush() {
	if w.partial.Len() > 0 {
		w.handle(w.partial.String())
		w.partial.Reset()
	}
}

// Tail returns the retained non-progress diagnostic lines.
func (w *progressWriter) Tail() string {
	return strings.Join(w.tail, "\n")
}
