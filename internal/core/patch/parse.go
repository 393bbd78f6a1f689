package patch

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/melih/patchwork-docker/internal/core/domain"
)

const noNewlineMarker = '\\'

// ParseFile reads and parses the patch at path.
func ParseFile(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: patch file %s", domain.ErrNotFound, path)
		}
		return nil, err
	}
	defer f.Close()

	set, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return set, nil
}

// Parse reads unified-diff content. Text outside of diff items (commit
// messages, "diff" and "Index:" lines) is ignored. Input with no item carrying
// at least one hunk is ErrPatchFormat.
func Parse(r io.Reader) (*Set, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	p := &parser{lines: splitLines(data)}
	set := &Set{}
	for p.pos < len(p.lines) {
		item, ok, err := p.item()
		if err != nil {
			return nil, err
		}
		if !ok {
			p.pos++
			continue
		}
		if len(item.Hunks) > 0 {
			set.Items = append(set.Items, item)
		}
	}

	if len(set.Items) == 0 {
		return nil, domain.ErrPatchFormat
	}
	return set, nil
}

type parser struct {
	lines []string
	pos   int
}

func (p *parser) peek() (string, bool) {
	if p.pos >= len(p.lines) {
		return "", false
	}
	return trimEOL(p.lines[p.pos]), true
}

// Parses a "---"/"+++" header pair and the hunks that follow it. Reports
// false, without consuming anything, when the current line does not start an
// item.
func (p *parser) item() (Item, bool, error) {
	line, _ := p.peek()
	src := pattern(sourceHeaderExpr).FindStringSubmatch(line)
	if src == nil || p.pos+1 >= len(p.lines) {
		return Item{}, false, nil
	}
	dst := pattern(targetHeaderExpr).FindStringSubmatch(trimEOL(p.lines[p.pos+1]))
	if dst == nil {
		return Item{}, false, nil
	}
	p.pos += 2

	item := Item{Source: src[1], Target: dst[1]}
	for {
		line, ok := p.peek()
		if !ok {
			break
		}
		header := pattern(hunkHeaderExpr).FindStringSubmatch(line)
		if header == nil {
			break
		}
		p.pos++
		hunk, err := p.hunk(header)
		if err != nil {
			return Item{}, false, fmt.Errorf("%s: %w", item.Target, err)
		}
		item.Hunks = append(item.Hunks, hunk)
	}
	return item, true, nil
}

func (p *parser) hunk(header []string) (Hunk, error) {
	h := Hunk{
		SrcStart: atoi(header[1]),
		SrcLen:   rangeLen(header[2]),
		DstStart: atoi(header[3]),
		DstLen:   rangeLen(header[4]),
	}

	srcLeft, dstLeft := h.SrcLen, h.DstLen
	for srcLeft > 0 || dstLeft > 0 {
		raw, ok := p.peek()
		if !ok {
			return Hunk{}, fmt.Errorf("%w: hunk at line %d is truncated", domain.ErrPatchFormat, h.SrcStart)
		}

		var kind LineKind
		text := ""
		switch {
		case raw == "":
			// Some editors strip the space of empty context lines.
			kind = Context
		case raw[0] == noNewlineMarker:
			p.markNoNewline(&h)
			p.pos++
			continue
		default:
			kind, text = LineKind(raw[0]), raw[1:]
		}

		switch kind {
		case Context:
			srcLeft--
			dstLeft--
		case Removed:
			srcLeft--
		case Added:
			dstLeft--
		default:
			return Hunk{}, fmt.Errorf("%w: unexpected line %q in hunk at line %d", domain.ErrPatchFormat, raw, h.SrcStart)
		}
		if srcLeft < 0 || dstLeft < 0 {
			return Hunk{}, fmt.Errorf("%w: hunk at line %d is longer than its header says", domain.ErrPatchFormat, h.SrcStart)
		}
		h.Lines = append(h.Lines, Line{Kind: kind, Text: text})
		p.pos++
	}

	if raw, ok := p.peek(); ok && raw != "" && raw[0] == noNewlineMarker {
		p.markNoNewline(&h)
		p.pos++
	}
	return h, nil
}

func (p *parser) markNoNewline(h *Hunk) {
	if n := len(h.Lines); n > 0 {
		h.Lines[n-1].NoNewline = true
	}
}

// Splits data into lines that keep their terminators.
func splitLines(data []byte) []string {
	if len(data) == 0 {
		return nil
	}
	var lines []string
	for len(data) > 0 {
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			lines = append(lines, string(data))
			break
		}
		lines = append(lines, string(data[:i+1]))
		data = data[i+1:]
	}
	return lines
}

func trimEOL(line string) string {
	return strings.TrimRight(line, "\r\n")
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// An omitted range length means one line.
func rangeLen(s string) int {
	if s == "" {
		return 1
	}
	return atoi(s)
}
