// Package logparser turns the text produced by the kernel regression test
// harness into a model.ParsedLog.
//
// A log is a header of "Key: value" lines, a separator line made of '='
// characters, and one "Test N: name RESULT" line per executed test:
//
//	Date: Fri Jun 27 10:14:35 CEST 2014
//	Test set: default
//	Kernel: 3.14.8-200.fc20.x86_64
//	Release: Fedora release 20 (Heisenbug)
//	Result: PASS
//	Failed Tests: None
//	Warned Tests: None
//	============================================================
//	Test  0: ./default/cachedrop                               PASS
//
// Parsing is all-or-nothing: any missing or malformed required field rejects
// the whole log with an error wrapping ErrInvalidFile.
package logparser

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"kerneltest/internal/model"
)

// ErrInvalidFile is wrapped by every rejection, whatever the reason.
var ErrInvalidFile = errors.New("invalid input file")

// ParseError pinpoints why a log was rejected.
type ParseError struct {
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid input file: line %d: %s", e.Line, e.Reason)
	}
	return "invalid input file: " + e.Reason
}

func (e *ParseError) Unwrap() error { return ErrInvalidFile }

const (
	keyDate    = "Date"
	keyTestSet = "Test set"
	keyKernel  = "Kernel"
	keyRelease = "Release"
	keyResult  = "Result"
	keyFailed  = "Failed Tests"
	keyWarned  = "Warned Tests"

	maxLineBytes = 64 << 10
)

var requiredKeys = []string{keyDate, keyTestSet, keyKernel, keyRelease, keyResult, keyFailed}

var knownKeys = map[string]bool{
	keyDate: true, keyTestSet: true, keyKernel: true, keyRelease: true,
	keyResult: true, keyFailed: true, keyWarned: true,
}

var (
	testLineRe = regexp.MustCompile(`^Test\s+(\d+):\s+(\S+)\s+(PASS|FAIL|WARN|SKIP)$`)
	releaseRe  = regexp.MustCompile(`(?i)\brelease\s+(\d+|rawhide)\b`)
)

// Layouts accepted for the Date header, most common first.
var dateLayouts = []string{
	"Mon Jan _2 15:04:05 MST 2006",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

var arches = map[string]bool{
	"x86_64": true, "i686": true, "armv7hl": true, "aarch64": true,
	"ppc64": true, "ppc64le": true, "s390x": true, "noarch": true,
}

var runResults = map[string]bool{"PASS": true, "FAIL": true, "WARN": true}

// ParseReader reads r to EOF and parses the content.
func ParseReader(r io.Reader) (model.ParsedLog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return model.ParsedLog{}, &ParseError{Reason: "read log: " + err.Error()}
	}
	return Parse(data)
}

// Parse validates and decodes a complete log.
func Parse(data []byte) (model.ParsedLog, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return model.ParsedLog{}, &ParseError{Reason: "empty log"}
	}
	if !utf8.Valid(data) {
		return model.ParsedLog{}, &ParseError{Reason: "log is not valid UTF-8"}
	}

	header := make(map[string]string, len(knownKeys))
	var tests []model.TestCase
	inBody := false

	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \t\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		if !inBody {
			if isSeparator(line) {
				inBody = true
				continue
			}
			key, value, ok := strings.Cut(line, ":")
			if !ok {
				return model.ParsedLog{}, &ParseError{Line: lineNo, Reason: `expected "Key: value"`}
			}
			key = strings.TrimSpace(key)
			if !knownKeys[key] {
				continue
			}
			if _, dup := header[key]; dup {
				return model.ParsedLog{}, &ParseError{Line: lineNo, Reason: fmt.Sprintf("duplicate %q field", key)}
			}
			header[key] = strings.TrimSpace(value)
			continue
		}

		tc, err := parseTestLine(strings.TrimSpace(line))
		if err != nil {
			return model.ParsedLog{}, &ParseError{Line: lineNo, Reason: err.Error()}
		}
		tests = append(tests, tc)
	}
	if err := sc.Err(); err != nil {
		return model.ParsedLog{}, &ParseError{Line: lineNo + 1, Reason: err.Error()}
	}

	for _, k := range requiredKeys {
		if header[k] == "" {
			return model.ParsedLog{}, &ParseError{Reason: fmt.Sprintf("missing required field %q", k)}
		}
	}

	return build(header, tests)
}

func build(header map[string]string, tests []model.TestCase) (model.ParsedLog, error) {
	date, err := parseDate(header[keyDate])
	if err != nil {
		return model.ParsedLog{}, &ParseError{Reason: err.Error()}
	}

	result := strings.ToUpper(header[keyResult])
	if !runResults[result] {
		return model.ParsedLog{}, &ParseError{Reason: fmt.Sprintf("unknown result %q", header[keyResult])}
	}

	kernel := header[keyKernel]
	arch, err := archOf(kernel)
	if err != nil {
		return model.ParsedLog{}, &ParseError{Reason: err.Error()}
	}

	release := header[keyRelease]
	version, err := fedoraVersion(release)
	if err != nil {
		return model.ParsedLog{}, &ParseError{Reason: err.Error()}
	}

	failed := splitList(header[keyFailed])
	if result == "PASS" && len(failed) > 0 {
		return model.ParsedLog{}, &ParseError{Reason: "result PASS with failed tests listed"}
	}

	return model.ParsedLog{
		TestDate:      date,
		TestSet:       header[keyTestSet],
		KernelVersion: kernel,
		Release:       release,
		FedoraVersion: version,
		Arch:          arch,
		Result:        result,
		FailedTests:   failed,
		WarnedTests:   splitList(header[keyWarned]),
		Tests:         tests,
	}, nil
}

func isSeparator(line string) bool {
	return len(line) >= 3 && strings.Trim(line, "=") == ""
}

func parseTestLine(line string) (model.TestCase, error) {
	m := testLineRe.FindStringSubmatch(line)
	if m == nil {
		return model.TestCase{}, fmt.Errorf("malformed test line %q", line)
	}
	pos, err := strconv.Atoi(m[1])
	if err != nil {
		return model.TestCase{}, fmt.Errorf("malformed test number %q", m[1])
	}
	return model.TestCase{Position: pos, Name: m[2], Result: m[3]}, nil
}

func parseDate(v string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", v)
}

// archOf takes the architecture from the last dot-separated component of a
// kernel NEVRA such as 3.14.8-200.fc20.x86_64.
func archOf(kernel string) (string, error) {
	i := strings.LastIndexByte(kernel, '.')
	if i < 0 || i == len(kernel)-1 {
		return "", fmt.Errorf("kernel %q has no architecture suffix", kernel)
	}
	arch := kernel[i+1:]
	if !arches[arch] {
		return "", fmt.Errorf("kernel %q has unknown architecture %q", kernel, arch)
	}
	return arch, nil
}

// fedoraVersion returns 0 for rawhide.
func fedoraVersion(release string) (int, error) {
	m := releaseRe.FindStringSubmatch(release)
	if m == nil {
		return 0, fmt.Errorf("release %q has no version", release)
	}
	if strings.EqualFold(m[1], "rawhide") {
		return 0, nil
	}
	return strconv.Atoi(m[1])
}

func splitList(v string) []string {
	if v == "" || strings.EqualFold(v, "none") {
		return nil
	}
	return strings.Fields(v)
}
