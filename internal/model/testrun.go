package model

import "time"

// Channel records how a test run reached the service.
type Channel string

const (
	// ChannelSession is the browser upload form backed by a login session.
	ChannelSession Channel = "session"
	// ChannelAnonymous is the JSON upload API that trusts the declared username.
	ChannelAnonymous Channel = "anonymous"
	// ChannelAutotest is the token-protected path used by the service's own account.
	ChannelAutotest Channel = "autotest"
)

// TestCase is one "Test N: name RESULT" line of a log.
type TestCase struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Result   string `json:"result"`
}

// ParsedLog holds the fields extracted from a kernel regression-test log.
// Pure domain data: the parser builds it, nothing mutates it afterwards.
type ParsedLog struct {
	TestDate      time.Time  `json:"test_date"`
	TestSet       string     `json:"test_set"`
	KernelVersion string     `json:"kernel_version"`
	Release       string     `json:"release"`
	FedoraVersion int        `json:"fedora_version"`
	Arch          string     `json:"arch"`
	Result        string     `json:"result"`
	FailedTests   []string   `json:"failed_tests"`
	WarnedTests   []string   `json:"warned_tests"`
	Tests         []TestCase `json:"tests,omitempty"`
}

// TestRun is an accepted submission: the parsed log plus who sent it and where
// the raw bytes were archived.
type TestRun struct {
	ID      string  `json:"id"`
	Tester  string  `json:"tester"`
	Channel Channel `json:"channel"`
	ParsedLog
	LogPath   string    `json:"log_path"`
	CreatedAt time.Time `json:"created_at"`
}
