// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sandbox

import (
	"bytes"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"testing"

	"golang.org/x/sys/unix"
)

// newTestAuditor returns an auditor recording into a Report and logging
// JSON into the returned buffer.
func newTestAuditor(t *testing.T, prober Prober, realHome bool) (*Auditor, *Report, *bytes.Buffer) {
	t.Helper()

	report := &Report{}
	var logs bytes.Buffer
	auditor, err := NewAuditor(AuditorConfig{
		Prober:   prober,
		Sink:     report,
		RealHome: realHome,
		Logger:   slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: LevelTrace})),
	})
	if err != nil {
		t.Fatalf("NewAuditor: %v", err)
	}
	return auditor, report, &logs
}

// singleVerdict fails the test unless exactly one verdict was recorded.
func singleVerdict(t *testing.T, report *Report) Verdict {
	t.Helper()
	if len(report.Verdicts) != 1 {
		t.Fatalf("got %d verdicts, want 1: %+v", len(report.Verdicts), report.Verdicts)
	}
	return report.Verdicts[0]
}

func TestNewAuditorRequiresCollaborators(t *testing.T) {
	t.Parallel()

	if _, err := NewAuditor(AuditorConfig{Sink: &Report{}}); err == nil {
		t.Error("NewAuditor without a prober should fail")
	}
	if _, err := NewAuditor(AuditorConfig{Prober: newFakeProber()}); err == nil {
		t.Error("NewAuditor without a sink should fail")
	}
	auditor, err := NewAuditor(AuditorConfig{Prober: newFakeProber(), Sink: &Report{}})
	if err != nil {
		t.Fatalf("NewAuditor: %v", err)
	}
	if score := auditor.Score(); score != (Score{}) {
		t.Errorf("initial Score() = %+v, want zero", score)
	}
}

func TestCheckCapabilities(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		t.Parallel()
		prober := newFakeProber()
		auditor, report, _ := newTestAuditor(t, prober, false)

		if err := auditor.CheckCapabilities(); err != nil {
			t.Fatalf("CheckCapabilities: %v", err)
		}
		verdict := singleVerdict(t, report)
		if verdict.Severity != SeverityGreat {
			t.Errorf("severity = %v, want GREAT", verdict.Severity)
		}
		if verdict.Message != "The capability bounding set is empty." {
			t.Errorf("message = %q", verdict.Message)
		}
		if score := auditor.Score(); score != (Score{Max: 2, Lost: 0}) {
			t.Errorf("Score() = %+v, want {2 0}", score)
		}
	})

	t.Run("not empty", func(t *testing.T) {
		t.Parallel()
		prober := newFakeProber()
		prober.capabilities = 0x000001ffffffffff
		auditor, report, _ := newTestAuditor(t, prober, false)

		if err := auditor.CheckCapabilities(); err != nil {
			t.Fatalf("CheckCapabilities: %v", err)
		}
		verdict := singleVerdict(t, report)
		if verdict.Severity != SeverityBad {
			t.Errorf("severity = %v, want BAD", verdict.Severity)
		}
		if verdict.Message != "The capability bounding set is NOT empty." {
			t.Errorf("message = %q", verdict.Message)
		}
		if score := auditor.Score(); score != (Score{Max: 2, Lost: 2}) {
			t.Errorf("Score() = %+v, want {2 2}", score)
		}
	})

	t.Run("unreadable", func(t *testing.T) {
		t.Parallel()
		prober := newFakeProber()
		prober.capabilitiesErr = ErrCapabilityFieldMissing
		auditor, report, _ := newTestAuditor(t, prober, false)

		err := auditor.CheckCapabilities()
		var environmentError *EnvironmentError
		if !errors.As(err, &environmentError) {
			t.Fatalf("CheckCapabilities error = %v, want *EnvironmentError", err)
		}
		if !errors.Is(err, ErrCapabilityFieldMissing) {
			t.Errorf("error %v should wrap ErrCapabilityFieldMissing", err)
		}
		if len(report.Verdicts) != 0 {
			t.Errorf("got verdicts %+v, want none", report.Verdicts)
		}
	})
}

func TestCheckNoNewPrivileges(t *testing.T) {
	t.Parallel()

	t.Run("set", func(t *testing.T) {
		t.Parallel()
		prober := newFakeProber()
		prober.noNewPrivs = true
		auditor, report, _ := newTestAuditor(t, prober, false)

		auditor.CheckNoNewPrivileges()
		verdict := singleVerdict(t, report)
		if verdict.Severity != SeverityGreat {
			t.Errorf("severity = %v, want GREAT", verdict.Severity)
		}
		if !strings.HasPrefix(verdict.Message, "no_new_privs is set") {
			t.Errorf("message = %q", verdict.Message)
		}
		if score := auditor.Score(); score != (Score{Max: 2}) {
			t.Errorf("Score() = %+v, want {2 0}", score)
		}
	})

	t.Run("unset", func(t *testing.T) {
		t.Parallel()
		auditor, report, _ := newTestAuditor(t, newFakeProber(), false)

		auditor.CheckNoNewPrivileges()
		verdict := singleVerdict(t, report)
		if verdict.Severity != SeverityBad {
			t.Errorf("severity = %v, want BAD", verdict.Severity)
		}
		if !strings.HasPrefix(verdict.Message, "no_new_privs is NOT set") {
			t.Errorf("message = %q", verdict.Message)
		}
		if score := auditor.Score(); score != (Score{Max: 2, Lost: 2}) {
			t.Errorf("Score() = %+v, want {2 2}", score)
		}
	})

	t.Run("query fails", func(t *testing.T) {
		t.Parallel()
		prober := newFakeProber()
		prober.noNewPrivsErr = unix.EINVAL
		auditor, report, logs := newTestAuditor(t, prober, false)

		auditor.CheckNoNewPrivileges()
		if len(report.Verdicts) != 0 {
			t.Errorf("got verdicts %+v, want none", report.Verdicts)
		}
		// The weight stays in Max with nothing lost.
		if score := auditor.Score(); score != (Score{Max: 2}) {
			t.Errorf("Score() = %+v, want {2 0}", score)
		}
		if !strings.Contains(logs.String(), `"unresolved_weight":2`) {
			t.Errorf("log should record the unresolved weight:\n%s", logs.String())
		}
	})
}

func TestCheckNoRead(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		severity Severity
		message  string
	}{
		{"readable", nil, SeverityUgly, "The sandbox can read /etc/shadow."},
		{"denied", unix.EACCES, SeverityGood, "The sandbox cannot read /etc/shadow."},
		{"missing", unix.ENOENT, SeverityGood, "The sandbox cannot read /etc/shadow because it does not exist."},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			prober := newFakeProber()
			prober.read["/etc/shadow"] = test.err
			auditor, report, _ := newTestAuditor(t, prober, false)

			auditor.CheckNoRead("/etc/shadow")
			verdict := singleVerdict(t, report)
			if verdict.Severity != test.severity {
				t.Errorf("severity = %v, want %v", verdict.Severity, test.severity)
			}
			if verdict.Message != test.message {
				t.Errorf("message = %q, want %q", verdict.Message, test.message)
			}
			if verdict.Rule != DenyReadRule("/etc/shadow") {
				t.Errorf("rule = %v, want read /etc/shadow", verdict.Rule)
			}
		})
	}

	t.Run("other error", func(t *testing.T) {
		t.Parallel()
		prober := newFakeProber()
		prober.read["/etc/shadow"] = unix.EIO
		auditor, report, logs := newTestAuditor(t, prober, false)

		auditor.CheckNoRead("/etc/shadow")
		if len(report.Verdicts) != 0 {
			t.Errorf("got verdicts %+v, want none", report.Verdicts)
		}
		if score := auditor.Score(); score != (Score{Max: 1}) {
			t.Errorf("Score() = %+v, want {1 0}", score)
		}
		if !strings.Contains(logs.String(), `"level":"ERROR"`) {
			t.Errorf("probe failure should be logged at error level:\n%s", logs.String())
		}
	})
}

func TestCheckNoReadWarnsOnRelativePath(t *testing.T) {
	t.Parallel()

	auditor, _, logs := newTestAuditor(t, newFakeProber(), false)
	auditor.CheckNoRead("relative/file")
	if !strings.Contains(logs.String(), "relative paths aren't expected to work") {
		t.Errorf("missing relative path warning:\n%s", logs.String())
	}

	auditor, _, logs = newTestAuditor(t, newFakeProber(), false)
	auditor.CheckNoRead("/absolute/file")
	if strings.Contains(logs.String(), "relative paths") {
		t.Errorf("unexpected relative path warning for absolute path:\n%s", logs.String())
	}
}

func TestCheckNoWrite(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		setup    func(*fakeProber)
		realHome bool
		severity Severity
		message  string
	}{
		{
			name:     "path writable",
			path:     "/tmp/x",
			setup:    func(p *fakeProber) { p.write["/tmp/x"] = nil },
			severity: SeverityUgly,
			message:  "The sandbox can write to /tmp/x.",
		},
		{
			name:     "path denied",
			path:     "/etc/passwd",
			setup:    func(p *fakeProber) { p.write["/etc/passwd"] = unix.EACCES; p.owners["/etc/passwd"] = 0 },
			severity: SeverityGood,
			message:  "The sandbox cannot write to /etc/passwd.",
		},
		{
			name: "path denied but owned",
			path: "/home/alice/notes",
			setup: func(p *fakeProber) {
				p.write["/home/alice/notes"] = unix.EACCES
				p.owners["/home/alice/notes"] = p.euid
			},
			severity: SeverityUgly,
			message:  "The sandbox can write to /home/alice/notes after a chmod.",
		},
		{
			name:     "path read-only filesystem",
			path:     "/usr/bin/ls",
			setup:    func(p *fakeProber) { p.write["/usr/bin/ls"] = unix.EROFS },
			severity: SeverityGood,
			message:  "The sandbox cannot write to /usr/bin/ls.",
		},
		{
			name:     "ancestor writable outside real home",
			path:     "/a/b/c",
			setup:    func(p *fakeProber) { p.write["/a"] = nil },
			severity: SeverityGood,
			message:  "The sandbox cannot write to /a/b/c.",
		},
		{
			name:     "ancestor writable in real home",
			path:     "/a/b/c",
			setup:    func(p *fakeProber) { p.write["/a"] = nil },
			realHome: true,
			severity: SeverityUgly,
			message:  "The sandbox can create /a/b/c.",
		},
		{
			name: "ancestor denied and owned",
			path: "/a/b",
			setup: func(p *fakeProber) {
				p.write["/a"] = unix.EACCES
				p.owners["/a"] = p.euid
			},
			severity: SeverityGood,
			message:  "The sandbox cannot write to /a/b.",
		},
		{
			name:     "ancestor read-only filesystem",
			path:     "/a/b",
			setup:    func(p *fakeProber) { p.write["/a"] = unix.EROFS },
			realHome: true,
			severity: SeverityGood,
			message:  "The sandbox cannot write to /a/b.",
		},
		{
			name:     "root writable",
			path:     "/nonexistent",
			setup:    func(p *fakeProber) { p.write["/"] = nil },
			realHome: true,
			severity: SeverityUgly,
			message:  "The sandbox can create /nonexistent.",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			t.Parallel()
			prober := newFakeProber()
			test.setup(prober)
			auditor, report, _ := newTestAuditor(t, prober, test.realHome)

			auditor.CheckNoWrite(test.path)
			verdict := singleVerdict(t, report)
			if verdict.Severity != test.severity {
				t.Errorf("severity = %v, want %v", verdict.Severity, test.severity)
			}
			if verdict.Message != test.message {
				t.Errorf("message = %q, want %q", verdict.Message, test.message)
			}
			wantLost := 0
			if !test.severity.Compliant() {
				wantLost = 1
			}
			if score := auditor.Score(); score != (Score{Max: 1, Lost: wantLost}) {
				t.Errorf("Score() = %+v, want {1 %d}", score, wantLost)
			}
		})
	}
}

func TestCheckNoWriteStopsAtFirstExistingAncestor(t *testing.T) {
	t.Parallel()

	prober := newFakeProber()
	prober.write["/a"] = nil
	prober.write["/"] = unix.EROFS
	auditor, report, _ := newTestAuditor(t, prober, true)

	auditor.CheckNoWrite("/a/b/c")

	want := []string{"W_OK /a/b/c", "W_OK /a/b", "W_OK /a"}
	if !slices.Equal(prober.probes, want) {
		t.Errorf("probes = %v, want %v", prober.probes, want)
	}
	// /a is writable, so /a/b/c can be created even though / is not.
	verdict := singleVerdict(t, report)
	if verdict.Severity != SeverityUgly {
		t.Errorf("severity = %v, want UGLY", verdict.Severity)
	}
}

func TestCheckNoWriteUnresolved(t *testing.T) {
	t.Parallel()

	t.Run("unexpected error", func(t *testing.T) {
		t.Parallel()
		prober := newFakeProber()
		prober.write["/a"] = unix.ELOOP
		auditor, report, logs := newTestAuditor(t, prober, false)

		auditor.CheckNoWrite("/a/b")
		if len(report.Verdicts) != 0 {
			t.Errorf("got verdicts %+v, want none", report.Verdicts)
		}
		if score := auditor.Score(); score != (Score{Max: 1}) {
			t.Errorf("Score() = %+v, want {1 0}", score)
		}
		if !strings.Contains(logs.String(), `"unresolved_weight":1`) {
			t.Errorf("log should record the unresolved weight:\n%s", logs.String())
		}
	})

	t.Run("nothing exists", func(t *testing.T) {
		t.Parallel()
		auditor, report, logs := newTestAuditor(t, newFakeProber(), false)

		auditor.CheckNoWrite("/a/b")
		if len(report.Verdicts) != 0 {
			t.Errorf("got verdicts %+v, want none", report.Verdicts)
		}
		if !strings.Contains(logs.String(), "no existing ancestor found") {
			t.Errorf("missing log entry:\n%s", logs.String())
		}
	})

	t.Run("empty path", func(t *testing.T) {
		t.Parallel()
		prober := newFakeProber()
		auditor, report, _ := newTestAuditor(t, prober, false)

		auditor.CheckNoWrite("")
		if len(report.Verdicts) != 0 {
			t.Errorf("got verdicts %+v, want none", report.Verdicts)
		}
		if want := []string{"W_OK "}; !slices.Equal(prober.probes, want) {
			t.Errorf("probes = %q, want %q", prober.probes, want)
		}
	})
}

func TestCheckNoWriteChecksPathAsWritten(t *testing.T) {
	t.Parallel()

	// Through a symlink, /home/alice/link/.. is not /home/alice. The
	// path must reach the kernel unchanged.
	prober := newFakeProber()
	prober.write["/home/alice/link/../x"] = nil
	prober.write["/home/alice/x"] = unix.ENOENT
	prober.write["/home/alice"] = unix.EACCES
	auditor, report, _ := newTestAuditor(t, prober, false)

	auditor.CheckNoWrite("/home/alice/link/../x")

	if want := []string{"W_OK /home/alice/link/../x"}; !slices.Equal(prober.probes, want) {
		t.Errorf("probes = %q, want %q", prober.probes, want)
	}
	verdict := singleVerdict(t, report)
	if verdict.Severity != SeverityUgly || verdict.Message != "The sandbox can write to /home/alice/link/../x." {
		t.Errorf("verdict = %+v", verdict)
	}
}

func TestCheckNoWriteRelativePathHasNoVerdict(t *testing.T) {
	t.Parallel()

	prober := newFakeProber()
	prober.write["."] = nil
	auditor, report, logs := newTestAuditor(t, prober, true)

	auditor.CheckNoWrite("nonexistent/child")

	if want := []string{"W_OK nonexistent/child", "W_OK nonexistent", "W_OK "}; !slices.Equal(prober.probes, want) {
		t.Errorf("probes = %q, want %q", prober.probes, want)
	}
	if len(report.Verdicts) != 0 {
		t.Errorf("got verdicts %+v, want none", report.Verdicts)
	}
	if !strings.Contains(logs.String(), "no existing ancestor found") {
		t.Errorf("unresolved walk not logged:\n%s", logs.String())
	}
	if score := auditor.Score(); score != (Score{Max: 1}) {
		t.Errorf("Score() = %+v, want {1 0}", score)
	}
}

func TestAncestorChain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		want []string
	}{
		{"/a/b/c", []string{"/a/b/c", "/a/b", "/a", "/"}},
		{"/a/b/", []string{"/a/b/", "/a", "/"}},
		{"/a/link/../x", []string{"/a/link/../x", "/a/link/..", "/a/link", "/a", "/"}},
		{"/a/./b", []string{"/a/./b", "/a/.", "/a", "/"}},
		{"//a//b", []string{"//a//b", "//a", "/"}},
		{"/", []string{"/"}},
		{"a/b", []string{"a/b", "a", ""}},
		{"", []string{""}},
	}
	for _, test := range tests {
		if got := ancestorChain(test.path); !slices.Equal(got, test.want) {
			t.Errorf("ancestorChain(%q) = %q, want %q", test.path, got, test.want)
		}
	}
}

func TestCheckDispatch(t *testing.T) {
	t.Parallel()

	prober := sandboxedProber()
	auditor, report, _ := newTestAuditor(t, prober, false)

	rules := []Rule{
		AnnounceRule("== Base =="),
		CapabilitiesRule(),
		NoNewPrivilegesRule(),
		DenyReadRule("/etc/shadow"),
		DenyWriteRule("/tmp/x"),
	}
	for _, rule := range rules {
		if err := auditor.Check(rule); err != nil {
			t.Fatalf("Check(%v): %v", rule, err)
		}
	}

	if want := []string{"== Base =="}; !slices.Equal(report.Announcements, want) {
		t.Errorf("announcements = %q, want %q", report.Announcements, want)
	}
	var got []Rule
	for _, verdict := range report.Verdicts {
		got = append(got, verdict.Rule)
	}
	if !slices.Equal(got, rules[1:]) {
		t.Errorf("verdict rules = %v, want %v", got, rules[1:])
	}
	if score := auditor.Score(); score != (Score{Max: 6}) {
		t.Errorf("Score() = %+v, want {6 0}", score)
	}

	if err := auditor.Check(Rule{}); err == nil {
		t.Error("Check of the zero Rule should fail")
	}
}

// Every check adds its weight to Max exactly once, and Lost never exceeds
// Max, whatever mix of outcomes the probes produce.
func TestScoreInvariant(t *testing.T) {
	t.Parallel()

	prober := newFakeProber()
	prober.capabilities = 1
	prober.noNewPrivsErr = unix.EPERM
	prober.read["/r/ok"] = nil
	prober.read["/r/denied"] = unix.EACCES
	prober.read["/r/broken"] = unix.EIO
	prober.write["/w"] = nil
	prober.write["/w/denied"] = unix.EACCES
	prober.write["/w/broken"] = unix.ELOOP
	auditor, report, _ := newTestAuditor(t, prober, true)

	rules := []Rule{
		CapabilitiesRule(),
		NoNewPrivilegesRule(),
		AnnounceRule("ignored"),
		DenyReadRule("/r/ok"),
		DenyReadRule("/r/denied"),
		DenyReadRule("/r/broken"),
		DenyReadRule("/r/missing"),
		DenyWriteRule("/w"),
		DenyWriteRule("/w/denied"),
		DenyWriteRule("/w/broken"),
		DenyWriteRule("/w/new/deep"),
	}

	wantMax := 0
	for _, rule := range rules {
		before := auditor.Score()
		if err := auditor.Check(rule); err != nil {
			t.Fatalf("Check(%v): %v", rule, err)
		}
		after := auditor.Score()
		if after.Max-before.Max != rule.Class().Weight() {
			t.Errorf("Check(%v) added %d to Max, want %d", rule, after.Max-before.Max, rule.Class().Weight())
		}
		if after.Lost < before.Lost || after.Lost-before.Lost > rule.Class().Weight() {
			t.Errorf("Check(%v) changed Lost by %d", rule, after.Lost-before.Lost)
		}
		wantMax += rule.Class().Weight()
	}

	score := auditor.Score()
	if score.Max != wantMax {
		t.Errorf("Max = %d, want %d", score.Max, wantMax)
	}
	if score.Lost < 0 || score.Lost > score.Max {
		t.Errorf("Lost = %d outside [0, %d]", score.Lost, score.Max)
	}

	lost := 0
	for _, verdict := range report.Verdicts {
		if !verdict.Compliant() {
			lost += verdict.Rule.Class().Weight()
		}
	}
	if lost != score.Lost {
		t.Errorf("violations weigh %d, Lost = %d", lost, score.Lost)
	}
}
