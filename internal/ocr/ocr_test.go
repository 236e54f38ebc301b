package ocr

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type stubRunner struct {
	stdout []byte
	err    error

	gotName string
	gotArgs []string
}

func (s *stubRunner) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	s.gotName = name
	s.gotArgs = args
	return s.stdout, nil, s.err
}

func TestExtractCommandLine(t *testing.T) {
	r := &stubRunner{stdout: []byte("VÖEN: 123\r\n\r\n\r\n\r\nCəmi 1.00\r\n")}
	e := NewExtractor(Config{TessdataDir: "/opt/tessdata", PSM: 6}, nil)
	e.runner = r

	text, err := e.Extract(context.Background(), "/in/a.jpeg")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if r.gotName != "tesseract" {
		t.Errorf("command = %q", r.gotName)
	}
	want := "/in/a.jpeg stdout -l aze --psm 6 --tessdata-dir /opt/tessdata"
	if got := strings.Join(r.gotArgs, " "); got != want {
		t.Errorf("args = %q, want %q", got, want)
	}
	if text != "VÖEN: 123\n\nCəmi 1.00" {
		t.Errorf("normalized text = %q", text)
	}
}

func TestExtractRunnerError(t *testing.T) {
	r := &stubRunner{err: errors.New("exit status 1")}
	e := NewExtractor(Config{}, nil)
	e.runner = r

	if _, err := e.Extract(context.Background(), "/in/a.jpeg"); err == nil {
		t.Fatal("want error when the command fails")
	}
}

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"crlf", "a\r\nb\r\nc", "a\nb\nc"},
		{"bare cr", "a\rb", "a\nb"},
		{"blank run squeeze", "a\n\n\n\n\nb", "a\n\nb"},
		{"double blank kept", "a\n\nb", "a\n\nb"},
		{"edges trimmed", "\n\n  a  \n\n", "a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
