package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func setup(t *testing.T, table string) (dir, renderer string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script renderer stand-in requires a POSIX shell")
	}
	dir = t.TempDir()
	files := map[string]string{
		"reviewer.csv":           table,
		"certificate_review.tex": "[Reviewer Name] reviewed [Number] papers.\n",
		"fake-pdflatex": "#!/bin/sh\nfor last; do :; done\nbase=\"${last%.tex}\"\n" +
			"if grep -q Broken \"$last\"; then echo 'fatal: broken' >&2; exit 1; fi\n" +
			"touch \"$base.pdf\" \"$base.aux\" \"$base.log\" \"$base.out\"\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0755); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}
	return dir, filepath.Join(dir, "fake-pdflatex")
}

func TestRun_GeneratesCertificates(t *testing.T) {
	dir, fake := setup(t, "Name,Number\nJane Doe,3\nBroken Entry,2\nTaro Yamada,1\n")
	out := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{
		filepath.Join(dir, "reviewer.csv"),
		filepath.Join(dir, "certificate_review.tex"),
		"-d",
		"--renderer", fake,
		"--output-dir", out,
		"--log-level", "error",
	}, &stdout, &stderr)

	if code != 0 {
		t.Fatalf("run() = %d, stderr:\n%s", code, stderr.String())
	}

	for _, name := range []string{"Jane_Doe", "Taro_Yamada"} {
		base := filepath.Join(out, "Certificate_of_reviewer_"+name)
		if _, err := os.Stat(base + ".pdf"); err != nil {
			t.Errorf("%s.pdf missing: %v", name, err)
		}
		if _, err := os.Stat(base + ".tex"); !os.IsNotExist(err) {
			t.Errorf("%s.tex should have been deleted", name)
		}
	}

	// A failed record keeps its .tex and has no PDF.
	broken := filepath.Join(out, "Certificate_of_reviewer_Broken_Entry")
	if _, err := os.Stat(broken + ".tex"); err != nil {
		t.Errorf("failed record lost its .tex: %v", err)
	}
	if _, err := os.Stat(broken + ".pdf"); !os.IsNotExist(err) {
		t.Error("failed record has a PDF")
	}

	output := stdout.String()
	for _, want := range []string{
		"Generated PDF file Certificate_of_reviewer_Jane_Doe.pdf.",
		"Generated PDF file Certificate_of_reviewer_Taro_Yamada.pdf.",
		`"Broken Entry" (row 2): failed to generate the PDF file.`,
		"fatal: broken",
		"partial: 2 generated, 1 failed",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("stdout missing %q:\n%s", want, output)
		}
	}
}

func TestRun_MissingInputs(t *testing.T) {
	dir, fake := setup(t, "Name,Number\nJane Doe,3\n")
	out := filepath.Join(dir, "out")

	tests := []struct {
		name     string
		table    string
		template string
		wantMsg  string
	}{
		{
			name:     "missing template",
			table:    filepath.Join(dir, "reviewer.csv"),
			template: filepath.Join(dir, "missing.tex"),
			wantMsg:  "template file not found",
		},
		{
			name:     "missing table",
			table:    filepath.Join(dir, "missing.csv"),
			template: filepath.Join(dir, "certificate_review.tex"),
			wantMsg:  "reviewer table not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(context.Background(), []string{
				tt.table, tt.template, "--renderer", fake, "--output-dir", out, "--log-level", "error",
			}, &stdout, &stderr)

			if code != 1 {
				t.Errorf("run() = %d, want 1", code)
			}
			if !strings.Contains(stderr.String(), tt.wantMsg) {
				t.Errorf("stderr missing %q:\n%s", tt.wantMsg, stderr.String())
			}
			if _, err := os.Stat(out); !os.IsNotExist(err) {
				t.Error("outputs produced for an aborted run")
			}
		})
	}
}

func TestRun_PrintTemplate(t *testing.T) {
	var stdout bytes.Buffer
	if code := run(context.Background(), []string{"--print-template"}, &stdout, &bytes.Buffer{}); code != 0 {
		t.Fatalf("run() = %d, want 0", code)
	}
	if !strings.Contains(stdout.String(), "[Reviewer Name]") {
		t.Errorf("template not printed:\n%s", stdout.String())
	}
}

func TestRun_Usage(t *testing.T) {
	var stderr bytes.Buffer
	if code := run(context.Background(), nil, &bytes.Buffer{}, &stderr); code != 2 {
		t.Errorf("run() = %d, want 2", code)
	}
	if !strings.Contains(stderr.String(), "Usage:") {
		t.Errorf("usage not printed:\n%s", stderr.String())
	}
}
