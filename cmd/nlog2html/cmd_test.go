package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/philipp01105/nloghtml/core"
	"github.com/philipp01105/nloghtml/formatter"
)

func jsonLines(t *testing.T, entries ...*core.Entry) string {
	t.Helper()
	f := formatter.NewJSONFormatter(formatter.Config{IncludeCaller: true})
	var buf bytes.Buffer
	for _, e := range entries {
		require.NoError(t, f.FormatTo(e, &buf))
	}
	return buf.String()
}

func sampleEntries() []*core.Entry {
	ts := time.Date(2026, 1, 15, 12, 0, 0, 250*int(time.Millisecond), time.UTC)
	withNDC := &core.Entry{Time: ts, Level: core.ErrorLevel, Logger: "app.db", Thread: "worker-1", Message: "query failed"}
	withNDC.SetNDC("req=7")
	return []*core.Entry{
		{
			Time: ts, Level: core.InfoLevel, Logger: "app", Thread: "main", Message: "a < b",
			Caller: core.CallerInfo{File: "/src/main.go", ShortFile: "main.go", Line: 12, Function: "main.main", Defined: true},
		},
		withNDC,
	}
}

type result struct {
	out, errOut string
	err         error
}

func execute(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func TestNewCmd(t *testing.T) {
	t.Run("stdin to stdout", func(t *testing.T) {
		res := execute(t, jsonLines(t, sampleEntries()...))
		require.NoError(t, res.err)

		out := res.out
		assert.True(t, strings.HasPrefix(out, "<!DOCTYPE HTML"))
		assert.True(t, strings.HasSuffix(out, "</body></html>"))
		assert.Contains(t, out, "<title>Log Messages</title>")
		assert.Equal(t, 2, strings.Count(out, "<tr>\n<td>"))
		assert.Contains(t, out, "<td>2026-01-15 12:00:00,250</td>")
		assert.Contains(t, out, `<td title="Message">a &lt; b</td>`)
		assert.Contains(t, out, `<td title="app.db logger">app.db</td>`)
		assert.Contains(t, out, `colspan="5" title="Nested Diagnostic Context">NDC: req=7</td>`)
		assert.NotContains(t, out, "File:Line")
	})

	t.Run("flags", func(t *testing.T) {
		res := execute(t, jsonLines(t, sampleEntries()...), "--title", "A&B", "--locationinfo")
		require.NoError(t, res.err)

		assert.Contains(t, res.out, "<title>A&amp;B</title>")
		assert.Contains(t, res.out, "<th>File:Line</th>")
		assert.Contains(t, res.out, "<td>main.go:12</td>")
		assert.Contains(t, res.out, `colspan="6"`)
	})

	t.Run("empty input still yields a page", func(t *testing.T) {
		res := execute(t, "")
		require.NoError(t, res.err)
		assert.Contains(t, res.out, "<th>Message</th>")
		assert.NotContains(t, res.out, "<tr>\n<td>")
		assert.True(t, strings.HasSuffix(res.out, "</body></html>"))
	})

	t.Run("bad lines are skipped", func(t *testing.T) {
		input := "not json\n\n" + jsonLines(t, sampleEntries()[0]) + `{"level":"INFO"}` + "\n"
		res := execute(t, input)
		require.NoError(t, res.err)

		assert.Equal(t, 1, strings.Count(res.out, "<tr>\n<td>"))
		assert.Contains(t, res.errOut, "<stdin>:1: skipping line")
		assert.Contains(t, res.errOut, "<stdin>:4: skipping line")
	})

	t.Run("strict", func(t *testing.T) {
		res := execute(t, "not json\n", "--strict")
		require.Error(t, res.err)
		assert.Contains(t, res.err.Error(), "<stdin>:1")
	})

	t.Run("files and output", func(t *testing.T) {
		dir := t.TempDir()
		entries := sampleEntries()
		in1 := filepath.Join(dir, "a.log")
		in2 := filepath.Join(dir, "b.log")
		require.NoError(t, os.WriteFile(in1, []byte(jsonLines(t, entries[0])), 0o600))
		require.NoError(t, os.WriteFile(in2, []byte(jsonLines(t, entries[1])), 0o600))
		out := filepath.Join(dir, "out.html")

		res := execute(t, "", "-o", out, in1, in2)
		require.NoError(t, res.err)
		assert.Empty(t, res.out)

		page, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Equal(t, 2, strings.Count(string(page), "<tr>\n<td>"))
		assert.Less(t, strings.Index(string(page), "a &lt; b"), strings.Index(string(page), "query failed"))
	})

	t.Run("missing input", func(t *testing.T) {
		res := execute(t, "", filepath.Join(t.TempDir(), "nope.log"))
		require.Error(t, res.err)
	})
}

func TestConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("title: from file\nlocationinfo: true\n"), 0o600))

	tests := map[string]struct {
		env  string
		args []string
		want Config
	}{
		"defaults": {
			want: Config{Title: formatter.DefaultHTMLTitle},
		},
		"config file": {
			args: []string{"--config", cfgFile},
			want: Config{Title: "from file", LocationInfo: true},
		},
		"env over file": {
			env:  "from env",
			args: []string{"--config", cfgFile},
			want: Config{Title: "from env", LocationInfo: true},
		},
		"flag over env": {
			env:  "from env",
			args: []string{"--config", cfgFile, "--title", "from flag", "--locationinfo=false"},
			want: Config{Title: "from flag"},
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			if tc.env != "" {
				t.Setenv("NLOG2HTML_TITLE", tc.env)
			}
			cmd := NewCmd()
			fs := cmd.Flags()
			require.NoError(t, fs.Parse(tc.args))
			cfgPath, err := fs.GetString(configF)
			require.NoError(t, err)

			cfg, err := loadConfig(fs, cfgPath)
			require.NoError(t, err)
			assert.Equal(t, tc.want, *cfg)
		})
	}
}

func TestLoadConfig_BadFile(t *testing.T) {
	cmd := NewCmd()
	_, err := loadConfig(cmd.Flags(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
