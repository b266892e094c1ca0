package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const helloSource = `var React = require('react');

var Hello = React.createClass({
  render: function() {
    return <div />;
  },
});
`

const helloClass = `class Hello extends React.Component {
  render() {
    return <div />;
  }
}
`

const mixinSource = `var React = require('react');

var Mixed = React.createClass({
  mixins: [Other],
  render: function() {
    return null;
  },
});
`

func writeTestFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readTestFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func createSampleRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	writeTestFile(t, dir, "src/Hello.js", helloSource)
	writeTestFile(t, dir, "src/Mixed.js", mixinSource)
	writeTestFile(t, dir, "src/util.js", "module.exports = function() {};\n")
	return dir
}

func TestRunBasic(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	if got := readTestFile(t, dir, "src/Hello.js"); !strings.Contains(got, helloClass) {
		t.Errorf("Hello.js was not migrated:\n%s", got)
	}
	if got := readTestFile(t, dir, "src/Mixed.js"); got != mixinSource {
		t.Errorf("Mixed.js should be untouched:\n%s", got)
	}

	errOut := stderr.String()
	if !strings.Contains(errOut, "`Mixed` was skipped because of inconvertible mixins") {
		t.Errorf("missing skip warning:\n%s", errOut)
	}
	if !strings.Contains(errOut, "1 of 3 files changed, 1 migrated, 1 skipped, 0 renamed") {
		t.Errorf("unexpected summary:\n%s", errOut)
	}
	if stdout.Len() != 0 {
		t.Errorf("expected no stdout output, got:\n%s", stdout.String())
	}
}

func TestRunDry(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--dry", "--print", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	if got := readTestFile(t, dir, "src/Hello.js"); got != helloSource {
		t.Errorf("dry run modified Hello.js:\n%s", got)
	}
	if !strings.Contains(stdout.String(), helloClass) {
		t.Errorf("--print should output the migrated file, got:\n%s", stdout.String())
	}
	if !strings.Contains(stderr.String(), "1 of 3 files would change") {
		t.Errorf("unexpected summary:\n%s", stderr.String())
	}
}

func TestRunDiff(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	path := filepath.Join(dir, "src", "Hello.js")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-d", "--diff", path}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"--- " + path,
		"+++ " + path,
		"-var Hello = React.createClass({",
		"+class Hello extends React.Component {",
		" var React = require('react');",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("diff missing %q:\n%s", want, out)
		}
	}
}

func TestRunReport(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)
	src := filepath.Join(dir, "src")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--dry", "--report", src}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	out := stdout.String()
	for _, want := range []string{
		"root: " + src,
		"files[3]{path,language,migrated,skipped,renamed}:",
		filepath.Join(src, "Hello.js") + ",javascript,1,0,0",
		filepath.Join(src, "Mixed.js") + ",javascript,0,1,0",
		"skipped[1]{file,component,reason}:",
		filepath.Join(src, "Mixed.js") + ",Mixed,inconvertible mixins",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "errors[") {
		t.Errorf("report should have no errors table:\n%s", out)
	}
}

func TestRunRenameOnly(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "Legacy.js", helloSource)
	writeTestFile(t, dir, "Modern.js", `class Modern extends React.Component {
  componentWillMount() {}
}
`)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-t", "rename-unsafe-lifecycles", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	if got := readTestFile(t, dir, "Legacy.js"); got != helloSource {
		t.Errorf("class pass should not run:\n%s", got)
	}
	if got := readTestFile(t, dir, "Modern.js"); !strings.Contains(got, "UNSAFE_componentWillMount() {}") {
		t.Errorf("hook was not renamed:\n%s", got)
	}
	if !strings.Contains(stderr.String(), "1 of 2 files changed, 0 migrated, 0 skipped, 1 renamed") {
		t.Errorf("unexpected summary:\n%s", stderr.String())
	}
}

func TestRunExplicitRequire(t *testing.T) {
	t.Parallel()
	src := strings.TrimPrefix(helloSource, "var React = require('react');\n\n")

	dir := t.TempDir()
	writeTestFile(t, dir, "Hello.js", src)

	var stdout, stderr bytes.Buffer
	if err := run([]string{dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	if got := readTestFile(t, dir, "Hello.js"); got != src {
		t.Errorf("file without a React import should be untouched:\n%s", got)
	}

	if err := run([]string{"--explicit-require=false", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	if got := readTestFile(t, dir, "Hello.js"); !strings.Contains(got, helloClass) {
		t.Errorf("file should be migrated without the import check:\n%s", got)
	}
}

func TestRunConfigFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "Named.js", `var React = require('react');

var Named = React.createClass({
  propTypes: {
    name: React.PropTypes.string.isRequired,
  },
  render: function() {
    return null;
  },
});
`)
	cfgPath := filepath.Join(dir, "reactmod.yaml")
	writeTestFile(t, dir, "reactmod.yaml", "flow: true\ntrailingComma: false\n")

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--config", cfgPath, filepath.Join(dir, "Named.js")}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	if got := readTestFile(t, dir, "Named.js"); !strings.Contains(got, "  props: {\n    name: string\n  };\n") {
		t.Errorf("expected an inferred props annotation:\n%s", got)
	}
}

func TestRunMissingConfigFile(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"--config", filepath.Join(dir, "missing.yaml"), dir}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "reading config file") {
		t.Fatalf("expected a config error, got %v", err)
	}
}

func TestRunUnknownTransform(t *testing.T) {
	t.Parallel()
	dir := createSampleRepo(t)

	var stdout, stderr bytes.Buffer
	err := run([]string{"-t", "pure-component", dir}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), `unknown transform "pure-component"`) {
		t.Fatalf("expected an unknown transform error, got %v", err)
	}
}

func TestRunSyntaxErrorContinues(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "a_broken.js", "var = ;\n")
	writeTestFile(t, dir, "b_hello.js", helloSource)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--report", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("a file that fails to parse should not fail the run: %v", err)
	}
	if got := readTestFile(t, dir, "b_hello.js"); !strings.Contains(got, helloClass) {
		t.Errorf("b_hello.js was not migrated:\n%s", got)
	}
	if got := readTestFile(t, dir, "a_broken.js"); got != "var = ;\n" {
		t.Errorf("a_broken.js should be untouched:\n%s", got)
	}
	if !strings.Contains(stderr.String(), "1 failed") {
		t.Errorf("summary should count the failure:\n%s", stderr.String())
	}
	if !strings.Contains(stdout.String(), "errors[1]{file,error}:") {
		t.Errorf("report should list the failure:\n%s", stdout.String())
	}
}

func TestRunMaxFileSize(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "small.js", "var a = 1;\n")
	writeTestFile(t, dir, "large.js", helloSource)

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--max-file-size", "20", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}
	if !strings.Contains(stderr.String(), "file skipped") {
		t.Errorf("expected a size warning:\n%s", stderr.String())
	}
	if !strings.Contains(stderr.String(), "0 of 1 files changed") {
		t.Errorf("large file should not be counted:\n%s", stderr.String())
	}
	if got := readTestFile(t, dir, "large.js"); got != helloSource {
		t.Errorf("large.js should be untouched:\n%s", got)
	}
}

func TestRunNoFiles(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "readme.md", "# hello\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{dir}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "no transformable files") {
		t.Fatalf("expected no files error, got %v", err)
	}
}

func TestRunUnsupportedFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	writeTestFile(t, dir, "style.css", "a {}\n")

	var stdout, stderr bytes.Buffer
	err := run([]string{filepath.Join(dir, "style.css")}, &stdout, &stderr)
	if err == nil || !strings.Contains(err.Error(), "unsupported file type") {
		t.Fatalf("expected unsupported file error, got %v", err)
	}
}

func TestRunVersion(t *testing.T) {
	t.Parallel()

	var stdout, stderr bytes.Buffer
	if err := run([]string{"-V"}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := stdout.String(); got != "reactmod dev\n" {
		t.Errorf("version output = %q", got)
	}
}

func TestRunWorkers(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	names := []string{"A", "B", "C", "D", "E"}
	for _, n := range names {
		writeTestFile(t, dir, n+".js", strings.ReplaceAll(helloSource, "Hello", n))
	}

	var stdout, stderr bytes.Buffer
	if err := run([]string{"--workers", "2", "--dry", "--print", dir}, &stdout, &stderr); err != nil {
		t.Fatalf("run: %v\nstderr: %s", err, stderr.String())
	}

	// Output follows discovery order regardless of which worker finished first.
	out := stdout.String()
	last := -1
	for _, n := range names {
		i := strings.Index(out, "class "+n+" extends React.Component")
		if i <= last {
			t.Fatalf("class %s out of order in:\n%s", n, out)
		}
		last = i
	}
}
