package check

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/broady/jsonconv/jsonconvgen"
)

func TestReport(t *testing.T) {
	result := &jsonconvgen.CheckResult{
		Stale: []jsonconvgen.StaleFile{
			{Path: "a_jsonconv.go", Missing: true},
			{Path: "b_jsonconv.go", Diff: "@@\n x\n-old\n+new\n"},
		},
		Orphans: []string{"c_jsonconv.go"},
	}

	var buf bytes.Buffer
	Report(&buf, result, false, true)
	want := `missing: a_jsonconv.go
stale: b_jsonconv.go
    @@
     x
    -old
    +new
orphan: c_jsonconv.go
`
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Report mismatch (-want +got):\n%s", diff)
	}

	buf.Reset()
	Report(&buf, result, false, false)
	want = "missing: a_jsonconv.go\nstale: b_jsonconv.go\norphan: c_jsonconv.go\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("Report without diffs mismatch (-want +got):\n%s", diff)
	}
}

func TestReport_Color(t *testing.T) {
	result := &jsonconvgen.CheckResult{
		Stale: []jsonconvgen.StaleFile{{Path: "b_jsonconv.go", Diff: "-old\n+new\n"}},
	}
	var buf bytes.Buffer
	Report(&buf, result, true, true)
	for _, want := range []string{"\x1b[31m-old", "\x1b[32m+new"} {
		if !bytes.Contains(buf.Bytes(), []byte(want)) {
			t.Errorf("output missing %q:\n%q", want, buf.String())
		}
	}
}
