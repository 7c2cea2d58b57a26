package probe

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type stringSource string

func (s stringSource) Open(ctx context.Context) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(string(s))), nil
}

type failSource struct{ err error }

func (f failSource) Open(context.Context) (io.ReadCloser, error) { return nil, f.err }

const titles = "\uFEFFtconst\ttitleType\tisAdult\tstartYear\taverageRating\tgenres\n" +
	"tt1\tmovie\t0\t1995\t8.3\tAction,Crime\n" +
	"tt2\tshort\t0\t\\N\t6.1\tDrama\n" +
	"tt3\tmovie\t1\t2001\t7.0\tComedy,Romance\n" +
	"tt4\tmovie\t0\n"

func TestProbe(t *testing.T) {
	t.Parallel()

	r, err := Probe(context.Background(), "titles", stringSource(titles), Options{
		Required: []string{"tconst", "primaryTitle", "startYear"},
	})
	if err != nil {
		t.Fatalf("Probe error = %v", err)
	}
	if r.Header[0] != "tconst" {
		t.Errorf("BOM not stripped: %q", r.Header[0])
	}
	if diff := cmp.Diff([]string{"primaryTitle"}, r.Missing); diff != "" {
		t.Errorf("missing (-want +got):\n%s", diff)
	}
	if r.OK() {
		t.Errorf("OK() = true with missing columns")
	}
	if r.Rows != 4 || r.Ragged != 1 {
		t.Errorf("rows=%d ragged=%d, want 4 and 1", r.Rows, r.Ragged)
	}

	types := map[string]string{}
	for _, c := range r.Columns {
		types[c.Name] = c.Type
	}
	want := map[string]string{
		"tconst":        TypeText,
		"titleType":     TypeText,
		"isAdult":       TypeInteger,
		"startYear":     TypeInteger,
		"averageRating": TypeReal,
		"genres":        TypeText,
	}
	if diff := cmp.Diff(want, types); diff != "" {
		t.Errorf("types (-want +got):\n%s", diff)
	}
	if year := r.Columns[3]; year.Absent != 1 || len(year.Samples) != 2 {
		t.Errorf("startYear column = %+v", year)
	}
}

func TestProbe_MaxRows(t *testing.T) {
	t.Parallel()

	src := "k\tv\n" + strings.Repeat("a\t1\n", 50)
	r, err := Probe(context.Background(), "s", stringSource(src), Options{MaxRows: 10})
	if err != nil {
		t.Fatalf("Probe error = %v", err)
	}
	if r.Rows != 10 {
		t.Fatalf("rows = %d, want 10", r.Rows)
	}
}

func TestProbe_Errors(t *testing.T) {
	t.Parallel()

	if _, err := Probe(context.Background(), "empty", stringSource(""), Options{}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("empty source err = %v", err)
	}
	boom := errors.New("boom")
	if _, err := Probe(context.Background(), "f", failSource{boom}, Options{}); !errors.Is(err, boom) {
		t.Errorf("open err = %v", err)
	}
}

func TestInferType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   []string
		want string
	}{
		{nil, TypeEmpty},
		{[]string{"1", "-2"}, TypeInteger},
		{[]string{"1.5", "2"}, TypeText},
		{[]string{"1.5", "2.0"}, TypeReal},
		{[]string{"true", "False"}, TypeBoolean},
		{[]string{"Drama,Romance", "nm1,nm2"}, TypeList},
		{[]string{"Drama, Romance"}, TypeText},
	}
	for _, tt := range tests {
		if got := inferType(tt.in); got != tt.want {
			t.Errorf("inferType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRender(t *testing.T) {
	t.Parallel()

	r, err := Probe(context.Background(), "titles", stringSource(titles), Options{Required: []string{"primaryTitle"}})
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf); err != nil {
		t.Fatalf("Render error = %v", err)
	}
	out := buf.String()
	for _, frag := range []string{"titles: rows=4 ragged=1", "status=MISSING primaryTitle", "startYear", "25.0%"} {
		if !strings.Contains(out, frag) {
			t.Errorf("Render output missing %q:\n%s", frag, out)
		}
	}

	buf.Reset()
	if err := RenderJSON(&buf, []*Report{r}); err != nil {
		t.Fatalf("RenderJSON error = %v", err)
	}
	if !strings.Contains(buf.String(), `"source": "titles"`) {
		t.Errorf("RenderJSON = %s", buf.String())
	}
}
