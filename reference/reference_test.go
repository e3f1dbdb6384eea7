package reference

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/hail-is/hailtype/parser"
	"github.com/hail-is/hailtype/value"
)

const toyJSON = `{
  "name": "toy",
  "contigs": ["1", "X", "Y", "MT"],
  "lengths": {"1": 1000, "X": 500, "Y": 300, "MT": 16},
  "x_contigs": ["X"],
  "y_contigs": ["Y"],
  "mt_contigs": ["MT"],
  "par": [
    {"start": {"contig": "X", "position": 10}, "end": {"contig": "X", "position": 20}, "includeStart": true, "includeEnd": false}
  ]
}`

func TestFSRegistryLookup(t *testing.T) {
	fsys := fstest.MapFS{
		"toy.json":     {Data: []byte(toyJSON)},
		"renamed.json": {Data: []byte(toyJSON)},
		"broken.json":  {Data: []byte(`{"name": "broken", "contigs": ["1"]}`)},
	}
	reg := NewFSRegistry(fsys)

	c, err := reg.Lookup("toy")
	if err != nil {
		t.Fatal(err)
	}
	if !c.IsXContig("X") || !c.IsMTContig("MT") || c.IsYContig("1") {
		t.Errorf("unexpected contig groups: %+v", c)
	}
	if again, _ := reg.Lookup("toy"); again != c {
		t.Error("second lookup should return the cached configuration")
	}

	tests := []struct {
		name string
		want string
	}{
		{"missing", "reference genome not found"},
		{"renamed", `defines reference genome "toy"`},
		{"broken", `contig "1" has no length`},
		{"../toy", "invalid reference genome name"},
	}
	for _, tt := range tests {
		_, err := reg.Lookup(tt.name)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("Lookup(%q) = %v, want error containing %q", tt.name, err, tt.want)
		}
	}
	if _, err := reg.Lookup("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFSRegistryConcurrentLookups(t *testing.T) {
	reg := NewFSRegistry(fstest.MapFS{"toy.json": {Data: []byte(toyJSON)}})
	var wg sync.WaitGroup
	results := make([]*Config, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, err := reg.Lookup("toy")
			if err != nil {
				t.Error(err)
			}
			results[i] = c
		}(i)
	}
	wg.Wait()
	for _, c := range results {
		if c == nil || c.Name != "toy" {
			t.Fatalf("unexpected result %v", c)
		}
	}
}

func TestPARAndLoci(t *testing.T) {
	c, err := NewFSRegistry(fstest.MapFS{"toy.json": {Data: []byte(toyJSON)}}).Lookup("toy")
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		locus    value.Locus
		contains bool
		inPAR    bool
	}{
		{value.Locus{Contig: "X", Position: 10}, true, true},
		{value.Locus{Contig: "X", Position: 19}, true, true},
		{value.Locus{Contig: "X", Position: 20}, true, false},
		{value.Locus{Contig: "1", Position: 15}, true, false},
		{value.Locus{Contig: "1", Position: 1001}, false, false},
		{value.Locus{Contig: "2", Position: 1}, false, false},
		{value.Locus{Contig: "1", Position: 1, Reference: "other"}, false, false},
	}
	for _, tt := range tests {
		if got := c.ContainsLocus(tt.locus); got != tt.contains {
			t.Errorf("ContainsLocus(%v) = %v", tt.locus, got)
		}
		if got := c.InPAR(tt.locus); got != tt.inPAR {
			t.Errorf("InPAR(%v) = %v", tt.locus, got)
		}
	}
}

func TestMemRegistryAndChain(t *testing.T) {
	mem := NewMemRegistry()
	if err := mem.Add(&Config{Name: "empty"}); err == nil {
		t.Error("expected validation error for a genome without contigs")
	}
	small := &Config{Name: "small", Contigs: []string{"1"}, Lengths: map[string]int32{"1": 10}}
	if err := mem.Add(small); err != nil {
		t.Fatal(err)
	}
	if err := mem.Add(&Config{Name: "small", Contigs: []string{"2"}, Lengths: map[string]int32{"2": 10}}); err == nil {
		t.Error("redefining small should fail")
	}
	if names := mem.Names(); len(names) != 1 || names[0] != "small" {
		t.Errorf("Names = %v", names)
	}

	chain := Chain{mem, NewFSRegistry(fstest.MapFS{"toy.json": {Data: []byte(toyJSON)}})}
	typ := parser.MustParse("struct{a: locus<small>, b: array<interval<locus<toy>>>}")
	configs, err := Resolve(chain, typ.Context())
	if err != nil {
		t.Fatal(err)
	}
	if len(configs) != 2 || configs["small"] != small || configs["toy"].Name != "toy" {
		t.Errorf("Resolve = %v", configs)
	}

	_, err = Resolve(chain, parser.MustParse("locus<nowhere>").Context())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFSRegistryInvalidate(t *testing.T) {
	fsys := fstest.MapFS{"toy.json": {Data: []byte(toyJSON)}}
	reg := NewFSRegistry(fsys)
	first, err := reg.Lookup("toy")
	if err != nil {
		t.Fatal(err)
	}
	fsys["toy.json"] = &fstest.MapFile{Data: []byte(strings.Replace(toyJSON, `"1": 1000`, `"1": 2000`, 1))}
	if again, _ := reg.Lookup("toy"); again != first {
		t.Error("lookup before Invalidate should be cached")
	}
	reg.Invalidate("toy")
	c, err := reg.Lookup("toy")
	if err != nil {
		t.Fatal(err)
	}
	if c.Lengths["1"] != 2000 {
		t.Errorf("length of contig 1 = %d, want 2000", c.Lengths["1"])
	}
}

// gatedFS holds the first Open until release is closed.
type gatedFS struct {
	fsys    fs.FS
	once    sync.Once
	opened  chan struct{}
	release chan struct{}
}

func (g *gatedFS) Open(name string) (fs.File, error) {
	f, err := g.fsys.Open(name)
	g.once.Do(func() {
		close(g.opened)
		<-g.release
	})
	return f, err
}

func TestFSRegistryInvalidateDuringLoad(t *testing.T) {
	fsys := fstest.MapFS{"toy.json": {Data: []byte(toyJSON)}}
	gated := &gatedFS{fsys: fsys, opened: make(chan struct{}), release: make(chan struct{})}
	reg := NewFSRegistry(gated)

	done := make(chan *Config)
	go func() {
		c, err := reg.Lookup("toy")
		if err != nil {
			t.Error(err)
		}
		done <- c
	}()
	<-gated.opened
	fsys["toy.json"] = &fstest.MapFile{Data: []byte(strings.Replace(toyJSON, `"1": 1000`, `"1": 2000`, 1))}
	reg.Invalidate("toy")
	close(gated.release)

	if old := <-done; old == nil || old.Lengths["1"] != 1000 {
		t.Fatalf("in-flight lookup returned %+v, want the file as it was opened", old)
	}
	c, err := reg.Lookup("toy")
	if err != nil {
		t.Fatal(err)
	}
	if c.Lengths["1"] != 2000 {
		t.Errorf("length of contig 1 = %d, want 2000", c.Lengths["1"])
	}
}

func TestFSRegistryWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toy.json")
	if err := os.WriteFile(path, []byte(toyJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	reg := NewFSRegistry(os.DirFS(dir))
	if _, err := reg.Lookup("toy"); err != nil {
		t.Fatal(err)
	}
	stop, err := reg.Watch(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer stop()

	updated := strings.Replace(toyJSON, `"1": 1000`, `"1": 2000`, 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if c, err := reg.Lookup("toy"); err == nil && c.Lengths["1"] == 2000 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("registry did not pick up the changed configuration")
}
