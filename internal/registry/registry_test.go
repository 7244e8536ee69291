package registry

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/phobologic/templateloader/internal/model"
)

func TestAddKeepsOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	r := New()
	a := model.Asset{Path: "/p/src/a.png", Name: "src/a.png"}
	b := model.Asset{Path: "/p/src/b.png", Name: "src/b.png"}
	r.Add(a)
	r.Add(b)
	r.Add(a)

	got := r.Assets()
	want := []model.Asset{a, b, a}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("asset %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestAssetsReturnsCopy(t *testing.T) {
	t.Parallel()

	r := New()
	r.Add(model.Asset{Path: "/x/y.png", Name: "x/y.png"})
	got := r.Assets()
	got[0].Name = "mutated"

	if r.Assets()[0].Name != "x/y.png" {
		t.Error("Assets exposed internal storage")
	}
}

func TestAppendIsContiguous(t *testing.T) {
	t.Parallel()

	var r Registry
	var wg sync.WaitGroup
	for w := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			batch := make([]model.Asset, 10)
			for i := range batch {
				batch[i] = model.Asset{Path: fmt.Sprintf("w%d", w), Name: fmt.Sprintf("%d", i)}
			}
			r.Append(batch...)
		}()
	}
	wg.Wait()

	assets := r.Assets()
	if r.Len() != 80 {
		t.Fatalf("Len = %d, want 80", r.Len())
	}
	for start := 0; start < len(assets); start += 10 {
		for i := 0; i < 10; i++ {
			a := assets[start+i]
			if a.Path != assets[start].Path || a.Name != fmt.Sprintf("%d", i) {
				t.Fatalf("batch starting at %d interleaved: %+v", start, assets[start:start+10])
			}
		}
	}
}

func TestEncode(t *testing.T) {
	t.Parallel()

	r := New()
	r.Add(model.Asset{Path: "/proj/src/a.png", Name: "src/a.png"})

	got := r.Encode("cdn")
	if !strings.Contains(got, "assets[1]{path,name}:\n  /proj/src/a.png,src/a.png") {
		t.Errorf("unexpected manifest:\n%s", got)
	}
}
