package snapshot

import (
	"sync"
	"testing"

	"github.com/dd0wney/vkb-viewer/pkg/model"
)

func TestHolderStartsEmpty(t *testing.T) {
	h := NewHolder()
	if h.Current() != nil {
		t.Error("new holder should carry no snapshot")
	}
	origin, loadedAt := h.Info()
	if origin != "" || !loadedAt.IsZero() {
		t.Errorf("empty holder info = %q/%v", origin, loadedAt)
	}
}

func TestHolderReplace(t *testing.T) {
	h := NewHolder()
	snap := model.NewSnapshot([]*model.Entity{{Name: "A"}}, nil)

	h.Replace(snap, "upload")

	if h.Current() != snap {
		t.Error("Current should return the installed snapshot")
	}
	origin, loadedAt := h.Info()
	if origin != "upload" {
		t.Errorf("origin = %q, want upload", origin)
	}
	if loadedAt.IsZero() {
		t.Error("loadedAt not stamped")
	}
}

func TestHolderReplaceWholesale(t *testing.T) {
	h := NewHolder()
	first := model.NewSnapshot([]*model.Entity{{Name: "A"}}, nil)
	second := model.NewSnapshot([]*model.Entity{{Name: "B"}, {Name: "C"}}, nil)

	h.Replace(first, "upload")
	h.Replace(second, "gateway")

	if h.Current() != second {
		t.Error("second snapshot should fully replace the first")
	}
	origin, _ := h.Info()
	if origin != "gateway" {
		t.Errorf("origin = %q, want gateway", origin)
	}
}

func TestHolderConcurrentAccess(t *testing.T) {
	h := NewHolder()
	snap := model.NewSnapshot([]*model.Entity{{Name: "A"}}, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			h.Replace(snap, "upload")
		}()
		go func() {
			defer wg.Done()
			_ = h.Current()
			_, _ = h.Info()
		}()
	}
	wg.Wait()
}
