package voice

import (
	"context"
	"testing"

	"github.com/shouni/go-movie-kit/pkg/kana"
)

type fakeSynthesizer struct{ id string }

func (f *fakeSynthesizer) Synthesize(ctx context.Context, text string) (*Result, error) {
	return &Result{Duration: 1.0}, nil
}
func (f *fakeSynthesizer) RegisterWord(ctx context.Context, entry kana.Entry) error { return nil }
func (f *fakeSynthesizer) SupportsUserDict() bool                                   { return false }

func TestPool(t *testing.T) {
	pool := NewPool()
	pool.Register("zundamon", &fakeSynthesizer{id: "z"})
	pool.Register("metan", &fakeSynthesizer{id: "m"})

	t.Run("登録した合成器が引けるのだ", func(t *testing.T) {
		if _, ok := pool.Get("zundamon"); !ok {
			t.Error("登録済みの話者が見つからないのだ")
		}
		if _, ok := pool.Get("ghost"); ok {
			t.Error("未登録の話者が見つかったのだ")
		}
	})

	t.Run("IDsは登録順を保存するのだ", func(t *testing.T) {
		ids := pool.IDs()
		if len(ids) != 2 || ids[0] != "zundamon" || ids[1] != "metan" {
			t.Errorf("登録順が保存されていないのだ: %v", ids)
		}
	})

	t.Run("再登録しても順序は変わらないのだ", func(t *testing.T) {
		pool.Register("zundamon", &fakeSynthesizer{id: "z2"})
		if pool.Len() != 2 {
			t.Errorf("話者数が変わったのだ: %d", pool.Len())
		}
		if ids := pool.IDs(); ids[0] != "zundamon" {
			t.Errorf("順序が変わったのだ: %v", ids)
		}
	})
}
