package scenario

import (
	"testing"

	"github.com/shouni/go-movie-kit/pkg/domain"
)

func threeSectionScript() *domain.Script {
	return &domain.Script{
		Title: "テスト台本",
		Sections: []domain.Section{
			{
				Title: "第一章",
				Narrations: []domain.NarrationTurn{
					{Text: "こんにちは。", Reading: "コンニチワ。", PersonaID: "zundamon"},
					{Text: "今日のテーマなのだ。", Reading: "キョウノテーマナノダ。", PersonaID: "zundamon"},
				},
			},
			{
				Title: "第二章",
				Narrations: []domain.NarrationTurn{
					{Text: "解説するのだ。", Reading: "カイセツスルノダ。", PersonaID: "metan"},
				},
			},
			{
				Title: "第三章",
				Narrations: []domain.NarrationTurn{
					{Text: "さようなら。", Reading: "サヨウナラ。"},
				},
			},
		},
	}
}

func testPersonas() domain.PersonasMap {
	return domain.BuildPersonasMap([]domain.Persona{
		{ID: "zundamon", Name: "ずんだもん"},
		{ID: "metan", Name: "四国めたん"},
	})
}

func TestFlattener_Flatten(t *testing.T) {
	f := NewFlattener(0, testPersonas())
	phrases := f.Flatten(threeSectionScript())

	t.Run("連番は0からNまで隙間なく振られるのだ", func(t *testing.T) {
		for i, p := range phrases {
			if p.OriginalIndex != i {
				t.Errorf("index=%d: OriginalIndex=%d", i, p.OriginalIndex)
			}
		}
	})

	t.Run("セクション番号が引き継がれるのだ", func(t *testing.T) {
		if phrases[0].SectionIndex != 0 {
			t.Errorf("先頭のセクション番号が違うのだ: %d", phrases[0].SectionIndex)
		}
		last := phrases[len(phrases)-1]
		if last.SectionIndex != 2 {
			t.Errorf("末尾のセクション番号が違うのだ: %d", last.SectionIndex)
		}
	})

	t.Run("話者の表示名が解決されるのだ", func(t *testing.T) {
		if phrases[0].PersonaName != "ずんだもん" {
			t.Errorf("表示名が解決されていないのだ: %q", phrases[0].PersonaName)
		}
	})

	t.Run("フィルタしてもOriginalIndexは変わらないのだ", func(t *testing.T) {
		r, err := ParseSceneRange("1")
		if err != nil {
			t.Fatal(err)
		}
		filtered := r.Apply(phrases)
		for _, p := range filtered {
			if p.SectionIndex != 0 {
				t.Errorf("範囲外のセクションが残っているのだ: %+v", p)
			}
		}
		if filtered[0].OriginalIndex != phrases[0].OriginalIndex {
			t.Error("フィルタでOriginalIndexが振り直されたのだ")
		}
	})
}

func TestFlattener_ReadingPairing(t *testing.T) {
	t.Run("断片数が一致すれば読みは位置で対応付くのだ", func(t *testing.T) {
		f := NewFlattener(0, nil)
		script := &domain.Script{Sections: []domain.Section{{
			Narrations: []domain.NarrationTurn{
				{Text: "こんにちは。さようなら。", Reading: "コンニチワ。サヨウナラ。"},
			},
		}}}
		phrases := f.Flatten(script)
		if len(phrases) != 2 {
			t.Fatalf("フレーズ数が違うのだ: %v", phrases)
		}
		if phrases[0].Reading != "コンニチワ。" || phrases[1].Reading != "サヨウナラ。" {
			t.Errorf("読みの対応付けが違うのだ: %+v", phrases)
		}
	})

	t.Run("断片数が合わなければ読みは先頭へ寄るのだ", func(t *testing.T) {
		f := NewFlattener(0, nil)
		script := &domain.Script{Sections: []domain.Section{{
			Narrations: []domain.NarrationTurn{
				{Text: "こんにちは。さようなら。", Reading: "コンニチワサヨウナラ"},
			},
		}}}
		phrases := f.Flatten(script)
		if len(phrases) != 2 {
			t.Fatalf("フレーズ数が違うのだ: %v", phrases)
		}
		if phrases[0].Reading != "コンニチワサヨウナラ" || phrases[1].Reading != "" {
			t.Errorf("読みの寄せ先が違うのだ: %+v", phrases)
		}
	})
}

func TestFlattener_UnknownPersonaPreserved(t *testing.T) {
	f := NewFlattener(0, testPersonas())
	script := &domain.Script{Sections: []domain.Section{{
		Narrations: []domain.NarrationTurn{
			{Text: "謎の声なのだ。", Reading: "ナゾノコエナノダ。", PersonaID: "ghost"},
		},
	}}}

	phrases := f.Flatten(script)
	// 未設定のIDはここでは落とさず、下流のフォールバック判断に委ねるのだ
	if phrases[0].PersonaID != "ghost" {
		t.Errorf("未設定の話者IDが保存されていないのだ: %q", phrases[0].PersonaID)
	}
	if phrases[0].PersonaName != "" {
		t.Errorf("表示名は未解決のはずなのだ: %q", phrases[0].PersonaName)
	}
}
