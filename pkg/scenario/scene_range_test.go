package scenario

import (
	"errors"
	"testing"

	"github.com/shouni/go-movie-kit/pkg/domain"
)

func TestParseSceneRange(t *testing.T) {
	intPtr := func(n int) *int { return &n }

	cases := []struct {
		name  string
		input string
		start *int
		end   *int
	}{
		{"単一の数字なのだ", "2", intPtr(1), intPtr(1)},
		{"閉区間なのだ", "1-3", intPtr(0), intPtr(2)},
		{"終端だけなのだ", "-3", nil, intPtr(2)},
		{"開始だけなのだ", "5-", intPtr(4), nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r, err := ParseSceneRange(tc.input)
			if err != nil {
				t.Fatalf("%q の解析に失敗したのだ: %v", tc.input, err)
			}
			if !boundEqual(r.Start, tc.start) || !boundEqual(r.End, tc.end) {
				t.Errorf("%q: 期待値 (%v,%v), 実際の値 (%v,%v)",
					tc.input, ptrStr(tc.start), ptrStr(tc.end), ptrStr(r.Start), ptrStr(r.End))
			}
		})
	}

	t.Run("不正な構文はInputValidationErrorなのだ", func(t *testing.T) {
		invalid := []string{"-", "0", "3-1", "a", "1-b", "", "0-2", "-0"}
		for _, in := range invalid {
			_, err := ParseSceneRange(in)
			var vErr *domain.InputValidationError
			if !errors.As(err, &vErr) {
				t.Errorf("%q でエラーが返らないのだ: %v", in, err)
			}
		}
	})
}

func boundEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func ptrStr(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func TestSceneRange_Apply(t *testing.T) {
	phrases := []domain.Phrase{
		{OriginalIndex: 0, SectionIndex: 0},
		{OriginalIndex: 1, SectionIndex: 0},
		{OriginalIndex: 2, SectionIndex: 1},
		{OriginalIndex: 3, SectionIndex: 2},
	}

	r, err := ParseSceneRange("1")
	if err != nil {
		t.Fatal(err)
	}

	filtered := r.Apply(phrases)
	if len(filtered) != 2 {
		t.Fatalf("フィルタ結果の件数が違うのだ: %d", len(filtered))
	}
	// OriginalIndex は振り直されないのだ
	if filtered[0].OriginalIndex != 0 || filtered[1].OriginalIndex != 1 {
		t.Errorf("OriginalIndexが変わっているのだ: %+v", filtered)
	}

	t.Run("nilレシーバは全件通すのだ", func(t *testing.T) {
		var noRange *SceneRange
		if got := noRange.Apply(phrases); len(got) != len(phrases) {
			t.Errorf("nil範囲で件数が変わったのだ: %d", len(got))
		}
	})
}

func TestSceneRange_Label(t *testing.T) {
	cases := []struct {
		input        string
		sectionCount int
		expected     string
	}{
		{"2", 5, "scene2"},
		{"2-4", 5, "scene2-4"},
		{"3-", 5, "scene3-5"},
		{"-2", 5, "scene1-2"},
		{"2-2", 5, "scene2"},
		{"4-", 4, "scene4"}, // 確定後に一致するので畳み込まれるのだ
	}
	for _, tc := range cases {
		r, err := ParseSceneRange(tc.input)
		if err != nil {
			t.Fatalf("%q の解析に失敗したのだ: %v", tc.input, err)
		}
		if got := r.Label(tc.sectionCount); got != tc.expected {
			t.Errorf("%q (sections=%d): 期待値 %q, 実際の値 %q", tc.input, tc.sectionCount, tc.expected, got)
		}
	}

	var noRange *SceneRange
	if got := noRange.Label(5); got != "" {
		t.Errorf("範囲なしのラベルは空のはずなのだ: %q", got)
	}
}
