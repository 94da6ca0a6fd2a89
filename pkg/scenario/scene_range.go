package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shouni/go-movie-kit/pkg/domain"
)

// SceneRange は部分生成の対象となるセクション範囲です。
// 外部構文は1始まりの閉区間ですが、内部では0始まりで保持します。
// nil の境界は無制限を意味するのだ。
type SceneRange struct {
	Start *int
	End   *int
}

// ParseSceneRange は外部向けのシーン範囲構文を解析します。
//
//	"N"   → [N-1, N-1]
//	"A-B" → [A-1, B-1]（A≦B）
//	"A-"  → [A-1, 無制限]
//	"-B"  → [0, B-1]
//
// 裸の "-"、0以下の値、整数でない値、A>B は InputValidationError です。
func ParseSceneRange(expr string) (*SceneRange, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, &domain.InputValidationError{Field: "scene", Reason: "範囲が空です"}
	}

	if !strings.Contains(expr, "-") {
		n, err := parseBound(expr)
		if err != nil {
			return nil, err
		}
		idx := n - 1
		return &SceneRange{Start: &idx, End: &idx}, nil
	}

	left, right, _ := strings.Cut(expr, "-")
	if left == "" && right == "" {
		return nil, &domain.InputValidationError{Field: "scene", Reason: `裸の "-" は指定できません`}
	}

	r := &SceneRange{}
	if left != "" {
		a, err := parseBound(left)
		if err != nil {
			return nil, err
		}
		start := a - 1
		r.Start = &start
	}
	if right != "" {
		b, err := parseBound(right)
		if err != nil {
			return nil, err
		}
		end := b - 1
		r.End = &end
	}

	if r.Start != nil && r.End != nil && *r.Start > *r.End {
		return nil, &domain.InputValidationError{
			Field:  "scene",
			Reason: fmt.Sprintf("開始が終了を超えています: %s", expr),
		}
	}
	return r, nil
}

// parseBound は1始まりの境界値を解析するのだ。
func parseBound(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &domain.InputValidationError{Field: "scene", Reason: fmt.Sprintf("整数ではありません: %q", s)}
	}
	if n < 1 {
		return 0, &domain.InputValidationError{Field: "scene", Reason: fmt.Sprintf("1以上で指定してほしいのだ: %d", n)}
	}
	return n, nil
}

// Contains はセクション番号（0始まり）が範囲内かどうかを返します。
func (r *SceneRange) Contains(sectionIndex int) bool {
	if r == nil {
		return true
	}
	if r.Start != nil && sectionIndex < *r.Start {
		return false
	}
	if r.End != nil && sectionIndex > *r.End {
		return false
	}
	return true
}

// Apply は範囲内のフレーズだけを残します。OriginalIndex は決して変更しないのだ。
func (r *SceneRange) Apply(phrases []domain.Phrase) []domain.Phrase {
	if r == nil {
		return phrases
	}
	filtered := make([]domain.Phrase, 0, len(phrases))
	for _, p := range phrases {
		if r.Contains(p.SectionIndex) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// Resolve は実際のセクション数に合わせて確定した1始まりの閉区間を返します。
func (r *SceneRange) Resolve(sectionCount int) (int, int) {
	start, end := 1, sectionCount
	if r != nil {
		if r.Start != nil {
			start = *r.Start + 1
		}
		if r.End != nil && *r.End+1 < end {
			end = *r.End + 1
		}
	}
	if end < start {
		end = start
	}
	return start, end
}

// Label は出力ファイル名に埋め込む確定済み範囲のラベルを返します。
// 開始と終了が一致するときは1つの数字に畳み込むのだ。
func (r *SceneRange) Label(sectionCount int) string {
	if r == nil {
		return ""
	}
	start, end := r.Resolve(sectionCount)
	if start == end {
		return fmt.Sprintf("scene%d", start)
	}
	return fmt.Sprintf("scene%d-%d", start, end)
}
