package timeline

import "github.com/shouni/go-movie-kit/pkg/domain"

// AssignPositions は話者ごとの画面上の立ち位置を決定します。
//
// デフォルトは宣言順で 1人目→左、2人目→右、3人目以降→中央。
// 話者設定で明示された立ち位置は常に宣言順より優先されます。
// 複数の話者が同じ立ち位置を明示しても重複排除はしないのだ。
func AssignPositions(personas []domain.Persona) map[string]string {
	positions := make(map[string]string, len(personas))
	for i, p := range personas {
		if p.Position != "" {
			positions[p.ID] = p.Position
			continue
		}
		positions[p.ID] = defaultPosition(i)
	}
	return positions
}

func defaultPosition(declarationOrder int) string {
	switch declarationOrder {
	case 0:
		return domain.PositionLeft
	case 1:
		return domain.PositionRight
	default:
		return domain.PositionCenter
	}
}
